package optimizer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheLoadDuration tracks the time taken to load a fact snapshot.
	cacheLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricecomp_cache_load_duration_seconds",
		Help:    "Time taken to load the price fact snapshot",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	// cacheLoadErrors tracks snapshot load failures.
	cacheLoadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricecomp_cache_load_errors_total",
		Help: "Total number of price fact snapshot load errors",
	})

	// snapshotSize tracks what the current snapshot holds.
	snapshotSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pricecomp_snapshot_entries",
		Help: "Number of entries in the current snapshot by kind",
	}, []string{"kind"}) // kind: listings, offers, discounts

	// cacheAge tracks the age of the snapshot.
	cacheAge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pricecomp_cache_age_seconds",
		Help: "Age of the price fact snapshot in seconds",
	})

	// circuitState tracks circuit breaker state (0 closed, 1 open, 2 half-open).
	circuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pricecomp_circuit_breaker_state",
		Help: "Circuit breaker state by name",
	}, []string{"name"})

	// operationDuration tracks service operation latency.
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricecomp_operation_duration_seconds",
		Help:    "Time taken by service operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	}, []string{"operation"}) // operation: basket, history, best_discounts, new_discounts, alert, substitutes

	// operationErrors tracks service operation failures.
	operationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricecomp_operation_errors_total",
		Help: "Total number of failed service operations",
	}, []string{"operation"})

	// basketSize tracks the distribution of basket sizes.
	basketSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricecomp_basket_items_count",
		Help:    "Number of products in basket requests",
		Buckets: []float64{1, 5, 10, 20, 50, 100},
	})

	// basketNotFound counts basket products no store could quote.
	basketNotFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricecomp_basket_not_found_total",
		Help: "Total number of basket products without any quote",
	})

	// unpricedDiscounts counts discounted listings skipped for lack of a base price.
	unpricedDiscounts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricecomp_unpriced_discounts_total",
		Help: "Total number of discounted listings skipped because no base price exists",
	})

	// alertsEvaluated counts alert evaluations by outcome.
	alertsEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricecomp_alerts_evaluated_total",
		Help: "Total number of alert evaluations by result",
	}, []string{"result"}) // result: triggered, waiting, no_quotes
)

// MetricsRecorder provides methods to record service metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordCacheLoad records the duration of a snapshot load.
func (m *MetricsRecorder) RecordCacheLoad(duration time.Duration) {
	cacheLoadDuration.Observe(duration.Seconds())
}

// RecordCacheLoadError records a snapshot load failure.
func (m *MetricsRecorder) RecordCacheLoadError() {
	cacheLoadErrors.Inc()
}

// RecordSnapshotSize records the entry counts of a freshly loaded snapshot.
func (m *MetricsRecorder) RecordSnapshotSize(listings, offers, discounts int) {
	snapshotSize.WithLabelValues("listings").Set(float64(listings))
	snapshotSize.WithLabelValues("offers").Set(float64(offers))
	snapshotSize.WithLabelValues("discounts").Set(float64(discounts))
}

// RecordCacheAge records the age of the snapshot.
func (m *MetricsRecorder) RecordCacheAge(age time.Duration) {
	cacheAge.Set(age.Seconds())
}

// RecordCircuitState records a circuit breaker state transition.
func (m *MetricsRecorder) RecordCircuitState(name string, state CircuitBreakerState) {
	circuitState.WithLabelValues(name).Set(float64(state))
}

// RecordOperation records the duration and outcome of a service operation.
func (m *MetricsRecorder) RecordOperation(operation string, duration time.Duration, err error) {
	operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		operationErrors.WithLabelValues(operation).Inc()
	}
}

// RecordBasket records the size of a basket and how many products went unquoted.
func (m *MetricsRecorder) RecordBasket(items, notFound int) {
	basketSize.Observe(float64(items))
	basketNotFound.Add(float64(notFound))
}

// RecordUnpricedDiscounts records discounted listings skipped for lack of a base price.
func (m *MetricsRecorder) RecordUnpricedDiscounts(n int) {
	if n > 0 {
		unpricedDiscounts.Add(float64(n))
	}
}

// RecordAlertEvaluation records the outcome of an alert evaluation.
func (m *MetricsRecorder) RecordAlertEvaluation(result string) {
	alertsEvaluated.WithLabelValues(result).Inc()
}
