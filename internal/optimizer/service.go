package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kosarica/price-comparator/internal/pricing"
	"github.com/kosarica/price-comparator/internal/telemetry"
)

const tracerName = "github.com/kosarica/price-comparator/internal/optimizer"

// Service answers price questions by combining a FactSource with the
// pricing engine. All dates are explicit parameters; the service never
// reads the clock to decide which day a question is about.
type Service struct {
	source  FactSource
	config  *Config
	metrics *MetricsRecorder
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewService creates a service reading facts from source.
func NewService(source FactSource, config *Config) *Service {
	if config == nil {
		config = Defaults()
	}
	return &Service{
		source:  source,
		config:  config,
		metrics: NewMetricsRecorder(),
		logger:  log.With().Str("component", "price_service").Logger(),
		tracer:  telemetry.Tracer(tracerName),
	}
}

// observe starts a span for an operation and returns a function that ends it
// and records metrics. Pass the operation's final error to the returned func.
func (s *Service) observe(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "optimizer."+operation, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.RecordOperation(operation, time.Since(start), err)
	}
}

// quoteOffers prices every offer on date.
func (s *Service) quoteOffers(ctx context.Context, offers []StoreOffer, date time.Time) ([]pricing.Quote, error) {
	quotes := make([]pricing.Quote, 0, len(offers))
	for _, o := range offers {
		discounts, err := s.source.LoadDiscounts(ctx, o.Product.Key, o.StoreKey)
		if err != nil {
			return nil, fmt.Errorf("load discounts for %s at %s: %w", o.Product.Key, o.StoreKey, err)
		}
		q, err := pricing.QuoteOn(o.Fact, discounts, date)
		if err != nil {
			return nil, fmt.Errorf("quote %s at %s: %w", o.Product.Key, o.StoreKey, err)
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// storeNames maps store keys to display names for the given offers.
func storeNames(offers []StoreOffer) map[string]string {
	names := make(map[string]string, len(offers))
	for _, o := range offers {
		if _, ok := names[o.StoreKey]; !ok {
			names[o.StoreKey] = o.StoreName
		}
	}
	return names
}
