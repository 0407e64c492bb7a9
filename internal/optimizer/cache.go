package optimizer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kosarica/price-comparator/internal/pricing"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const snapshotFlightKey = "snapshot"

// FactCache serves price facts from an in-memory Snapshot that is reloaded
// periodically from a SnapshotLoader. Snapshots are built off-lock and swapped
// atomically, so readers never block on a reload.
type FactCache struct {
	loader SnapshotLoader
	config *Config

	snapshot atomic.Pointer[Snapshot]
	loadedAt atomic.Int64 // Unix nanoseconds

	// Collapses concurrent reloads into one loader call
	sf singleflight.Group

	circuitBreaker *CircuitBreaker
	warmupGate     *WarmupGate
	metrics        *MetricsRecorder
	logger         *zerolog.Logger

	// Shutdown handling
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFactCache creates a cache backed by loader. Nothing is loaded until
// Warmup or Refresh is called.
func NewFactCache(loader SnapshotLoader, config *Config) *FactCache {
	if config == nil {
		config = Defaults()
	}
	ctx, cancel := context.WithCancel(context.Background())

	metrics := NewMetricsRecorder()
	logger := log.With().Str("component", "fact_cache").Logger()

	return &FactCache{
		loader:         loader,
		config:         config,
		circuitBreaker: NewCircuitBreaker("fact_cache", DefaultCircuitBreakerConfig(), metrics, &logger),
		warmupGate:     NewWarmupGate(),
		metrics:        metrics,
		logger:         &logger,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Warmup loads the first snapshot. The warmup gate opens on the first
// successful load, whether it comes from Warmup or a later Refresh.
func (c *FactCache) Warmup(ctx context.Context) error {
	c.logger.Info().Msg("Starting cache warmup")
	if err := c.Refresh(ctx); err != nil {
		return fmt.Errorf("warmup: %w", err)
	}
	c.logger.Info().Msg("Cache warmup completed")
	return nil
}

// Refresh reloads the snapshot. Concurrent callers share a single load that
// runs on a dedicated context, so one caller giving up does not fail the others.
func (c *FactCache) Refresh(ctx context.Context) error {
	if !c.circuitBreaker.Allow(ctx) {
		c.logger.Warn().
			Str("circuit_state", c.circuitBreaker.State().String()).
			Str("request_id", RequestIDFrom(ctx)).
			Msg("Circuit breaker rejected snapshot load")
		return fmt.Errorf("circuit breaker open for fact cache")
	}

	ch := c.sf.DoChan(snapshotFlightKey, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.Background(), c.config.CacheLoadTimeout)
		defer cancel()
		return c.load(loadCtx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *FactCache) load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	snap, err := c.loader.LoadSnapshot(ctx)
	if err != nil {
		c.metrics.RecordCacheLoadError()
		c.circuitBreaker.RecordFailure(err)
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	snap.Seal()
	c.circuitBreaker.RecordSuccess()

	c.snapshot.Store(snap)
	c.loadedAt.Store(time.Now().UnixNano())
	c.warmupGate.Ready()

	listings, offers, discounts := snap.Stats()
	c.metrics.RecordCacheLoad(time.Since(start))
	c.metrics.RecordSnapshotSize(listings, offers, discounts)
	c.metrics.RecordCacheAge(0)

	event := c.logger.Info().
		Int("listings", listings).
		Int("offers", offers).
		Int("discounts", discounts).
		Dur("duration", time.Since(start))
	if orphans := snap.OrphanDiscounts(); orphans > 0 {
		event = event.Int("unpriced_discounted_listings", orphans)
	}
	event.Msg("Loaded price fact snapshot")

	return snap, nil
}

// StartRefreshLoop reloads the snapshot every CacheTTL plus a random jitter
// until Close is called. Load errors are logged and the previous snapshot
// keeps serving.
func (c *FactCache) StartRefreshLoop() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			timer := time.NewTimer(c.nextRefresh())
			select {
			case <-c.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				if err := c.Refresh(c.ctx); err != nil {
					c.logger.Error().Err(err).Msg("Snapshot refresh failed")
				}
			}
		}
	}()
}

func (c *FactCache) nextRefresh() time.Duration {
	d := c.config.CacheTTL
	if c.config.CacheRefreshJitter > 0 {
		d += time.Duration(rand.Int64N(int64(c.config.CacheRefreshJitter)))
	}
	return d
}

// Close stops the refresh loop.
func (c *FactCache) Close() error {
	c.cancel()
	c.wg.Wait()
	return nil
}

func (c *FactCache) current() (*Snapshot, error) {
	snap := c.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap, nil
}

// LoadBasePrice implements FactSource.
func (c *FactCache) LoadBasePrice(ctx context.Context, productKey, storeKey string) (pricing.PriceFact, bool, error) {
	snap, err := c.current()
	if err != nil {
		return pricing.PriceFact{}, false, err
	}
	return snap.LoadBasePrice(ctx, productKey, storeKey)
}

// LoadDiscounts implements FactSource.
func (c *FactCache) LoadDiscounts(ctx context.Context, productKey, storeKey string) ([]pricing.DiscountInterval, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}
	return snap.LoadDiscounts(ctx, productKey, storeKey)
}

// LoadAllStoresForProduct implements FactSource.
func (c *FactCache) LoadAllStoresForProduct(ctx context.Context, productName string) ([]StoreOffer, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}
	return snap.LoadAllStoresForProduct(ctx, productName)
}

// ListDiscounted implements FactSource.
func (c *FactCache) ListDiscounted(ctx context.Context) ([]Listing, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}
	return snap.ListDiscounted(ctx)
}

// IsHealthy returns whether the cache is ready to serve requests:
// the circuit is not open, warmup finished and a snapshot is loaded.
func (c *FactCache) IsHealthy(ctx context.Context) bool {
	if c.circuitBreaker.State() == CircuitOpen {
		c.logger.Debug().Msg("Cache unhealthy: circuit breaker is open")
		return false
	}
	if !c.warmupGate.IsReady() {
		c.logger.Debug().Msg("Cache unhealthy: warmup not complete")
		return false
	}
	if c.snapshot.Load() == nil {
		c.logger.Debug().Msg("Cache unhealthy: no snapshot")
		return false
	}
	return true
}

// Freshness reports the age and size of the current snapshot.
func (c *FactCache) Freshness() CacheFreshness {
	snap := c.snapshot.Load()
	if snap == nil {
		return CacheFreshness{IsStale: true}
	}
	loadedAt := time.Unix(0, c.loadedAt.Load())
	age := time.Since(loadedAt)
	c.metrics.RecordCacheAge(age)

	listings, offers, discounts := snap.Stats()
	return CacheFreshness{
		LoadedAt:  loadedAt.Unix(),
		IsStale:   age > c.config.CacheTTL+c.config.CacheRefreshJitter,
		Listings:  listings,
		Offers:    offers,
		Discounts: discounts,
	}
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *FactCache) CircuitBreakerState() CircuitBreakerState {
	return c.circuitBreaker.State()
}

// ResetCircuitBreaker resets the circuit breaker to closed state.
func (c *FactCache) ResetCircuitBreaker() {
	c.circuitBreaker.Reset()
}

// WaitForWarmup blocks until warmup is complete or ctx is cancelled.
func (c *FactCache) WaitForWarmup(ctx context.Context) bool {
	return c.warmupGate.Wait(ctx)
}
