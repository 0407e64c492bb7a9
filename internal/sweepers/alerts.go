package sweepers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/kosarica/price-comparator/internal/database"
	"github.com/kosarica/price-comparator/internal/optimizer"
	"github.com/kosarica/price-comparator/internal/pricing"
)

// AlertRepository is the alert storage the sweeper drives.
type AlertRepository interface {
	ListActiveAlerts(ctx context.Context) ([]database.Alert, error)
	MarkAlertProcessed(ctx context.Context, id int64, processedAt time.Time, storeKey string, price decimal.Decimal) (bool, error)
}

// AlertEvaluator decides whether an alert's target price is met.
type AlertEvaluator interface {
	EvaluateAlert(ctx context.Context, productName string, target decimal.Decimal, date time.Time) (*optimizer.AlertEvaluation, error)
}

// SweepResult summarizes one pass over the active alerts.
type SweepResult struct {
	Checked   int
	Triggered int
	Failed    int
}

// AlertSweeper periodically evaluates active price alerts and marks the
// satisfied ones processed.
type AlertSweeper struct {
	repo        AlertRepository
	evaluator   AlertEvaluator
	logger      *zerolog.Logger
	interval    time.Duration
	concurrency int
	now         func() time.Time
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// NewAlertSweeper creates a sweeper that runs every interval, evaluating up
// to concurrency alerts at once.
func NewAlertSweeper(repo AlertRepository, evaluator AlertEvaluator, logger *zerolog.Logger, interval time.Duration, concurrency int) *AlertSweeper {
	if concurrency < 1 {
		concurrency = 1
	}
	return &AlertSweeper{
		repo:        repo,
		evaluator:   evaluator,
		logger:      logger,
		interval:    interval,
		concurrency: concurrency,
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}
}

// Start runs a sweep immediately and then on every tick until ctx is
// cancelled or Stop is called.
func (s *AlertSweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Int("concurrency", s.concurrency).
		Msg("Starting alert sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Alert sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Alert sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

// Stop signals the sweeper to stop. It is safe to call more than once.
func (s *AlertSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *AlertSweeper) sweepAndLog(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to sweep price alerts")
	}
}

// Sweep evaluates every active alert against today's prices. A failure to
// evaluate or update a single alert is logged and counted; only failing to
// list the alerts aborts the pass.
func (s *AlertSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	alerts, err := s.repo.ListActiveAlerts(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list active alerts: %w", err)
	}
	if len(alerts) == 0 {
		return SweepResult{}, nil
	}

	now := s.now()
	today := pricing.Day(now)

	var triggered, failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, a := range alerts {
		g.Go(func() error {
			fired, err := s.process(gctx, a, today, now)
			switch {
			case err != nil:
				failed.Add(1)
				s.logger.Warn().Err(err).Int64("alert_id", a.ID).Msg("Alert evaluation failed")
			case fired:
				triggered.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := SweepResult{
		Checked:   len(alerts),
		Triggered: int(triggered.Load()),
		Failed:    int(failed.Load()),
	}
	if result.Triggered > 0 || result.Failed > 0 {
		s.logger.Info().
			Int("checked", result.Checked).
			Int("triggered", result.Triggered).
			Int("failed", result.Failed).
			Msg("Swept price alerts")
	}
	return result, ctx.Err()
}

func (s *AlertSweeper) process(ctx context.Context, a database.Alert, today, now time.Time) (bool, error) {
	eval, err := s.evaluator.EvaluateAlert(ctx, a.ProductName, a.TargetPrice, today)
	if err != nil {
		return false, err
	}
	if !eval.Triggered || eval.Best == nil {
		return false, nil
	}

	updated, err := s.repo.MarkAlertProcessed(ctx, a.ID, now, eval.Best.StoreKey, eval.Best.Price)
	if err != nil {
		return false, fmt.Errorf("mark alert %d processed: %w", a.ID, err)
	}
	if !updated {
		// Processed concurrently by another sweeper.
		return false, nil
	}

	s.logger.Info().
		Int64("alert_id", a.ID).
		Str("product", a.ProductName).
		Str("target", a.TargetPrice.StringFixed(pricing.DisplayPlaces)).
		Str("store", eval.Best.StoreKey).
		Str("price", eval.Best.Price.StringFixed(pricing.DisplayPlaces)).
		Msg("Price alert triggered")
	return true, nil
}
