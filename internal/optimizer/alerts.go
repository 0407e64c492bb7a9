package optimizer

import (
	"context"
	"strings"
	"time"

	"github.com/kosarica/price-comparator/internal/pricing"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// EvaluateAlert checks whether any store sells productName at or below
// target on date.
func (s *Service) EvaluateAlert(ctx context.Context, productName string, target decimal.Decimal, date time.Time) (eval *AlertEvaluation, err error) {
	ctx, done := s.observe(ctx, "alert", attribute.String("product", productName))
	defer func() { done(err) }()

	name := strings.TrimSpace(productName)
	if name == "" {
		return nil, &ErrInvalidRequest{Field: "product", Reason: "is required"}
	}
	if target.IsNegative() {
		return nil, &ErrInvalidRequest{Field: "target_price", Reason: "must be non-negative"}
	}
	date = pricing.Day(date)

	offers, err := s.source.LoadAllStoresForProduct(ctx, name)
	if err != nil {
		return nil, err
	}
	quotes, err := s.quoteOffers(ctx, offers, date)
	if err != nil {
		return nil, err
	}

	eval = &AlertEvaluation{
		ProductName: name,
		Target:      target,
		Date:        date,
		Triggered:   pricing.IsSatisfied(target, quotes),
	}
	if best, ok := pricing.SelectBest(quotes); ok {
		eval.HasQuotes = true
		eval.Best = &BestQuote{
			StoreKey:  best.StoreKey,
			StoreName: storeNames(offers)[best.StoreKey],
			Price:     best.EffectivePrice,
		}
	}

	switch {
	case !eval.HasQuotes:
		s.metrics.RecordAlertEvaluation("no_quotes")
	case eval.Triggered:
		s.metrics.RecordAlertEvaluation("triggered")
	default:
		s.metrics.RecordAlertEvaluation("waiting")
	}
	return eval, nil
}
