package optimizer

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/kosarica/price-comparator/internal/pricing"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultHistoryWindow picks the window for a history request that gives no
// explicit bounds. With discounts it spans lookbackDays before the earliest
// discount start through the latest discount end; without discounts it is
// the lookbackDays leading up to today.
func DefaultHistoryWindow(normalized []pricing.NormalizedInterval, today time.Time, lookbackDays int) pricing.Window {
	if len(normalized) == 0 {
		end := pricing.Day(today)
		return pricing.Window{Start: pricing.AddDays(end, -lookbackDays), End: end}
	}
	earliest := normalized[0].FromDate
	latest := normalized[len(normalized)-1].ToDate
	return pricing.Window{Start: pricing.AddDays(earliest, -lookbackDays), End: latest}
}

// PriceHistory returns the priced timeline of every listing matching q.
// Each store gets its own window unless q bounds it explicitly.
func (s *Service) PriceHistory(ctx context.Context, q HistoryQuery, today time.Time) (result *HistoryResult, err error) {
	ctx, done := s.observe(ctx, "history", attribute.String("product", q.ProductName))
	defer func() { done(err) }()

	name := strings.TrimSpace(q.ProductName)
	if name == "" {
		return nil, &ErrInvalidRequest{Field: "product", Reason: "is required"}
	}

	offers, err := s.source.LoadAllStoresForProduct(ctx, name)
	if err != nil {
		return nil, err
	}
	offers = lo.Filter(offers, func(o StoreOffer, _ int) bool {
		return matchesOptional(q.Store, o.StoreKey, o.StoreName) &&
			matchesOptional(q.Brand, o.Product.Brand) &&
			matchesOptional(q.Category, o.Product.Category)
	})
	if len(offers) == 0 {
		return nil, ErrProductNotFound
	}

	result = &HistoryResult{Product: offers[0].Product}
	for _, o := range offers {
		raw, err := s.source.LoadDiscounts(ctx, o.Product.Key, o.StoreKey)
		if err != nil {
			return nil, err
		}
		normalized, err := pricing.Normalize(raw)
		if err != nil {
			return nil, err
		}

		w := DefaultHistoryWindow(normalized, today, s.config.HistoryLookbackDays)
		if q.From != nil {
			w.Start = pricing.Day(*q.From)
		}
		if q.To != nil {
			w.End = pricing.Day(*q.To)
		}

		rows, err := pricing.BuildTimeline(o.Fact.BasePrice, o.StoreKey, normalized, w)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			result.Rows = append(result.Rows, HistoryRow{PricedInterval: r, StoreName: o.StoreName})
		}
	}

	sort.SliceStable(result.Rows, func(i, j int) bool {
		return result.Rows[i].FromDate.Before(result.Rows[j].FromDate)
	})
	return result, nil
}

// matchesOptional reports whether filter is empty or equals any candidate,
// ignoring case.
func matchesOptional(filter string, candidates ...string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	return lo.ContainsBy(candidates, func(c string) bool {
		return strings.EqualFold(c, filter)
	})
}
