package optimizer

import (
	"context"
	"sort"
	"time"

	"github.com/kosarica/price-comparator/internal/pricing"
	"go.opentelemetry.io/otel/attribute"
)

// BestDiscounts returns discounted listings active on date, highest
// percentage first. Listings without a base price are skipped. A limit of
// zero or less falls back to the configured cap.
func (s *Service) BestDiscounts(ctx context.Context, date time.Time, limit int) (offers []DiscountOffer, err error) {
	ctx, done := s.observe(ctx, "best_discounts", attribute.Int("limit", limit))
	defer func() { done(err) }()

	if limit <= 0 {
		limit = s.config.BestDiscountsLimit
	}
	date = pricing.Day(date)

	listings, err := s.source.ListDiscounted(ctx)
	if err != nil {
		return nil, err
	}

	byKey := make(map[listingKey]Listing, len(listings))
	quotes := make([]pricing.Quote, 0, len(listings))
	unpriced := 0
	for _, l := range listings {
		fact, ok, err := s.source.LoadBasePrice(ctx, l.Product.Key, l.StoreKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			unpriced++
			continue
		}
		discounts, err := s.source.LoadDiscounts(ctx, l.Product.Key, l.StoreKey)
		if err != nil {
			return nil, err
		}
		q, err := pricing.QuoteOn(fact, discounts, date)
		if err != nil {
			return nil, err
		}
		if !q.PercentOff.IsPositive() {
			continue
		}
		byKey[listingKey{product: l.Product.Key, store: l.StoreKey}] = l
		quotes = append(quotes, q)
	}
	s.recordUnpriced(ctx, unpriced)

	ranked := pricing.RankDiscounts(quotes)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	offers = make([]DiscountOffer, 0, len(ranked))
	for _, q := range ranked {
		offers = append(offers, DiscountOffer{
			Listing:         byKey[listingKey{product: q.ProductKey, store: q.StoreKey}],
			BasePrice:       q.BasePrice,
			PercentOff:      q.PercentOff,
			DiscountedPrice: q.EffectivePrice,
		})
	}
	return offers, nil
}

// NewDiscounts returns discount intervals that started within the configured
// lookback before today, newest first and then by percentage.
func (s *Service) NewDiscounts(ctx context.Context, today time.Time) (found []NewDiscount, err error) {
	ctx, done := s.observe(ctx, "new_discounts")
	defer func() { done(err) }()

	since := pricing.AddDays(pricing.Day(today), -s.config.NewDiscountLookbackDays)

	listings, err := s.source.ListDiscounted(ctx)
	if err != nil {
		return nil, err
	}

	found = make([]NewDiscount, 0)
	unpriced := 0
	for _, l := range listings {
		fact, ok, err := s.source.LoadBasePrice(ctx, l.Product.Key, l.StoreKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			unpriced++
			continue
		}
		discounts, err := s.source.LoadDiscounts(ctx, l.Product.Key, l.StoreKey)
		if err != nil {
			return nil, err
		}
		for _, d := range discounts {
			if d.FromDate.Before(since) || !d.PercentOff.IsPositive() {
				continue
			}
			found = append(found, NewDiscount{
				Listing:         l,
				FromDate:        d.FromDate,
				ToDate:          d.ToDate,
				PercentOff:      d.PercentOff,
				BasePrice:       fact.BasePrice,
				DiscountedPrice: pricing.DisplayPrice(pricing.EffectivePrice(fact.BasePrice, d.PercentOff)),
			})
		}
	}
	s.recordUnpriced(ctx, unpriced)

	sort.SliceStable(found, func(i, j int) bool {
		if !found[i].FromDate.Equal(found[j].FromDate) {
			return found[i].FromDate.After(found[j].FromDate)
		}
		return found[i].PercentOff.GreaterThan(found[j].PercentOff)
	})
	return found, nil
}

func (s *Service) recordUnpriced(ctx context.Context, n int) {
	if n == 0 {
		return
	}
	s.metrics.RecordUnpricedDiscounts(n)
	s.logger.Debug().
		Int("listings", n).
		Str("request_id", RequestIDFrom(ctx)).
		Msg("Skipped discounted listings without a base price")
}
