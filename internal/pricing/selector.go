package pricing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ActivePercent returns the discount applied on date according to normalized
// spans, or zero when no span covers it.
func ActivePercent(normalized []NormalizedInterval, date time.Time) decimal.Decimal {
	d := Day(date)
	i := sort.Search(len(normalized), func(i int) bool {
		return !Day(normalized[i].ToDate).Before(d)
	})
	if i < len(normalized) && !Day(normalized[i].FromDate).After(d) {
		return normalized[i].PercentOff
	}
	return decimal.Zero
}

// QuoteOn prices a single store's product on date. Discounts must belong to
// the same product and store as the fact.
func QuoteOn(fact PriceFact, discounts []DiscountInterval, date time.Time) (Quote, error) {
	for i, d := range discounts {
		if d.ProductKey != fact.ProductKey || d.StoreKey != fact.StoreKey {
			return Quote{}, &ValidationError{Field: "discounts", Index: i, Reason: "does not match the price fact"}
		}
	}

	normalized, err := Normalize(discounts)
	if err != nil {
		return Quote{}, err
	}

	pct := ActivePercent(normalized, date)
	return Quote{
		ProductKey:     fact.ProductKey,
		StoreKey:       fact.StoreKey,
		BasePrice:      fact.BasePrice,
		PercentOff:     pct,
		EffectivePrice: DisplayPrice(EffectivePrice(fact.BasePrice, pct)),
	}, nil
}

// SelectBest returns the quote with the lowest effective price. Ties keep the
// first quote encountered, so callers should pass quotes in a deterministic
// order. The boolean is false when quotes is empty.
func SelectBest(quotes []Quote) (Quote, bool) {
	if len(quotes) == 0 {
		return Quote{}, false
	}
	best := quotes[0]
	for _, q := range quotes[1:] {
		if q.EffectivePrice.LessThan(best.EffectivePrice) {
			best = q
		}
	}
	return best, true
}

// RankDiscounts returns a copy of quotes ordered by PercentOff, highest
// first. Equal percentages keep their input order.
func RankDiscounts(quotes []Quote) []Quote {
	ranked := make([]Quote, len(quotes))
	copy(ranked, quotes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PercentOff.GreaterThan(ranked[j].PercentOff)
	})
	return ranked
}
