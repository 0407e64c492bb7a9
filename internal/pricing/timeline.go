package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// BuildTimeline expands normalized discount spans into a gapless sequence of
// priced intervals covering the window. Days without a discount are emitted
// at 0%. Spans reaching outside the window are clipped to it.
//
// The window is chosen by the caller; BuildTimeline applies no default.
func BuildTimeline(basePrice decimal.Decimal, storeKey string, normalized []NormalizedInterval, w Window) ([]PricedInterval, error) {
	start, end := Day(w.Start), Day(w.End)
	if start.After(end) {
		return nil, &ValidationError{Field: "window", Index: -1, Reason: "start is after end"}
	}
	if basePrice.IsNegative() {
		return nil, &ValidationError{Field: "basePrice", Index: -1, Reason: "must not be negative"}
	}

	out := make([]PricedInterval, 0, 2*len(normalized)+1)
	row := func(from, to time.Time, pct decimal.Decimal) PricedInterval {
		return PricedInterval{
			FromDate:       from,
			ToDate:         to,
			BasePrice:      basePrice,
			PercentOff:     pct,
			EffectivePrice: DisplayPrice(EffectivePrice(basePrice, pct)),
			StoreKey:       storeKey,
		}
	}

	cursor := start
	for _, n := range normalized {
		from, to := Day(n.FromDate), Day(n.ToDate)
		if from.After(end) {
			break
		}
		if to.Before(cursor) {
			continue
		}
		if from.Before(cursor) {
			from = cursor
		}
		if to.After(end) {
			to = end
		}

		if from.After(cursor) {
			out = append(out, row(cursor, AddDays(from, -1), decimal.Zero))
		}
		out = append(out, row(from, to, n.PercentOff))
		cursor = AddDays(to, 1)
	}

	if !cursor.After(end) {
		out = append(out, row(cursor, end, decimal.Zero))
	}

	return out, nil
}
