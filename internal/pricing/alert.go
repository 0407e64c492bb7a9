package pricing

import "github.com/shopspring/decimal"

// IsSatisfied reports whether any quote is at or below target.
func IsSatisfied(target decimal.Decimal, quotes []Quote) bool {
	best, ok := SelectBest(quotes)
	if !ok {
		return false
	}
	return best.EffectivePrice.LessThanOrEqual(target)
}
