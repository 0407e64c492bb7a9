package pricing

import "github.com/shopspring/decimal"

const (
	// DisplayPlaces is the precision of prices shown to shoppers.
	DisplayPlaces = 2
	// UnitPricePlaces is the precision of per-unit prices.
	UnitPricePlaces = 4
)

var (
	hundred    = decimal.NewFromInt(100)
	maxPercent = hundred
)

// EffectivePrice applies percentOff to base without rounding.
func EffectivePrice(base, percentOff decimal.Decimal) decimal.Decimal {
	if percentOff.IsZero() {
		return base
	}
	return base.Mul(hundred.Sub(percentOff)).Div(hundred)
}

// DisplayPrice rounds half-up to two decimal places.
func DisplayPrice(p decimal.Decimal) decimal.Decimal {
	return p.Round(DisplayPlaces)
}

// UnitPrice divides price by the package quantity, rounded half-up to four
// decimal places. A zero or negative quantity yields the raw price.
func UnitPrice(price, packageQuantity decimal.Decimal) decimal.Decimal {
	return unitPrice(price, packageQuantity, UnitPricePlaces)
}

// UnitPriceAt is UnitPrice with an explicit precision.
func UnitPriceAt(price, packageQuantity decimal.Decimal, places int32) decimal.Decimal {
	return unitPrice(price, packageQuantity, places)
}

func unitPrice(price, qty decimal.Decimal, places int32) decimal.Decimal {
	if !qty.IsPositive() {
		return price
	}
	return price.DivRound(qty, places)
}

func validPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && !p.GreaterThan(maxPercent)
}
