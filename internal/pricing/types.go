// Package pricing resolves effective prices from base prices and discount
// campaigns. Every function in this package is pure: callers load the facts,
// the package computes intervals, quotes and basket allocations from them.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceFact is the known shelf price of a product in a store as of a date.
// A fact is never mutated; a newer AsOf supersedes it.
type PriceFact struct {
	ProductKey string
	StoreKey   string
	BasePrice  decimal.Decimal
	AsOf       time.Time
}

// DiscountInterval is a raw discount campaign for one product in one store.
// FromDate and ToDate are inclusive. Intervals for the same product and store
// may overlap.
type DiscountInterval struct {
	ProductKey string
	StoreKey   string
	FromDate   time.Time
	ToDate     time.Time
	PercentOff decimal.Decimal
}

// NormalizedInterval is a maximal span with a single applied discount.
// Normalized intervals are disjoint, ordered by FromDate, and two contiguous
// neighbours never share the same PercentOff.
type NormalizedInterval struct {
	FromDate   time.Time
	ToDate     time.Time
	PercentOff decimal.Decimal
}

// PricedInterval is one row of a price timeline.
type PricedInterval struct {
	FromDate       time.Time
	ToDate         time.Time
	BasePrice      decimal.Decimal
	PercentOff     decimal.Decimal
	EffectivePrice decimal.Decimal // rounded for display
	StoreKey       string
}

// Quote is a store's effective price for a product on a single date.
type Quote struct {
	ProductKey     string
	StoreKey       string
	BasePrice      decimal.Decimal
	PercentOff     decimal.Decimal
	EffectivePrice decimal.Decimal
}

// Window is an inclusive reporting range of calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days covered by the window.
func (w Window) Days() int {
	return DaysBetween(w.Start, w.End) + 1
}

// BasketLine is a single product resolved to its cheapest store.
type BasketLine struct {
	ProductName string
	Price       decimal.Decimal
	PercentOff  decimal.Decimal
}

// BasketResolution partitions a shopping list by winning store.
type BasketResolution struct {
	Stores   []string                // store keys in order of first win
	ByStore  map[string][]BasketLine // store key -> lines
	NotFound []string                // requested names without any quote
}
