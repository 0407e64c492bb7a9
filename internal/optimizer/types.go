package optimizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/kosarica/price-comparator/internal/pricing"
	"github.com/shopspring/decimal"
)

// ProductInfo describes a product as a store lists it.
type ProductInfo struct {
	Key             string          // Store-assigned product code
	Name            string          // Display name, used for cross-store matching
	Brand           string          // Brand label, may be empty
	Category        string          // Category label, may be empty
	PackageQuantity decimal.Decimal // Package size, zero when unknown
	PackageUnit     string          // Unit of PackageQuantity (kg, l, buc...)
}

// Listing identifies a product at a specific store.
type Listing struct {
	Product   ProductInfo
	StoreKey  string // Lowercase store identifier (lidl, kaufland...)
	StoreName string // Display name
}

// StoreOffer is a listing together with its current base price.
type StoreOffer struct {
	Listing
	Fact pricing.PriceFact
}

// StoreBasket is the set of basket lines assigned to one store.
type StoreBasket struct {
	StoreKey  string
	StoreName string
	Items     []pricing.BasketLine
	Total     decimal.Decimal // Sum of item prices, 2 decimal places
}

// BasketResult is the outcome of a basket optimization.
type BasketResult struct {
	Date     time.Time
	Stores   []StoreBasket // In order of first assignment
	NotFound []string      // Products with no quote anywhere, input order
	Total    decimal.Decimal
}

// HistoryQuery selects the listings and window for a price history.
type HistoryQuery struct {
	ProductName string
	Store       string     // Optional, matches store key or name case-insensitively
	Brand       string     // Optional, case-insensitive
	Category    string     // Optional, case-insensitive
	From        *time.Time // Optional window start
	To          *time.Time // Optional window end
}

// HistoryRow is one priced interval for one store.
type HistoryRow struct {
	pricing.PricedInterval
	StoreName string
}

// HistoryResult is a per-store price timeline for one product name.
type HistoryResult struct {
	Product ProductInfo  // Details of the first matching listing
	Rows    []HistoryRow // Ordered by FromDate; ties keep store key order
}

// DiscountOffer is a discounted product as of a specific date.
type DiscountOffer struct {
	Listing
	BasePrice       decimal.Decimal
	PercentOff      decimal.Decimal
	DiscountedPrice decimal.Decimal // 2 decimal places
}

// NewDiscount is a discount interval that started recently.
type NewDiscount struct {
	Listing
	FromDate        time.Time
	ToDate          time.Time
	PercentOff      decimal.Decimal
	BasePrice       decimal.Decimal
	DiscountedPrice decimal.Decimal // 2 decimal places
}

// BestQuote names the store with the lowest effective price.
type BestQuote struct {
	StoreKey  string
	StoreName string
	Price     decimal.Decimal
}

// AlertEvaluation reports whether a target price is met on a date.
type AlertEvaluation struct {
	ProductName string
	Target      decimal.Decimal
	Date        time.Time
	Triggered   bool
	HasQuotes   bool
	Best        *BestQuote // nil when no store quotes the product
}

// Substitute is a per-unit comparison entry for one listing.
type Substitute struct {
	Listing
	BasePrice      decimal.Decimal
	UnitPrice      decimal.Decimal // Base price per package unit, 4 decimal places
	PercentOff     decimal.Decimal
	FinalPrice     decimal.Decimal // 2 decimal places
	FinalUnitPrice decimal.Decimal // 4 decimal places
	BestValue      bool
}

// CacheFreshness describes the age of the loaded snapshot.
type CacheFreshness struct {
	LoadedAt  int64 // Unix timestamp
	IsStale   bool
	Listings  int
	Offers    int
	Discounts int
}

// ErrProductNotFound is returned when no listing matches a product query.
var ErrProductNotFound = errors.New("product not found")

// ErrNotReady is returned when a cache has no snapshot loaded yet.
var ErrNotReady = errors.New("price facts not loaded")

// ErrInvalidRequest represents a validation error in a service request.
type ErrInvalidRequest struct {
	Field  string
	Reason string
}

func (e *ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}
