package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// FileType represents supported file types
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// SheetKind is the layout of a store sheet.
type SheetKind string

const (
	SheetPrices    SheetKind = "prices"
	SheetDiscounts SheetKind = "discounts"
)

// FileInfo is what a sheet's file name says about its contents.
type FileInfo struct {
	Name     string    `json:"name"`
	StoreKey string    `json:"storeKey"`
	Date     time.Time `json:"date"`
	Kind     SheetKind `json:"kind"`
	Type     FileType  `json:"type"`
}

// PriceRow is one product line of a price sheet.
type PriceRow struct {
	RowNumber       int             `json:"rowNumber"`
	ProductKey      string          `json:"productKey"`
	Name            string          `json:"name"`
	Category        string          `json:"category,omitempty"`
	Brand           string          `json:"brand,omitempty"`
	PackageQuantity decimal.Decimal `json:"packageQuantity"`
	PackageUnit     string          `json:"packageUnit,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency,omitempty"`
}

// DiscountRow is one campaign line of a discount sheet. Dates are inclusive.
type DiscountRow struct {
	RowNumber       int             `json:"rowNumber"`
	ProductKey      string          `json:"productKey"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand,omitempty"`
	PackageQuantity decimal.Decimal `json:"packageQuantity"`
	PackageUnit     string          `json:"packageUnit,omitempty"`
	Category        string          `json:"category,omitempty"`
	FromDate        time.Time       `json:"fromDate"`
	ToDate          time.Time       `json:"toDate"`
	PercentOff      decimal.Decimal `json:"percentOff"`
}

// ParseError represents a parsing error
type ParseError struct {
	RowNumber     *int    `json:"rowNumber,omitempty"`
	Field         *string `json:"field,omitempty"`
	Message       string  `json:"message"`
	OriginalValue *string `json:"originalValue,omitempty"`
}

// ParseResult represents result of parsing. Only the slice matching Kind is
// populated.
type ParseResult struct {
	Kind      SheetKind     `json:"kind"`
	Prices    []PriceRow    `json:"prices,omitempty"`
	Discounts []DiscountRow `json:"discounts,omitempty"`
	Errors    []ParseError  `json:"errors,omitempty"`
	TotalRows int           `json:"totalRows"`
	ValidRows int           `json:"validRows"`
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to the given int
func IntPtr(i int) *int {
	return &i
}
