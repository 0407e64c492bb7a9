package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// Store is a retail chain whose sheets are imported (lidl, kaufland...).
type Store struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`  // Lowercase identifier taken from sheet file names
	Name      string    `json:"name"` // Display name
	CreatedAt time.Time `json:"created_at"`
}

// ProductRecord is a product row as it appears in a price or discount sheet.
type ProductRecord struct {
	Key             string          `json:"product_key"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	PackageQuantity decimal.Decimal `json:"package_quantity"`
	PackageUnit     string          `json:"package_unit"`
}

// PriceRecord is one product's base price on a sheet date.
type PriceRecord struct {
	Product  ProductRecord   `json:"product"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// DiscountRecord is one discount interval from a discount sheet.
type DiscountRecord struct {
	Product    ProductRecord   `json:"product"`
	FromDate   time.Time       `json:"from_date"`
	ToDate     time.Time       `json:"to_date"`
	PercentOff decimal.Decimal `json:"percent_off"`
}

// AlertStatus is the lifecycle state of a price alert.
type AlertStatus string

const (
	AlertActive    AlertStatus = "ACTIVE"
	AlertProcessed AlertStatus = "PROCESSED"
)

// Alert is a user request to be told when a product reaches a target price.
type Alert struct {
	ID          int64           `json:"id"`
	ProductName string          `json:"product_name"`
	TargetPrice decimal.Decimal `json:"target_price"`
	Status      AlertStatus     `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at"`
	Store       *string         `json:"store"`       // Store that satisfied the alert
	MatchPrice  *string         `json:"match_price"` // Price that satisfied the alert
}

// ImportKind is the type of sheet an import run loaded.
type ImportKind string

const (
	ImportPrices    ImportKind = "prices"
	ImportDiscounts ImportKind = "discounts"
)

// ImportRun records a sheet that has been loaded, keyed by content signature.
type ImportRun struct {
	ID         string     `json:"id"` // UUID
	FileName   string     `json:"file_name"`
	StoreKey   string     `json:"store_key"`
	Kind       ImportKind `json:"kind"`
	SheetDate  time.Time  `json:"sheet_date"`
	Signature  string     `json:"signature"` // SHA-256 of the normalized rows
	RowCount   int        `json:"row_count"`
	ImportedAt time.Time  `json:"imported_at"`
}
