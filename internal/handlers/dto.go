package handlers

// Money and percentage values are JSON strings with fixed decimal places
// (prices 2, unit prices 4) so clients never see binary floating point.

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Error string `json:"error" example:"product not found"`
}

// BasketRequest asks for the cheapest store per product on a date
type BasketRequest struct {
	Items []string `json:"items" binding:"required,min=1,dive,required" jsonschema:"required,minItems=1" example:"lapte zuzu,paine alba"`
	Date  string   `json:"date,omitempty" binding:"omitempty,isodate" jsonschema:"format=date" example:"2025-01-05"`
}

// BasketLine is one product assigned to a store
type BasketLine struct {
	ProductName string `json:"productName"`
	Price       string `json:"price" example:"7.92"`
	PercentOff  string `json:"percentOff" example:"20"`
}

// StoreBasket groups the products bought at one store
type StoreBasket struct {
	StoreKey  string       `json:"storeKey" example:"lidl"`
	StoreName string       `json:"storeName" example:"Lidl"`
	Items     []BasketLine `json:"items"`
	Total     string       `json:"total" example:"7.92"`
}

// BasketResponse is the optimized shopping list
type BasketResponse struct {
	Date     string        `json:"date" example:"2025-01-05"`
	Stores   []StoreBasket `json:"stores"`
	NotFound []string      `json:"notFound"`
	Total    string        `json:"total" example:"19.42"`
}

// HistoryQuery filters a product price history
type HistoryQuery struct {
	Store    string `form:"store"`
	Brand    string `form:"brand"`
	Category string `form:"category"`
	From     string `form:"from" binding:"omitempty,isodate"`
	To       string `form:"to" binding:"omitempty,isodate"`
}

// PriceInterval is a run of days with one price at one store
type PriceInterval struct {
	StoreKey       string `json:"storeKey"`
	StoreName      string `json:"storeName"`
	FromDate       string `json:"fromDate" example:"2025-01-01"`
	ToDate         string `json:"toDate" example:"2025-01-07"`
	BasePrice      string `json:"basePrice" example:"9.90"`
	PercentOff     string `json:"percentOff" example:"20"`
	EffectivePrice string `json:"effectivePrice" example:"7.92"`
}

// HistoryResponse is a product price timeline across stores
type HistoryResponse struct {
	ProductKey      string          `json:"productKey"`
	ProductName     string          `json:"productName"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	PackageQuantity string          `json:"packageQuantity" example:"1"`
	PackageUnit     string          `json:"packageUnit" example:"l"`
	Intervals       []PriceInterval `json:"intervals"`
}

// DateQuery selects the day an answer is about
type DateQuery struct {
	Date string `form:"date" binding:"omitempty,isodate"`
}

// BestDiscountsQuery selects the day and maximum number of results
type BestDiscountsQuery struct {
	Date  string `form:"date" binding:"omitempty,isodate"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=500" jsonschema:"minimum=1,maximum=500"`
}

// Product describes a product listing
type Product struct {
	ProductKey      string `json:"productKey"`
	Name            string `json:"name"`
	Brand           string `json:"brand"`
	Category        string `json:"category"`
	PackageQuantity string `json:"packageQuantity" example:"1"`
	PackageUnit     string `json:"packageUnit" example:"l"`
	StoreKey        string `json:"storeKey"`
	StoreName       string `json:"storeName"`
}

// DiscountOffer is a product discounted on the requested day
type DiscountOffer struct {
	Product
	BasePrice       string `json:"basePrice"`
	PercentOff      string `json:"percentOff"`
	DiscountedPrice string `json:"discountedPrice"`
}

// NewDiscount is a discount interval that started recently
type NewDiscount struct {
	Product
	FromDate        string `json:"fromDate"`
	ToDate          string `json:"toDate"`
	PercentOff      string `json:"percentOff"`
	BasePrice       string `json:"basePrice"`
	DiscountedPrice string `json:"discountedPrice"`
}

// Substitute compares one listing by price per package unit
type Substitute struct {
	Product
	BasePrice      string `json:"basePrice"`
	UnitPrice      string `json:"unitPrice" example:"9.9000"`
	PercentOff     string `json:"percentOff"`
	FinalPrice     string `json:"finalPrice"`
	FinalUnitPrice string `json:"finalUnitPrice" example:"7.9200"`
	BestValue      bool   `json:"bestValue"`
}

// CreateAlertRequest registers a target price for a product
type CreateAlertRequest struct {
	ProductName string `json:"productName" binding:"required" jsonschema:"required" example:"lapte zuzu"`
	TargetPrice string `json:"targetPrice" binding:"required,money" jsonschema:"required,pattern=^[0-9]+(\\.[0-9]+)?$" example:"8.50"`
}

// BestQuote names the store with the lowest price
type BestQuote struct {
	StoreKey  string `json:"storeKey"`
	StoreName string `json:"storeName"`
	Price     string `json:"price"`
}

// AlertResponse is a stored alert with its current evaluation
type AlertResponse struct {
	ID          int64      `json:"id"`
	ProductName string     `json:"productName"`
	TargetPrice string     `json:"targetPrice"`
	Status      string     `json:"status" example:"ACTIVE"`
	CreatedAt   string     `json:"createdAt"`
	ProcessedAt *string    `json:"processedAt,omitempty"`
	Triggered   *bool      `json:"triggered,omitempty"`
	Best        *BestQuote `json:"best,omitempty"`
}

// CacheStatus reports the state of the in-memory price facts
type CacheStatus struct {
	Status         string `json:"status" example:"ok"`
	LoadedAt       int64  `json:"loadedAt"`
	IsStale        bool   `json:"isStale"`
	Listings       int    `json:"listings"`
	Offers         int    `json:"offers"`
	Discounts      int    `json:"discounts"`
	CircuitBreaker string `json:"circuitBreaker" example:"closed"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
