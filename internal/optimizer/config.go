package optimizer

import "time"

// Config holds the configuration for the price comparison service and its fact cache.
// It is loaded from the optimizer section of the application config.
type Config struct {
	// Cache settings
	CacheLoadTimeout   time.Duration `mapstructure:"cache_load_timeout" default:"30s"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl" default:"15m"`
	CacheRefreshJitter time.Duration `mapstructure:"cache_refresh_jitter" default:"1m"`

	// Concurrent per-product fact lookups during basket resolution
	FetchConcurrency int `mapstructure:"fetch_concurrency" default:"8"`

	// Validation limits
	MaxBasketItems int `mapstructure:"max_basket_items" default:"100"`

	// Default history window reaches this many days before the earliest discount
	HistoryLookbackDays int `mapstructure:"history_lookback_days" default:"30"`

	// Discounts starting on or after today minus this many days count as new
	NewDiscountLookbackDays int `mapstructure:"new_discount_lookback_days" default:"1"`

	// Cap applied when a best-discounts caller does not pass a limit
	BestDiscountsLimit int `mapstructure:"best_discounts_limit" default:"50"`
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		CacheLoadTimeout:        30 * time.Second,
		CacheTTL:                15 * time.Minute,
		CacheRefreshJitter:      1 * time.Minute,
		FetchConcurrency:        8,
		MaxBasketItems:          100,
		HistoryLookbackDays:     30,
		NewDiscountLookbackDays: 1,
		BestDiscountsLimit:      50,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.CacheLoadTimeout <= 0 {
		return ErrInvalidConfig{Field: "cache_load_timeout", Reason: "must be positive"}
	}
	if c.CacheTTL <= 0 {
		return ErrInvalidConfig{Field: "cache_ttl", Reason: "must be positive"}
	}
	if c.CacheRefreshJitter < 0 {
		return ErrInvalidConfig{Field: "cache_refresh_jitter", Reason: "must be non-negative"}
	}
	if c.FetchConcurrency < 1 {
		return ErrInvalidConfig{Field: "fetch_concurrency", Reason: "must be at least 1"}
	}
	if c.MaxBasketItems < 1 {
		return ErrInvalidConfig{Field: "max_basket_items", Reason: "must be at least 1"}
	}
	if c.HistoryLookbackDays < 0 {
		return ErrInvalidConfig{Field: "history_lookback_days", Reason: "must be non-negative"}
	}
	if c.NewDiscountLookbackDays < 0 {
		return ErrInvalidConfig{Field: "new_discount_lookback_days", Reason: "must be non-negative"}
	}
	if c.BestDiscountsLimit < 1 {
		return ErrInvalidConfig{Field: "best_discounts_limit", Reason: "must be at least 1"}
	}
	return nil
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}
