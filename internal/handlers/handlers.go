package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kosarica/price-comparator/internal/database"
	"github.com/kosarica/price-comparator/internal/optimizer"
	"github.com/kosarica/price-comparator/internal/pricing"
)

// CacheController is the part of the fact cache exposed over HTTP.
type CacheController interface {
	IsHealthy(ctx context.Context) bool
	Refresh(ctx context.Context) error
	Freshness() optimizer.CacheFreshness
	CircuitBreakerState() optimizer.CircuitBreakerState
}

// AlertStore persists price alerts.
type AlertStore interface {
	CreateAlert(ctx context.Context, productName string, target decimal.Decimal) (database.Alert, error)
	GetAlert(ctx context.Context, id int64) (database.Alert, error)
	ListAlerts(ctx context.Context, limit int) ([]database.Alert, error)
}

// Global instances (initialized by the application)
var (
	service    *optimizer.Service
	factCache  CacheController
	alertStore AlertStore
	importRuns ImportRunLister
	now        = time.Now

	validatorsOnce sync.Once
)

// Init wires the handlers to their collaborators.
// This should be called during application startup.
func Init(svc *optimizer.Service, cache CacheController, alerts AlertStore, runs ImportRunLister) {
	service = svc
	factCache = cache
	alertStore = alerts
	importRuns = runs
	RegisterValidators()
}

// SetClock replaces the clock used to pick "today" when a request has no date.
func SetClock(clock func() time.Time) {
	now = clock
}

// RegisterValidators adds the isodate and money binding tags to gin's validator.
func RegisterValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := pricing.ParseDay(fl.Field().String())
			return err == nil
		})
		v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && !d.IsNegative()
		})
	})
}

// RegisterRoutes mounts the price comparison API on rg.
func RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/basket/optimize", OptimizeBasket)

	products := rg.Group("/products")
	{
		products.GET("/:name/history", PriceHistory)
		products.GET("/:name/substitutes", Substitutes)
	}

	discounts := rg.Group("/discounts")
	{
		discounts.GET("/best", BestDiscounts)
		discounts.GET("/new", NewDiscounts)
	}

	alerts := rg.Group("/alerts")
	{
		alerts.POST("", CreateAlert)
		alerts.GET("", ListAlerts)
		alerts.GET("/:id", GetAlert)
	}

	rg.GET("/imports/runs", ListRuns)

	cache := rg.Group("/cache")
	{
		cache.GET("/health", CacheHealth)
		cache.POST("/refresh", CacheRefresh)
	}
}

// requestDay returns the requested date, or today when raw is empty.
// raw has already passed the isodate validator.
func requestDay(raw string) time.Time {
	if raw == "" {
		return pricing.Day(now())
	}
	d, _ := pricing.ParseDay(raw)
	return d
}

func serviceReady(c *gin.Context) bool {
	if service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service not initialized"})
		return false
	}
	return true
}

// writeError maps service errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var invalid *optimizer.ErrInvalidRequest
	switch {
	case errors.As(err, &invalid), errors.Is(err, pricing.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, optimizer.ErrProductNotFound), errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, optimizer.ErrNotReady), errors.Is(err, database.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		log.Error().
			Err(err).
			Str("path", c.FullPath()).
			Str("request_id", optimizer.RequestIDFrom(c.Request.Context())).
			Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func formatDay(t time.Time) string {
	return t.Format(time.DateOnly)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(pricing.DisplayPlaces)
}

func unitMoney(d decimal.Decimal) string {
	return d.StringFixed(pricing.UnitPricePlaces)
}

func toProduct(l optimizer.Listing) Product {
	return Product{
		ProductKey:      l.Product.Key,
		Name:            l.Product.Name,
		Brand:           l.Product.Brand,
		Category:        l.Product.Category,
		PackageQuantity: l.Product.PackageQuantity.String(),
		PackageUnit:     l.Product.PackageUnit,
		StoreKey:        l.StoreKey,
		StoreName:       l.StoreName,
	}
}
