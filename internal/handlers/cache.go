package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func cacheStatus(c *gin.Context) CacheStatus {
	f := factCache.Freshness()
	status := CacheStatus{
		Status:         "ok",
		LoadedAt:       f.LoadedAt,
		IsStale:        f.IsStale,
		Listings:       f.Listings,
		Offers:         f.Offers,
		Discounts:      f.Discounts,
		CircuitBreaker: factCache.CircuitBreakerState().String(),
	}
	switch {
	case !factCache.IsHealthy(c.Request.Context()):
		status.Status = "unavailable"
	case f.IsStale:
		status.Status = "stale"
	}
	return status
}

// CacheHealth reports the state of the in-memory price facts
// @Summary Price fact cache health
// @Description Returns snapshot size, age and circuit breaker state. Responds 503 while no snapshot is loaded.
// @Tags cache
// @Produce json
// @Success 200 {object} CacheStatus
// @Failure 503 {object} CacheStatus
// @Security ApiKeyAuth
// @Router /cache/health [get]
func CacheHealth(c *gin.Context) {
	if factCache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not initialized"})
		return
	}

	status := cacheStatus(c)
	if status.Status == "unavailable" {
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	c.JSON(http.StatusOK, status)
}

// CacheRefresh reloads price facts from the database
// @Summary Refresh the price fact cache
// @Description Loads a fresh snapshot. Concurrent refreshes share one load.
// @Tags cache
// @Produce json
// @Success 200 {object} CacheStatus
// @Failure 503 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /cache/refresh [post]
func CacheRefresh(c *gin.Context) {
	if factCache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not initialized"})
		return
	}

	if err := factCache.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cacheStatus(c))
}
