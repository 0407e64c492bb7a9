package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/price-comparator/internal/database"
)

// HealthCheck handles the health check endpoint
// @Summary Health check
// @Description Reports database connectivity and whether price facts are loaded.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:   "ok",
		Database: "not configured",
		Cache:    "not configured",
	}
	healthy := true

	if database.Pool() != nil {
		if err := database.Status(c.Request.Context()); err != nil {
			response.Database = "disconnected"
			healthy = false
		} else {
			response.Database = "connected"
		}
	}

	if factCache != nil {
		if factCache.IsHealthy(c.Request.Context()) {
			response.Cache = "loaded"
		} else {
			response.Cache = "empty"
			healthy = false
		}
	}

	if !healthy {
		response.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}
