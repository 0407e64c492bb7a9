package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kosarica/price-comparator/internal/database"
)

const defaultAlertListLimit = 100

// CreateAlert registers a target price for a product
// @Summary Create a price alert
// @Description Stores an alert that fires once any store sells the product at or below the target price.
// @Tags alerts
// @Accept json
// @Produce json
// @Param request body CreateAlertRequest true "Product name and target price"
// @Success 201 {object} AlertResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /alerts [post]
func CreateAlert(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if alertStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "alert store not configured"})
		return
	}

	// The money validator already accepted the value.
	target, _ := decimal.NewFromString(req.TargetPrice)
	alert, err := alertStore.CreateAlert(c.Request.Context(), req.ProductName, target)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAlertResponse(alert))
}

// GetAlert returns an alert and evaluates it against today's prices
// @Summary Get a price alert
// @Description Returns the stored alert. Active alerts also carry today's evaluation: whether the target is met and the cheapest store.
// @Tags alerts
// @Produce json
// @Param id path int true "Alert ID"
// @Success 200 {object} AlertResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /alerts/{id} [get]
func GetAlert(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}
	if alertStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "alert store not configured"})
		return
	}

	alert, err := alertStore.GetAlert(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := toAlertResponse(alert)
	if alert.Status == database.AlertActive && service != nil {
		eval, err := service.EvaluateAlert(c.Request.Context(), alert.ProductName, alert.TargetPrice, requestDay(""))
		if err != nil {
			writeError(c, err)
			return
		}
		resp.Triggered = &eval.Triggered
		if eval.Best != nil {
			resp.Best = &BestQuote{
				StoreKey:  eval.Best.StoreKey,
				StoreName: eval.Best.StoreName,
				Price:     money(eval.Best.Price),
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ListAlerts returns the most recent alerts
// @Summary List price alerts
// @Tags alerts
// @Produce json
// @Param limit query int false "Maximum results (default 100)"
// @Success 200 {array} AlertResponse
// @Failure 400 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /alerts [get]
func ListAlerts(c *gin.Context) {
	limit := defaultAlertListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 1000"})
			return
		}
		limit = n
	}
	if alertStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "alert store not configured"})
		return
	}

	alerts, err := alertStore.ListAlerts(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		resp[i] = toAlertResponse(a)
	}
	c.JSON(http.StatusOK, resp)
}

func toAlertResponse(a database.Alert) AlertResponse {
	resp := AlertResponse{
		ID:          a.ID,
		ProductName: a.ProductName,
		TargetPrice: money(a.TargetPrice),
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if a.ProcessedAt != nil {
		processed := a.ProcessedAt.UTC().Format(time.RFC3339)
		resp.ProcessedAt = &processed
	}
	if a.Store != nil && a.MatchPrice != nil {
		resp.Best = &BestQuote{StoreKey: *a.Store, Price: *a.MatchPrice}
	}
	return resp
}
