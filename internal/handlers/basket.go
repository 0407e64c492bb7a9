package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OptimizeBasket assigns each product to its cheapest store
// @Summary Optimize a shopping basket
// @Description Splits a list of product names across stores so each product is bought where its effective price is lowest on the given date. Products no store sells are listed in notFound.
// @Tags basket
// @Accept json
// @Produce json
// @Param request body BasketRequest true "Products and optional date (defaults to today)"
// @Success 200 {object} BasketResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /basket/optimize [post]
func OptimizeBasket(c *gin.Context) {
	var req BasketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !serviceReady(c) {
		return
	}

	result, err := service.OptimizeBasket(c.Request.Context(), req.Items, requestDay(req.Date))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := BasketResponse{
		Date:     formatDay(result.Date),
		Stores:   make([]StoreBasket, len(result.Stores)),
		NotFound: result.NotFound,
		Total:    money(result.Total),
	}
	for i, s := range result.Stores {
		lines := make([]BasketLine, len(s.Items))
		for j, l := range s.Items {
			lines[j] = BasketLine{
				ProductName: l.ProductName,
				Price:       money(l.Price),
				PercentOff:  l.PercentOff.String(),
			}
		}
		resp.Stores[i] = StoreBasket{
			StoreKey:  s.StoreKey,
			StoreName: s.StoreName,
			Items:     lines,
			Total:     money(s.Total),
		}
	}

	c.JSON(http.StatusOK, resp)
}
