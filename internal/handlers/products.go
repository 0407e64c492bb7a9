package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/price-comparator/internal/optimizer"
)

// PriceHistory returns the day-by-day price timeline of a product
// @Summary Product price history
// @Description Returns contiguous price intervals across stores ordered by start date, with the product details of the first matching listing. Without from/to each store's window spans 30 days before its earliest discount through its latest discount end, or the last 30 days when it has no discounts.
// @Tags products
// @Produce json
// @Param name path string true "Product name (case-insensitive)"
// @Param store query string false "Store key or name"
// @Param brand query string false "Brand"
// @Param category query string false "Category"
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Success 200 {object} HistoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /products/{name}/history [get]
func PriceHistory(c *gin.Context) {
	var req HistoryQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !serviceReady(c) {
		return
	}

	q := optimizer.HistoryQuery{
		ProductName: c.Param("name"),
		Store:       req.Store,
		Brand:       req.Brand,
		Category:    req.Category,
	}
	if req.From != "" {
		from := requestDay(req.From)
		q.From = &from
	}
	if req.To != "" {
		to := requestDay(req.To)
		q.To = &to
	}

	result, err := service.PriceHistory(c.Request.Context(), q, requestDay(""))
	if err != nil {
		writeError(c, err)
		return
	}

	p := result.Product
	resp := HistoryResponse{
		ProductKey:      p.Key,
		ProductName:     p.Name,
		Brand:           p.Brand,
		Category:        p.Category,
		PackageQuantity: p.PackageQuantity.String(),
		PackageUnit:     p.PackageUnit,
		Intervals:       make([]PriceInterval, len(result.Rows)),
	}
	for i, r := range result.Rows {
		resp.Intervals[i] = PriceInterval{
			StoreKey:       r.StoreKey,
			StoreName:      r.StoreName,
			FromDate:       formatDay(r.FromDate),
			ToDate:         formatDay(r.ToDate),
			BasePrice:      money(r.BasePrice),
			PercentOff:     r.PercentOff.String(),
			EffectivePrice: money(r.EffectivePrice),
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Substitutes compares listings of a product by price per unit
// @Summary Product substitutes by unit price
// @Description Lists every store's listing of the product ordered by discounted price per package unit. The cheapest listings are flagged bestValue.
// @Tags products
// @Produce json
// @Param name path string true "Product name (case-insensitive)"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} Substitute
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /products/{name}/substitutes [get]
func Substitutes(c *gin.Context) {
	var req DateQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !serviceReady(c) {
		return
	}

	subs, err := service.Substitutes(c.Request.Context(), c.Param("name"), requestDay(req.Date))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]Substitute, len(subs))
	for i, s := range subs {
		resp[i] = Substitute{
			Product:        toProduct(s.Listing),
			BasePrice:      money(s.BasePrice),
			UnitPrice:      unitMoney(s.UnitPrice),
			PercentOff:     s.PercentOff.String(),
			FinalPrice:     money(s.FinalPrice),
			FinalUnitPrice: unitMoney(s.FinalUnitPrice),
			BestValue:      s.BestValue,
		}
	}

	c.JSON(http.StatusOK, resp)
}
