package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BestDiscounts lists the highest discounts active on a date
// @Summary Best current discounts
// @Description Returns discounted listings active on the date, highest percentage first. Listings without a base price are omitted.
// @Tags discounts
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Param limit query int false "Maximum results" minimum(1) maximum(500)
// @Success 200 {array} DiscountOffer
// @Failure 400 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /discounts/best [get]
func BestDiscounts(c *gin.Context) {
	var req BestDiscountsQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !serviceReady(c) {
		return
	}

	offers, err := service.BestDiscounts(c.Request.Context(), requestDay(req.Date), req.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]DiscountOffer, len(offers))
	for i, o := range offers {
		resp[i] = DiscountOffer{
			Product:         toProduct(o.Listing),
			BasePrice:       money(o.BasePrice),
			PercentOff:      o.PercentOff.String(),
			DiscountedPrice: money(o.DiscountedPrice),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// NewDiscounts lists discounts that started recently
// @Summary New discounts
// @Description Returns discount intervals that started on or after the day before the given date, newest first.
// @Tags discounts
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} NewDiscount
// @Failure 400 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /discounts/new [get]
func NewDiscounts(c *gin.Context) {
	var req DateQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !serviceReady(c) {
		return
	}

	found, err := service.NewDiscounts(c.Request.Context(), requestDay(req.Date))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]NewDiscount, len(found))
	for i, d := range found {
		resp[i] = NewDiscount{
			Product:         toProduct(d.Listing),
			FromDate:        formatDay(d.FromDate),
			ToDate:          formatDay(d.ToDate),
			PercentOff:      d.PercentOff.String(),
			BasePrice:       money(d.BasePrice),
			DiscountedPrice: money(d.DiscountedPrice),
		}
	}
	c.JSON(http.StatusOK, resp)
}
