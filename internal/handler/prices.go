package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetAllPrices godoc
// @Summary      Get current prices for all supported pairs
// @Description  Returns the latest persisted price summary for every tracked pair
// @Tags         prices
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/prices [get]
func (h *Handler) GetAllPrices(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-all-prices")
	defer span.End()

	prices, err := h.priceReader.ListPrices(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"prices": prices, "count": len(prices)})
}

// GetPrice godoc
// @Summary      Get the current price for one pair
// @Description  Returns the latest persisted price summary for the given pair
// @Tags         prices
// @Produce      json
// @Param        pair  query  string  true  "Pair symbol (e.g., XAU/USD)"
// @Success      200  {object}  domain.PriceSummary
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/price [get]
func (h *Handler) GetPrice(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-price")
	defer span.End()

	pair := strings.ToUpper(strings.TrimSpace(c.Query("pair")))
	if pair == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing pair query parameter"})
		return
	}
	span.SetAttributes(attribute.String("pair", pair))

	// Try Redis cache
	if h.priceCache != nil {
		cached, err := h.priceCache.GetPrice(ctx, pair)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	// Cache miss: read the stored summary and backfill
	price, err := h.priceReader.GetPrice(ctx, pair)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if price == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no price stored for pair: " + pair})
		return
	}
	if h.priceCache != nil {
		_ = h.priceCache.SetPrice(ctx, *price)
	}

	c.JSON(http.StatusOK, price)
}
