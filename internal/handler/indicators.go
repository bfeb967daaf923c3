package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// UpdateIndicators godoc
// @Summary      Refresh technical indicators
// @Description  Fetches RSI, MACD, and ATR for all supported pairs and updates the stored readings
// @Tags         triggers
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /update-indicators [post]
func (h *Handler) UpdateIndicators(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.update-indicators")
	defer span.End()

	result, err := h.indicators.RunIndicatorUpdate(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to update technical indicators",
			"details":   err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"message":            "Technical indicators updated successfully",
		"indicators_updated": result.IndicatorsUpdated,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
		"indicators":         result.Indicators,
	})
}

// GetIndicators godoc
// @Summary      List technical indicator readings
// @Description  Returns the latest stored RSI, MACD, and ATR readings per pair
// @Tags         indicators
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/indicators [get]
func (h *Handler) GetIndicators(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-indicators")
	defer span.End()

	readings, err := h.readingList.ListReadings(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"indicators": readings, "count": len(readings)})
}
