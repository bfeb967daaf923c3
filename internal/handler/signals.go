package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// UpdateSignals godoc
// @Summary      Refresh prices and evaluate open signals
// @Description  Fetches live quotes for all supported pairs, persists them, and runs every pending or active signal through its lifecycle checks
// @Tags         triggers
// @Produce      json
// @Param        key  query  string  true  "Trigger secret key"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]interface{}
// @Router       /update-signals [post]
func (h *Handler) UpdateSignals(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.update-signals")
	defer span.End()

	result, err := h.signals.RunSignalUpdate(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to update signals",
			"details":   err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Signals updated successfully",
		"prices_updated": result.PricesUpdated,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"price_data":     result.PriceData,
	})
}

// GetSignals godoc
// @Summary      List trading signals
// @Description  Returns stored signals, optionally filtered by lifecycle status
// @Tags         signals
// @Produce      json
// @Param        status  query  string  false  "Filter by status (pending, active, closed)"
// @Param        limit   query  int     false  "Maximum rows returned"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/signals [get]
func (h *Handler) GetSignals(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-signals")
	defer span.End()

	status := c.Query("status")
	limit := 50
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	signals, err := h.signalReader.List(ctx, status, limit)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"signals": signals, "count": len(signals)})
}
