package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// ManualTrigger godoc
// @Summary      Run updates on demand
// @Description  Runs the signal update, the indicator update, or both, and reports each step's outcome
// @Tags         triggers
// @Produce      json
// @Param        action  query  string  false  "Which update to run (signals, indicators, both)"  default(both)
// @Success      200  {object}  map[string]interface{}
// @Success      207  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /manual-trigger [post]
func (h *Handler) ManualTrigger(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.manual-trigger")
	defer span.End()

	action := c.DefaultQuery("action", "both")
	span.SetAttributes(attribute.String("action", action))

	result, err := h.trigger.Run(ctx, action)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if !result.AllSucceeded() {
		status = http.StatusMultiStatus
	}

	c.JSON(status, gin.H{
		"success":   result.AllSucceeded(),
		"message":   "Manual trigger completed for: " + result.Action,
		"results":   result.Results,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
