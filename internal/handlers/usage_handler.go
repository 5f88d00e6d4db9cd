package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/groomer-scheduler/internal/middleware"
)

type UsageHandler struct {
	usage UsageGuard
}

func NewUsageHandler(usage UsageGuard) *UsageHandler {
	return &UsageHandler{usage: usage}
}

// Get returns the month's usage report. Warnings are raised when rows are
// added, not when the report is read.
func (h *UsageHandler) Get(c *gin.Context) {
	report, err := h.usage.Report(c.Request.Context(), middleware.SalonID(c))
	if err != nil {
		fail(c, "check usage", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
