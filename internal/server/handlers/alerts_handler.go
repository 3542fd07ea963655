package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/labstack-dev/labledger/internal/service/alerts"
)

// AlertsHandler exposes the read-only alert projections.
type AlertsHandler struct {
	scanner      *alerts.Scanner
	expiryWindow int
	logger       *zap.Logger
}

// NewAlertsHandler constructs the alerts HTTP adapter. defaultExpiryWindow
// is used when the caller does not pass within_days.
func NewAlertsHandler(scanner *alerts.Scanner, defaultExpiryWindow int, logger *zap.Logger) *AlertsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertsHandler{scanner: scanner, expiryWindow: defaultExpiryWindow, logger: logger}
}

// LowStock lists items at or under their threshold, optionally lab-scoped.
func (h *AlertsHandler) LowStock(c *gin.Context) {
	result, err := h.scanner.LowStock(c.Request.Context(), c.Query("lab_id"))
	if err != nil {
		h.logger.Error("low stock scan failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "alert scan failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": result})
}

// Expiring lists items expiring within the window. Already-expired items are
// included unless upcoming_only=true.
func (h *AlertsHandler) Expiring(c *gin.Context) {
	withinDays := h.expiryWindow
	if raw := c.Query("within_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "within_days must be a non-negative integer"})
			return
		}
		withinDays = parsed
	}
	upcomingOnly := c.Query("upcoming_only") == "true"

	result, err := h.scanner.Expiring(c.Request.Context(), c.Query("lab_id"), withinDays, upcomingOnly)
	if err != nil {
		h.logger.Error("expiry scan failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "alert scan failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": result})
}
