package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/labstack-dev/labledger/internal/domain/models"
	"github.com/labstack-dev/labledger/internal/service/ledger"
)

// actorHeader carries the audit identity. It is stamped by the upstream auth
// layer; this service trusts it as already authenticated input.
const actorHeader = "X-Actor-ID"

// StockHandler adapts ledger operations to HTTP.
type StockHandler struct {
	svc    *ledger.Service
	logger *zap.Logger
}

// NewStockHandler constructs the HTTP handler adapter.
func NewStockHandler(svc *ledger.Service, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{svc: svc, logger: logger}
}

// AddStock receives stock into an item.
func (h *StockHandler) AddStock(c *gin.Context) {
	var req models.AddStockRequest
	if !h.bind(c, &req) {
		return
	}
	req.ItemID = c.Param("id")
	req.ActorID = c.GetHeader(actorHeader)

	result, err := h.svc.AddStock(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RemoveStock withdraws stock from an item.
func (h *StockHandler) RemoveStock(c *gin.Context) {
	var req models.RemoveStockRequest
	if !h.bind(c, &req) {
		return
	}
	req.ItemID = c.Param("id")
	req.ActorID = c.GetHeader(actorHeader)

	result, err := h.svc.RemoveStock(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// MoveStock transfers stock between labs.
func (h *StockHandler) MoveStock(c *gin.Context) {
	var req models.MoveStockRequest
	if !h.bind(c, &req) {
		return
	}
	req.ItemID = c.Param("id")
	req.ActorID = c.GetHeader(actorHeader)

	result, err := h.svc.MoveStock(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AdjustStock sets an item's quantity after a physical count.
func (h *StockHandler) AdjustStock(c *gin.Context) {
	var req models.AdjustStockRequest
	if !h.bind(c, &req) {
		return
	}
	req.ItemID = c.Param("id")
	req.ActorID = c.GetHeader(actorHeader)

	result, err := h.svc.AdjustStock(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// History pages through an item's audit trail, newest first.
func (h *StockHandler) History(c *gin.Context) {
	var query models.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Warn("invalid history query", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	entries, err := h.svc.GetHistory(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *StockHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if c.GetHeader(actorHeader) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + actorHeader + " header"})
		return false
	}
	return true
}

func (h *StockHandler) fail(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("stock operation failed", zap.String("path", c.FullPath()), zap.Error(err))
	}

	body := gin.H{"error": err.Error()}
	var le *ledger.Error
	if errors.As(err, &le) {
		body["kind"] = string(le.Kind)
		if le.Field != "" {
			body["field"] = le.Field
		}
	}
	c.JSON(status, body)
}

func statusForError(err error) int {
	switch ledger.KindOf(err) {
	case ledger.KindItemNotFound, ledger.KindLabNotFound:
		return http.StatusNotFound
	case ledger.KindInvalidQuantity:
		return http.StatusBadRequest
	case ledger.KindInsufficientStock, ledger.KindStaleLocation, ledger.KindConcurrentModification:
		return http.StatusConflict
	case ledger.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
