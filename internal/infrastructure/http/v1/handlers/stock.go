package handlers

import (
	"github.com/gin-gonic/gin"

	"stockward/internal/core/security"
	"stockward/internal/domain/auditlog"
	"stockward/internal/domain/ledger"
	"stockward/internal/infrastructure/http/v1/dto"
)

// StockHandler exposes stock ledger read endpoints.
type StockHandler struct {
	*BaseHandler
	ledger *ledger.Service
	audit  *auditlog.Service
	policy *security.Policy
}

// NewStockHandler creates a stock handler.
func NewStockHandler(base *BaseHandler, ledgerSvc *ledger.Service, audit *auditlog.Service, policy *security.Policy) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		ledger:      ledgerSvc,
		audit:       audit,
		policy:      policy,
	}
}

func (h *StockHandler) requireView(c *gin.Context) bool {
	if err := h.policy.Require(c.Request.Context(), security.PermViewStock); err != nil {
		h.Error(c, err)
		return false
	}
	return true
}

// ByLocation handles GET /stock/locations/:id
func (h *StockHandler) ByLocation(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.requireView(c) {
		return
	}

	raw, ok := h.PathID(c)
	if !ok {
		return
	}
	locationID, err := dto.ParseID("id", raw)
	if err != nil {
		h.Error(c, err)
		return
	}

	records, err := h.ledger.LocationStock(ctx, locationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, records)
}

// ByItem handles GET /stock/items/:id
func (h *StockHandler) ByItem(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.requireView(c) {
		return
	}

	raw, ok := h.PathID(c)
	if !ok {
		return
	}
	itemID, err := dto.ParseID("id", raw)
	if err != nil {
		h.Error(c, err)
		return
	}

	records, err := h.ledger.ItemStock(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, records)
}

// History handles GET /stock/records/:id/history
func (h *StockHandler) History(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.requireView(c) {
		return
	}

	raw, ok := h.PathID(c)
	if !ok {
		return
	}
	recordID, err := dto.ParseID("id", raw)
	if err != nil {
		h.Error(c, err)
		return
	}

	entries, err := h.audit.History(ctx, recordID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entries)
}
