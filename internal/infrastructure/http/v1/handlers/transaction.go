package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockward/internal/domain/auditlog"
	"stockward/internal/domain/transaction"
	"stockward/internal/infrastructure/http/v1/dto"
)

// TransactionHandler exposes the inventory transaction API.
type TransactionHandler struct {
	*BaseHandler
	service *transaction.Service
	audit   *auditlog.Service
}

// NewTransactionHandler creates a transaction handler.
func NewTransactionHandler(base *BaseHandler, service *transaction.Service, audit *auditlog.Service) *TransactionHandler {
	return &TransactionHandler{
		BaseHandler: base,
		service:     service,
		audit:       audit,
	}
}

// Create handles POST /transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var body dto.CreateTransactionRequest
	if !h.BindJSON(c, &body) {
		return
	}

	req, err := body.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Create(ctx, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Get handles GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	raw, ok := h.PathID(c)
	if !ok {
		return
	}
	txnID, err := dto.ParseID("id", raw)
	if err != nil {
		h.Error(c, err)
		return
	}

	txn, err := h.service.Get(ctx, txnID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, txn)
}

// List handles GET /transactions
func (h *TransactionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListTransactionsQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	txns, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: txns, Limit: filter.Limit, Offset: filter.Offset})
}

// AuditTrail handles GET /transactions/:id/audit
func (h *TransactionHandler) AuditTrail(c *gin.Context) {
	ctx := c.Request.Context()

	raw, ok := h.PathID(c)
	if !ok {
		return
	}
	txnID, err := dto.ParseID("id", raw)
	if err != nil {
		h.Error(c, err)
		return
	}

	entries, err := h.audit.ByTransaction(ctx, txnID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entries)
}
