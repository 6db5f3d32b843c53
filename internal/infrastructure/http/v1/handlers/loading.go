package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockward/internal/domain/loading"
	"stockward/internal/infrastructure/http/v1/dto"
)

// LoadingHandler exposes the loading/dispatch API.
type LoadingHandler struct {
	*BaseHandler
	service *loading.Service
}

// NewLoadingHandler creates a loading handler.
func NewLoadingHandler(base *BaseHandler, service *loading.Service) *LoadingHandler {
	return &LoadingHandler{BaseHandler: base, service: service}
}

// Start handles POST /loadings
func (h *LoadingHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()

	var body dto.StartLoadingRequest
	if !h.BindJSON(c, &body) {
		return
	}

	req, err := body.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	l, err := h.service.Start(ctx, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, l)
}

// Get handles GET /loadings/:id
func (h *LoadingHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	raw, ok := h.PathID(c)
	if !ok {
		return
	}
	loadingID, err := dto.ParseID("id", raw)
	if err != nil {
		h.Error(c, err)
		return
	}

	l, err := h.service.Get(ctx, loadingID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, l)
}

// List handles GET /loadings
func (h *LoadingHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListLoadingsQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	loadings, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: loadings, Limit: filter.Limit, Offset: filter.Offset})
}

// Complete handles POST /loadings/:id/complete
func (h *LoadingHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()

	raw, ok := h.PathID(c)
	if !ok {
		return
	}
	loadingID, err := dto.ParseID("id", raw)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Complete(ctx, loadingID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}
