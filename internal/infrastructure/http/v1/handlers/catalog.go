package handlers

import (
	"github.com/gin-gonic/gin"

	"stockward/internal/core/apperror"
	appctx "stockward/internal/core/context"
	"stockward/internal/domain/catalogs/item"
	"stockward/internal/domain/catalogs/location"
	"stockward/internal/domain/process"
	"stockward/internal/domain/task"
	"stockward/internal/infrastructure/http/v1/dto"
)

// CatalogHandler exposes item, warehouse/location, and process/task type
// catalog endpoints.
type CatalogHandler struct {
	*BaseHandler
	items     *item.Service
	locations *location.Service
	processes *process.Registry
	taskTypes *task.TypeCatalog
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(base *BaseHandler, items *item.Service, locations *location.Service, processes *process.Registry, taskTypes *task.TypeCatalog) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: base,
		items:       items,
		locations:   locations,
		processes:   processes,
		taskTypes:   taskTypes,
	}
}

// CreateItem handles POST /catalog/items
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	it := item.New(req.Name, req.Unit, appctx.GetActorID(ctx))
	it.Description = req.Description

	if err := h.items.Create(ctx, it); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, it.ID.String())
}

// GetItem handles GET /catalog/items/:id
func (h *CatalogHandler) GetItem(c *gin.Context) {
	ctx := c.Request.Context()

	raw, ok := h.PathID(c)
	if !ok {
		return
	}
	itemID, err := dto.ParseID("id", raw)
	if err != nil {
		h.Error(c, err)
		return
	}

	it, err := h.items.GetActive(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, it)
}

// ListItems handles GET /catalog/items
func (h *CatalogHandler) ListItems(c *gin.Context) {
	ctx := c.Request.Context()

	includeInactive := c.Query("includeInactive") == "true"

	items, err := h.items.List(ctx, includeInactive)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, items)
}

// DeactivateItem handles POST /catalog/items/:id/deactivate
func (h *CatalogHandler) DeactivateItem(c *gin.Context) {
	ctx := c.Request.Context()

	raw, ok := h.PathID(c)
	if !ok {
		return
	}
	itemID, err := dto.ParseID("id", raw)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.items.Deactivate(ctx, itemID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "item deactivated")
}

// CreateWarehouse handles POST /catalog/warehouses
func (h *CatalogHandler) CreateWarehouse(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w := location.NewWarehouse(req.Name, req.Address, appctx.GetActorID(ctx))
	if err := h.locations.CreateWarehouse(ctx, w); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, w.ID.String())
}

// ListWarehouses handles GET /catalog/warehouses
func (h *CatalogHandler) ListWarehouses(c *gin.Context) {
	ctx := c.Request.Context()

	warehouses, err := h.locations.ListWarehouses(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, warehouses)
}

// CreateLocation handles POST /catalog/locations
func (h *CatalogHandler) CreateLocation(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateLocationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	warehouseID, err := dto.ParseID("warehouseId", req.WarehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	l := location.NewLocation(warehouseID, req.Code, req.Description, appctx.GetActorID(ctx))
	if err := h.locations.CreateLocation(ctx, l); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, l.ID.String())
}

// ListProcessTypes handles GET /catalog/process-types
func (h *CatalogHandler) ListProcessTypes(c *gin.Context) {
	ctx := c.Request.Context()

	entries, err := h.processes.Active(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entries)
}

// UpsertProcessType handles PUT /catalog/process-types
func (h *CatalogHandler) UpsertProcessType(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpsertProcessTypeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	kind, ok := process.ParseKind(req.Code)
	if !ok {
		h.Error(c, apperror.NewValidation("unknown process type code").
			WithDetail("code", req.Code))
		return
	}

	pt := process.NewType(kind, req.Name, req.Description, appctx.GetActorID(ctx))
	if req.IsActive != nil {
		pt.IsActive = *req.IsActive
	}

	if err := h.processes.Save(ctx, pt); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "process type saved")
}

// ListTaskTypes handles GET /catalog/task-types
func (h *CatalogHandler) ListTaskTypes(c *gin.Context) {
	ctx := c.Request.Context()

	entries, err := h.taskTypes.ListActive(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entries)
}

// UpsertTaskType handles PUT /catalog/task-types
func (h *CatalogHandler) UpsertTaskType(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpsertTaskTypeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	code, ok := task.ParseTypeCode(req.Code)
	if !ok {
		h.Error(c, apperror.NewValidation("unknown task type code").
			WithDetail("code", req.Code))
		return
	}

	t := task.NewType(code, req.Name, appctx.GetActorID(ctx))
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	if err := h.taskTypes.Save(ctx, t); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "task type saved")
}

// ListLocations handles GET /catalog/warehouses/:id/locations
func (h *CatalogHandler) ListLocations(c *gin.Context) {
	ctx := c.Request.Context()

	raw, ok := h.PathID(c)
	if !ok {
		return
	}
	warehouseID, err := dto.ParseID("id", raw)
	if err != nil {
		h.Error(c, err)
		return
	}

	locations, err := h.locations.ListLocations(ctx, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, locations)
}
