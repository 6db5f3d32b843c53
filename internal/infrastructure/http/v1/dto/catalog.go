package dto

// CreateItemRequest adds an item to the catalog.
type CreateItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
}

// UpdateItemRequest updates catalog item fields.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Unit        *string `json:"unit"`
	IsActive    *bool   `json:"isActive"`
}

// CreateWarehouseRequest adds a warehouse.
type CreateWarehouseRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

// CreateLocationRequest adds a storage location to a warehouse.
type CreateLocationRequest struct {
	WarehouseID string `json:"warehouseId" binding:"required"`
	Code        string `json:"code" binding:"required"`
	Description string `json:"description"`
}

// UpsertProcessTypeRequest creates or updates a process type catalog entry.
type UpsertProcessTypeRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

// UpsertTaskTypeRequest creates or updates a task type catalog entry.
type UpsertTaskTypeRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	IsActive *bool  `json:"isActive"`
}
