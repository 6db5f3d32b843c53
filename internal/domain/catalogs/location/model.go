// Package location provides the warehouse and storage location directory.
// Locations are the spatial dimension of every stock record; transaction
// validation consults this directory for existence and activity.
package location

import (
	"context"

	"stockward/internal/core/apperror"
	"stockward/internal/core/entity"
	"stockward/internal/core/id"
)

// Warehouse represents a physical warehouse containing locations.
type Warehouse struct {
	entity.Base

	Name     string `db:"name" json:"name"`
	Address  string `db:"address" json:"address,omitempty"`
	IsActive bool   `db:"is_active" json:"isActive"`
}

// NewWarehouse creates an active warehouse.
func NewWarehouse(name, address, createdBy string) *Warehouse {
	return &Warehouse{
		Base:     entity.NewBase(createdBy),
		Name:     name,
		Address:  address,
		IsActive: true,
	}
}

// Validate implements entity.Validatable.
func (w *Warehouse) Validate(ctx context.Context) error {
	if w.Name == "" {
		return apperror.NewValidation("warehouse name is required")
	}
	return nil
}

// Location represents a storage position within a warehouse, e.g. "A1-R2".
// The code is unique per warehouse.
type Location struct {
	entity.Base

	WarehouseID id.ID  `db:"warehouse_id" json:"warehouseId"`
	Code        string `db:"code" json:"code"`
	Description string `db:"description" json:"description,omitempty"`
	IsActive    bool   `db:"is_active" json:"isActive"`
}

// NewLocation creates an active location within a warehouse.
func NewLocation(warehouseID id.ID, code, description, createdBy string) *Location {
	return &Location{
		Base:        entity.NewBase(createdBy),
		WarehouseID: warehouseID,
		Code:        code,
		Description: description,
		IsActive:    true,
	}
}

// Validate implements entity.Validatable.
func (l *Location) Validate(ctx context.Context) error {
	if id.IsNil(l.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if l.Code == "" {
		return apperror.NewValidation("location code is required").
			WithDetail("field", "code")
	}
	return nil
}
