// Package item provides the item master catalog.
package item

import (
	"context"

	"stockward/internal/core/apperror"
	"stockward/internal/core/entity"
)

// Item represents a stock-keeping unit tracked by the warehouse.
type Item struct {
	entity.Base

	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
	Unit        string `db:"unit" json:"unit,omitempty"` // pcs, kg, box
	IsActive    bool   `db:"is_active" json:"isActive"`
}

// New creates an active item.
func New(name, unit, createdBy string) *Item {
	return &Item{
		Base:     entity.NewBase(createdBy),
		Name:     name,
		Unit:     unit,
		IsActive: true,
	}
}

// Validate implements entity.Validatable.
func (i *Item) Validate(ctx context.Context) error {
	if i.Name == "" {
		return apperror.NewValidation("item name is required")
	}
	return nil
}
