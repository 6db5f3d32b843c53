package item

import (
	"context"

	"stockward/internal/core/id"
)

// Repository defines storage for the item catalog.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	Update(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)
	List(ctx context.Context, includeInactive bool) ([]Item, error)
}
