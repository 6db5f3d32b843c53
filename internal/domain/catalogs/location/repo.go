package location

import (
	"context"

	"stockward/internal/core/id"
)

// Repository defines storage for the warehouse/location directory.
type Repository interface {
	CreateWarehouse(ctx context.Context, w *Warehouse) error
	GetWarehouse(ctx context.Context, warehouseID id.ID) (*Warehouse, error)
	ListWarehouses(ctx context.Context) ([]Warehouse, error)

	CreateLocation(ctx context.Context, l *Location) error
	GetLocation(ctx context.Context, locationID id.ID) (*Location, error)
	ListLocations(ctx context.Context, warehouseID id.ID) ([]Location, error)
}
