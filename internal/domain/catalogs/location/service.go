package location

import (
	"context"

	"stockward/internal/core/apperror"
	"stockward/internal/core/id"
	"stockward/pkg/logger"
)

// Service provides directory operations consumed by transaction validation.
type Service struct {
	repo Repository
}

// NewService creates a new location directory service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateWarehouse validates and stores a warehouse.
func (s *Service) CreateWarehouse(ctx context.Context, w *Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.CreateWarehouse(ctx, w); err != nil {
		return err
	}
	logger.Info(ctx, "warehouse created", "id", w.ID, "name", w.Name)
	return nil
}

// CreateLocation validates the owning warehouse and stores a location.
func (s *Service) CreateLocation(ctx context.Context, l *Location) error {
	if err := l.Validate(ctx); err != nil {
		return err
	}
	w, err := s.repo.GetWarehouse(ctx, l.WarehouseID)
	if err != nil {
		return err
	}
	if w.IsDeleted() || !w.IsActive {
		return apperror.NewNotFound("warehouse", l.WarehouseID)
	}
	if err := s.repo.CreateLocation(ctx, l); err != nil {
		return err
	}
	logger.Info(ctx, "location created", "id", l.ID, "code", l.Code, "warehouse_id", l.WarehouseID)
	return nil
}

// GetActive returns a location that exists, is active and not deleted.
func (s *Service) GetActive(ctx context.Context, locationID id.ID) (*Location, error) {
	l, err := s.repo.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if l.IsDeleted() || !l.IsActive {
		return nil, apperror.NewNotFound("location", locationID)
	}
	return l, nil
}

// ListLocations returns locations of a warehouse.
func (s *Service) ListLocations(ctx context.Context, warehouseID id.ID) ([]Location, error) {
	return s.repo.ListLocations(ctx, warehouseID)
}

// ListWarehouses returns all warehouses.
func (s *Service) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	return s.repo.ListWarehouses(ctx)
}
