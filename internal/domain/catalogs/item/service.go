package item

import (
	"context"

	"stockward/internal/core/apperror"
	appctx "stockward/internal/core/context"
	"stockward/internal/core/id"
	"stockward/pkg/logger"
)

// Service provides business operations for the item catalog.
type Service struct {
	repo Repository
}

// NewService creates a new item service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new item.
func (s *Service) Create(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return err
	}
	logger.Info(ctx, "item created", "id", it.ID, "name", it.Name)
	return nil
}

// GetActive returns an item that exists, is active and not deleted.
// Transaction validation depends on this check.
func (s *Service) GetActive(ctx context.Context, itemID id.ID) (*Item, error) {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.IsDeleted() || !it.IsActive {
		return nil, apperror.NewNotFound("item", itemID)
	}
	return it, nil
}

// Deactivate marks an item inactive without deleting history.
func (s *Service) Deactivate(ctx context.Context, itemID id.ID) error {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	it.IsActive = false
	it.Touch(appctx.GetActorID(ctx))
	return s.repo.Update(ctx, it)
}

// List returns catalog entries.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]Item, error) {
	return s.repo.List(ctx, includeInactive)
}
