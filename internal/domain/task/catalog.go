package task

import "context"

// TypeCatalog manages the task type entries behind generation. Generation
// reads the catalog per transaction, so an upsert takes effect immediately.
type TypeCatalog struct {
	repo TypeRepository
}

// NewTypeCatalog creates a catalog over the task type repository.
func NewTypeCatalog(repo TypeRepository) *TypeCatalog {
	return &TypeCatalog{repo: repo}
}

// Save validates and upserts a catalog entry by code.
func (c *TypeCatalog) Save(ctx context.Context, t *Type) error {
	if err := t.Validate(ctx); err != nil {
		return err
	}
	return c.repo.Upsert(ctx, t)
}

// ListActive returns the active catalog entries.
func (c *TypeCatalog) ListActive(ctx context.Context) ([]Type, error) {
	return c.repo.ListActive(ctx)
}
