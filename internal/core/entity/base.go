// Package entity provides shared base types for domain entities.
package entity

import (
	"context"
	"time"

	"stockward/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Status is the lifecycle state of an entity. "Deleted" is terminal: records
// are never physically removed, only excluded from active queries.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// Base contains common fields for all persisted entities.
type Base struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Status is the lifecycle state (active → deleted, terminal)
	Status Status `db:"status" json:"status"`

	// Audit trail
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updatedBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBase creates a new Base with generated ID and active status.
func NewBase(createdBy string) Base {
	now := time.Now().UTC()
	return Base{
		ID:        id.New(),
		Status:    StatusActive,
		CreatedBy: createdBy,
		UpdatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsDeleted reports whether the entity reached its terminal state.
func (b *Base) IsDeleted() bool {
	return b.Status == StatusDeleted
}

// MarkDeleted transitions the entity to the terminal deleted state.
func (b *Base) MarkDeleted(actor string) {
	b.Status = StatusDeleted
	b.UpdatedBy = actor
	b.UpdatedAt = time.Now().UTC()
}

// Touch updates the modification metadata.
func (b *Base) Touch(actor string) {
	b.UpdatedBy = actor
	b.UpdatedAt = time.Now().UTC()
}
