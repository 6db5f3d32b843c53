// Package loading provides vehicle loading records for outward dispatch.
//
// A loading is opened against an outward transaction, and its completion is
// the dispatch event: it sets the outward's dispatch fields and implicitly
// completes any still-pending pickup tasks.
package loading

import (
	"context"
	"time"

	"stockward/internal/core/apperror"
	"stockward/internal/core/entity"
	"stockward/internal/core/id"
)

// Loading is one vehicle loading session for an outward transaction.
type Loading struct {
	entity.Base

	// Number is the generated reference (e.g. LOAD-2026-00007).
	Number string `db:"number" json:"number"`

	TransactionID id.ID `db:"transaction_id" json:"transactionId"`

	VehicleNumber string `db:"vehicle_number" json:"vehicleNumber,omitempty"`
	DriverName    string `db:"driver_name" json:"driverName,omitempty"`

	IsCompleted bool       `db:"is_completed" json:"isCompleted"`
	CompletedBy string     `db:"completed_by" json:"completedBy,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`

	Remarks string `db:"remarks" json:"remarks,omitempty"`
}

// Complete transitions the loading to its terminal state.
func (l *Loading) Complete(actor string, at time.Time) error {
	if l.IsCompleted {
		return apperror.NewAlreadyCompleted("loading", l.ID)
	}
	l.IsCompleted = true
	l.CompletedBy = actor
	l.CompletedAt = &at
	l.Touch(actor)
	return nil
}

// StartRequest opens a loading against an outward transaction.
type StartRequest struct {
	TransactionID id.ID  `json:"transaction_id"`
	VehicleNumber string `json:"vehicle_number"`
	DriverName    string `json:"driver_name"`
	Remarks       string `json:"remarks"`
}

// ListFilter narrows loading listings.
type ListFilter struct {
	TransactionID *id.ID
	Completed     *bool
	Limit         int
	Offset        int
}

// Repository defines storage for loading records.
type Repository interface {
	Create(ctx context.Context, l *Loading) error

	GetByID(ctx context.Context, loadingID id.ID) (*Loading, error)

	// GetByIDForUpdate locks the loading row for completion.
	// Must run inside a transaction.
	GetByIDForUpdate(ctx context.Context, loadingID id.ID) (*Loading, error)

	Update(ctx context.Context, l *Loading) error

	List(ctx context.Context, f ListFilter) ([]Loading, error)
}
