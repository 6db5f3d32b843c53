// Package task provides warehouse fulfillment tasks: generation from
// committed inventory transactions and the pending-to-completed lifecycle.
package task

import (
	"context"
	"strings"
	"time"

	"stockward/internal/core/apperror"
	"stockward/internal/core/entity"
	"stockward/internal/core/id"
	"stockward/internal/core/types"
)

// TypeCode is the closed set of fulfillment task kinds.
type TypeCode string

const (
	TypePutaway  TypeCode = "PUTAWAY"
	TypePickup   TypeCode = "PICKUP"
	TypeTransfer TypeCode = "TRANSFER"
)

// ParseTypeCode converts a wire code into a TypeCode.
func ParseTypeCode(code string) (TypeCode, bool) {
	switch TypeCode(strings.ToUpper(strings.TrimSpace(code))) {
	case TypePutaway:
		return TypePutaway, true
	case TypePickup:
		return TypePickup, true
	case TypeTransfer:
		return TypeTransfer, true
	}
	return "", false
}

// String implements fmt.Stringer.
func (c TypeCode) String() string { return string(c) }

// Type is the catalog entry behind a task kind. Generation requires an
// active entry; a missing one is an operator configuration problem.
type Type struct {
	entity.Base

	Code     TypeCode `db:"code" json:"code"`
	Name     string   `db:"name" json:"name"`
	IsActive bool     `db:"is_active" json:"isActive"`
}

// NewType creates a catalog entry for a task kind.
func NewType(code TypeCode, name, createdBy string) *Type {
	return &Type{
		Base:     entity.NewBase(createdBy),
		Code:     code,
		Name:     name,
		IsActive: true,
	}
}

// Validate implements entity.Validatable.
func (t *Type) Validate(ctx context.Context) error {
	if _, ok := ParseTypeCode(string(t.Code)); !ok {
		return apperror.NewValidation("unknown task type code").
			WithDetail("code", string(t.Code))
	}
	if t.Name == "" {
		return apperror.NewValidation("task type name is required")
	}
	return nil
}

// State is the task lifecycle state.
type State string

const (
	StatePending   State = "pending"
	StateCompleted State = "completed"
)

// Task is one fulfillment work item generated from a transaction.
type Task struct {
	entity.Base

	TypeCode TypeCode `db:"type_code" json:"typeCode"`

	TransactionID id.ID  `db:"transaction_id" json:"transactionId"`
	StockRecordID *id.ID `db:"stock_record_id" json:"stockRecordId,omitempty"`

	ItemID   id.ID          `db:"item_id" json:"itemId"`
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	FromLocationID *id.ID `db:"from_location_id" json:"fromLocationId,omitempty"`
	ToLocationID   *id.ID `db:"to_location_id" json:"toLocationId,omitempty"`

	AssigneeID string `db:"assignee_id" json:"assigneeId,omitempty"`

	State       State      `db:"state" json:"state"`
	CompletedBy string     `db:"completed_by" json:"completedBy,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`

	Remarks string `db:"remarks" json:"remarks,omitempty"`
}

// Complete transitions the task to its terminal state. A second completion
// is reported as AlreadyCompleted; callers treat it as an idempotent no-op.
func (t *Task) Complete(actor string, at time.Time) error {
	if t.State == StateCompleted {
		return apperror.NewAlreadyCompleted("task", t.ID)
	}
	t.State = StateCompleted
	t.CompletedBy = actor
	t.CompletedAt = &at
	t.Touch(actor)
	return nil
}

// IsCompleted reports whether the task reached its terminal state.
func (t *Task) IsCompleted() bool { return t.State == StateCompleted }
