package task

import (
	"context"

	"stockward/internal/core/id"
)

// Repository defines storage for tasks.
type Repository interface {
	Create(ctx context.Context, t *Task) error

	GetByID(ctx context.Context, taskID id.ID) (*Task, error)

	// GetByIDForUpdate locks the task row for a state transition.
	// Must run inside a transaction.
	GetByIDForUpdate(ctx context.Context, taskID id.ID) (*Task, error)

	// Update persists lifecycle fields of a locked task.
	Update(ctx context.Context, t *Task) error

	// ListByTransaction returns a transaction's tasks in creation order.
	ListByTransaction(ctx context.Context, transactionID id.ID) ([]Task, error)

	// ListPendingPickupsForUpdate locks an outward's pending pickup tasks.
	// Used by loading completion to complete them implicitly.
	ListPendingPickupsForUpdate(ctx context.Context, transactionID id.ID) ([]Task, error)

	// ListByAssignee returns a worker's tasks, optionally filtered by state,
	// newest first.
	ListByAssignee(ctx context.Context, assigneeID string, state *State, limit, offset int) ([]Task, error)

	// CountPendingByType returns the pending backlog per task kind.
	CountPendingByType(ctx context.Context) (map[TypeCode]int64, error)
}

// TypeRepository defines catalog storage for task types.
type TypeRepository interface {
	// GetActiveByCode returns the active catalog entry or NotFound.
	GetActiveByCode(ctx context.Context, code TypeCode) (*Type, error)

	ListActive(ctx context.Context) ([]Type, error)

	Upsert(ctx context.Context, t *Type) error
}
