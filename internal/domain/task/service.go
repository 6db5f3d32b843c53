package task

import (
	"context"
	"time"

	appctx "stockward/internal/core/context"
	"stockward/internal/core/id"
	"stockward/internal/core/security"
	"stockward/internal/core/tx"
	"stockward/internal/domain/transaction"
	"stockward/pkg/logger"
)

// Service drives the task lifecycle.
type Service struct {
	repo   Repository
	txm    tx.Manager
	policy *security.Policy

	// changes archives completion snapshots, best effort after commit.
	changes transaction.ChangeRecorder

	now func() time.Time
}

// NewService creates a task service.
func NewService(repo Repository, txm tx.Manager, policy *security.Policy) *Service {
	return &Service{repo: repo, txm: txm, policy: policy, now: time.Now}
}

// WithChangeRecorder attaches the task audit recorder.
func (s *Service) WithChangeRecorder(cr transaction.ChangeRecorder) *Service {
	s.changes = cr
	return s
}

// Complete transitions a task to completed. Repeating the call yields an
// AlreadyCompleted condition; handlers render it as an idempotent success.
func (s *Service) Complete(ctx context.Context, taskID id.ID) (*Task, error) {
	if err := s.policy.Require(ctx, security.PermCompleteTask); err != nil {
		return nil, err
	}

	actor := appctx.GetActorID(ctx)
	now := s.now().UTC()

	var completed *Task
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.repo.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if err := t.Complete(actor, now); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, t); err != nil {
			return err
		}
		completed = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "task completed", "task_id", taskID, "type", completed.TypeCode)

	if s.changes != nil {
		s.changes.Record(ctx, "task", completed.ID, completed)
	}
	return completed, nil
}

// CompletePickupsForTransaction completes an outward's pending pickup tasks.
// Called by loading completion inside its own atomic unit; tasks already
// completed explicitly are simply not pending anymore, so the first
// completion wins without conflict. Returns the completed task ids.
func (s *Service) CompletePickupsForTransaction(ctx context.Context, transactionID id.ID, actor string, at time.Time) ([]id.ID, error) {
	pending, err := s.repo.ListPendingPickupsForUpdate(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var ids []id.ID
	for i := range pending {
		t := &pending[i]
		if err := t.Complete(actor, at); err != nil {
			return ids, err
		}
		if err := s.repo.Update(ctx, t); err != nil {
			return ids, err
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// Get returns a task by id.
func (s *Service) Get(ctx context.Context, taskID id.ID) (*Task, error) {
	return s.repo.GetByID(ctx, taskID)
}

// ListByTransaction returns a transaction's tasks.
func (s *Service) ListByTransaction(ctx context.Context, transactionID id.ID) ([]Task, error) {
	return s.repo.ListByTransaction(ctx, transactionID)
}

// ListByAssignee returns a worker's tasks, optionally filtered by state.
func (s *Service) ListByAssignee(ctx context.Context, assigneeID string, state *State, limit, offset int) ([]Task, error) {
	return s.repo.ListByAssignee(ctx, assigneeID, state, limit, offset)
}

// Dashboard returns the pending backlog per task kind.
func (s *Service) Dashboard(ctx context.Context) (map[TypeCode]int64, error) {
	return s.repo.CountPendingByType(ctx)
}
