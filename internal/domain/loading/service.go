package loading

import (
	"context"
	"time"

	"stockward/internal/core/apperror"
	appctx "stockward/internal/core/context"
	"stockward/internal/core/entity"
	"stockward/internal/core/id"
	"stockward/internal/core/security"
	"stockward/internal/core/tx"
	"stockward/internal/domain/task"
	"stockward/internal/domain/transaction"
	"stockward/pkg/logger"
	"stockward/pkg/numerator"
)

// NumberPrefix is the document number prefix of loading records.
const NumberPrefix = "LOAD"

// CompletionResult reports what a loading completion touched.
type CompletionResult struct {
	LoadingID     id.ID      `json:"loading_id"`
	TransactionID id.ID      `json:"transaction_id"`
	DispatchedAt  *time.Time `json:"dispatched_at,omitempty"`

	// TasksCompleted lists pickup tasks completed implicitly by this call.
	TasksCompleted []id.ID `json:"tasks_completed"`
}

// Service drives the loading lifecycle.
type Service struct {
	repo    Repository
	txnRepo transaction.Repository
	tasks   *task.Service
	txm     tx.Manager
	numbers *numerator.Service
	policy  *security.Policy

	// changes records the loading audit snapshot inside the atomic unit;
	// the recorder picks up the transaction from context.
	changes transaction.ChangeRecorder

	now func() time.Time
}

// NewService wires the loading service.
func NewService(
	repo Repository,
	txnRepo transaction.Repository,
	tasks *task.Service,
	txm tx.Manager,
	numbers *numerator.Service,
	policy *security.Policy,
) *Service {
	return &Service{
		repo:    repo,
		txnRepo: txnRepo,
		tasks:   tasks,
		txm:     txm,
		numbers: numbers,
		policy:  policy,
		now:     time.Now,
	}
}

// WithChangeRecorder attaches the loading audit recorder.
func (s *Service) WithChangeRecorder(cr transaction.ChangeRecorder) *Service {
	s.changes = cr
	return s
}

// Start opens a loading against an outward transaction.
func (s *Service) Start(ctx context.Context, req *StartRequest) (*Loading, error) {
	if err := s.policy.Require(ctx, security.PermStartLoading); err != nil {
		return nil, err
	}

	txn, err := transaction.GetOutward(ctx, s.txnRepo, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if txn.IsDispatched {
		return nil, apperror.NewBusinessRule(apperror.CodeAlreadyCompleted,
			"Outward transaction is already dispatched").
			WithDetail("transaction_id", txn.ID.String())
	}

	number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), nil, s.now())
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	l := &Loading{
		Base:          entity.NewBase(appctx.GetActorID(ctx)),
		Number:        number,
		TransactionID: txn.ID,
		VehicleNumber: req.VehicleNumber,
		DriverName:    req.DriverName,
		Remarks:       req.Remarks,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	logger.Info(ctx, "loading started",
		"loading_id", l.ID, "number", l.Number, "transaction_id", txn.ID)
	return l, nil
}

// Complete marks the loading done and dispatches the outward: the dispatch
// fields are set, pending pickup tasks complete implicitly, and a loading
// audit snapshot with the item and quantity moved is archived — all in one
// atomic unit. Completing twice yields AlreadyCompleted.
func (s *Service) Complete(ctx context.Context, loadingID id.ID) (*CompletionResult, error) {
	if err := s.policy.Require(ctx, security.PermCompleteLoading); err != nil {
		return nil, err
	}

	actor := appctx.GetActorID(ctx)
	now := s.now().UTC()

	var result *CompletionResult
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		l, err := s.repo.GetByIDForUpdate(ctx, loadingID)
		if err != nil {
			return err
		}
		if err := l.Complete(actor, now); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, l); err != nil {
			return err
		}

		txn, err := transaction.GetOutward(ctx, s.txnRepo, l.TransactionID)
		if err != nil {
			return err
		}
		if !txn.IsDispatched {
			if err := s.txnRepo.MarkDispatched(ctx, txn.ID, actor, now); err != nil {
				return err
			}
		}

		taskIDs, err := s.tasks.CompletePickupsForTransaction(ctx, txn.ID, actor, now)
		if err != nil {
			return err
		}

		if s.changes != nil {
			s.changes.Record(ctx, "loading", l.ID, map[string]any{
				"loading_number": l.Number,
				"transaction_id": txn.ID,
				"item_id":        txn.ItemID,
				"quantity":       txn.Quantity,
				"vehicle_number": l.VehicleNumber,
				"completed_by":   actor,
				"completed_at":   now,
			})
		}

		result = &CompletionResult{
			LoadingID:      l.ID,
			TransactionID:  txn.ID,
			DispatchedAt:   &now,
			TasksCompleted: taskIDs,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "loading completed",
		"loading_id", loadingID,
		"transaction_id", result.TransactionID,
		"tasks_completed", len(result.TasksCompleted),
	)
	return result, nil
}

// Get returns a loading by id.
func (s *Service) Get(ctx context.Context, loadingID id.ID) (*Loading, error) {
	return s.repo.GetByID(ctx, loadingID)
}

// List returns loadings matching a filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Loading, error) {
	return s.repo.List(ctx, f)
}
