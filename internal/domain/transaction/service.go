package transaction

import (
	"context"
	"time"

	"stockward/internal/core/apperror"
	appctx "stockward/internal/core/context"
	"stockward/internal/core/id"
	"stockward/internal/core/security"
	"stockward/internal/core/tx"
	"stockward/internal/domain/auditlog"
	"stockward/internal/domain/process"
	"stockward/pkg/logger"
	"stockward/pkg/numerator"
)

// NumberPrefix is the document number prefix of inventory transactions.
const NumberPrefix = "TXN"

// TaskCreator generates warehouse tasks from a committed transaction.
// Implemented by the task package; runs after commit, best effort.
type TaskCreator interface {
	CreateForTransaction(ctx context.Context, txn *Transaction, result *MutationResult, req *Request) ([]id.ID, error)
}

// RatingNotifier recomputes supplier ratings from a committed receipt.
// Failures must be handled internally; the call never returns an error.
type RatingNotifier interface {
	AdjustForDelivery(ctx context.Context, purchaseOrderID id.ID, actualDate time.Time, qualityStatus string)
}

// ChangeRecorder archives a snapshot of a created record for forensics.
// Best effort, after commit.
type ChangeRecorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, payload any)
}

// Service orchestrates transaction creation: resolve the kind, validate,
// number the document, run the stock mutation and audit append in one atomic
// unit, then fire post-commit side effects (tasks, supplier rating, change
// archive) that may fail without affecting the committed transaction.
type Service struct {
	registry   *process.Registry
	processors map[process.Kind]Processor
	repo       Repository
	audit      *auditlog.Service
	txm        tx.Manager
	numbers    *numerator.Service
	policy     *security.Policy

	// optional side-effect collaborators
	tasks   TaskCreator
	rating  RatingNotifier
	changes ChangeRecorder

	now func() time.Time
}

// NewService wires the transaction engine.
func NewService(
	registry *process.Registry,
	processors map[process.Kind]Processor,
	repo Repository,
	audit *auditlog.Service,
	txm tx.Manager,
	numbers *numerator.Service,
	policy *security.Policy,
) *Service {
	return &Service{
		registry:   registry,
		processors: processors,
		repo:       repo,
		audit:      audit,
		txm:        txm,
		numbers:    numbers,
		policy:     policy,
		now:        time.Now,
	}
}

// WithTaskCreator attaches the post-commit task generator.
func (s *Service) WithTaskCreator(tc TaskCreator) *Service {
	s.tasks = tc
	return s
}

// WithRatingNotifier attaches the supplier rating side effect.
func (s *Service) WithRatingNotifier(rn RatingNotifier) *Service {
	s.rating = rn
	return s
}

// WithChangeRecorder attaches the change archive side effect.
func (s *Service) WithChangeRecorder(cr ChangeRecorder) *Service {
	s.changes = cr
	return s
}

// Create processes an inventory transaction request end to end.
func (s *Service) Create(ctx context.Context, req *Request) (*Result, error) {
	if err := s.policy.Require(ctx, security.PermCreateTransaction); err != nil {
		return nil, err
	}

	pt, err := s.registry.Resolve(ctx, req.ProcessType)
	if err != nil {
		return nil, err
	}
	processor, ok := s.processors[pt.Code]
	if !ok {
		return nil, apperror.NewConfiguration("no processor registered for process type " + pt.Code.String())
	}

	if errs := processor.Validate(ctx, req); len(errs) > 0 {
		return nil, apperror.NewValidationList(errs)
	}

	// Numbering runs outside the atomic unit: a rolled-back transaction
	// burns a number, which is acceptable; holding the sequence row lock
	// across stock mutations is not.
	now := s.now().UTC()
	number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), nil, now)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	actor := appctx.GetActorID(ctx)
	txn := newTransaction(req, pt.Code, number, actor, now)

	var mutation *MutationResult
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, txn); err != nil {
			return err
		}
		mutation, err = processor.Process(ctx, txn, req)
		if err != nil {
			return err
		}
		return s.audit.Append(ctx, mutation.Entries)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transaction processed",
		"transaction_id", txn.ID,
		"number", txn.Number,
		"process_type", txn.ProcessKind,
		"quantity_changed", mutation.QuantityChanged,
	)

	taskIDs := s.runSideEffects(ctx, txn, mutation, req)

	return &Result{
		TransactionID:    txn.ID,
		Number:           txn.Number,
		ProcessType:      txn.ProcessKind,
		InventoryUpdated: mutation.InventoryUpdated,
		TasksCreated:     taskIDs,
		QuantityBefore:   mutation.QuantityBefore,
		QuantityAfter:    mutation.QuantityAfter,
		QuantityChanged:  mutation.QuantityChanged,
	}, nil
}

// runSideEffects fires the post-commit collaborators. Every failure is
// logged and swallowed: the stock mutation is already committed and must be
// reported as a success.
func (s *Service) runSideEffects(ctx context.Context, txn *Transaction, mutation *MutationResult, req *Request) []id.ID {
	var taskIDs []id.ID

	if s.tasks != nil {
		ids, err := s.tasks.CreateForTransaction(ctx, txn, mutation, req)
		if err != nil {
			logger.Error(ctx, "task generation failed after commit",
				"transaction_id", txn.ID, "error", err)
		} else {
			taskIDs = ids
		}
	}

	if s.rating != nil && txn.ProcessKind == process.KindInward && txn.PurchaseOrderID != nil {
		s.rating.AdjustForDelivery(ctx, *txn.PurchaseOrderID, txn.OccurredAt, req.QualityStatus)
	}

	if s.changes != nil {
		s.changes.Record(ctx, "transaction", txn.ID, txn)
	}

	return taskIDs
}

// Get returns a transaction by id.
func (s *Service) Get(ctx context.Context, txnID id.ID) (*Transaction, error) {
	return s.repo.GetByID(ctx, txnID)
}

// List returns transactions matching a filter, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Transaction, error) {
	return s.repo.List(ctx, f)
}
