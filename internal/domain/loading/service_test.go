package loading

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"stockward/internal/core/apperror"
	appctx "stockward/internal/core/context"
	"stockward/internal/core/id"
	"stockward/internal/core/security"
	"stockward/internal/core/types"
	"stockward/internal/domain/process"
	"stockward/internal/domain/task"
	"stockward/internal/domain/transaction"
	"stockward/pkg/numerator"
)

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memLoadingRepo struct {
	loadings map[id.ID]*Loading
}

func newMemLoadingRepo() *memLoadingRepo {
	return &memLoadingRepo{loadings: make(map[id.ID]*Loading)}
}

func (r *memLoadingRepo) Create(ctx context.Context, l *Loading) error {
	cp := *l
	r.loadings[l.ID] = &cp
	return nil
}

func (r *memLoadingRepo) GetByID(ctx context.Context, loadingID id.ID) (*Loading, error) {
	l, ok := r.loadings[loadingID]
	if !ok {
		return nil, apperror.NewNotFound("loading", loadingID)
	}
	cp := *l
	return &cp, nil
}

func (r *memLoadingRepo) GetByIDForUpdate(ctx context.Context, loadingID id.ID) (*Loading, error) {
	return r.GetByID(ctx, loadingID)
}

func (r *memLoadingRepo) Update(ctx context.Context, l *Loading) error {
	if _, ok := r.loadings[l.ID]; !ok {
		return apperror.NewNotFound("loading", l.ID)
	}
	cp := *l
	r.loadings[l.ID] = &cp
	return nil
}

func (r *memLoadingRepo) List(ctx context.Context, f ListFilter) ([]Loading, error) {
	var out []Loading
	for _, l := range r.loadings {
		out = append(out, *l)
	}
	return out, nil
}

type memTxnRepo struct {
	txns       map[id.ID]*transaction.Transaction
	dispatched map[id.ID]string
}

func newMemTxnRepo() *memTxnRepo {
	return &memTxnRepo{
		txns:       make(map[id.ID]*transaction.Transaction),
		dispatched: make(map[id.ID]string),
	}
}

func (r *memTxnRepo) Create(ctx context.Context, txn *transaction.Transaction) error {
	r.txns[txn.ID] = txn
	return nil
}

func (r *memTxnRepo) GetByID(ctx context.Context, txnID id.ID) (*transaction.Transaction, error) {
	txn, ok := r.txns[txnID]
	if !ok {
		return nil, apperror.NewNotFound("transaction", txnID)
	}
	return txn, nil
}

func (r *memTxnRepo) MarkDispatched(ctx context.Context, txnID id.ID, by string, at time.Time) error {
	txn, ok := r.txns[txnID]
	if !ok {
		return apperror.NewNotFound("transaction", txnID)
	}
	txn.IsDispatched = true
	txn.DispatchedBy = by
	txn.DispatchedAt = &at
	r.dispatched[txnID] = by
	return nil
}

func (r *memTxnRepo) List(ctx context.Context, f transaction.ListFilter) ([]transaction.Transaction, error) {
	return nil, nil
}

type memTaskRepo struct {
	tasks []*task.Task
}

func (r *memTaskRepo) Create(ctx context.Context, t *task.Task) error {
	r.tasks = append(r.tasks, t)
	return nil
}

func (r *memTaskRepo) GetByID(ctx context.Context, taskID id.ID) (*task.Task, error) {
	for _, t := range r.tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return nil, apperror.NewNotFound("task", taskID)
}

func (r *memTaskRepo) GetByIDForUpdate(ctx context.Context, taskID id.ID) (*task.Task, error) {
	return r.GetByID(ctx, taskID)
}

func (r *memTaskRepo) Update(ctx context.Context, t *task.Task) error { return nil }

func (r *memTaskRepo) ListByTransaction(ctx context.Context, transactionID id.ID) ([]task.Task, error) {
	return nil, nil
}

func (r *memTaskRepo) ListPendingPickupsForUpdate(ctx context.Context, transactionID id.ID) ([]task.Task, error) {
	var out []task.Task
	for _, t := range r.tasks {
		if t.TransactionID == transactionID && t.TypeCode == task.TypePickup && t.State == task.StatePending {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memTaskRepo) ListByAssignee(ctx context.Context, assigneeID string, state *task.State, limit, offset int) ([]task.Task, error) {
	return nil, nil
}

func (r *memTaskRepo) CountPendingByType(ctx context.Context) (map[task.TypeCode]int64, error) {
	return nil, nil
}

type seqRow struct{ val int64 }

func (r seqRow) Scan(dest ...any) error {
	if p, ok := dest[0].(*int64); ok {
		*p = r.val
	}
	return nil
}

type seqQuerier struct{ n int64 }

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.n++
	return seqRow{val: q.n}
}

type changeCapture struct {
	entityType string
	payload    any
	calls      int
}

func (c *changeCapture) Record(ctx context.Context, entityType string, entityID id.ID, payload any) {
	c.calls++
	c.entityType = entityType
	c.payload = payload
}

type harness struct {
	svc      *Service
	loadings *memLoadingRepo
	txns     *memTxnRepo
	taskRepo *memTaskRepo
	changes  *changeCapture
}

func newHarness() *harness {
	loadings := newMemLoadingRepo()
	txns := newMemTxnRepo()
	taskRepo := &memTaskRepo{}
	changes := &changeCapture{}

	policy := security.DefaultPolicy()
	txm := passthroughTxManager{}
	tasks := task.NewService(taskRepo, txm, policy)

	svc := NewService(loadings, txns, tasks, txm, numerator.New(&seqQuerier{}), policy).
		WithChangeRecorder(changes)

	return &harness{svc: svc, loadings: loadings, txns: txns, taskRepo: taskRepo, changes: changes}
}

func (h *harness) outward(dispatched bool) *transaction.Transaction {
	txn := &transaction.Transaction{
		ItemID:       id.New(),
		Quantity:     types.MustQuantity("5"),
		IsDispatched: dispatched,
	}
	txn.ID = id.New()
	txn.ProcessKind = process.KindOutward
	h.txns.txns[txn.ID] = txn
	return txn
}

func loaderCtx() context.Context {
	return appctx.WithActor(context.Background(), &appctx.ActorContext{
		UserID: "loader-1",
		Roles:  []string{security.RoleLoader},
	})
}

func TestStartLoading(t *testing.T) {
	h := newHarness()
	txn := h.outward(false)

	l, err := h.svc.Start(loaderCtx(), &StartRequest{
		TransactionID: txn.ID,
		VehicleNumber: "KA-01-1234",
		DriverName:    "R. Kumar",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.TransactionID != txn.ID {
		t.Error("loading must reference the outward transaction")
	}
	if l.Number == "" {
		t.Error("loading must receive a document number")
	}
	if l.IsCompleted {
		t.Error("new loading must not be completed")
	}
}

func TestStartRejectsDispatchedOutward(t *testing.T) {
	h := newHarness()
	txn := h.outward(true)

	_, err := h.svc.Start(loaderCtx(), &StartRequest{TransactionID: txn.ID})
	if err == nil {
		t.Fatal("expected error for already dispatched outward")
	}
	if !apperror.IsCode(err, apperror.CodeAlreadyCompleted) {
		t.Errorf("expected already-completed, got %v", err)
	}
}

func TestStartRejectsNonOutward(t *testing.T) {
	h := newHarness()
	txn := &transaction.Transaction{ItemID: id.New()}
	txn.ID = id.New()
	txn.ProcessKind = process.KindInward
	h.txns.txns[txn.ID] = txn

	_, err := h.svc.Start(loaderCtx(), &StartRequest{TransactionID: txn.ID})
	if err == nil {
		t.Fatal("expected error for non-outward transaction")
	}
	if !apperror.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestCompleteDispatchesAndFinishesPickups(t *testing.T) {
	h := newHarness()
	txn := h.outward(false)

	pickup := &task.Task{
		TypeCode:      task.TypePickup,
		TransactionID: txn.ID,
		ItemID:        txn.ItemID,
		Quantity:      txn.Quantity,
		State:         task.StatePending,
	}
	pickup.ID = id.New()
	h.taskRepo.tasks = append(h.taskRepo.tasks, pickup)

	ctx := loaderCtx()
	l, err := h.svc.Start(ctx, &StartRequest{TransactionID: txn.ID})
	if err != nil {
		t.Fatal(err)
	}

	result, err := h.svc.Complete(ctx, l.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !txn.IsDispatched {
		t.Error("completing the loading must dispatch the outward")
	}
	if h.txns.dispatched[txn.ID] != "loader-1" {
		t.Error("dispatch must record the completing actor")
	}
	if len(result.TasksCompleted) != 1 || result.TasksCompleted[0] != pickup.ID {
		t.Errorf("expected the pending pickup to complete implicitly, got %v", result.TasksCompleted)
	}
	if h.changes.calls == 0 || h.changes.entityType != "loading" {
		t.Error("completion must archive a loading snapshot")
	}

	stored, err := h.loadings.GetByID(ctx, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.IsCompleted {
		t.Error("loading must persist as completed")
	}
}

func TestCompleteTwiceFails(t *testing.T) {
	h := newHarness()
	txn := h.outward(false)
	ctx := loaderCtx()

	l, err := h.svc.Start(ctx, &StartRequest{TransactionID: txn.ID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.Complete(ctx, l.ID); err != nil {
		t.Fatal(err)
	}

	_, err = h.svc.Complete(ctx, l.ID)
	if err == nil {
		t.Fatal("expected error on second completion")
	}
	if !apperror.IsCode(err, apperror.CodeAlreadyCompleted) {
		t.Errorf("expected already-completed, got %v", err)
	}
}

func TestCompleteWithNoPendingPickups(t *testing.T) {
	h := newHarness()
	txn := h.outward(false)
	ctx := loaderCtx()

	l, err := h.svc.Start(ctx, &StartRequest{TransactionID: txn.ID})
	if err != nil {
		t.Fatal(err)
	}

	result, err := h.svc.Complete(ctx, l.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.TasksCompleted) != 0 {
		t.Errorf("expected no implicit completions, got %v", result.TasksCompleted)
	}
}

func TestStartRequiresLoadingPermission(t *testing.T) {
	h := newHarness()
	txn := h.outward(false)

	ctx := appctx.WithActor(context.Background(), &appctx.ActorContext{
		UserID: "op-1",
		Roles:  []string{security.RoleOperator},
	})

	_, err := h.svc.Start(ctx, &StartRequest{TransactionID: txn.ID})
	if err == nil {
		t.Fatal("expected permission error")
	}
	if !apperror.IsCode(err, apperror.CodeForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}
