package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockward/internal/core/apperror"
	appctx "stockward/internal/core/context"
	"stockward/internal/core/entity"
	"stockward/internal/core/id"
	"stockward/internal/core/security"
	"stockward/internal/core/types"
	"stockward/internal/domain/auditlog"
	"stockward/internal/domain/process"
	"stockward/pkg/numerator"
)

// passthroughTxManager runs the closure directly; rollback is simulated by
// the closure returning an error.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeTxnRepo struct {
	created []*Transaction
	failOn  error
}

func (f *fakeTxnRepo) Create(ctx context.Context, txn *Transaction) error {
	if f.failOn != nil {
		return f.failOn
	}
	f.created = append(f.created, txn)
	return nil
}

func (f *fakeTxnRepo) GetByID(ctx context.Context, txnID id.ID) (*Transaction, error) {
	for _, txn := range f.created {
		if txn.ID == txnID {
			return txn, nil
		}
	}
	return nil, apperror.NewNotFound("transaction", txnID)
}

func (f *fakeTxnRepo) MarkDispatched(ctx context.Context, txnID id.ID, by string, at time.Time) error {
	return nil
}

func (f *fakeTxnRepo) List(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	out := make([]Transaction, 0, len(f.created))
	for _, txn := range f.created {
		out = append(out, *txn)
	}
	return out, nil
}

// storeBackedOrders recomputes the received sum from the transaction store
// the way the SQL repository does, so a row inserted earlier in the same
// atomic unit is already part of the sum when the processor re-checks.
type storeBackedOrders struct {
	store   *fakeTxnRepo
	ordered map[id.ID]types.Quantity
}

func (o *storeBackedOrders) received(lineID id.ID, exclude *id.ID) types.Quantity {
	var total types.Quantity
	for _, txn := range o.store.created {
		if txn.PurchaseOrderItemID == nil || *txn.PurchaseOrderItemID != lineID {
			continue
		}
		if txn.ProcessKind != process.KindInward || txn.Status != entity.StatusActive {
			continue
		}
		if exclude != nil && txn.ID == *exclude {
			continue
		}
		total += txn.Quantity
	}
	return total
}

func (o *storeBackedOrders) RemainingQuantity(ctx context.Context, lineID id.ID) (types.Quantity, error) {
	ordered, ok := o.ordered[lineID]
	if !ok {
		return 0, apperror.NewNotFound("purchase order item", lineID)
	}
	return ordered - o.received(lineID, nil), nil
}

func (o *storeBackedOrders) RemainingQuantityExcluding(ctx context.Context, lineID, txnID id.ID) (types.Quantity, error) {
	ordered, ok := o.ordered[lineID]
	if !ok {
		return 0, apperror.NewNotFound("purchase order item", lineID)
	}
	return ordered - o.received(lineID, &txnID), nil
}

type fakeProcessRepo struct{}

func (fakeProcessRepo) ListActive(ctx context.Context) ([]process.Type, error) {
	kinds := []process.Kind{
		process.KindInward, process.KindOutward, process.KindTransfer,
		process.KindAdjustment, process.KindReturn,
	}
	out := make([]process.Type, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, process.Type{Code: k, Name: k.String(), IsActive: true})
	}
	return out, nil
}

func (fakeProcessRepo) Upsert(ctx context.Context, pt *process.Type) error { return nil }

type fakeAuditRepo struct {
	appended []auditlog.Entry
	failOn   error
}

func (f *fakeAuditRepo) Append(ctx context.Context, entries []auditlog.Entry) error {
	if f.failOn != nil {
		return f.failOn
	}
	f.appended = append(f.appended, entries...)
	return nil
}

func (f *fakeAuditRepo) ListByStockRecord(ctx context.Context, stockRecordID id.ID) ([]auditlog.Entry, error) {
	return nil, nil
}

func (f *fakeAuditRepo) ListByTransaction(ctx context.Context, transactionID id.ID) ([]auditlog.Entry, error) {
	return nil, nil
}

// seqRow simulates the sequences table RETURNING clause.
type seqRow struct {
	val int64
	err error
}

func (r seqRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*int64); ok {
		*p = r.val
	}
	return nil
}

type seqQuerier struct {
	counters map[string]int64
}

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if q.counters == nil {
		q.counters = make(map[string]int64)
	}
	key, _ := args[0].(string)
	q.counters[key]++
	return seqRow{val: q.counters[key]}
}

type recordingTaskCreator struct {
	ids []id.ID
	err error
}

func (t *recordingTaskCreator) CreateForTransaction(ctx context.Context, txn *Transaction, result *MutationResult, req *Request) ([]id.ID, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.ids, nil
}

type recordingRatingNotifier struct {
	calls int
	poID  id.ID
}

func (r *recordingRatingNotifier) AdjustForDelivery(ctx context.Context, purchaseOrderID id.ID, actualDate time.Time, qualityStatus string) {
	r.calls++
	r.poID = purchaseOrderID
}

type serviceHarness struct {
	*fixture
	svc   *Service
	repo  *fakeTxnRepo
	audit *fakeAuditRepo
	tasks *recordingTaskCreator
}

func newServiceHarness() *serviceHarness {
	f := newFixture()
	repo := &fakeTxnRepo{}
	audit := &fakeAuditRepo{}
	tasks := &recordingTaskCreator{ids: []id.ID{id.New()}}

	svc := NewService(
		process.NewRegistry(fakeProcessRepo{}),
		NewProcessors(f.deps),
		repo,
		auditlog.NewService(audit),
		passthroughTxManager{},
		numerator.New(&seqQuerier{}),
		security.DefaultPolicy(),
	).WithTaskCreator(tasks)

	return &serviceHarness{fixture: f, svc: svc, repo: repo, audit: audit, tasks: tasks}
}

// newOrderBackedHarness wires the purchase order collaborator to the
// transaction store itself, mirroring production where both read the same
// database inside one transaction.
func newOrderBackedHarness(ordered types.Quantity) (*serviceHarness, id.ID) {
	f := newFixture()
	repo := &fakeTxnRepo{}
	audit := &fakeAuditRepo{}
	tasks := &recordingTaskCreator{}
	lineID := id.New()
	f.deps.Orders = &storeBackedOrders{
		store:   repo,
		ordered: map[id.ID]types.Quantity{lineID: ordered},
	}

	svc := NewService(
		process.NewRegistry(fakeProcessRepo{}),
		NewProcessors(f.deps),
		repo,
		auditlog.NewService(audit),
		passthroughTxManager{},
		numerator.New(&seqQuerier{}),
		security.DefaultPolicy(),
	).WithTaskCreator(tasks)

	return &serviceHarness{fixture: f, svc: svc, repo: repo, audit: audit, tasks: tasks}, lineID
}

func TestCreateInwardEndToEnd(t *testing.T) {
	h := newServiceHarness()
	ctx := testCtx()

	req := h.request(process.KindInward, qty("10"))
	result, err := h.svc.Create(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, process.KindInward, result.ProcessType)
	assert.True(t, result.InventoryUpdated)
	assert.Equal(t, qty("10"), result.QuantityAfter)
	assert.Len(t, result.TasksCreated, 1)
	assert.Regexp(t, `^TXN-\d{4}-00001$`, result.Number)

	require.Len(t, h.repo.created, 1)
	require.Len(t, h.audit.appended, 1)
	assert.Equal(t, h.repo.created[0].ID, h.audit.appended[0].TransactionID)
}

func TestCreateRequiresPermission(t *testing.T) {
	h := newServiceHarness()
	ctx := appctx.WithActor(context.Background(), &appctx.ActorContext{
		UserID: "viewer",
		Roles:  []string{security.RoleLoader},
	})

	req := h.request(process.KindInward, qty("1"))
	_, err := h.svc.Create(ctx, req)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
	assert.Empty(t, h.repo.created)
}

func TestCreateRejectsAnonymous(t *testing.T) {
	h := newServiceHarness()

	req := h.request(process.KindInward, qty("1"))
	_, err := h.svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
}

func TestCreateUnknownProcessType(t *testing.T) {
	h := newServiceHarness()
	ctx := testCtx()

	req := h.request(process.KindInward, qty("1"))
	req.ProcessType = "TELEPORT"

	_, err := h.svc.Create(ctx, req)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreateValidationFailureListsAllErrors(t *testing.T) {
	h := newServiceHarness()
	ctx := testCtx()

	req := &Request{ProcessType: process.KindInward.String()}
	_, err := h.svc.Create(ctx, req)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, h.repo.created)
}

func TestCreateRollsBackWhenAuditFails(t *testing.T) {
	h := newServiceHarness()
	h.audit.failOn = errors.New("audit insert failed")
	ctx := testCtx()

	req := h.request(process.KindInward, qty("5"))
	_, err := h.svc.Create(ctx, req)
	require.Error(t, err)
}

func TestCreateSwallowsTaskGenerationFailure(t *testing.T) {
	h := newServiceHarness()
	h.tasks.err = errors.New("task table unavailable")
	ctx := testCtx()

	req := h.request(process.KindInward, qty("5"))
	result, err := h.svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, result.TasksCreated)
	// The stock mutation still committed.
	assert.Equal(t, qty("5"), result.QuantityAfter)
}

func TestCreateNotifiesRatingOnlyForOrderBackedInward(t *testing.T) {
	h := newServiceHarness()
	rating := &recordingRatingNotifier{}
	h.svc.WithRatingNotifier(rating)
	ctx := testCtx()

	// Inward without a purchase order: no rating call.
	req := h.request(process.KindInward, qty("2"))
	_, err := h.svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 0, rating.calls)

	// Inward against an order line: one rating call with the order id.
	poID := id.New()
	lineID := id.New()
	h.orders.remaining[lineID] = qty("100")

	req = h.request(process.KindInward, qty("2"))
	req.PurchaseOrderID = &poID
	req.PurchaseOrderItemID = &lineID
	_, err = h.svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, rating.calls)
	assert.Equal(t, poID, rating.poID)

	// Outward never triggers rating.
	h.seedStock(h.locationID, qty("50"), 0)
	req = h.request(process.KindOutward, qty("1"))
	_, err = h.svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, rating.calls)
}

func TestCreateInwardReceiptFillingOrderSucceeds(t *testing.T) {
	h, lineID := newOrderBackedHarness(qty("10"))
	ctx := testCtx()
	poID := id.New()

	// A single receipt for the full ordered quantity. The re-check runs
	// after the row is inserted, so the received sum must not count the
	// receipt against itself.
	req := h.request(process.KindInward, qty("10"))
	req.PurchaseOrderID = &poID
	req.PurchaseOrderItemID = &lineID

	result, err := h.svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, qty("10"), result.QuantityAfter)
	require.Len(t, h.repo.created, 1)
}

func TestCreateInwardCumulativeOverReceiptRejected(t *testing.T) {
	h, lineID := newOrderBackedHarness(qty("10"))
	ctx := testCtx()
	poID := id.New()

	req := h.request(process.KindInward, qty("6"))
	req.PurchaseOrderID = &poID
	req.PurchaseOrderItemID = &lineID
	_, err := h.svc.Create(ctx, req)
	require.NoError(t, err)

	// Only 4 remain on the line; a second receipt of 5 must be refused.
	req = h.request(process.KindInward, qty("5"))
	req.PurchaseOrderID = &poID
	req.PurchaseOrderItemID = &lineID
	_, err = h.svc.Create(ctx, req)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCreateNumbersSequentially(t *testing.T) {
	h := newServiceHarness()
	ctx := testCtx()

	first, err := h.svc.Create(ctx, h.request(process.KindInward, qty("1")))
	require.NoError(t, err)
	second, err := h.svc.Create(ctx, h.request(process.KindInward, qty("1")))
	require.NoError(t, err)

	assert.NotEqual(t, first.Number, second.Number)
	assert.Regexp(t, `00002$`, second.Number)
}
