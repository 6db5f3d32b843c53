package task

import (
	"context"
	"testing"
	"time"

	"stockward/internal/core/apperror"
	appctx "stockward/internal/core/context"
	"stockward/internal/core/id"
	"stockward/internal/core/types"
	"stockward/internal/domain/process"
	"stockward/internal/domain/transaction"
)

type memTaskRepo struct {
	tasks []*Task
}

func (r *memTaskRepo) Create(ctx context.Context, t *Task) error {
	cp := *t
	r.tasks = append(r.tasks, &cp)
	return nil
}

func (r *memTaskRepo) GetByID(ctx context.Context, taskID id.ID) (*Task, error) {
	for _, t := range r.tasks {
		if t.ID == taskID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("task", taskID)
}

func (r *memTaskRepo) GetByIDForUpdate(ctx context.Context, taskID id.ID) (*Task, error) {
	return r.GetByID(ctx, taskID)
}

func (r *memTaskRepo) Update(ctx context.Context, t *Task) error {
	for i, existing := range r.tasks {
		if existing.ID == t.ID {
			cp := *t
			r.tasks[i] = &cp
			return nil
		}
	}
	return apperror.NewNotFound("task", t.ID)
}

func (r *memTaskRepo) ListByTransaction(ctx context.Context, transactionID id.ID) ([]Task, error) {
	var out []Task
	for _, t := range r.tasks {
		if t.TransactionID == transactionID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memTaskRepo) ListPendingPickupsForUpdate(ctx context.Context, transactionID id.ID) ([]Task, error) {
	var out []Task
	for _, t := range r.tasks {
		if t.TransactionID == transactionID && t.TypeCode == TypePickup && t.State == StatePending {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memTaskRepo) ListByAssignee(ctx context.Context, assigneeID string, state *State, limit, offset int) ([]Task, error) {
	var out []Task
	for _, t := range r.tasks {
		if t.AssigneeID != assigneeID {
			continue
		}
		if state != nil && t.State != *state {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *memTaskRepo) CountPendingByType(ctx context.Context) (map[TypeCode]int64, error) {
	counts := make(map[TypeCode]int64)
	for _, t := range r.tasks {
		if t.State == StatePending {
			counts[t.TypeCode]++
		}
	}
	return counts, nil
}

type memTypeRepo struct {
	active   map[TypeCode]bool
	upserted []*Type
}

func allTypesActive() *memTypeRepo {
	return &memTypeRepo{active: map[TypeCode]bool{
		TypePutaway: true, TypePickup: true, TypeTransfer: true,
	}}
}

func (r *memTypeRepo) GetActiveByCode(ctx context.Context, code TypeCode) (*Type, error) {
	if !r.active[code] {
		return nil, apperror.NewNotFound("task type", string(code))
	}
	return NewType(code, string(code), "seed"), nil
}

func (r *memTypeRepo) ListActive(ctx context.Context) ([]Type, error) { return nil, nil }

func (r *memTypeRepo) Upsert(ctx context.Context, t *Type) error {
	r.upserted = append(r.upserted, t)
	return nil
}

func generatorCtx() context.Context {
	return appctx.WithActor(context.Background(), &appctx.ActorContext{UserID: "worker"})
}

func inwardFixture() (*transaction.Transaction, *transaction.MutationResult, *transaction.Request) {
	locID := id.New()
	req := &transaction.Request{
		ProcessType: process.KindInward.String(),
		ItemID:      id.New(),
		Quantity:    types.MustQuantity("10"),
		LocationID:  &locID,
	}
	txn := &transaction.Transaction{
		ItemID:     req.ItemID,
		Quantity:   req.Quantity,
		LocationID: &locID,
	}
	txn.ID = id.New()
	txn.ProcessKind = process.KindInward
	return txn, &transaction.MutationResult{InventoryUpdated: true}, req
}

func TestGeneratorInwardCreatesPutaway(t *testing.T) {
	repo := &memTaskRepo{}
	gen := NewGenerator(repo, allTypesActive())

	txn, result, req := inwardFixture()
	req.AssigneeID = "worker-7"

	ids, err := gen.CreateForTransaction(generatorCtx(), txn, result, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 task, got %d", len(ids))
	}

	created := repo.tasks[0]
	if created.TypeCode != TypePutaway {
		t.Errorf("expected %s, got %s", TypePutaway, created.TypeCode)
	}
	if created.State != StatePending {
		t.Errorf("expected pending state, got %s", created.State)
	}
	if created.ToLocationID == nil || *created.ToLocationID != *txn.LocationID {
		t.Error("putaway destination must be the receiving location")
	}
	if created.AssigneeID != "worker-7" {
		t.Errorf("expected assignee worker-7, got %s", created.AssigneeID)
	}
}

func TestGeneratorOutwardCreatesPickupPerLine(t *testing.T) {
	repo := &memTaskRepo{}
	gen := NewGenerator(repo, allTypesActive())

	locID := id.New()
	staging := id.New()
	req := &transaction.Request{
		ProcessType:       process.KindOutward.String(),
		ItemID:            id.New(),
		Quantity:          types.MustQuantity("6"),
		LocationID:        &locID,
		StagingLocationID: &staging,
	}
	txn := &transaction.Transaction{ItemID: req.ItemID, Quantity: req.Quantity}
	txn.ID = id.New()
	txn.ProcessKind = process.KindOutward

	result := &transaction.MutationResult{
		InventoryUpdated: true,
		Lines: []transaction.MutationLine{
			{StockRecordID: id.New(), LocationID: locID, Quantity: types.MustQuantity("4")},
			{StockRecordID: id.New(), LocationID: locID, Quantity: types.MustQuantity("2")},
		},
	}

	ids, err := gen.CreateForTransaction(generatorCtx(), txn, result, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected one pickup per stock line, got %d", len(ids))
	}
	for i, task := range repo.tasks {
		if task.TypeCode != TypePickup {
			t.Errorf("task %d: expected %s, got %s", i, TypePickup, task.TypeCode)
		}
		if task.Quantity != result.Lines[i].Quantity {
			t.Errorf("task %d: expected line quantity %s, got %s", i, result.Lines[i].Quantity, task.Quantity)
		}
		if task.ToLocationID == nil || *task.ToLocationID != staging {
			t.Errorf("task %d: pickup destination must be the staging location", i)
		}
	}
}

func TestGeneratorTransferCreatesSingleTask(t *testing.T) {
	repo := &memTaskRepo{}
	gen := NewGenerator(repo, allTypesActive())

	from, to := id.New(), id.New()
	req := &transaction.Request{
		ProcessType:    process.KindTransfer.String(),
		ItemID:         id.New(),
		Quantity:       types.MustQuantity("3"),
		FromLocationID: &from,
		ToLocationID:   &to,
	}
	txn := &transaction.Transaction{
		ItemID: req.ItemID, Quantity: req.Quantity,
		FromLocationID: &from, ToLocationID: &to,
	}
	txn.ID = id.New()
	txn.ProcessKind = process.KindTransfer

	ids, err := gen.CreateForTransaction(generatorCtx(), txn, &transaction.MutationResult{InventoryUpdated: true}, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 transfer task, got %d", len(ids))
	}
	created := repo.tasks[0]
	if created.TypeCode != TypeTransfer {
		t.Errorf("expected %s, got %s", TypeTransfer, created.TypeCode)
	}
	if created.FromLocationID == nil || *created.FromLocationID != from {
		t.Error("transfer task must carry the source location")
	}
	if created.ToLocationID == nil || *created.ToLocationID != to {
		t.Error("transfer task must carry the destination location")
	}
}

func TestGeneratorSkipsAdjustmentAndReturn(t *testing.T) {
	for _, kind := range []process.Kind{process.KindAdjustment, process.KindReturn} {
		repo := &memTaskRepo{}
		gen := NewGenerator(repo, allTypesActive())

		txn := &transaction.Transaction{ItemID: id.New(), Quantity: types.MustQuantity("1")}
		txn.ID = id.New()
		txn.ProcessKind = kind

		ids, err := gen.CreateForTransaction(generatorCtx(), txn, &transaction.MutationResult{}, &transaction.Request{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", kind, err)
		}
		if len(ids) != 0 {
			t.Errorf("%s: expected no tasks, got %d", kind, len(ids))
		}
	}
}

func TestGeneratorMissingTypeIsConfigurationError(t *testing.T) {
	repo := &memTaskRepo{}
	gen := NewGenerator(repo, &memTypeRepo{active: map[TypeCode]bool{}})

	txn, result, req := inwardFixture()

	_, err := gen.CreateForTransaction(generatorCtx(), txn, result, req)
	if err == nil {
		t.Fatal("expected configuration error for missing task type")
	}
	if !apperror.IsCode(err, apperror.CodeConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
	if len(repo.tasks) != 0 {
		t.Error("no tasks may be created when the type is not configured")
	}
}

func TestTaskCompleteIsTerminal(t *testing.T) {
	task := &Task{State: StatePending}
	task.ID = id.New()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := task.Complete("worker", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !task.IsCompleted() {
		t.Fatal("expected completed state")
	}
	if task.CompletedBy != "worker" || task.CompletedAt == nil || !task.CompletedAt.Equal(at) {
		t.Error("completion must record actor and time")
	}

	err := task.Complete("worker-2", at.Add(time.Hour))
	if err == nil {
		t.Fatal("expected error on second completion")
	}
	if !apperror.IsCode(err, apperror.CodeAlreadyCompleted) {
		t.Errorf("expected already-completed, got %v", err)
	}
	if task.CompletedBy != "worker" {
		t.Error("second completion must not overwrite the first")
	}
}
