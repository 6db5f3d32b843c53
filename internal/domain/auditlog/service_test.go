package auditlog

import (
	"context"
	"testing"

	"stockward/internal/core/apperror"
	"stockward/internal/core/id"
	"stockward/internal/core/types"
	"stockward/internal/domain/ledger"
)

type captureRepo struct {
	entries []Entry
}

func (r *captureRepo) Append(ctx context.Context, entries []Entry) error {
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *captureRepo) ListByStockRecord(ctx context.Context, stockRecordID id.ID) ([]Entry, error) {
	return nil, nil
}

func (r *captureRepo) ListByTransaction(ctx context.Context, transactionID id.ID) ([]Entry, error) {
	return nil, nil
}

func validEntry() Entry {
	rec := ledger.NewStockRecord(ledger.Key{ItemID: id.New(), LocationID: id.New()}, "test")
	return NewEntry(rec, id.New(), ledger.MutationInward,
		types.MustQuantity("5"), types.MustQuantity("3"), "worker", "")
}

func TestAppendStoresValidEntries(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo)

	entry := validEntry()
	if err := svc.Append(context.Background(), []Entry{entry}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 stored entry, got %d", len(repo.entries))
	}
	if repo.entries[0].QuantityAfter != types.MustQuantity("8") {
		t.Errorf("expected after 8, got %s", repo.entries[0].QuantityAfter)
	}
}

func TestAppendRejectsBrokenArithmetic(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo)

	entry := validEntry()
	entry.QuantityAfter = types.MustQuantity("100")

	err := svc.Append(context.Background(), []Entry{entry})
	if err == nil {
		t.Fatal("expected error for before+changed != after")
	}
	if !apperror.IsCode(err, apperror.CodeInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
	if len(repo.entries) != 0 {
		t.Error("invalid entry must not reach storage")
	}
}

func TestAppendRejectsMissingTransactionReference(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo)

	entry := validEntry()
	entry.TransactionID = id.Nil()

	if err := svc.Append(context.Background(), []Entry{entry}); err == nil {
		t.Fatal("expected error for nil transaction reference")
	}
}

func TestAppendEmptyBatchIsNoop(t *testing.T) {
	svc := NewService(&captureRepo{})
	if err := svc.Append(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewEntryDerivesAfter(t *testing.T) {
	rec := ledger.NewStockRecord(ledger.Key{ItemID: id.New(), LocationID: id.New()}, "test")
	entry := NewEntry(rec, id.New(), ledger.MutationOutward,
		types.MustQuantity("10"), types.MustQuantity("4").Neg(), "worker", "picked")

	if entry.QuantityAfter != types.MustQuantity("6") {
		t.Errorf("expected after 6, got %s", entry.QuantityAfter)
	}
	if entry.StockRecordID != rec.ID {
		t.Error("entry must reference the mutated stock record")
	}
	if id.IsNil(entry.ID) {
		t.Error("entry must get its own id")
	}
}
