package ledger

import (
	"testing"
	"time"

	"stockward/internal/core/apperror"
	"stockward/internal/core/id"
	"stockward/internal/core/types"
)

func day(offset int) *time.Time {
	t := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	return &t
}

func line(onHand, reserved string, expiry *time.Time) *StockRecord {
	rec := NewStockRecord(Key{ItemID: id.New(), LocationID: id.New()}, "test")
	rec.OnHand = types.MustQuantity(onHand)
	rec.Reserved = types.MustQuantity(reserved)
	rec.ExpiryDate = expiry
	return rec
}

func TestAllocateFIFO(t *testing.T) {
	tests := []struct {
		name      string
		records   []*StockRecord
		requested string
		wantTakes []string
		wantErr   string
	}{
		{
			name:      "single line exact fill",
			records:   []*StockRecord{line("10", "0", nil)},
			requested: "10",
			wantTakes: []string{"10"},
		},
		{
			name: "earliest expiry drained first",
			records: []*StockRecord{
				line("10", "0", day(30)),
				line("4", "0", day(5)),
			},
			requested: "6",
			wantTakes: []string{"4", "2"},
		},
		{
			name: "undated lines serve last",
			records: []*StockRecord{
				line("10", "0", nil),
				line("3", "0", day(60)),
			},
			requested: "5",
			wantTakes: []string{"3", "2"},
		},
		{
			name: "reserved stock excluded",
			records: []*StockRecord{
				line("10", "7", day(1)),
				line("10", "0", day(2)),
			},
			requested: "8",
			wantTakes: []string{"3", "5"},
		},
		{
			name: "aggregate shortfall yields no allocations",
			records: []*StockRecord{
				line("3", "0", day(1)),
				line("2", "1", day(2)),
			},
			requested: "5",
			wantErr:   apperror.CodeInsufficientStock,
		},
		{
			name:      "empty ledger",
			records:   nil,
			requested: "1",
			wantErr:   apperror.CodeInsufficientStock,
		},
		{
			name:      "non-positive request rejected",
			records:   []*StockRecord{line("10", "0", nil)},
			requested: "0",
			wantErr:   apperror.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allocations, err := AllocateFIFO(tt.records, types.MustQuantity(tt.requested))

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error with code %s, got nil", tt.wantErr)
				}
				if !apperror.IsCode(err, tt.wantErr) {
					t.Fatalf("expected code %s, got %v", tt.wantErr, err)
				}
				if allocations != nil {
					t.Fatalf("expected no allocations on failure, got %d", len(allocations))
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(allocations) != len(tt.wantTakes) {
				t.Fatalf("expected %d allocations, got %d", len(tt.wantTakes), len(allocations))
			}
			for i, want := range tt.wantTakes {
				if got := allocations[i].Take; got != types.MustQuantity(want) {
					t.Errorf("allocation %d: expected take %s, got %s", i, want, got)
				}
			}
		})
	}
}

func TestAllocateFIFOTieBreaksOnID(t *testing.T) {
	a := line("5", "0", day(10))
	b := line("5", "0", day(10))

	// Same expiry: the ordering must be deterministic across input orders.
	first, err := AllocateFIFO([]*StockRecord{a, b}, types.MustQuantity("1"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := AllocateFIFO([]*StockRecord{b, a}, types.MustQuantity("1"))
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Record.ID != second[0].Record.ID {
		t.Error("allocation order depends on input order for equal expiry dates")
	}
}

func TestStockRecordApply(t *testing.T) {
	rec := NewStockRecord(Key{ItemID: id.New(), LocationID: id.New()}, "creator")
	txnID := id.New()

	rec.Apply(MutationInward, types.MustQuantity("7"), txnID, "worker")

	if rec.OnHand != types.MustQuantity("7") {
		t.Errorf("expected on-hand 7, got %s", rec.OnHand)
	}
	if rec.LastAction != MutationInward {
		t.Errorf("expected last action %s, got %s", MutationInward, rec.LastAction)
	}
	if rec.LastChanged != types.MustQuantity("7") {
		t.Errorf("expected last changed 7, got %s", rec.LastChanged)
	}
	if rec.LastReferenceID != txnID {
		t.Error("expected last reference to point at the transaction")
	}

	rec.Apply(MutationOutward, types.MustQuantity("3").Neg(), txnID, "worker")
	if rec.OnHand != types.MustQuantity("4") {
		t.Errorf("expected on-hand 4 after deduction, got %s", rec.OnHand)
	}
}

func TestAvailableExcludesReserved(t *testing.T) {
	rec := line("10", "4", nil)
	if got := rec.Available(); got != types.MustQuantity("6") {
		t.Errorf("expected available 6, got %s", got)
	}
}
