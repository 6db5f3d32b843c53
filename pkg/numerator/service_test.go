package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// seqMock simulates the sys_sequences UPSERT: every call bumps the stored
// value by the increment argument (1 for strict, range size for cached) and
// returns the new value.
type seqMock struct {
	mu           sync.Mutex
	currentValue int64
	calls        int
	err          error
}

func (m *seqMock) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return &mockRow{err: m.err}
	}

	var increment int64 = 1
	if len(args) == 2 {
		if v, ok := args[1].(int64); ok {
			increment = v
		}
	}
	m.currentValue += increment
	return &mockRow{val: m.currentValue}
}

var period = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func TestGetNextNumberStrict(t *testing.T) {
	q := &seqMock{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("TXN")

	num, err := svc.GetNextNumber(ctx, cfg, nil, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TXN-2026-00001" {
		t.Errorf("expected TXN-2026-00001, got %s", num)
	}

	num, err = svc.GetNextNumber(ctx, cfg, nil, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TXN-2026-00002" {
		t.Errorf("expected TXN-2026-00002, got %s", num)
	}
	if q.calls != 2 {
		t.Errorf("strict strategy must hit the database per number, got %d calls", q.calls)
	}
}

func TestGetNextNumberCachedReservesRange(t *testing.T) {
	q := &seqMock{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("LOAD")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	for i := 1; i <= 10; i++ {
		num, err := svc.GetNextNumber(ctx, cfg, opts, period)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		want := formatNumber(cfg, period, int64(i))
		if num != want {
			t.Errorf("call %d: expected %s, got %s", i, want, num)
		}
	}
	if q.calls != 1 {
		t.Errorf("expected a single range reservation for 10 numbers, got %d calls", q.calls)
	}

	// The 11th number exhausts the range and reserves a new block.
	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	if err != nil {
		t.Fatal(err)
	}
	if num != "LOAD-2026-00011" {
		t.Errorf("expected LOAD-2026-00011, got %s", num)
	}
	if q.calls != 2 {
		t.Errorf("expected a second reservation, got %d calls", q.calls)
	}
}

func TestGetNextNumberPropagatesQueryError(t *testing.T) {
	q := &seqMock{err: errors.New("connection refused")}
	svc := New(q)

	_, err := svc.GetNextNumber(context.Background(), DefaultConfig("TXN"), nil, period)
	if err == nil {
		t.Fatal("expected error from failing querier")
	}
}

func TestGetNextNumberNilService(t *testing.T) {
	var svc *Service
	if _, err := svc.GetNextNumber(context.Background(), DefaultConfig("TXN"), nil, period); err == nil {
		t.Fatal("expected error on nil service")
	}
}

func TestBuildKey(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"yearly reset", Config{Prefix: "TXN", ResetPeriod: "year"}, "TXN_2026"},
		{"monthly reset", Config{Prefix: "TXN", ResetPeriod: "month"}, "TXN_2026_03"},
		{"no reset", Config{Prefix: "TXN", ResetPeriod: "never"}, "TXN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildKey(tt.cfg, period); got != tt.want {
				t.Errorf("buildKey = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		num  int64
		want string
	}{
		{"default padding", Config{Prefix: "TXN", IncludeYear: true, PadWidth: 5}, 42, "TXN-2026-00042"},
		{"zero pad width falls back to 5", Config{Prefix: "TXN", IncludeYear: true}, 1, "TXN-2026-00001"},
		{"no year segment", Config{Prefix: "SEQ", PadWidth: 3}, 7, "SEQ-007"},
		{"wide counter overflows padding", Config{Prefix: "TXN", IncludeYear: true, PadWidth: 3}, 123456, "TXN-2026-123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatNumber(tt.cfg, period, tt.num); got != tt.want {
				t.Errorf("formatNumber = %s, want %s", got, tt.want)
			}
		})
	}
}
