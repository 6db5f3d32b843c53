package process

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockward/internal/core/apperror"
)

type countingRepo struct {
	calls    int
	entries  []Type
	upserted []*Type
	err      error
}

func (r *countingRepo) ListActive(ctx context.Context) ([]Type, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.entries, nil
}

func (r *countingRepo) Upsert(ctx context.Context, pt *Type) error {
	r.upserted = append(r.upserted, pt)
	return nil
}

func activeEntries(kinds ...Kind) []Type {
	out := make([]Type, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, Type{Code: k, Name: k.String(), IsActive: true})
	}
	return out
}

func TestResolveCachesWithinTTL(t *testing.T) {
	repo := &countingRepo{entries: activeEntries(KindInward, KindOutward)}
	r := NewRegistry(repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		pt, err := r.Resolve(ctx, "INWARD")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pt.Code != KindInward {
			t.Fatalf("expected %s, got %s", KindInward, pt.Code)
		}
	}
	if repo.calls != 1 {
		t.Errorf("expected a single catalog load, got %d", repo.calls)
	}
}

func TestResolveReloadsAfterTTL(t *testing.T) {
	repo := &countingRepo{entries: activeEntries(KindInward)}
	r := NewRegistry(repo)

	current := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return current }

	ctx := context.Background()
	if _, err := r.Resolve(ctx, "INWARD"); err != nil {
		t.Fatal(err)
	}

	current = current.Add(DefaultCacheTTL + time.Minute)
	if _, err := r.Resolve(ctx, "INWARD"); err != nil {
		t.Fatal(err)
	}
	if repo.calls != 2 {
		t.Errorf("expected reload after TTL expiry, got %d loads", repo.calls)
	}
}

func TestResolveUnknownCode(t *testing.T) {
	r := NewRegistry(&countingRepo{entries: activeEntries(KindInward)})

	_, err := r.Resolve(context.Background(), "TELEPORT")
	if !apperror.IsNotFound(err) {
		t.Errorf("expected not-found for unknown code, got %v", err)
	}
}

func TestResolveInactiveKindIsNotFound(t *testing.T) {
	// OUTWARD parses but is absent from the active catalog.
	r := NewRegistry(&countingRepo{entries: activeEntries(KindInward)})

	_, err := r.Resolve(context.Background(), "OUTWARD")
	if !apperror.IsNotFound(err) {
		t.Errorf("expected not-found for inactive kind, got %v", err)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	repo := &countingRepo{entries: activeEntries(KindInward)}
	r := NewRegistry(repo)
	ctx := context.Background()

	if _, err := r.Resolve(ctx, "INWARD"); err != nil {
		t.Fatal(err)
	}
	r.Invalidate()
	if _, err := r.Resolve(ctx, "INWARD"); err != nil {
		t.Fatal(err)
	}
	if repo.calls != 2 {
		t.Errorf("expected reload after invalidation, got %d loads", repo.calls)
	}
}

func TestSaveUpsertsAndInvalidatesCache(t *testing.T) {
	repo := &countingRepo{entries: activeEntries(KindInward)}
	r := NewRegistry(repo)
	ctx := context.Background()

	if _, err := r.Resolve(ctx, "INWARD"); err != nil {
		t.Fatal(err)
	}

	pt := NewType(KindOutward, "Goods issue", "", "admin")
	if err := r.Save(ctx, pt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.upserted) != 1 || repo.upserted[0].Code != KindOutward {
		t.Fatalf("expected one upserted entry, got %v", repo.upserted)
	}

	// The next resolution must reload rather than serve the old cache.
	repo.entries = activeEntries(KindInward, KindOutward)
	if _, err := r.Resolve(ctx, "OUTWARD"); err != nil {
		t.Fatalf("expected saved entry to resolve: %v", err)
	}
	if repo.calls != 2 {
		t.Errorf("expected reload after save, got %d loads", repo.calls)
	}
}

func TestSaveRejectsInvalidEntry(t *testing.T) {
	repo := &countingRepo{}
	r := NewRegistry(repo)

	pt := NewType(KindInward, "", "", "admin")
	err := r.Save(context.Background(), pt)
	if !apperror.IsCode(err, apperror.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.upserted) != 0 {
		t.Errorf("invalid entry must not reach storage")
	}
}

func TestResolveServesStaleCacheOnReloadFailure(t *testing.T) {
	repo := &countingRepo{entries: activeEntries(KindInward)}
	r := NewRegistry(repo)

	current := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return current }

	ctx := context.Background()
	if _, err := r.Resolve(ctx, "INWARD"); err != nil {
		t.Fatal(err)
	}

	repo.err = errors.New("catalog unavailable")
	current = current.Add(DefaultCacheTTL + time.Minute)

	pt, err := r.Resolve(ctx, "INWARD")
	if err != nil {
		t.Fatalf("expected stale cache to serve, got %v", err)
	}
	if pt.Code != KindInward {
		t.Errorf("expected cached entry, got %s", pt.Code)
	}
}

func TestResolveFailsWithoutAnyCache(t *testing.T) {
	repo := &countingRepo{err: errors.New("catalog unavailable")}
	r := NewRegistry(repo)

	_, err := r.Resolve(context.Background(), "INWARD")
	if err == nil {
		t.Fatal("expected error when no snapshot was ever loaded")
	}
	if !apperror.IsCode(err, apperror.CodeInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in     string
		want   Kind
		wantOK bool
	}{
		{"INWARD", KindInward, true},
		{"inward", KindInward, true},
		{"  Outward  ", KindOutward, true},
		{"TRANSFER", KindTransfer, true},
		{"ADJUSTMENT", KindAdjustment, true},
		{"RETURN", KindReturn, true},
		{"", "", false},
		{"SHIP", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseKind(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
