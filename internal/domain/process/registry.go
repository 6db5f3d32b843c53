package process

import (
	"context"
	"sync"
	"time"

	"stockward/internal/core/apperror"
	"stockward/pkg/logger"
)

// Repository defines catalog storage for process types.
type Repository interface {
	// ListActive returns all active process type entries.
	ListActive(ctx context.Context) ([]Type, error)

	// Upsert creates or updates a catalog entry by code.
	Upsert(ctx context.Context, pt *Type) error
}

// DefaultCacheTTL bounds staleness of the read-shared catalog cache.
// The catalog changes rarely; stale reads within the window are tolerated.
const DefaultCacheTTL = time.Hour

// Registry resolves process kinds against the active catalog, caching the
// result for DefaultCacheTTL. Resolution never blocks transaction processing
// beyond the initial load.
type Registry struct {
	repo Repository
	ttl  time.Duration

	mu       sync.RWMutex
	byCode   map[Kind]Type
	loadedAt time.Time

	// now is swappable for tests
	now func() time.Time
}

// NewRegistry creates a registry over the catalog repository.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo: repo,
		ttl:  DefaultCacheTTL,
		now:  time.Now,
	}
}

// NewRegistryWithTTL creates a registry with a custom cache TTL.
func NewRegistryWithTTL(repo Repository, ttl time.Duration) *Registry {
	r := NewRegistry(repo)
	r.ttl = ttl
	return r
}

// Resolve returns the active catalog entry for a wire code.
// Unknown codes and inactive entries yield NotFound.
func (r *Registry) Resolve(ctx context.Context, code string) (Type, error) {
	kind, ok := ParseKind(code)
	if !ok {
		return Type{}, apperror.NewNotFound("process type", code)
	}

	entries, err := r.snapshot(ctx)
	if err != nil {
		return Type{}, err
	}

	pt, ok := entries[kind]
	if !ok {
		return Type{}, apperror.NewNotFound("process type", code)
	}
	return pt, nil
}

// Active returns the active catalog entries straight from storage,
// bypassing the cache.
func (r *Registry) Active(ctx context.Context) ([]Type, error) {
	return r.repo.ListActive(ctx)
}

// Save validates and upserts a catalog entry, then drops the cache so the
// change is visible to the next resolution.
func (r *Registry) Save(ctx context.Context, pt *Type) error {
	if err := pt.Validate(ctx); err != nil {
		return err
	}
	if err := r.repo.Upsert(ctx, pt); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

// Invalidate drops the cache so the next Resolve reloads from the catalog.
// Eventual consistency within the TTL is acceptable for everything else.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.loadedAt = time.Time{}
	r.byCode = nil
	r.mu.Unlock()
}

// snapshot returns the cached active entries, reloading on TTL expiry.
func (r *Registry) snapshot(ctx context.Context) (map[Kind]Type, error) {
	r.mu.RLock()
	if r.byCode != nil && r.now().Sub(r.loadedAt) < r.ttl {
		entries := r.byCode
		r.mu.RUnlock()
		return entries, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if r.byCode != nil && r.now().Sub(r.loadedAt) < r.ttl {
		return r.byCode, nil
	}

	active, err := r.repo.ListActive(ctx)
	if err != nil {
		// Serve the stale cache if we have one rather than failing resolution.
		if r.byCode != nil {
			logger.Warn(ctx, "process type reload failed, serving stale cache", "error", err)
			return r.byCode, nil
		}
		return nil, apperror.NewInternal(err)
	}

	byCode := make(map[Kind]Type, len(active))
	for _, pt := range active {
		byCode[pt.Code] = pt
	}
	r.byCode = byCode
	r.loadedAt = r.now()

	return r.byCode, nil
}
