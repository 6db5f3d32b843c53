// Package loading_repo provides PostgreSQL storage for loading records.
package loading_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockward/internal/core/apperror"
	"stockward/internal/core/entity"
	"stockward/internal/core/id"
	"stockward/internal/domain/loading"
	"stockward/internal/infrastructure/storage/postgres"
)

const loadingsTable = "loadings"

// LoadingRepo implements loading.Repository.
type LoadingRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

// NewLoadingRepo creates a loading repository.
func NewLoadingRepo(txManager *postgres.TxManager) *LoadingRepo {
	return &LoadingRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   postgres.ExtractDBColumns[loading.Loading](),
	}
}

// Create inserts a new loading.
func (r *LoadingRepo) Create(ctx context.Context, l *loading.Loading) error {
	data := postgres.StructToMap(l)

	q := r.builder.Insert(loadingsTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert loading: %w", err)
	}
	return nil
}

// GetByID returns a loading.
func (r *LoadingRepo) GetByID(ctx context.Context, loadingID id.ID) (*loading.Loading, error) {
	return r.get(ctx, loadingID, false)
}

// GetByIDForUpdate locks the loading row for completion.
func (r *LoadingRepo) GetByIDForUpdate(ctx context.Context, loadingID id.ID) (*loading.Loading, error) {
	return r.get(ctx, loadingID, true)
}

func (r *LoadingRepo) get(ctx context.Context, loadingID id.ID, forUpdate bool) (*loading.Loading, error) {
	q := r.builder.Select(r.columns...).
		From(loadingsTable).
		Where(squirrel.Eq{"id": loadingID, "status": entity.StatusActive}).
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var l loading.Loading
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &l, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("loading", loadingID)
		}
		return nil, fmt.Errorf("get loading: %w", err)
	}
	return &l, nil
}

// Update persists completion fields of a locked loading.
func (r *LoadingRepo) Update(ctx context.Context, l *loading.Loading) error {
	q := r.builder.Update(loadingsTable).
		Set("is_completed", l.IsCompleted).
		Set("completed_by", l.CompletedBy).
		Set("completed_at", l.CompletedAt).
		Set("remarks", l.Remarks).
		Set("updated_by", l.UpdatedBy).
		Set("updated_at", l.UpdatedAt).
		Where(squirrel.Eq{"id": l.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update loading: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("loading", l.ID)
	}
	return nil
}

// List returns loadings matching a filter, newest first.
func (r *LoadingRepo) List(ctx context.Context, f loading.ListFilter) ([]loading.Loading, error) {
	q := r.builder.Select(r.columns...).
		From(loadingsTable).
		Where(squirrel.Eq{"status": entity.StatusActive}).
		OrderBy("created_at DESC", "id DESC")

	if f.TransactionID != nil {
		q = q.Where(squirrel.Eq{"transaction_id": *f.TransactionID})
	}
	if f.Completed != nil {
		q = q.Where(squirrel.Eq{"is_completed": *f.Completed})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var loadings []loading.Loading
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &loadings, sql, args...); err != nil {
		return nil, fmt.Errorf("select loadings: %w", err)
	}
	return loadings, nil
}
