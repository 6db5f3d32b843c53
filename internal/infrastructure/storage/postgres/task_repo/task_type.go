package task_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockward/internal/core/apperror"
	"stockward/internal/core/entity"
	"stockward/internal/domain/task"
	"stockward/internal/infrastructure/storage/postgres"
)

const taskTypesTable = "task_types"

// TypeRepo implements task.TypeRepository.
type TypeRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

// NewTypeRepo creates a task type catalog repository.
func NewTypeRepo(txManager *postgres.TxManager) *TypeRepo {
	return &TypeRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   postgres.ExtractDBColumns[task.Type](),
	}
}

// GetActiveByCode returns the active catalog entry or NotFound.
func (r *TypeRepo) GetActiveByCode(ctx context.Context, code task.TypeCode) (*task.Type, error) {
	q := r.builder.Select(r.columns...).
		From(taskTypesTable).
		Where(squirrel.Eq{
			"code":      code,
			"is_active": true,
			"status":    entity.StatusActive,
		}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t task.Type
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("task type", code)
		}
		return nil, fmt.Errorf("get task type: %w", err)
	}
	return &t, nil
}

// ListActive returns all active catalog entries.
func (r *TypeRepo) ListActive(ctx context.Context) ([]task.Type, error) {
	q := r.builder.Select(r.columns...).
		From(taskTypesTable).
		Where(squirrel.Eq{"is_active": true, "status": entity.StatusActive}).
		OrderBy("code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []task.Type
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select task types: %w", err)
	}
	return entries, nil
}

// Upsert creates or updates a catalog entry by code.
func (r *TypeRepo) Upsert(ctx context.Context, t *task.Type) error {
	data := postgres.StructToMap(t)

	q := r.builder.Insert(taskTypesTable).
		SetMap(data).
		Suffix(`ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			is_active = EXCLUDED.is_active,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert task type: %w", err)
	}
	return nil
}
