package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockward/internal/core/entity"
	"stockward/internal/domain/process"
	"stockward/internal/infrastructure/storage/postgres"
)

const processTypesTable = "process_types"

// ProcessTypeRepo implements process.Repository.
type ProcessTypeRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

// NewProcessTypeRepo creates a process type catalog repository.
func NewProcessTypeRepo(txManager *postgres.TxManager) *ProcessTypeRepo {
	return &ProcessTypeRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   postgres.ExtractDBColumns[process.Type](),
	}
}

func (r *ProcessTypeRepo) ListActive(ctx context.Context) ([]process.Type, error) {
	q := r.builder.Select(r.columns...).
		From(processTypesTable).
		Where(squirrel.Eq{"is_active": true, "status": entity.StatusActive}).
		OrderBy("code ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var types []process.Type
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &types, sql, args...); err != nil {
		return nil, fmt.Errorf("select process types: %w", err)
	}
	return types, nil
}

func (r *ProcessTypeRepo) Upsert(ctx context.Context, pt *process.Type) error {
	data := postgres.StructToMap(pt)

	q := r.builder.Insert(processTypesTable).
		SetMap(data).
		Suffix(`ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			is_active = EXCLUDED.is_active,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert process type: %w", err)
	}
	return nil
}
