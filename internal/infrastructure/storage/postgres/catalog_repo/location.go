package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockward/internal/core/apperror"
	"stockward/internal/core/entity"
	"stockward/internal/core/id"
	"stockward/internal/domain/catalogs/location"
	"stockward/internal/infrastructure/storage/postgres"
)

const (
	warehousesTable = "warehouses"
	locationsTable  = "locations"
)

// LocationRepo implements location.Repository over the warehouses and
// locations tables.
type LocationRepo struct {
	txManager        *postgres.TxManager
	builder          squirrel.StatementBuilderType
	warehouseColumns []string
	locationColumns  []string
}

// NewLocationRepo creates a warehouse/location directory repository.
func NewLocationRepo(txManager *postgres.TxManager) *LocationRepo {
	return &LocationRepo{
		txManager:        txManager,
		builder:          squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		warehouseColumns: postgres.ExtractDBColumns[location.Warehouse](),
		locationColumns:  postgres.ExtractDBColumns[location.Location](),
	}
}

func (r *LocationRepo) CreateWarehouse(ctx context.Context, w *location.Warehouse) error {
	data := postgres.StructToMap(w)

	sql, args, err := r.builder.Insert(warehousesTable).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

func (r *LocationRepo) GetWarehouse(ctx context.Context, warehouseID id.ID) (*location.Warehouse, error) {
	q := r.builder.Select(r.warehouseColumns...).
		From(warehousesTable).
		Where(squirrel.Eq{"id": warehouseID, "status": entity.StatusActive}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var w location.Warehouse
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("warehouse", warehouseID)
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

func (r *LocationRepo) ListWarehouses(ctx context.Context) ([]location.Warehouse, error) {
	q := r.builder.Select(r.warehouseColumns...).
		From(warehousesTable).
		Where(squirrel.Eq{"status": entity.StatusActive}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var warehouses []location.Warehouse
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &warehouses, sql, args...); err != nil {
		return nil, fmt.Errorf("select warehouses: %w", err)
	}
	return warehouses, nil
}

func (r *LocationRepo) CreateLocation(ctx context.Context, l *location.Location) error {
	data := postgres.StructToMap(l)

	sql, args, err := r.builder.Insert(locationsTable).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (r *LocationRepo) GetLocation(ctx context.Context, locationID id.ID) (*location.Location, error) {
	q := r.builder.Select(r.locationColumns...).
		From(locationsTable).
		Where(squirrel.Eq{"id": locationID, "status": entity.StatusActive}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var l location.Location
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &l, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("location", locationID)
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

func (r *LocationRepo) ListLocations(ctx context.Context, warehouseID id.ID) ([]location.Location, error) {
	q := r.builder.Select(r.locationColumns...).
		From(locationsTable).
		Where(squirrel.Eq{"warehouse_id": warehouseID, "status": entity.StatusActive}).
		OrderBy("code ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var locations []location.Location
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &locations, sql, args...); err != nil {
		return nil, fmt.Errorf("select locations: %w", err)
	}
	return locations, nil
}
