// Package ledger_repo provides the PostgreSQL implementation of the stock
// ledger repository. Row locks on stock records serialize concurrent
// mutations of the same key.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockward/internal/core/apperror"
	"stockward/internal/core/entity"
	"stockward/internal/core/id"
	"stockward/internal/domain/ledger"
	"stockward/internal/infrastructure/storage/postgres"
)

const stockRecordsTable = "stock_records"

// StockRepo implements ledger.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

// NewStockRepo creates a stock record repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   postgres.ExtractDBColumns[ledger.StockRecord](),
	}
}

// keyConditions builds the WHERE clause of a stock key. squirrel renders nil
// pointer values as IS NULL, which matches the batch/lot dimension semantics.
func keyConditions(key ledger.Key) squirrel.Eq {
	return squirrel.Eq{
		"item_id":     key.ItemID,
		"location_id": key.LocationID,
		"batch":       key.Batch,
		"lot":         key.Lot,
		"status":      entity.StatusActive,
	}
}

// GetByKey returns the record for a key without locking.
func (r *StockRepo) GetByKey(ctx context.Context, key ledger.Key) (*ledger.StockRecord, error) {
	return r.getByKey(ctx, key, false)
}

// GetByKeyForUpdate returns the record with a row lock.
func (r *StockRepo) GetByKeyForUpdate(ctx context.Context, key ledger.Key) (*ledger.StockRecord, error) {
	return r.getByKey(ctx, key, true)
}

func (r *StockRepo) getByKey(ctx context.Context, key ledger.Key, forUpdate bool) (*ledger.StockRecord, error) {
	q := r.builder.Select(r.columns...).
		From(stockRecordsTable).
		Where(keyConditions(key)).
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec ledger.StockRecord
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock record", key.ItemID)
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	return &rec, nil
}

// ListForDeductionForUpdate returns all active lines at (item, location)
// locked in deduction order: expiry ascending with NULLs last, record id
// ascending as the tie-break. The ordering doubles as the global lock order.
func (r *StockRepo) ListForDeductionForUpdate(ctx context.Context, itemID, locationID id.ID) ([]ledger.StockRecord, error) {
	q := r.builder.Select(r.columns...).
		From(stockRecordsTable).
		Where(squirrel.Eq{
			"item_id":     itemID,
			"location_id": locationID,
			"status":      entity.StatusActive,
		}).
		OrderBy("expiry_date ASC NULLS LAST", "id ASC").
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []ledger.StockRecord
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select deduction lines: %w", err)
	}
	return records, nil
}

// Create inserts a new stock record.
func (r *StockRepo) Create(ctx context.Context, rec *ledger.StockRecord) error {
	data := postgres.StructToMap(rec)

	q := r.builder.Insert(stockRecordsTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert stock record: %w", err)
	}
	return nil
}

// Update persists quantity and last-mutation fields of a locked record.
func (r *StockRepo) Update(ctx context.Context, rec *ledger.StockRecord) error {
	q := r.builder.Update(stockRecordsTable).
		Set("on_hand", rec.OnHand).
		Set("reserved", rec.Reserved).
		Set("quality_status", rec.QualityStatus).
		Set("expiry_date", rec.ExpiryDate).
		Set("last_action", rec.LastAction).
		Set("last_changed", rec.LastChanged).
		Set("last_reference_id", rec.LastReferenceID).
		Set("updated_by", rec.UpdatedBy).
		Set("updated_at", rec.UpdatedAt).
		Where(squirrel.Eq{"id": rec.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock record", rec.ID)
	}
	return nil
}

// ListByLocation returns active records at a location.
func (r *StockRepo) ListByLocation(ctx context.Context, locationID id.ID) ([]ledger.StockRecord, error) {
	return r.list(ctx, squirrel.Eq{"location_id": locationID})
}

// ListByItem returns active records of an item across locations.
func (r *StockRepo) ListByItem(ctx context.Context, itemID id.ID) ([]ledger.StockRecord, error) {
	return r.list(ctx, squirrel.Eq{"item_id": itemID})
}

func (r *StockRepo) list(ctx context.Context, cond squirrel.Eq) ([]ledger.StockRecord, error) {
	cond["status"] = entity.StatusActive

	q := r.builder.Select(r.columns...).
		From(stockRecordsTable).
		Where(cond).
		OrderBy("item_id", "location_id", "expiry_date ASC NULLS LAST")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []ledger.StockRecord
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select stock records: %w", err)
	}
	return records, nil
}
