// Package audit_repo provides the PostgreSQL implementation of the
// append-only inventory audit log.
package audit_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockward/internal/core/id"
	"stockward/internal/domain/auditlog"
	"stockward/internal/infrastructure/storage/postgres"
)

const auditEntriesTable = "inventory_audit_log"

var auditColumns = []string{
	"id", "stock_record_id", "transaction_id", "item_id", "location_id",
	"action", "quantity_before", "quantity_changed", "quantity_after",
	"remarks", "changed_by", "created_at",
}

// AuditRepo implements auditlog.Repository.
type AuditRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

// NewAuditRepo creates an audit log repository.
func NewAuditRepo(txManager *postgres.TxManager) *AuditRepo {
	return &AuditRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append batch inserts entries within the current transaction.
// Uses COPY when inside a transaction (the normal path: the atomic unit of a
// stock mutation), falling back to a multi-row INSERT otherwise.
func (r *AuditRepo) Append(ctx context.Context, entries []auditlog.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		rows := make([][]any, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []any{
				e.ID, e.StockRecordID, e.TransactionID, e.ItemID, e.LocationID,
				e.Action, e.QuantityBefore, e.QuantityChanged, e.QuantityAfter,
				e.Remarks, e.ChangedBy, e.CreatedAt,
			})
		}
		if _, err := r.inserter.CopyFromSlice(ctx, auditEntriesTable, auditColumns, rows); err != nil {
			return fmt.Errorf("copy audit entries: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(auditEntriesTable).Columns(auditColumns...)
	for _, e := range entries {
		q = q.Values(
			e.ID, e.StockRecordID, e.TransactionID, e.ItemID, e.LocationID,
			e.Action, e.QuantityBefore, e.QuantityChanged, e.QuantityAfter,
			e.Remarks, e.ChangedBy, e.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit entries: %w", err)
	}
	return nil
}

// ListByStockRecord returns entries for a record in creation order.
func (r *AuditRepo) ListByStockRecord(ctx context.Context, stockRecordID id.ID) ([]auditlog.Entry, error) {
	return r.list(ctx, squirrel.Eq{"stock_record_id": stockRecordID})
}

// ListByTransaction returns entries created by one transaction.
func (r *AuditRepo) ListByTransaction(ctx context.Context, transactionID id.ID) ([]auditlog.Entry, error) {
	return r.list(ctx, squirrel.Eq{"transaction_id": transactionID})
}

func (r *AuditRepo) list(ctx context.Context, cond squirrel.Eq) ([]auditlog.Entry, error) {
	q := r.builder.Select(auditColumns...).
		From(auditEntriesTable).
		Where(cond).
		OrderBy("created_at ASC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []auditlog.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select audit entries: %w", err)
	}
	return entries, nil
}
