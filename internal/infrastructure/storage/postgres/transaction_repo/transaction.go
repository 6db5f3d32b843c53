// Package transaction_repo provides the PostgreSQL implementation of the
// transaction record store.
package transaction_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockward/internal/core/apperror"
	"stockward/internal/core/entity"
	"stockward/internal/core/id"
	"stockward/internal/domain/transaction"
	"stockward/internal/infrastructure/storage/postgres"
)

const transactionsTable = "inventory_transactions"

// TransactionRepo implements transaction.Repository.
type TransactionRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

// NewTransactionRepo creates a transaction repository.
func NewTransactionRepo(txManager *postgres.TxManager) *TransactionRepo {
	return &TransactionRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   postgres.ExtractDBColumns[transaction.Transaction](),
	}
}

// Create inserts the record inside the caller's atomic unit.
func (r *TransactionRepo) Create(ctx context.Context, txn *transaction.Transaction) error {
	data := postgres.StructToMap(txn)

	q := r.builder.Insert(transactionsTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID returns a transaction record.
func (r *TransactionRepo) GetByID(ctx context.Context, txnID id.ID) (*transaction.Transaction, error) {
	q := r.builder.Select(r.columns...).
		From(transactionsTable).
		Where(squirrel.Eq{"id": txnID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var txn transaction.Transaction
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &txn, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transaction", txnID)
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &txn, nil
}

// MarkDispatched sets the dispatch-completion fields of an outward.
// Idempotent at the storage level; the first write wins.
func (r *TransactionRepo) MarkDispatched(ctx context.Context, txnID id.ID, by string, at time.Time) error {
	q := r.builder.Update(transactionsTable).
		Set("is_dispatched", true).
		Set("dispatched_by", by).
		Set("dispatched_at", at).
		Set("updated_by", by).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": txnID, "is_dispatched": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("mark dispatched: %w", err)
	}
	return nil
}

// List returns records matching the filter, newest first.
func (r *TransactionRepo) List(ctx context.Context, f transaction.ListFilter) ([]transaction.Transaction, error) {
	q := r.builder.Select(r.columns...).
		From(transactionsTable).
		Where(squirrel.Eq{"status": entity.StatusActive}).
		OrderBy("occurred_at DESC", "id DESC")

	if f.ProcessKind != nil {
		q = q.Where(squirrel.Eq{"process_kind": *f.ProcessKind})
	}
	if f.ItemID != nil {
		q = q.Where(squirrel.Eq{"item_id": *f.ItemID})
	}
	if f.LocationID != nil {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"location_id": *f.LocationID},
			squirrel.Eq{"from_location_id": *f.LocationID},
			squirrel.Eq{"to_location_id": *f.LocationID},
		})
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

	var txns []transaction.Transaction
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &txns, sql, args...); err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	return txns, nil
}
