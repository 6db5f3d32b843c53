// Package procurement_repo provides PostgreSQL storage for suppliers and
// purchase orders.
package procurement_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockward/internal/core/apperror"
	"stockward/internal/core/entity"
	"stockward/internal/core/id"
	"stockward/internal/core/types"
	"stockward/internal/domain/process"
	"stockward/internal/domain/procurement"
	"stockward/internal/infrastructure/storage/postgres"
)

const (
	suppliersTable          = "suppliers"
	purchaseOrdersTable     = "purchase_orders"
	purchaseOrderItemsTable = "purchase_order_items"
	transactionsTable       = "inventory_transactions"
)

// ProcurementRepo implements procurement.Repository.
type ProcurementRepo struct {
	txManager       *postgres.TxManager
	builder         squirrel.StatementBuilderType
	supplierColumns []string
	orderColumns    []string
	lineColumns     []string
}

// NewProcurementRepo creates a procurement repository.
func NewProcurementRepo(txManager *postgres.TxManager) *ProcurementRepo {
	return &ProcurementRepo{
		txManager:       txManager,
		builder:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		supplierColumns: postgres.ExtractDBColumns[procurement.Supplier](),
		orderColumns:    postgres.ExtractDBColumns[procurement.PurchaseOrder](),
		lineColumns:     postgres.ExtractDBColumns[procurement.PurchaseOrderItem](),
	}
}

func (r *ProcurementRepo) CreateSupplier(ctx context.Context, s *procurement.Supplier) error {
	data := postgres.StructToMap(s)

	sql, args, err := r.builder.Insert(suppliersTable).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *ProcurementRepo) GetSupplier(ctx context.Context, supplierID id.ID) (*procurement.Supplier, error) {
	q := r.builder.Select(r.supplierColumns...).
		From(suppliersTable).
		Where(squirrel.Eq{"id": supplierID, "status": entity.StatusActive}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s procurement.Supplier
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("supplier", supplierID)
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

func (r *ProcurementRepo) UpdateSupplierRating(ctx context.Context, s *procurement.Supplier) error {
	q := r.builder.Update(suppliersTable).
		Set("rating", s.Rating).
		Set("updated_by", s.UpdatedBy).
		Set("updated_at", s.UpdatedAt).
		Where(squirrel.Eq{"id": s.ID, "status": entity.StatusActive})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update supplier rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("supplier", s.ID)
	}
	return nil
}

func (r *ProcurementRepo) CreatePurchaseOrder(ctx context.Context, po *procurement.PurchaseOrder) error {
	data := postgres.StructToMap(po)

	sql, args, err := r.builder.Insert(purchaseOrdersTable).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return nil
}

func (r *ProcurementRepo) GetPurchaseOrder(ctx context.Context, poID id.ID) (*procurement.PurchaseOrder, error) {
	q := r.builder.Select(r.orderColumns...).
		From(purchaseOrdersTable).
		Where(squirrel.Eq{"id": poID, "status": entity.StatusActive}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var po procurement.PurchaseOrder
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &po, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase order", poID)
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return &po, nil
}

func (r *ProcurementRepo) CreatePurchaseOrderItem(ctx context.Context, line *procurement.PurchaseOrderItem) error {
	data := postgres.StructToMap(line)

	sql, args, err := r.builder.Insert(purchaseOrderItemsTable).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase order item: %w", err)
	}
	return nil
}

func (r *ProcurementRepo) GetPurchaseOrderItem(ctx context.Context, lineID id.ID) (*procurement.PurchaseOrderItem, error) {
	q := r.builder.Select(r.lineColumns...).
		From(purchaseOrderItemsTable).
		Where(squirrel.Eq{"id": lineID, "status": entity.StatusActive}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var line procurement.PurchaseOrderItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &line, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase order item", lineID)
		}
		return nil, fmt.Errorf("get purchase order item: %w", err)
	}
	return &line, nil
}

// ReceivedQuantity sums active inward transaction quantities referencing a
// purchase order line, skipping the excluded transaction when one is given.
func (r *ProcurementRepo) ReceivedQuantity(ctx context.Context, lineID id.ID, exclude *id.ID) (types.Quantity, error) {
	q := r.builder.Select("COALESCE(SUM(quantity), 0)").
		From(transactionsTable).
		Where(squirrel.Eq{
			"purchase_order_item_id": lineID,
			"process_kind":           process.KindInward,
			"status":                 entity.StatusActive,
		})
	if exclude != nil {
		q = q.Where(squirrel.NotEq{"id": *exclude})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var total int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum received quantity: %w", err)
	}
	return types.NewQuantityFromInt64Scaled(total), nil
}
