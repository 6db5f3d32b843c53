package transaction

import (
	"context"

	"stockward/internal/core/apperror"
	appctx "stockward/internal/core/context"
	"stockward/internal/domain/auditlog"
	"stockward/internal/domain/ledger"
	"stockward/internal/domain/process"
)

// InwardProcessor handles receipts: additive, with lazy record creation.
// Receiving has no upper bound check other than the linked purchase order
// line's remaining quantity.
type InwardProcessor struct {
	deps Deps
}

func (p *InwardProcessor) Kind() process.Kind { return process.KindInward }

func (p *InwardProcessor) Validate(ctx context.Context, req *Request) []string {
	errs := validateCommon(ctx, p.deps, req, "inward")

	if !req.Quantity.IsPositive() {
		errs = append(errs, "Valid quantity is required for inward transaction")
	}

	// Over-receipt guard against the linked purchase order line.
	if req.PurchaseOrderItemID != nil && req.Quantity.IsPositive() {
		remaining, err := p.deps.Orders.RemainingQuantity(ctx, *req.PurchaseOrderItemID)
		if err != nil {
			errs = append(errs, "Purchase order line does not exist")
		} else if req.Quantity > remaining {
			errs = append(errs, "Receipt exceeds remaining purchase order quantity")
		}
	}

	return errs
}

func (p *InwardProcessor) Process(ctx context.Context, txn *Transaction, req *Request) (*MutationResult, error) {
	actor := appctx.GetActorID(ctx)
	key := stockKey(txn.ItemID, *txn.LocationID, req)

	rec, created, err := p.deps.Ledger.GetOrCreateForUpdate(ctx, key, actor)
	if err != nil {
		return nil, err
	}
	if created {
		rec.QualityStatus = req.QualityStatus
		rec.ExpiryDate = req.ExpiryDate
	}

	// Re-check the purchase order bound under the lock: concurrent receipts
	// against the same line must not jointly exceed the order. This
	// transaction's own row is already inserted, so the received sum must
	// exclude it or a receipt exactly filling the order would be rejected.
	if txn.PurchaseOrderItemID != nil {
		remaining, err := p.deps.Orders.RemainingQuantityExcluding(ctx, *txn.PurchaseOrderItemID, txn.ID)
		if err != nil {
			return nil, err
		}
		if txn.Quantity > remaining {
			return nil, apperror.NewBusinessRule(apperror.CodeOverFulfillment,
				"Receipt exceeds remaining purchase order quantity").
				WithDetail("purchase_order_item_id", txn.PurchaseOrderItemID.String()).
				WithDetail("remaining", remaining.String())
		}
	}

	before := rec.OnHand
	rec.Apply(ledger.MutationInward, txn.Quantity, txn.ID, actor)
	if err := p.deps.Ledger.Update(ctx, rec); err != nil {
		return nil, err
	}

	entry := auditlog.NewEntry(rec, txn.ID, ledger.MutationInward, before, txn.Quantity, actor, txn.Remarks)

	return &MutationResult{
		InventoryUpdated: true,
		QuantityBefore:   before,
		QuantityAfter:    rec.OnHand,
		QuantityChanged:  txn.Quantity,
		Lines: []MutationLine{
			{StockRecordID: rec.ID, LocationID: rec.LocationID, Quantity: txn.Quantity},
		},
		Entries: []auditlog.Entry{entry},
	}, nil
}
