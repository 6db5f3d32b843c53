package transaction

import (
	"context"

	"stockward/internal/core/apperror"
	appctx "stockward/internal/core/context"
	"stockward/internal/domain/auditlog"
	"stockward/internal/domain/ledger"
	"stockward/internal/domain/process"
)

// AdjustmentProcessor applies a signed correction delta to an existing stock
// line. Adjustments never create lines: correcting stock that was never
// received is a receipt, not an adjustment. A mandatory reason is carried
// into the audit trail.
type AdjustmentProcessor struct {
	deps Deps
}

func (p *AdjustmentProcessor) Kind() process.Kind { return process.KindAdjustment }

func (p *AdjustmentProcessor) Validate(ctx context.Context, req *Request) []string {
	errs := validateCommon(ctx, p.deps, req, "adjustment")

	if req.Quantity.IsZero() {
		errs = append(errs, "Non-zero quantity delta is required for adjustment transaction")
	}
	if req.Reason == "" {
		errs = append(errs, "Reason is required for adjustment transaction")
	}

	return errs
}

func (p *AdjustmentProcessor) Process(ctx context.Context, txn *Transaction, req *Request) (*MutationResult, error) {
	actor := appctx.GetActorID(ctx)
	key := stockKey(txn.ItemID, *txn.LocationID, req)

	rec, err := p.deps.Ledger.GetForUpdate(ctx, key)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("stock record", txn.ItemID).
				WithDetail("location_id", txn.LocationID.String())
		}
		return nil, err
	}

	resulting := rec.OnHand + txn.Quantity
	if resulting.IsNegative() && !txn.AllowNegative {
		return nil, apperror.NewNegativeStock(txn.ItemID.String(), resulting)
	}

	before := rec.OnHand
	rec.Apply(ledger.MutationAdjustment, txn.Quantity, txn.ID, actor)
	if err := p.deps.Ledger.Update(ctx, rec); err != nil {
		return nil, err
	}

	entry := auditlog.NewEntry(rec, txn.ID, ledger.MutationAdjustment, before, txn.Quantity, actor, txn.Reason)

	return &MutationResult{
		InventoryUpdated: true,
		QuantityBefore:   before,
		QuantityAfter:    rec.OnHand,
		QuantityChanged:  txn.Quantity,
		Lines: []MutationLine{
			{StockRecordID: rec.ID, LocationID: rec.LocationID, Quantity: txn.Quantity.Abs()},
		},
		Entries: []auditlog.Entry{entry},
	}, nil
}
