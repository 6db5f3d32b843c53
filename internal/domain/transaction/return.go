package transaction

import (
	"context"

	appctx "stockward/internal/core/context"
	"stockward/internal/domain/auditlog"
	"stockward/internal/domain/ledger"
	"stockward/internal/domain/process"
)

// defectiveReturnRemark is recorded in the audit trail when a defective
// return is accepted without restocking.
const defectiveReturnRemark = "Defective return received, stock not restored"

// ReturnProcessor handles customer returns. Sellable returns restock the
// line like a receipt; defective returns keep the quantity untouched but
// still leave a zero-change audit entry so the event is reconcilable.
type ReturnProcessor struct {
	deps Deps
}

func (p *ReturnProcessor) Kind() process.Kind { return process.KindReturn }

func (p *ReturnProcessor) Validate(ctx context.Context, req *Request) []string {
	errs := validateCommon(ctx, p.deps, req, "return")

	if !req.Quantity.IsPositive() {
		errs = append(errs, "Valid quantity is required for return transaction")
	}

	return errs
}

func (p *ReturnProcessor) Process(ctx context.Context, txn *Transaction, req *Request) (*MutationResult, error) {
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

	before := rec.OnHand

	if txn.IsDefective {
		remarks := defectiveReturnRemark
		if txn.Remarks != "" {
			remarks = txn.Remarks + "; " + defectiveReturnRemark
		}
		entry := auditlog.NewEntry(rec, txn.ID, ledger.MutationReturn, before, 0, actor, remarks)

		return &MutationResult{
			InventoryUpdated: false,
			QuantityBefore:   before,
			QuantityAfter:    before,
			QuantityChanged:  0,
			Entries:          []auditlog.Entry{entry},
		}, nil
	}

	rec.Apply(ledger.MutationReturn, txn.Quantity, txn.ID, actor)
	if err := p.deps.Ledger.Update(ctx, rec); err != nil {
		return nil, err
	}

	entry := auditlog.NewEntry(rec, txn.ID, ledger.MutationReturn, before, txn.Quantity, actor, txn.Remarks)

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
