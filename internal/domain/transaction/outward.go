package transaction

import (
	"context"

	"stockward/internal/core/apperror"
	appctx "stockward/internal/core/context"
	"stockward/internal/core/types"
	"stockward/internal/domain/auditlog"
	"stockward/internal/domain/ledger"
	"stockward/internal/domain/process"
)

// OutwardProcessor handles issues. When the request pins a batch or lot the
// deduction targets that single stock line; otherwise it is spread across the
// item's lines at the location in earliest-expiry order. The availability
// check happens under row locks, so a passing check cannot be invalidated by
// a concurrent issue.
type OutwardProcessor struct {
	deps Deps
}

func (p *OutwardProcessor) Kind() process.Kind { return process.KindOutward }

func (p *OutwardProcessor) Validate(ctx context.Context, req *Request) []string {
	errs := validateCommon(ctx, p.deps, req, "outward")

	if !req.Quantity.IsPositive() {
		errs = append(errs, "Valid quantity is required for outward transaction")
	}

	// Advisory availability check. Failing here spares a document number;
	// the authoritative check still runs under row locks in Process.
	if len(errs) == 0 && req.LocationID != nil {
		avail, err := p.deps.Ledger.IssueAvailability(ctx, req.ItemID, *req.LocationID, req.Batch, req.Lot)
		if err == nil && avail < req.Quantity {
			errs = append(errs, "Insufficient stock available for outward transaction")
		}
	}

	return errs
}

func (p *OutwardProcessor) Process(ctx context.Context, txn *Transaction, req *Request) (*MutationResult, error) {
	if req.Batch != nil || req.Lot != nil {
		return p.processPinned(ctx, txn, req)
	}
	return p.processFIFO(ctx, txn)
}

// processPinned deducts from the single line identified by batch/lot.
func (p *OutwardProcessor) processPinned(ctx context.Context, txn *Transaction, req *Request) (*MutationResult, error) {
	actor := appctx.GetActorID(ctx)
	key := stockKey(txn.ItemID, *txn.LocationID, req)

	rec, err := p.deps.Ledger.GetForUpdate(ctx, key)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewInsufficientStock(txn.ItemID.String(), txn.Quantity, 0)
		}
		return nil, err
	}
	if avail := rec.Available(); avail < txn.Quantity {
		return nil, apperror.NewInsufficientStock(txn.ItemID.String(), txn.Quantity, avail)
	}

	before := rec.OnHand
	rec.Apply(ledger.MutationOutward, txn.Quantity.Neg(), txn.ID, actor)
	if err := p.deps.Ledger.Update(ctx, rec); err != nil {
		return nil, err
	}

	entry := auditlog.NewEntry(rec, txn.ID, ledger.MutationOutward, before, txn.Quantity.Neg(), actor, txn.Remarks)

	return &MutationResult{
		InventoryUpdated: true,
		QuantityBefore:   before,
		QuantityAfter:    rec.OnHand,
		QuantityChanged:  txn.Quantity.Neg(),
		Lines: []MutationLine{
			{StockRecordID: rec.ID, LocationID: rec.LocationID, Quantity: txn.Quantity},
		},
		Entries: []auditlog.Entry{entry},
	}, nil
}

// processFIFO spreads the deduction across the item's lines at the location.
// Locks are taken in the deduction order itself, which keeps the lock order
// identical for every concurrent issuer of the same item and location.
func (p *OutwardProcessor) processFIFO(ctx context.Context, txn *Transaction) (*MutationResult, error) {
	actor := appctx.GetActorID(ctx)

	lines, err := p.deps.Ledger.DeductionLines(ctx, txn.ItemID, *txn.LocationID)
	if err != nil {
		return nil, err
	}

	records := make([]*ledger.StockRecord, len(lines))
	for i := range lines {
		records[i] = &lines[i]
	}

	allocations, err := ledger.AllocateFIFO(records, txn.Quantity)
	if err != nil {
		return nil, err
	}

	var totalBefore types.Quantity
	for _, rec := range records {
		totalBefore += rec.OnHand
	}

	result := &MutationResult{
		InventoryUpdated: true,
		QuantityBefore:   totalBefore,
		QuantityAfter:    totalBefore - txn.Quantity,
		QuantityChanged:  txn.Quantity.Neg(),
	}

	for _, alloc := range allocations {
		rec := alloc.Record
		before := rec.OnHand
		rec.Apply(ledger.MutationOutward, alloc.Take.Neg(), txn.ID, actor)
		if err := p.deps.Ledger.Update(ctx, rec); err != nil {
			return nil, err
		}

		result.Lines = append(result.Lines, MutationLine{
			StockRecordID: rec.ID,
			LocationID:    rec.LocationID,
			Quantity:      alloc.Take,
		})
		result.Entries = append(result.Entries,
			auditlog.NewEntry(rec, txn.ID, ledger.MutationOutward, before, alloc.Take.Neg(), actor, txn.Remarks))
	}

	return result, nil
}
