package transaction

import (
	"context"
	"strings"

	"stockward/internal/core/apperror"
	appctx "stockward/internal/core/context"
	"stockward/internal/core/id"
	"stockward/internal/core/types"
	"stockward/internal/domain/auditlog"
	"stockward/internal/domain/ledger"
	"stockward/internal/domain/process"
)

// TransferProcessor moves stock between two locations of the same item,
// batch and lot. Both stock lines are locked in a deterministic order so
// that opposite transfers of the same pair cannot deadlock.
type TransferProcessor struct {
	deps Deps
}

func (p *TransferProcessor) Kind() process.Kind { return process.KindTransfer }

func (p *TransferProcessor) Validate(ctx context.Context, req *Request) []string {
	var errs []string

	if id.IsNil(req.ItemID) {
		errs = append(errs, "Item is required for transfer transaction")
	} else if _, err := p.deps.Items.GetActive(ctx, req.ItemID); err != nil {
		errs = append(errs, "Item does not exist or is inactive")
	}

	if req.FromLocationID == nil || id.IsNil(*req.FromLocationID) {
		errs = append(errs, "Source location is required for transfer transaction")
	} else if _, err := p.deps.Locations.GetActive(ctx, *req.FromLocationID); err != nil {
		errs = append(errs, "Source location does not exist or is inactive")
	}

	if req.ToLocationID == nil || id.IsNil(*req.ToLocationID) {
		errs = append(errs, "Destination location is required for transfer transaction")
	} else if _, err := p.deps.Locations.GetActive(ctx, *req.ToLocationID); err != nil {
		errs = append(errs, "Destination location does not exist or is inactive")
	}

	if req.FromLocationID != nil && req.ToLocationID != nil && *req.FromLocationID == *req.ToLocationID {
		errs = append(errs, "Source and destination locations must differ")
	}

	if !req.Quantity.IsPositive() {
		errs = append(errs, "Valid quantity is required for transfer transaction")
	}

	return errs
}

func (p *TransferProcessor) Process(ctx context.Context, txn *Transaction, req *Request) (*MutationResult, error) {
	actor := appctx.GetActorID(ctx)

	srcKey := stockKey(txn.ItemID, *txn.FromLocationID, req)
	dstKey := stockKey(txn.ItemID, *txn.ToLocationID, req)

	src, dst, dstCreated, err := p.lockPair(ctx, srcKey, dstKey, txn.Quantity, actor)
	if err != nil {
		return nil, err
	}

	// Reservations stay behind at the source; the transfer moves physical
	// stock, so the bound is on-hand rather than available.
	if src.OnHand < txn.Quantity {
		return nil, apperror.NewInsufficientStock(txn.ItemID.String(), txn.Quantity, src.OnHand)
	}

	if dstCreated {
		dst.QualityStatus = src.QualityStatus
		dst.ExpiryDate = src.ExpiryDate
	}

	srcBefore := src.OnHand
	src.Apply(ledger.MutationTransferOut, txn.Quantity.Neg(), txn.ID, actor)
	if err := p.deps.Ledger.Update(ctx, src); err != nil {
		return nil, err
	}

	dstBefore := dst.OnHand
	dst.Apply(ledger.MutationTransferIn, txn.Quantity, txn.ID, actor)
	if err := p.deps.Ledger.Update(ctx, dst); err != nil {
		return nil, err
	}

	return &MutationResult{
		InventoryUpdated: true,
		QuantityBefore:   srcBefore,
		QuantityAfter:    src.OnHand,
		QuantityChanged:  txn.Quantity.Neg(),
		Lines: []MutationLine{
			{StockRecordID: src.ID, LocationID: src.LocationID, Quantity: txn.Quantity},
			{StockRecordID: dst.ID, LocationID: dst.LocationID, Quantity: txn.Quantity},
		},
		Entries: []auditlog.Entry{
			auditlog.NewEntry(src, txn.ID, ledger.MutationTransferOut, srcBefore, txn.Quantity.Neg(), actor, txn.Remarks),
			auditlog.NewEntry(dst, txn.ID, ledger.MutationTransferIn, dstBefore, txn.Quantity, actor, txn.Remarks),
		},
	}, nil
}

// lockPair locks the source and destination lines in location-id order.
// The source must already exist; the destination is created when absent.
func (p *TransferProcessor) lockPair(ctx context.Context, srcKey, dstKey ledger.Key, requested types.Quantity, actor string) (src, dst *ledger.StockRecord, dstCreated bool, err error) {
	lockSrc := func() error {
		src, err = p.deps.Ledger.GetForUpdate(ctx, srcKey)
		if apperror.IsNotFound(err) {
			return apperror.NewInsufficientStock(srcKey.ItemID.String(), requested, 0).
				WithDetail("location_id", srcKey.LocationID.String())
		}
		return err
	}
	lockDst := func() error {
		dst, dstCreated, err = p.deps.Ledger.GetOrCreateForUpdate(ctx, dstKey, actor)
		return err
	}

	if strings.Compare(srcKey.LocationID.String(), dstKey.LocationID.String()) < 0 {
		if err = lockSrc(); err != nil {
			return nil, nil, false, err
		}
		if err = lockDst(); err != nil {
			return nil, nil, false, err
		}
	} else {
		if err = lockDst(); err != nil {
			return nil, nil, false, err
		}
		if err = lockSrc(); err != nil {
			return nil, nil, false, err
		}
	}
	return src, dst, dstCreated, nil
}
