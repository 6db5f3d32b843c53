package transaction

import (
	"context"

	"stockward/internal/core/id"
	"stockward/internal/core/types"
	"stockward/internal/domain/catalogs/item"
	"stockward/internal/domain/catalogs/location"
	"stockward/internal/domain/ledger"
	"stockward/internal/domain/process"
)

// Processor is the per-kind strategy of the transaction engine.
//
// Validate inspects the request without mutating state and returns every
// problem found. Process runs inside the atomic unit that created the
// transaction record; any error rolls the whole unit back, including the
// record itself.
type Processor interface {
	Kind() process.Kind
	Validate(ctx context.Context, req *Request) []string
	Process(ctx context.Context, txn *Transaction, req *Request) (*MutationResult, error)
}

// ItemDirectory is the slice of the item catalog the processors consume.
type ItemDirectory interface {
	GetActive(ctx context.Context, itemID id.ID) (*item.Item, error)
}

// LocationDirectory is the slice of the location directory the processors consume.
type LocationDirectory interface {
	GetActive(ctx context.Context, locationID id.ID) (*location.Location, error)
}

// PurchaseOrders is the procurement collaborator consumed by inward validation.
type PurchaseOrders interface {
	RemainingQuantity(ctx context.Context, lineID id.ID) (types.Quantity, error)

	// RemainingQuantityExcluding leaves one transaction out of the received
	// sum, so a processor can re-check the bound after its own row exists.
	RemainingQuantityExcluding(ctx context.Context, lineID, txnID id.ID) (types.Quantity, error)
}

// Deps bundles the collaborators shared by all processors.
type Deps struct {
	Ledger    *ledger.Service
	Items     ItemDirectory
	Locations LocationDirectory
	Orders    PurchaseOrders
}

// NewProcessors builds the strategy table keyed by process kind.
func NewProcessors(deps Deps) map[process.Kind]Processor {
	return map[process.Kind]Processor{
		process.KindInward:     &InwardProcessor{deps},
		process.KindOutward:    &OutwardProcessor{deps},
		process.KindTransfer:   &TransferProcessor{deps},
		process.KindAdjustment: &AdjustmentProcessor{deps},
		process.KindReturn:     &ReturnProcessor{deps},
	}
}

// stockKey builds the ledger key of a single-location request.
func stockKey(itemID id.ID, locationID id.ID, req *Request) ledger.Key {
	return ledger.Key{
		ItemID:     itemID,
		LocationID: locationID,
		Batch:      req.Batch,
		Lot:        req.Lot,
	}
}

// validateCommon collects the errors shared by single-location kinds.
func validateCommon(ctx context.Context, deps Deps, req *Request, kindName string) []string {
	var errs []string

	if id.IsNil(req.ItemID) {
		errs = append(errs, "Item is required for "+kindName+" transaction")
	} else if _, err := deps.Items.GetActive(ctx, req.ItemID); err != nil {
		errs = append(errs, "Item does not exist or is inactive")
	}

	if req.LocationID == nil || id.IsNil(*req.LocationID) {
		errs = append(errs, "Location is required for "+kindName+" transaction")
	} else if _, err := deps.Locations.GetActive(ctx, *req.LocationID); err != nil {
		errs = append(errs, "Location does not exist or is inactive")
	}

	return errs
}
