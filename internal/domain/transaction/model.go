// Package transaction provides the inventory transaction engine: per-kind
// validation and stock mutation, the append-only transaction record store,
// and the orchestration that couples them to audit and task side effects.
package transaction

import (
	"context"
	"time"

	"stockward/internal/core/apperror"
	"stockward/internal/core/entity"
	"stockward/internal/core/id"
	"stockward/internal/core/types"
	"stockward/internal/domain/auditlog"
	"stockward/internal/domain/process"
)

// Transaction is one immutable business event against the stock ledger.
// Only the dispatch-completion fields change after creation.
type Transaction struct {
	entity.Base

	// Number is the generated human-facing reference (e.g. TXN-2026-00042).
	Number string `db:"number" json:"number"`

	ProcessKind process.Kind `db:"process_kind" json:"processKind"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	// Quantity is positive for all kinds except ADJUSTMENT, where it is the
	// signed delta. Direction is otherwise implied by the process kind.
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Location fields: LocationID for single-location kinds, the from/to
	// pair for transfers.
	LocationID     *id.ID `db:"location_id" json:"locationId,omitempty"`
	FromLocationID *id.ID `db:"from_location_id" json:"fromLocationId,omitempty"`
	ToLocationID   *id.ID `db:"to_location_id" json:"toLocationId,omitempty"`

	Batch *string `db:"batch" json:"batch,omitempty"`
	Lot   *string `db:"lot" json:"lot,omitempty"`

	// Inward linkage
	SupplierID          *id.ID `db:"supplier_id" json:"supplierId,omitempty"`
	PurchaseOrderID     *id.ID `db:"purchase_order_id" json:"purchaseOrderId,omitempty"`
	PurchaseOrderItemID *id.ID `db:"purchase_order_item_id" json:"purchaseOrderItemId,omitempty"`

	// Adjustment
	Reason        string `db:"reason" json:"reason,omitempty"`
	AllowNegative bool   `db:"allow_negative" json:"allowNegative,omitempty"`

	// Return
	IsDefective bool `db:"is_defective" json:"isDefective,omitempty"`

	// Outward dispatch completion (the only mutable fields)
	IsDispatched bool       `db:"is_dispatched" json:"isDispatched"`
	DispatchedBy string     `db:"dispatched_by" json:"dispatchedBy,omitempty"`
	DispatchedAt *time.Time `db:"dispatched_at" json:"dispatchedAt,omitempty"`

	Remarks string `db:"remarks" json:"remarks,omitempty"`

	// OccurredAt is the business date of the movement.
	OccurredAt time.Time `db:"occurred_at" json:"occurredAt"`
}

// Request is the transaction creation input, validated per process kind.
type Request struct {
	ProcessType string

	ItemID   id.ID
	Quantity types.Quantity

	LocationID     *id.ID
	FromLocationID *id.ID
	ToLocationID   *id.ID

	Batch *string
	Lot   *string

	SupplierID          *id.ID
	PurchaseOrderID     *id.ID
	PurchaseOrderItemID *id.ID

	QualityStatus string
	ExpiryDate    *time.Time

	Reason        string
	IsDefective   bool
	AllowNegative bool

	// IsDispatched marks an outward as dispatched at creation time.
	IsDispatched bool

	// StagingLocationID is the optional destination of a pickup task.
	StagingLocationID *id.ID

	// AssigneeID is the optional worker for generated tasks.
	AssigneeID string

	Remarks string
}

// newTransaction builds the immutable record from a validated request.
func newTransaction(req *Request, kind process.Kind, number, actor string, now time.Time) *Transaction {
	txn := &Transaction{
		Base:        entity.NewBase(actor),
		Number:      number,
		ProcessKind: kind,
		ItemID:      req.ItemID,
		Quantity:    req.Quantity,
		Batch:       req.Batch,
		Lot:         req.Lot,
		Remarks:     req.Remarks,
		OccurredAt:  now,
	}

	switch kind {
	case process.KindTransfer:
		txn.FromLocationID = req.FromLocationID
		txn.ToLocationID = req.ToLocationID
	default:
		txn.LocationID = req.LocationID
	}

	switch kind {
	case process.KindInward:
		txn.SupplierID = req.SupplierID
		txn.PurchaseOrderID = req.PurchaseOrderID
		txn.PurchaseOrderItemID = req.PurchaseOrderItemID
	case process.KindOutward:
		if req.IsDispatched {
			txn.IsDispatched = true
			txn.DispatchedBy = actor
			txn.DispatchedAt = &now
		}
	case process.KindAdjustment:
		txn.Reason = req.Reason
		txn.AllowNegative = req.AllowNegative
	case process.KindReturn:
		txn.IsDefective = req.IsDefective
	}

	return txn
}

// MutationLine is one stock line touched by a transaction.
type MutationLine struct {
	StockRecordID id.ID
	LocationID    id.ID
	Quantity      types.Quantity // absolute quantity moved on this line
}

// MutationResult is what a processor reports back to the orchestrator.
type MutationResult struct {
	InventoryUpdated bool

	QuantityBefore  types.Quantity
	QuantityAfter   types.Quantity
	QuantityChanged types.Quantity

	// Lines lists the stock lines consumed or filled; the task generator
	// creates one task per line for outward pickups.
	Lines []MutationLine

	// Entries are the audit log entries derived from the mutation; the
	// orchestrator appends them inside the same atomic unit.
	Entries []auditlog.Entry
}

// Result is the transaction creation response.
type Result struct {
	TransactionID id.ID        `json:"transaction_id"`
	Number        string       `json:"number"`
	ProcessType   process.Kind `json:"process_type"`

	InventoryUpdated bool    `json:"inventory_updated"`
	TasksCreated     []id.ID `json:"tasks_created"`

	QuantityBefore  types.Quantity `json:"quantity_before"`
	QuantityAfter   types.Quantity `json:"quantity_after"`
	QuantityChanged types.Quantity `json:"quantity_changed"`
}

// Repository defines storage for transaction records.
type Repository interface {
	// Create inserts the record inside the atomic unit.
	Create(ctx context.Context, txn *Transaction) error

	GetByID(ctx context.Context, txnID id.ID) (*Transaction, error)

	// MarkDispatched sets the dispatch-completion fields of an outward.
	MarkDispatched(ctx context.Context, txnID id.ID, by string, at time.Time) error

	// List returns records matching the filter, newest first.
	List(ctx context.Context, f ListFilter) ([]Transaction, error)
}

// ListFilter narrows transaction listings.
type ListFilter struct {
	ProcessKind *process.Kind
	ItemID      *id.ID
	LocationID  *id.ID
	Limit       int
	Offset      int
}

// GetOutward returns an outward transaction or NotFound.
func GetOutward(ctx context.Context, repo Repository, txnID id.ID) (*Transaction, error) {
	txn, err := repo.GetByID(ctx, txnID)
	if err != nil {
		return nil, err
	}
	if txn.ProcessKind != process.KindOutward || txn.IsDeleted() {
		return nil, apperror.NewNotFound("outward transaction", txnID)
	}
	return txn, nil
}
