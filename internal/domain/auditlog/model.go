// Package auditlog provides the derived per-mutation quantity trail.
//
// Entries are append-only and written synchronously inside the same atomic
// unit as the stock mutation they describe; the log is the reconciliation
// source of truth. Corrections are made by appending compensating entries,
// never by editing history.
package auditlog

import (
	"time"

	"stockward/internal/core/id"
	"stockward/internal/core/types"
	ledgerdomain "stockward/internal/domain/ledger"
)

// Entry records one stock record mutation.
// Invariant: QuantityAfter = QuantityBefore + QuantityChanged, and
// QuantityBefore equals the record's quantity immediately prior to this
// entry (strict causal ordering, enforced by serialized mutation).
type Entry struct {
	ID id.ID `db:"id" json:"id"`

	StockRecordID id.ID `db:"stock_record_id" json:"stockRecordId"`
	TransactionID id.ID `db:"transaction_id" json:"transactionId"`

	ItemID     id.ID `db:"item_id" json:"itemId"`
	LocationID id.ID `db:"location_id" json:"locationId"`

	Action ledgerdomain.MutationKind `db:"action" json:"action"`

	QuantityBefore  types.Quantity `db:"quantity_before" json:"quantityBefore"`
	QuantityChanged types.Quantity `db:"quantity_changed" json:"quantityChanged"`
	QuantityAfter   types.Quantity `db:"quantity_after" json:"quantityAfter"`

	Remarks string `db:"remarks" json:"remarks,omitempty"`

	ChangedBy string    `db:"changed_by" json:"changedBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewEntry derives an entry from a mutated stock record.
func NewEntry(rec *ledgerdomain.StockRecord, transactionID id.ID, action ledgerdomain.MutationKind, before, changed types.Quantity, actor, remarks string) Entry {
	return Entry{
		ID:              id.New(),
		StockRecordID:   rec.ID,
		TransactionID:   transactionID,
		ItemID:          rec.ItemID,
		LocationID:      rec.LocationID,
		Action:          action,
		QuantityBefore:  before,
		QuantityChanged: changed,
		QuantityAfter:   before + changed,
		Remarks:         remarks,
		ChangedBy:       actor,
		CreatedAt:       time.Now().UTC(),
	}
}
