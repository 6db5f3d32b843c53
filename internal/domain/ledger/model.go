// Package ledger provides the authoritative stock-on-hand register.
//
// Exactly one StockRecord exists per (item, location, batch, lot) tuple.
// Records are created lazily on first receipt and soft-deleted only; every
// quantity change flows through a locked mutation inside the transaction
// engine's atomic unit.
package ledger

import (
	"time"

	"stockward/internal/core/entity"
	"stockward/internal/core/id"
	"stockward/internal/core/types"
)

// MutationKind labels the last action applied to a stock record.
type MutationKind string

const (
	MutationInward      MutationKind = "INWARD"
	MutationOutward     MutationKind = "OUTWARD"
	MutationTransferIn  MutationKind = "TRANSFER_IN"
	MutationTransferOut MutationKind = "TRANSFER_OUT"
	MutationAdjustment  MutationKind = "ADJUSTMENT"
	MutationReturn      MutationKind = "RETURN"
)

// Key identifies a unique stock line. Batch and lot are optional dimensions;
// nil and empty are distinct from any concrete value.
type Key struct {
	ItemID     id.ID
	LocationID id.ID
	Batch      *string
	Lot        *string
}

// StockRecord is the authoritative per-key quantity record.
type StockRecord struct {
	entity.Base

	ItemID     id.ID   `db:"item_id" json:"itemId"`
	LocationID id.ID   `db:"location_id" json:"locationId"`
	Batch      *string `db:"batch" json:"batch,omitempty"`
	Lot        *string `db:"lot" json:"lot,omitempty"`

	// OnHand is the physically present quantity, independent of reservations.
	OnHand types.Quantity `db:"on_hand" json:"onHand"`

	// Reserved is the portion committed to unfulfilled sales orders.
	// Invariant: OnHand - Reserved >= 0 unless a negative-stock override
	// was explicitly applied.
	Reserved types.Quantity `db:"reserved" json:"reserved"`

	QualityStatus string     `db:"quality_status" json:"qualityStatus,omitempty"`
	ExpiryDate    *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`

	// Last-mutation metadata for quick inspection; the audit log is the
	// full history.
	LastAction      MutationKind   `db:"last_action" json:"lastAction,omitempty"`
	LastChanged     types.Quantity `db:"last_changed" json:"lastChanged"`
	LastReferenceID id.ID          `db:"last_reference_id" json:"lastReferenceId,omitempty"`
}

// NewStockRecord creates an empty record for a key.
func NewStockRecord(key Key, createdBy string) *StockRecord {
	return &StockRecord{
		Base:       entity.NewBase(createdBy),
		ItemID:     key.ItemID,
		LocationID: key.LocationID,
		Batch:      key.Batch,
		Lot:        key.Lot,
	}
}

// Key returns the identifying tuple of the record.
func (r *StockRecord) Key() Key {
	return Key{ItemID: r.ItemID, LocationID: r.LocationID, Batch: r.Batch, Lot: r.Lot}
}

// Available returns the quantity free for new outward movements.
func (r *StockRecord) Available() types.Quantity {
	return r.OnHand - r.Reserved
}

// Apply records a signed delta with last-mutation metadata.
func (r *StockRecord) Apply(kind MutationKind, delta types.Quantity, transactionID id.ID, actor string) {
	r.OnHand += delta
	r.LastAction = kind
	r.LastChanged = delta
	r.LastReferenceID = transactionID
	r.Touch(actor)
}
