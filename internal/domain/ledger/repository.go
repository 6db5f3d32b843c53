package ledger

import (
	"context"

	"stockward/internal/core/id"
)

// Repository defines storage for stock records.
//
// The *ForUpdate variants must acquire row-level locks and may only be called
// inside a transaction; they serialize concurrent mutations of the same key.
type Repository interface {
	// GetByKey returns the record for a key without locking.
	// Returns a NotFound error when no active record exists.
	GetByKey(ctx context.Context, key Key) (*StockRecord, error)

	// GetByKeyForUpdate returns the record with a row lock held until the
	// surrounding transaction commits.
	GetByKeyForUpdate(ctx context.Context, key Key) (*StockRecord, error)

	// ListForDeductionForUpdate returns all active lines at (item, location)
	// across batches and lots, locked, ordered by expiry date ascending with
	// NULLs last and record id ascending as the tie-break. This ordering is
	// both the FIFO-by-age deduction policy and the global lock order.
	ListForDeductionForUpdate(ctx context.Context, itemID, locationID id.ID) ([]StockRecord, error)

	// Create inserts a new record. The unique constraint on the key tuple
	// is the last line of defence against duplicates.
	Create(ctx context.Context, rec *StockRecord) error

	// Update persists quantity and last-mutation fields of a locked record.
	Update(ctx context.Context, rec *StockRecord) error

	// ListByLocation returns active records at a location.
	ListByLocation(ctx context.Context, locationID id.ID) ([]StockRecord, error)

	// ListByItem returns active records of an item across locations.
	ListByItem(ctx context.Context, itemID id.ID) ([]StockRecord, error)
}
