package ledger

import (
	"context"
	"sort"

	"stockward/internal/core/apperror"
	"stockward/internal/core/id"
	"stockward/internal/core/types"
)

// Service provides stock queries and the FIFO allocation policy.
type Service struct {
	repo Repository
}

// NewService creates a new ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetOrCreateForUpdate returns the locked record for a key, creating an empty
// one when absent. The second return reports whether the record was created.
// Must run inside the caller's transaction.
func (s *Service) GetOrCreateForUpdate(ctx context.Context, key Key, createdBy string) (*StockRecord, bool, error) {
	rec, err := s.repo.GetByKeyForUpdate(ctx, key)
	if err == nil {
		return rec, false, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, false, err
	}

	rec = NewStockRecord(key, createdBy)
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// GetForUpdate returns the locked record for a key.
func (s *Service) GetForUpdate(ctx context.Context, key Key) (*StockRecord, error) {
	return s.repo.GetByKeyForUpdate(ctx, key)
}

// Update persists a locked record's quantity fields.
func (s *Service) Update(ctx context.Context, rec *StockRecord) error {
	return s.repo.Update(ctx, rec)
}

// DeductionLines returns the locked stock lines at (item, location) in the
// FIFO deduction and lock order.
func (s *Service) DeductionLines(ctx context.Context, itemID, locationID id.ID) ([]StockRecord, error) {
	return s.repo.ListForDeductionForUpdate(ctx, itemID, locationID)
}

// Availability returns on_hand - reserved for a key, zero when the record
// does not exist.
func (s *Service) Availability(ctx context.Context, key Key) (types.Quantity, error) {
	rec, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return rec.Available(), nil
}

// IssueAvailability reports how much an issue request could draw, without
// locks. A pinned batch or lot reads the single line; otherwise the sum of
// the item's lines at the location. Advisory only — the authoritative check
// runs under row locks during processing.
func (s *Service) IssueAvailability(ctx context.Context, itemID, locationID id.ID, batch, lot *string) (types.Quantity, error) {
	if batch != nil || lot != nil {
		return s.Availability(ctx, Key{ItemID: itemID, LocationID: locationID, Batch: batch, Lot: lot})
	}

	records, err := s.repo.ListByItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	var total types.Quantity
	for i := range records {
		if records[i].LocationID != locationID {
			continue
		}
		if avail := records[i].Available(); avail.IsPositive() {
			total += avail
		}
	}
	return total, nil
}

// LocationStock returns active records at a location.
func (s *Service) LocationStock(ctx context.Context, locationID id.ID) ([]StockRecord, error) {
	return s.repo.ListByLocation(ctx, locationID)
}

// ItemStock returns active records of an item across locations.
func (s *Service) ItemStock(ctx context.Context, itemID id.ID) ([]StockRecord, error) {
	return s.repo.ListByItem(ctx, itemID)
}

// Allocation is one slice of an outward deduction across stock lines.
type Allocation struct {
	Record *StockRecord
	Take   types.Quantity
}

// AllocateFIFO splits an outward quantity across stock lines in
// earliest-expiring-first order, falling back to ascending record id.
// Lines are consumed up to their available quantity; an aggregate shortfall
// yields an insufficient-stock error and no allocations.
func AllocateFIFO(records []*StockRecord, requested types.Quantity) ([]Allocation, error) {
	if !requested.IsPositive() {
		return nil, apperror.NewValidation("requested quantity must be positive")
	}

	ordered := make([]*StockRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		ei, ej := ordered[i].ExpiryDate, ordered[j].ExpiryDate
		switch {
		case ei != nil && ej != nil && !ei.Equal(*ej):
			return ei.Before(*ej)
		case ei != nil && ej == nil:
			return true
		case ei == nil && ej != nil:
			return false
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})

	var total types.Quantity
	for _, rec := range ordered {
		if avail := rec.Available(); avail.IsPositive() {
			total += avail
		}
	}
	if total < requested {
		itemID := ""
		if len(ordered) > 0 {
			itemID = ordered[0].ItemID.String()
		}
		return nil, apperror.NewInsufficientStock(itemID, requested, total)
	}

	var allocations []Allocation
	remaining := requested
	for _, rec := range ordered {
		if remaining.IsZero() {
			break
		}
		avail := rec.Available()
		if !avail.IsPositive() {
			continue
		}
		take := avail
		if remaining < take {
			take = remaining
		}
		allocations = append(allocations, Allocation{Record: rec, Take: take})
		remaining -= take
	}

	return allocations, nil
}
