package auditlog

import (
	"context"
	"fmt"

	"stockward/internal/core/apperror"
	"stockward/internal/core/id"
)

// Repository defines append-only storage for audit entries.
type Repository interface {
	// Append batch inserts entries within the current transaction.
	Append(ctx context.Context, entries []Entry) error

	// ListByStockRecord returns entries for a record in creation order.
	ListByStockRecord(ctx context.Context, stockRecordID id.ID) ([]Entry, error)

	// ListByTransaction returns entries created by one transaction.
	ListByTransaction(ctx context.Context, transactionID id.ID) ([]Entry, error)
}

// Service validates and appends audit entries.
type Service struct {
	repo Repository
}

// NewService creates a new audit log service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append validates entry arithmetic and stores the batch. Must be called
// inside the same atomic unit as the stock mutation it describes.
func (s *Service) Append(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	for i, e := range entries {
		if e.QuantityAfter != e.QuantityBefore+e.QuantityChanged {
			return apperror.NewInternal(fmt.Errorf(
				"audit entry %d violates before+changed=after: %s + %s != %s",
				i, e.QuantityBefore, e.QuantityChanged, e.QuantityAfter,
			))
		}
		if id.IsNil(e.TransactionID) {
			return apperror.NewInternal(fmt.Errorf("audit entry %d has no transaction reference", i))
		}
	}
	return s.repo.Append(ctx, entries)
}

// History returns the ordered quantity trail for a stock record.
func (s *Service) History(ctx context.Context, stockRecordID id.ID) ([]Entry, error) {
	return s.repo.ListByStockRecord(ctx, stockRecordID)
}

// ByTransaction returns entries written by one transaction.
func (s *Service) ByTransaction(ctx context.Context, transactionID id.ID) ([]Entry, error) {
	return s.repo.ListByTransaction(ctx, transactionID)
}
