package procurement

import (
	"context"

	"stockward/internal/core/id"
	"stockward/internal/core/types"
)

// Repository defines storage for procurement entities.
type Repository interface {
	CreateSupplier(ctx context.Context, s *Supplier) error
	GetSupplier(ctx context.Context, supplierID id.ID) (*Supplier, error)

	// UpdateSupplierRating persists a recomputed rating.
	UpdateSupplierRating(ctx context.Context, s *Supplier) error

	CreatePurchaseOrder(ctx context.Context, po *PurchaseOrder) error
	GetPurchaseOrder(ctx context.Context, poID id.ID) (*PurchaseOrder, error)

	CreatePurchaseOrderItem(ctx context.Context, line *PurchaseOrderItem) error
	GetPurchaseOrderItem(ctx context.Context, lineID id.ID) (*PurchaseOrderItem, error)

	// ReceivedQuantity sums fulfilled inward transaction quantities
	// referencing a purchase order line. When exclude is non-nil the
	// transaction with that id is left out of the sum.
	ReceivedQuantity(ctx context.Context, lineID id.ID, exclude *id.ID) (types.Quantity, error)
}

// Service exposes the procurement collaborator interface.
type Service struct {
	repo Repository
}

// NewService creates a new procurement service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RemainingQuantity returns ordered − received for a purchase order line.
// Inward validation uses it to reject over-receipt.
func (s *Service) RemainingQuantity(ctx context.Context, lineID id.ID) (types.Quantity, error) {
	return s.remaining(ctx, lineID, nil)
}

// RemainingQuantityExcluding is RemainingQuantity with one transaction left
// out of the received sum. The inward processor re-checks the order bound
// after its own row is already inserted, so it must not count itself.
func (s *Service) RemainingQuantityExcluding(ctx context.Context, lineID, txnID id.ID) (types.Quantity, error) {
	return s.remaining(ctx, lineID, &txnID)
}

func (s *Service) remaining(ctx context.Context, lineID id.ID, exclude *id.ID) (types.Quantity, error) {
	line, err := s.repo.GetPurchaseOrderItem(ctx, lineID)
	if err != nil {
		return 0, err
	}
	received, err := s.repo.ReceivedQuantity(ctx, lineID, exclude)
	if err != nil {
		return 0, err
	}
	return line.Ordered - received, nil
}

// GetPurchaseOrderItem returns a purchase order line.
func (s *Service) GetPurchaseOrderItem(ctx context.Context, lineID id.ID) (*PurchaseOrderItem, error) {
	return s.repo.GetPurchaseOrderItem(ctx, lineID)
}

// GetPurchaseOrder returns a purchase order header.
func (s *Service) GetPurchaseOrder(ctx context.Context, poID id.ID) (*PurchaseOrder, error) {
	return s.repo.GetPurchaseOrder(ctx, poID)
}
