// Package procurement provides supplier and purchase order collaborators of
// the inventory engine: the remaining-quantity check consumed by inward
// validation and the delivery-performance supplier rating.
package procurement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stockward/internal/core/apperror"
	"stockward/internal/core/entity"
	"stockward/internal/core/id"
	"stockward/internal/core/types"
)

// Rating bounds. New suppliers start at the maximum.
var (
	RatingMin = decimal.RequireFromString("1.0")
	RatingMax = decimal.RequireFromString("5.0")
)

// Supplier represents a goods supplier with a delivery-performance rating.
type Supplier struct {
	entity.Base

	Name     string          `db:"name" json:"name"`
	Rating   decimal.Decimal `db:"rating" json:"rating"`
	IsActive bool            `db:"is_active" json:"isActive"`
}

// NewSupplier creates an active supplier with the maximum rating.
func NewSupplier(name, createdBy string) *Supplier {
	return &Supplier{
		Base:     entity.NewBase(createdBy),
		Name:     name,
		Rating:   RatingMax,
		IsActive: true,
	}
}

// Validate implements entity.Validatable.
func (s *Supplier) Validate(ctx context.Context) error {
	if s.Name == "" {
		return apperror.NewValidation("supplier name is required")
	}
	return nil
}

// PurchaseOrder is a supplier order header. Only the fields the inventory
// engine consumes are modeled; full document management is out of scope.
type PurchaseOrder struct {
	entity.Base

	SupplierID           id.ID      `db:"supplier_id" json:"supplierId"`
	Number               string     `db:"number" json:"number"`
	ExpectedDeliveryDate *time.Time `db:"expected_delivery_date" json:"expectedDeliveryDate,omitempty"`

	// TotalAmount is informational only.
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
}

// PurchaseOrderItem is one ordered line. Its remaining quantity is derived:
// ordered minus the sum of fulfilled inward quantities referencing it.
type PurchaseOrderItem struct {
	entity.Base

	PurchaseOrderID id.ID          `db:"purchase_order_id" json:"purchaseOrderId"`
	ItemID          id.ID          `db:"item_id" json:"itemId"`
	Ordered         types.Quantity `db:"ordered" json:"ordered"`
}
