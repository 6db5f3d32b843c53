package dto

import (
	"time"

	"stockward/internal/core/apperror"
	"stockward/internal/core/types"
	"stockward/internal/domain/process"
	"stockward/internal/domain/transaction"
)

// CreateTransactionRequest creates an inventory transaction of any kind.
// Quantity accepts a JSON number or string with up to four decimal places.
type CreateTransactionRequest struct {
	ProcessType string         `json:"processType" binding:"required"`
	ItemID      string         `json:"itemId" binding:"required"`
	Quantity    types.Quantity `json:"quantity"`

	LocationID     *string `json:"locationId"`
	FromLocationID *string `json:"fromLocationId"`
	ToLocationID   *string `json:"toLocationId"`

	Batch *string `json:"batch"`
	Lot   *string `json:"lot"`

	SupplierID          *string `json:"supplierId"`
	PurchaseOrderID     *string `json:"purchaseOrderId"`
	PurchaseOrderItemID *string `json:"purchaseOrderItemId"`

	QualityStatus string     `json:"qualityStatus"`
	ExpiryDate    *time.Time `json:"expiryDate"`

	Reason        string `json:"reason"`
	IsDefective   bool   `json:"isDefective"`
	AllowNegative bool   `json:"allowNegative"`
	IsDispatched  bool   `json:"isDispatched"`

	StagingLocationID *string `json:"stagingLocationId"`
	AssigneeID        string  `json:"assigneeId"`

	Remarks string `json:"remarks"`
}

// ToRequest converts the payload to the domain request.
func (r CreateTransactionRequest) ToRequest() (*transaction.Request, error) {
	itemID, err := ParseID("itemId", r.ItemID)
	if err != nil {
		return nil, err
	}

	req := &transaction.Request{
		ProcessType:   r.ProcessType,
		ItemID:        itemID,
		Quantity:      r.Quantity,
		Batch:         r.Batch,
		Lot:           r.Lot,
		QualityStatus: r.QualityStatus,
		ExpiryDate:    r.ExpiryDate,
		Reason:        r.Reason,
		IsDefective:   r.IsDefective,
		AllowNegative: r.AllowNegative,
		IsDispatched:  r.IsDispatched,
		AssigneeID:    r.AssigneeID,
		Remarks:       r.Remarks,
	}

	if req.LocationID, err = ParseOptionalID("locationId", r.LocationID); err != nil {
		return nil, err
	}
	if req.FromLocationID, err = ParseOptionalID("fromLocationId", r.FromLocationID); err != nil {
		return nil, err
	}
	if req.ToLocationID, err = ParseOptionalID("toLocationId", r.ToLocationID); err != nil {
		return nil, err
	}
	if req.SupplierID, err = ParseOptionalID("supplierId", r.SupplierID); err != nil {
		return nil, err
	}
	if req.PurchaseOrderID, err = ParseOptionalID("purchaseOrderId", r.PurchaseOrderID); err != nil {
		return nil, err
	}
	if req.PurchaseOrderItemID, err = ParseOptionalID("purchaseOrderItemId", r.PurchaseOrderItemID); err != nil {
		return nil, err
	}
	if req.StagingLocationID, err = ParseOptionalID("stagingLocationId", r.StagingLocationID); err != nil {
		return nil, err
	}

	return req, nil
}

// ListTransactionsQuery filters the transaction journal.
type ListTransactionsQuery struct {
	ProcessType string `form:"processType"`
	ItemID      string `form:"itemId"`
	LocationID  string `form:"locationId"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

// ToFilter converts query parameters to the domain filter.
func (q ListTransactionsQuery) ToFilter() (transaction.ListFilter, error) {
	f := transaction.ListFilter{Limit: q.Limit, Offset: q.Offset}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	if q.ProcessType != "" {
		kind, ok := process.ParseKind(q.ProcessType)
		if !ok {
			return f, apperror.NewValidation("unknown process type").WithDetail("processType", q.ProcessType)
		}
		f.ProcessKind = &kind
	}

	if q.ItemID != "" {
		itemID, err := ParseID("itemId", q.ItemID)
		if err != nil {
			return f, err
		}
		f.ItemID = &itemID
	}
	if q.LocationID != "" {
		locationID, err := ParseID("locationId", q.LocationID)
		if err != nil {
			return f, err
		}
		f.LocationID = &locationID
	}

	return f, nil
}
