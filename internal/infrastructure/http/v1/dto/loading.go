package dto

import (
	"stockward/internal/domain/loading"
)

// StartLoadingRequest opens a loading record for an outward transaction.
type StartLoadingRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
	VehicleNumber string `json:"vehicleNumber"`
	DriverName    string `json:"driverName"`
	Remarks       string `json:"remarks"`
}

// ToRequest converts to the domain request.
func (r StartLoadingRequest) ToRequest() (*loading.StartRequest, error) {
	txnID, err := ParseID("transactionId", r.TransactionID)
	if err != nil {
		return nil, err
	}
	return &loading.StartRequest{
		TransactionID: txnID,
		VehicleNumber: r.VehicleNumber,
		DriverName:    r.DriverName,
		Remarks:       r.Remarks,
	}, nil
}

// ListLoadingsQuery filters loading records.
type ListLoadingsQuery struct {
	TransactionID string `form:"transactionId"`
	Completed     *bool  `form:"completed"`
	Limit         int    `form:"limit"`
	Offset        int    `form:"offset"`
}

// ToFilter converts query parameters to the domain filter.
func (q ListLoadingsQuery) ToFilter() (loading.ListFilter, error) {
	f := loading.ListFilter{Completed: q.Completed, Limit: q.Limit, Offset: q.Offset}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if q.TransactionID != "" {
		txnID, err := ParseID("transactionId", q.TransactionID)
		if err != nil {
			return f, err
		}
		f.TransactionID = &txnID
	}
	return f, nil
}
