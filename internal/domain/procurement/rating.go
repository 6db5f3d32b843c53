package procurement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stockward/internal/core/id"
	"stockward/pkg/logger"
)

// QualityDamaged is the received-goods quality status that further lowers
// the supplier rating.
const QualityDamaged = "damaged"

var (
	penaltyLate    = decimal.RequireFromString("0.2")
	penaltySlight  = decimal.RequireFromString("0.1")
	bonusOnTime    = decimal.RequireFromString("0.1")
	penaltyDamaged = decimal.RequireFromString("0.2")
)

// RatingAdjuster recomputes supplier ratings from delivery performance.
// It runs as a fire-and-forget side effect of inward receipt: failures are
// logged and never affect the transaction's success.
type RatingAdjuster struct {
	repo Repository
}

// NewRatingAdjuster creates a new rating adjuster.
func NewRatingAdjuster(repo Repository) *RatingAdjuster {
	return &RatingAdjuster{repo: repo}
}

// AdjustForDelivery updates the supplier rating of an inward receipt against
// a purchase order with an expected delivery date. No-op when the order has
// no expected date.
func (a *RatingAdjuster) AdjustForDelivery(ctx context.Context, purchaseOrderID id.ID, actualDate time.Time, qualityStatus string) {
	po, err := a.repo.GetPurchaseOrder(ctx, purchaseOrderID)
	if err != nil {
		logger.Warn(ctx, "supplier rating skipped: purchase order lookup failed",
			"purchase_order_id", purchaseOrderID, "error", err)
		return
	}
	if po.ExpectedDeliveryDate == nil {
		return
	}

	supplier, err := a.repo.GetSupplier(ctx, po.SupplierID)
	if err != nil {
		logger.Warn(ctx, "supplier rating skipped: supplier lookup failed",
			"supplier_id", po.SupplierID, "error", err)
		return
	}

	delayDays := daysBetween(*po.ExpectedDeliveryDate, actualDate)
	supplier.Rating = NextRating(supplier.Rating, delayDays, qualityStatus)
	supplier.Touch(supplier.UpdatedBy)

	if err := a.repo.UpdateSupplierRating(ctx, supplier); err != nil {
		logger.Warn(ctx, "supplier rating update failed",
			"supplier_id", supplier.ID, "error", err)
		return
	}

	logger.Info(ctx, "supplier rating adjusted",
		"supplier_id", supplier.ID,
		"delay_days", delayDays,
		"rating", supplier.Rating,
	)
}

// NextRating applies the delivery-delay rule to a rating:
//
//	delay > 2 days:  −0.2
//	0 < delay ≤ 2:   −0.1
//	delay ≤ 0:       +0.1
//
// A damaged quality status costs a further 0.2. The result is clamped to
// [1.0, 5.0] and rounded to 2 decimal places.
func NextRating(current decimal.Decimal, delayDays int, qualityStatus string) decimal.Decimal {
	next := current
	switch {
	case delayDays > 2:
		next = next.Sub(penaltyLate)
	case delayDays > 0:
		next = next.Sub(penaltySlight)
	default:
		next = next.Add(bonusOnTime)
	}

	if qualityStatus == QualityDamaged {
		next = next.Sub(penaltyDamaged)
	}

	if next.LessThan(RatingMin) {
		next = RatingMin
	}
	if next.GreaterThan(RatingMax) {
		next = RatingMax
	}
	return next.Round(2)
}

// daysBetween returns whole days from expected to actual, truncating both to
// calendar dates.
func daysBetween(expected, actual time.Time) int {
	e := time.Date(expected.Year(), expected.Month(), expected.Day(), 0, 0, 0, 0, time.UTC)
	a := time.Date(actual.Year(), actual.Month(), actual.Day(), 0, 0, 0, 0, time.UTC)
	return int(a.Sub(e).Hours() / 24)
}
