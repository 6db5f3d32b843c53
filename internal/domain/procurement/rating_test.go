package procurement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNextRating(t *testing.T) {
	tests := []struct {
		name          string
		current       string
		delayDays     int
		qualityStatus string
		want          string
	}{
		{"on time bonus", "4.0", 0, "", "4.1"},
		{"early delivery bonus", "4.0", -3, "", "4.1"},
		{"slight delay", "4.0", 1, "", "3.9"},
		{"slight delay upper bound", "4.0", 2, "", "3.9"},
		{"late delivery", "4.0", 3, "", "3.8"},
		{"very late delivery", "4.0", 30, "", "3.8"},
		{"damaged on time", "4.0", 0, QualityDamaged, "3.9"},
		{"damaged and late", "4.0", 5, QualityDamaged, "3.6"},
		{"clamped at maximum", "5.0", 0, "", "5"},
		{"clamped at minimum", "1.05", 5, QualityDamaged, "1"},
		{"other quality statuses ignored", "4.0", 0, "good", "4.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := decimal.RequireFromString(tt.current)
			want := decimal.RequireFromString(tt.want)

			got := NextRating(current, tt.delayDays, tt.qualityStatus)
			if !got.Equal(want) {
				t.Errorf("NextRating(%s, %d, %q) = %s, want %s",
					tt.current, tt.delayDays, tt.qualityStatus, got, want)
			}
		})
	}
}

func TestDaysBetweenTruncatesToCalendarDates(t *testing.T) {
	expected := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		actual time.Time
		want   int
	}{
		{"same day later hour", time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC), 0},
		{"next morning counts as one day", time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC), 1},
		{"day before counts negative", time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC), -1},
		{"week later", time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := daysBetween(expected, tt.actual); got != tt.want {
				t.Errorf("daysBetween = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewSupplierStartsAtMaxRating(t *testing.T) {
	s := NewSupplier("Acme Supplies", "admin")
	if !s.Rating.Equal(RatingMax) {
		t.Errorf("expected rating %s, got %s", RatingMax, s.Rating)
	}
	if !s.IsActive {
		t.Error("expected new supplier to be active")
	}
}
