// Package process provides the inventory process type catalog.
//
// The five transaction kinds form a closed, compile-time-known enumeration;
// the database catalog is retained only for human-facing metadata (name,
// description) and activation flags, never for control flow.
package process

import (
	"context"
	"strings"

	"stockward/internal/core/apperror"
	"stockward/internal/core/entity"
)

// Kind is the tagged variant of an inventory transaction.
type Kind string

const (
	KindInward     Kind = "INWARD"
	KindOutward    Kind = "OUTWARD"
	KindTransfer   Kind = "TRANSFER"
	KindAdjustment Kind = "ADJUSTMENT"
	KindReturn     Kind = "RETURN"
)

// Kinds lists every known process kind.
func Kinds() []Kind {
	return []Kind{KindInward, KindOutward, KindTransfer, KindAdjustment, KindReturn}
}

// ParseKind converts a wire code into a Kind.
func ParseKind(code string) (Kind, bool) {
	switch Kind(strings.ToUpper(strings.TrimSpace(code))) {
	case KindInward:
		return KindInward, true
	case KindOutward:
		return KindOutward, true
	case KindTransfer:
		return KindTransfer, true
	case KindAdjustment:
		return KindAdjustment, true
	case KindReturn:
		return KindReturn, true
	}
	return "", false
}

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// IsValid reports whether k is one of the five known kinds.
func (k Kind) IsValid() bool {
	_, ok := ParseKind(string(k))
	return ok
}

// Type is the human-facing catalog entry behind a Kind.
type Type struct {
	entity.Base

	Code        Kind   `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
	IsActive    bool   `db:"is_active" json:"isActive"`
}

// NewType creates a catalog entry for a process kind.
func NewType(code Kind, name, description string, createdBy string) *Type {
	return &Type{
		Base:        entity.NewBase(createdBy),
		Code:        code,
		Name:        name,
		Description: description,
		IsActive:    true,
	}
}

// Validate implements entity.Validatable.
func (t *Type) Validate(ctx context.Context) error {
	if !t.Code.IsValid() {
		return apperror.NewValidation("unknown process type code").
			WithDetail("code", string(t.Code))
	}
	if t.Name == "" {
		return apperror.NewValidation("process type name is required")
	}
	return nil
}
