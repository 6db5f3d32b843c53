package task

import (
	"context"
	"testing"

	"stockward/internal/core/apperror"
)

func TestTypeCatalogSave(t *testing.T) {
	repo := allTypesActive()
	catalog := NewTypeCatalog(repo)

	entry := NewType(TypePickup, "Order picking", "admin")
	if err := catalog.Save(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.upserted) != 1 || repo.upserted[0].Code != TypePickup {
		t.Fatalf("expected one upserted entry, got %v", repo.upserted)
	}
}

func TestTypeCatalogSaveRejectsUnknownCode(t *testing.T) {
	repo := allTypesActive()
	catalog := NewTypeCatalog(repo)

	entry := NewType(TypeCode("SHRINKWRAP"), "Shrink wrap", "admin")
	err := catalog.Save(context.Background(), entry)
	if !apperror.IsCode(err, apperror.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.upserted) != 0 {
		t.Errorf("invalid entry must not reach storage")
	}
}
