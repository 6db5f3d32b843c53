package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockward/internal/core/entity"
	"stockward/internal/core/types"
	"stockward/internal/domain/catalogs/item"
	"stockward/internal/domain/ledger"
)

func TestExtractDBColumnsFlattensEmbedded(t *testing.T) {
	cols := ExtractDBColumns[item.Item]()

	// entity.Base columns come through the embedded struct.
	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "status")
	assert.Contains(t, cols, "created_at")

	assert.Contains(t, cols, "name")
	assert.Contains(t, cols, "unit")
	assert.Contains(t, cols, "is_active")
}

func TestExtractDBColumnsSkipsUntaggedFields(t *testing.T) {
	type row struct {
		Name    string `db:"name"`
		Skipped string `db:"-"`
		NoTag   string
	}

	cols := ExtractDBColumns[row]()
	assert.Equal(t, []string{"name"}, cols)
}

func TestStructToMap(t *testing.T) {
	it := item.New("Widget", "pcs", "admin")
	it.Description = "a widget"

	m := StructToMap(it)

	assert.Equal(t, it.ID, m["id"])
	assert.Equal(t, "Widget", m["name"])
	assert.Equal(t, "a widget", m["description"])
	assert.Equal(t, "pcs", m["unit"])
	assert.Equal(t, true, m["is_active"])
	assert.Equal(t, "admin", m["created_by"])
	assert.NotContains(t, m, "-")
}

func TestStructToMapStockRecord(t *testing.T) {
	batch := "B-1"
	rec := ledger.NewStockRecord(ledger.Key{Batch: &batch}, "seed")
	rec.OnHand = types.MustQuantity("12.5")

	m := StructToMap(rec)

	assert.Equal(t, types.MustQuantity("12.5"), m["on_hand"])
	assert.Equal(t, &batch, m["batch"])
	assert.Equal(t, entity.StatusActive, m["status"])
}

func TestStructToMapNonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("x"))
}
