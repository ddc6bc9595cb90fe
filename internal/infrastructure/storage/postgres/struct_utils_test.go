package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"showroom/internal/core/entity"
	"showroom/internal/core/id"
)

type mockCatalog struct {
	entity.Catalog
	Phone   string `db:"phone" json:"phone"`
	Skipped string `db:"-" json:"skipped"`
	NoTag   string
}

type mockDocument struct {
	entity.Document
	VehicleID id.ID `db:"vehicle_id" json:"vehicleId"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expected := []string{"id", "deletion_mark", "deleted_at", "version", "code", "name", "phone"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "skipped")
}

func TestExtractDBColumns_Document(t *testing.T) {
	cols := ExtractDBColumns[mockDocument]()

	for _, col := range []string{"id", "version", "created_at", "updated_at", "created_by", "number", "date", "vehicle_id"} {
		assert.Contains(t, cols, col)
	}
}

func TestExtractDBColumns_Pointer(t *testing.T) {
	assert.Equal(t, ExtractDBColumns[mockCatalog](), ExtractDBColumns[*mockCatalog]())
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	c := mockCatalog{
		Catalog: entity.Catalog{
			BaseCatalog: entity.BaseCatalog{
				BaseEntity: entity.BaseEntity{
					ID:           id.New(),
					DeletionMark: true,
					DeletedAt:    &now,
					Version:      5,
				},
			},
			Code: "CUST-2026-00001",
			Name: "Test Customer",
		},
		Phone:   "+1-555-0100",
		Skipped: "ignored",
		NoTag:   "ignored",
	}

	m := StructToMap(c)

	assert.Equal(t, c.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, &now, m["deleted_at"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "CUST-2026-00001", m["code"])
	assert.Equal(t, "Test Customer", m["name"])
	assert.Equal(t, "+1-555-0100", m["phone"])

	_, hasSkipped := m["skipped"]
	assert.False(t, hasSkipped)
}

func TestStructToMap_PointerReceiver(t *testing.T) {
	c := &mockCatalog{Phone: "x"}
	m := StructToMap(c)
	assert.Equal(t, "x", m["phone"])
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("hello"))
}
