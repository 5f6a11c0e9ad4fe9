package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

type mockCatalog struct {
	entity.Catalog
	SKU      string `db:"sku" json:"sku"`
	Internal string `db:"-"`
	NoTag    string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	// Embedded Catalog and BaseCatalog columns surface alongside own fields
	expected := []string{
		"id", "deletion_mark", "version",
		"company_id", "code", "name", "is_active",
		"sku",
	}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}

	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "Internal")
	assert.NotContains(t, cols, "NoTag")
}

func TestStructToMap(t *testing.T) {
	companyID := id.New()
	cat := mockCatalog{
		Catalog:  entity.NewCatalog(companyID, "TEST", "Test Name"),
		SKU:      "SKU-1",
		Internal: "hidden",
	}
	cat.DeletionMark = true
	cat.Version = 5

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, companyID, m["company_id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "TEST", m["code"])
	assert.Equal(t, "Test Name", m["name"])
	assert.Equal(t, true, m["is_active"])
	assert.Equal(t, "SKU-1", m["sku"])

	_, hasHidden := m["-"]
	assert.False(t, hasHidden, "db:\"-\" fields must be excluded")
}

func TestStructToMap_PointerAndNonStruct(t *testing.T) {
	cat := &mockCatalog{Catalog: entity.NewCatalog(id.New(), "A", "B")}
	m := StructToMap(cat)
	assert.Equal(t, "A", m["code"])

	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("string"))
}
