package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"opstock/internal/domain/catalogs/material"
)

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[material.Material]()

	// embedded entity.Catalog fields
	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "code")
	assert.Contains(t, cols, "name")
	assert.Contains(t, cols, "deletion_mark")
	assert.Contains(t, cols, "version")

	// material fields
	assert.Contains(t, cols, "unit")
	assert.Contains(t, cols, "min_level")
	assert.Contains(t, cols, "suppliers")
	assert.Contains(t, cols, "locations")
	assert.Contains(t, cols, "total_quantity")
}

func TestStructToMap(t *testing.T) {
	m := material.NewMaterial("MAT-2026-00001", "Portland Cement", "kg")

	data := StructToMap(m)

	assert.Equal(t, "MAT-2026-00001", data["code"])
	assert.Equal(t, "Portland Cement", data["name"])
	assert.Equal(t, "kg", data["unit"])
	assert.Equal(t, false, data["deletion_mark"])

	// works for both pointer and value receivers
	dataVal := StructToMap(*m)
	assert.Equal(t, data["code"], dataVal["code"])
}
