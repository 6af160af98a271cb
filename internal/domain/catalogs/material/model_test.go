package material

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/core/types"
)

func TestNewMaterial_Defaults(t *testing.T) {
	m := NewMaterial("MAT-2026-00001", "Portland Cement", "kg")

	assert.Equal(t, DefaultCategory, m.Category)
	assert.Equal(t, StatusOut, m.Status)
	assert.NotNil(t, m.Suppliers)
	assert.NotNil(t, m.Locations)
	assert.True(t, m.TotalQuantity.IsZero())
}

func TestMaterial_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		m := NewMaterial("MAT-2026-00001", "Portland Cement", "kg")
		m.MinLevel = types.NewQuantityFromFloat64(10)
		require.NoError(t, m.Validate(ctx))
	})

	t.Run("missing unit", func(t *testing.T) {
		m := NewMaterial("MAT-2026-00001", "Portland Cement", "")
		err := m.Validate(ctx)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("negative min level", func(t *testing.T) {
		m := NewMaterial("MAT-2026-00001", "Portland Cement", "kg")
		m.MinLevel = types.NewQuantityFromFloat64(-1)
		require.Error(t, m.Validate(ctx))
	})

	t.Run("negative supplier quantity", func(t *testing.T) {
		m := NewMaterial("MAT-2026-00001", "Portland Cement", "kg")
		m.Suppliers[id.New().String()] = SupplierEntry{
			Quantity: types.NewQuantityFromFloat64(-5),
		}
		require.Error(t, m.Validate(ctx))
	})
}

func TestMaterial_AdjustSupplierQuantity(t *testing.T) {
	supplierID := id.New()

	t.Run("insert on first adjustment", func(t *testing.T) {
		m := NewMaterial("MAT-2026-00001", "Portland Cement", "kg")
		price := types.MustMoney("42.50")

		m.AdjustSupplierQuantity(supplierID, types.NewQuantityFromFloat64(50), &price)

		entry, ok := m.Suppliers[supplierID.String()]
		require.True(t, ok)
		assert.Equal(t, types.NewQuantityFromFloat64(50), entry.Quantity)
		assert.True(t, entry.Price.Equal(price))
	})

	t.Run("decrement clamps at zero", func(t *testing.T) {
		m := NewMaterial("MAT-2026-00001", "Portland Cement", "kg")
		m.AdjustSupplierQuantity(supplierID, types.NewQuantityFromFloat64(10), nil)
		m.AdjustSupplierQuantity(supplierID, types.NewQuantityFromFloat64(-25), nil)

		entry := m.Suppliers[supplierID.String()]
		assert.True(t, entry.Quantity.IsZero())
	})

	t.Run("price kept on decrement", func(t *testing.T) {
		m := NewMaterial("MAT-2026-00001", "Portland Cement", "kg")
		price := types.MustMoney("42.50")
		lower := types.MustMoney("1.00")

		m.AdjustSupplierQuantity(supplierID, types.NewQuantityFromFloat64(10), &price)
		m.AdjustSupplierQuantity(supplierID, types.NewQuantityFromFloat64(-5), &lower)

		entry := m.Suppliers[supplierID.String()]
		assert.True(t, entry.Price.Equal(price))
	})
}

func TestMaterial_RecomputeStatus(t *testing.T) {
	locA := id.New()
	locB := id.New()

	m := NewMaterial("MAT-2026-00001", "Portland Cement", "kg")
	m.MinLevel = types.NewQuantityFromFloat64(20)

	m.RecomputeStatus()
	assert.Equal(t, StatusOut, m.Status)

	m.AdjustLocationQuantity(locA, types.NewQuantityFromFloat64(5))
	m.AdjustLocationQuantity(locB, types.NewQuantityFromFloat64(10))
	m.RecomputeStatus()
	assert.Equal(t, StatusLow, m.Status)
	assert.Equal(t, types.NewQuantityFromFloat64(15), m.TotalQuantity)

	m.AdjustLocationQuantity(locA, types.NewQuantityFromFloat64(100))
	m.RecomputeStatus()
	assert.Equal(t, StatusOK, m.Status)
}

func TestDeriveStatus(t *testing.T) {
	min := types.NewQuantityFromFloat64(10)

	assert.Equal(t, StatusOut, DeriveStatus(0, min))
	assert.Equal(t, StatusLow, DeriveStatus(types.NewQuantityFromFloat64(0.5), min))
	assert.Equal(t, StatusLow, DeriveStatus(min, min))
	assert.Equal(t, StatusOK, DeriveStatus(types.NewQuantityFromFloat64(10.0001), min))
}
