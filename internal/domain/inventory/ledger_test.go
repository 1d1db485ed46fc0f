package inventory_test

import (
	"testing"
	"time"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApplyDelta_PermiteSaldoNegativo(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	b := &entity.StockBalance{Key: entity.StockKey{ProductID: 1, WarehouseID: 1}, OnHand: decimal.Zero}

	mov := inventory.ApplyDelta(b, entity.MovementTypeSale, decimal.NewFromInt(-5), now)

	assert.True(t, b.OnHand.Equal(decimal.NewFromInt(-5)))
	assert.True(t, mov.QuantityBefore.IsZero())
	assert.True(t, mov.QuantityAfter.Equal(decimal.NewFromInt(-5)))
	assert.True(t, mov.QuantityAfter.Equal(mov.QuantityBefore.Add(mov.QuantityDelta)))
	assert.Equal(t, entity.MovementTypeSale, mov.Type)
	assert.Equal(t, now, mov.CreatedAt)
}

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	got := inventory.CostCalculator(
		decimal.NewFromInt(10), decimal.NewFromInt(100),
		decimal.NewFromInt(10), decimal.NewFromInt(200),
	)
	assert.True(t, got.Equal(decimal.NewFromInt(150)), "got %s", got)
}

func TestCostCalculator_StockNegativoTomaCostoEntrada(t *testing.T) {
	got := inventory.CostCalculator(
		decimal.NewFromInt(-3), decimal.NewFromInt(100),
		decimal.NewFromInt(4), decimal.NewFromInt(80),
	)
	assert.True(t, got.Equal(decimal.NewFromInt(80)), "got %s", got)
}
