package inventory

import (
	"time"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ApplyDelta aplica delta al saldo y devuelve el movimiento con la foto antes/después.
// No hay piso: el saldo puede quedar negativo para no bloquear ventas con stock desactualizado.
func ApplyDelta(balance *entity.StockBalance, mtype entity.MovementType, delta decimal.Decimal, now time.Time) *entity.StockMovement {
	before := balance.OnHand
	after := before.Add(delta)
	balance.OnHand = after
	balance.UpdatedAt = now
	return &entity.StockMovement{
		ProductID:      balance.Key.ProductID,
		VariationID:    balance.Key.VariationID,
		WarehouseID:    balance.Key.WarehouseID,
		Type:           mtype,
		QuantityDelta:  delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		CreatedAt:      now,
	}
}
