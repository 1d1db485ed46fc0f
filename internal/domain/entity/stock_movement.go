package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del ledger de stock.
type MovementType string

// Tipos de movimiento.
const (
	MovementTypeSale            MovementType = "SALE"
	MovementTypeAdjustment      MovementType = "ADJUSTMENT"
	MovementTypePurchaseReceipt MovementType = "PURCHASE_RECEIPT"
)

// Valid indica si el tipo es conocido.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeSale, MovementTypeAdjustment, MovementTypePurchaseReceipt:
		return true
	}
	return false
}

// StockMovement es una entrada inmutable del ledger.
// Invariante: QuantityAfter = QuantityBefore + QuantityDelta. Nunca se modifica ni se borra.
type StockMovement struct {
	ID             int64
	TransactionID  string // agrupa los movimientos escritos por una misma operación
	ProductID      int64
	VariationID    *int64
	WarehouseID    int64
	ActorID        int64
	Type           MovementType
	QuantityDelta  decimal.Decimal // negativo para salidas
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	SaleID         *int64
	Reference      string
	UnitCost       decimal.Decimal
	CreatedAt      time.Time
}

// Key devuelve la clave de stock del movimiento.
func (m *StockMovement) Key() StockKey {
	return StockKey{ProductID: m.ProductID, VariationID: m.VariationID, WarehouseID: m.WarehouseID}
}
