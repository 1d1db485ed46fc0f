package entity

import (
	"cmp"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StockKey identifica un saldo: producto, variación opcional y bodega.
type StockKey struct {
	ProductID   int64
	VariationID *int64
	WarehouseID int64
}

// Equal compara claves tratando las variaciones nil como iguales entre sí.
func (k StockKey) Equal(o StockKey) bool {
	if k.ProductID != o.ProductID || k.WarehouseID != o.WarehouseID {
		return false
	}
	if k.VariationID == nil || o.VariationID == nil {
		return k.VariationID == nil && o.VariationID == nil
	}
	return *k.VariationID == *o.VariationID
}

// Compare ordena por producto, variación (nil primero) y bodega. Es el orden en que se toman
// los bloqueos de saldos.
func (k StockKey) Compare(o StockKey) int {
	if c := cmp.Compare(k.ProductID, o.ProductID); c != 0 {
		return c
	}
	switch {
	case k.VariationID == nil && o.VariationID != nil:
		return -1
	case k.VariationID != nil && o.VariationID == nil:
		return 1
	case k.VariationID != nil:
		if c := cmp.Compare(*k.VariationID, *o.VariationID); c != 0 {
			return c
		}
	}
	return cmp.Compare(k.WarehouseID, o.WarehouseID)
}

func (k StockKey) String() string {
	if k.VariationID == nil {
		return fmt.Sprintf("producto=%d bodega=%d", k.ProductID, k.WarehouseID)
	}
	return fmt.Sprintf("producto=%d variacion=%d bodega=%d", k.ProductID, *k.VariationID, k.WarehouseID)
}

// StockBalance es el saldo derivado (cache) de una clave de stock.
// Se crea de forma perezosa con el primer movimiento.
type StockBalance struct {
	ID        int64
	Key       StockKey
	OnHand    decimal.Decimal
	Reserved  decimal.Decimal
	UpdatedAt time.Time
}

// Available = OnHand - Reserved.
func (b *StockBalance) Available() decimal.Decimal {
	return b.OnHand.Sub(b.Reserved)
}
