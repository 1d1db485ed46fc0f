package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sale es la venta confirmada por el punto de venta (solo lo que necesita el núcleo de stock).
type Sale struct {
	ID          int64
	Number      string
	WarehouseID *int64
	Items       []SaleItem
	CreatedAt   time.Time
}

// SaleItem es una línea de venta. ProductID puede venir vacío en líneas antiguas que solo
// traen el SKU; se resuelve por SKU y se persiste de vuelta en la línea.
type SaleItem struct {
	ID          int64
	SaleID      int64
	ProductID   *int64
	VariationID *int64
	SKU         string
	Description string
	Quantity    decimal.Decimal
}

// Reference devuelve el texto legible de la venta usado en los movimientos.
func (s *Sale) Reference() string {
	if n := strings.TrimSpace(s.Number); n != "" {
		return "Venta " + n
	}
	return "Venta #" + itoa(s.ID)
}

// SaleOutflow marca de idempotencia: la salida de stock de la venta ya fue aplicada.
type SaleOutflow struct {
	SaleID      int64
	WarehouseID int64
	ActorID     int64
	AppliedAt   time.Time
}
