package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier proveedor de repuestos.
type Supplier struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// SupplierOffer fila de la tabla de precios producto-proveedor.
type SupplierOffer struct {
	ID           int64
	ProductID    int64
	SupplierID   int64
	SupplierName string
	ListPrice    decimal.Decimal
	Active       bool
}
