package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un repuesto del catálogo.
// StockDisponible es el campo plano heredado (pre-ledger); el saldo real vive en StockBalance.
// StockMinimo y StockIdeal son opcionales: nil significa "usar el valor por defecto".
type Product struct {
	ID              int64
	SKU             string // código único
	Name            string
	Cost            decimal.Decimal // costo promedio ponderado
	StockControlado bool
	StockDisponible *decimal.Decimal
	StockMinimo     *decimal.Decimal
	StockIdeal      *decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
