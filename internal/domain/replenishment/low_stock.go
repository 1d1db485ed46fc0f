package replenishment

import (
	"fmt"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DefaultMinimum mínimo usado cuando el producto no tiene stock_minimo configurado.
var DefaultMinimum = decimal.NewFromInt(2)

// idealFactor ideal = 3 × mínimo cuando no hay stock_ideal configurado.
var idealFactor = decimal.NewFromInt(3)

// LowStockSuggestion sugerencia del generador por stock bajo.
type LowStockSuggestion struct {
	ProductID int64
	Current   decimal.Decimal
	Minimum   decimal.Decimal
	Ideal     decimal.Decimal
	Quantity  decimal.Decimal
	Reason    string
}

// SuggestLowStock evalúa un producto: solo aplica a productos con stock controlado cuyo
// disponible (campo plano, 0 si falta) es <= mínimo. Sugiere max(1, ideal - disponible).
func SuggestLowStock(p *entity.Product, defaultMinimum decimal.Decimal) (LowStockSuggestion, bool) {
	if p == nil || !p.StockControlado {
		return LowStockSuggestion{}, false
	}
	current := decimal.Zero
	if p.StockDisponible != nil {
		current = *p.StockDisponible
	}
	minimum := defaultMinimum
	if p.StockMinimo != nil {
		minimum = *p.StockMinimo
	}
	if current.GreaterThan(minimum) {
		return LowStockSuggestion{}, false
	}
	ideal := minimum.Mul(idealFactor)
	if p.StockIdeal != nil {
		ideal = *p.StockIdeal
	}
	qty := decimal.Max(decimal.NewFromInt(1), ideal.Sub(current))
	return LowStockSuggestion{
		ProductID: p.ID,
		Current:   current,
		Minimum:   minimum,
		Ideal:     ideal,
		Quantity:  qty,
		Reason: fmt.Sprintf("Stock bajo: disponible %s, mínimo %s, ideal %s",
			current.String(), minimum.String(), ideal.String()),
	}, true
}
