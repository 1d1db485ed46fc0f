package repository

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los Get devuelven (nil, nil) cuando no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	UpdateCost(ctx context.Context, productID int64, cost decimal.Decimal) error
	// MirrorLegacyStock copia la cantidad al campo plano heredado. Es best-effort: un fallo
	// no debe abortar la transacción del llamador.
	MirrorLegacyStock(ctx context.Context, productID int64, qty decimal.Decimal) error
	// ListBelowMinimum productos con stock controlado cuyo stock disponible es <= su mínimo
	// (defaultMinimum cuando no está configurado).
	ListBelowMinimum(ctx context.Context, defaultMinimum decimal.Decimal) ([]*entity.Product, error)
}
