package repository

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// SupplierOfferRepository tabla de precios producto-proveedor.
type SupplierOfferRepository interface {
	// ListCheapestActive devuelve todas las ofertas activas con el menor precio de lista
	// (más de una si hay empate), en el orden de almacenamiento.
	ListCheapestActive(ctx context.Context, productID int64) ([]entity.SupplierOffer, error)
}
