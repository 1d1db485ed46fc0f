package repository

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// SaleRepository lectura de ventas (las escribe el punto de venta) y marca de idempotencia.
type SaleRepository interface {
	// GetByIDForUpdate carga la venta con sus líneas y bloquea la cabecera.
	GetByIDForUpdate(ctx context.Context, id int64) (*entity.Sale, error)
	// SetItemProduct persiste en la línea el producto resuelto por SKU.
	SetItemProduct(ctx context.Context, itemID, productID int64) error
	// MarkOutflowApplied registra la marca; devuelve false si la venta ya estaba procesada.
	MarkOutflowApplied(ctx context.Context, outflow *entity.SaleOutflow) (bool, error)
}
