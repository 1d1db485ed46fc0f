package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

var _ repository.SupplierOfferRepository = (*SupplierOfferRepo)(nil)

// SupplierOfferRepo tabla de precios producto-proveedor.
type SupplierOfferRepo struct {
	q Querier
}

func NewSupplierOfferRepository(q Querier) *SupplierOfferRepo {
	return &SupplierOfferRepo{q: q}
}

// ListCheapestActive ofertas activas con el menor precio de lista. Sin ORDER BY adicional:
// el desempate queda en el orden físico de la tabla.
func (r *SupplierOfferRepo) ListCheapestActive(ctx context.Context, productID int64) ([]entity.SupplierOffer, error) {
	query := `
		SELECT ps.id, ps.product_id, ps.supplier_id, s.name, ps.list_price, ps.active
		FROM product_suppliers ps
		JOIN suppliers s ON s.id = ps.supplier_id
		WHERE ps.product_id = $1 AND ps.active
		  AND ps.list_price = (
			SELECT MIN(list_price) FROM product_suppliers WHERE product_id = $1 AND active
		  )`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list cheapest offers: %w", err)
	}
	defer rows.Close()
	var offers []entity.SupplierOffer
	for rows.Next() {
		var o entity.SupplierOffer
		if err := rows.Scan(&o.ID, &o.ProductID, &o.SupplierID, &o.SupplierName, &o.ListPrice, &o.Active); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}
