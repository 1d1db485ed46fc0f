package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo lectura de ventas y marca de idempotencia de salida de stock.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// GetByIDForUpdate bloquea la cabecera de la venta y carga sus líneas.
func (r *SaleRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx,
		`SELECT id, number, warehouse_id, created_at FROM sales WHERE id = $1 FOR UPDATE`, id,
	).Scan(&s.ID, &s.Number, &s.WarehouseID, &s.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale for update: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, variation_id, sku, description, quantity
		FROM sale_items WHERE sale_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.VariationID, &it.SKU, &it.Description, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		s.Items = append(s.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	return &s, nil
}

// SetItemProduct persiste el producto resuelto por SKU en la línea.
func (r *SaleRepo) SetItemProduct(ctx context.Context, itemID, productID int64) error {
	_, err := r.q.Exec(ctx, `UPDATE sale_items SET product_id = $2 WHERE id = $1`, itemID, productID)
	if err != nil {
		return fmt.Errorf("set sale item product: %w", err)
	}
	return nil
}

// MarkOutflowApplied inserta la marca; false si la venta ya la tenía.
func (r *SaleRepo) MarkOutflowApplied(ctx context.Context, o *entity.SaleOutflow) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO sale_outflows (sale_id, warehouse_id, actor_id, applied_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sale_id) DO NOTHING`,
		o.SaleID, o.WarehouseID, o.ActorID, o.AppliedAt)
	if err != nil {
		return false, fmt.Errorf("mark sale outflow: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
