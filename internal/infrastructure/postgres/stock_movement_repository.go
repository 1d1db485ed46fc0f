package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger de movimientos sobre PostgreSQL. Solo INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create agrega el movimiento y asigna su ID.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.TransactionID == "" {
		m.TransactionID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (transaction_id, product_id, variation_id, warehouse_id, actor_id, type,
			quantity_delta, quantity_before, quantity_after, sale_id, reference, unit_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.TransactionID, m.ProductID, m.VariationID, m.WarehouseID, m.ActorID, string(m.Type),
		m.QuantityDelta, m.QuantityBefore, m.QuantityAfter, m.SaleID, m.Reference, m.UnitCost, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByKey movimientos de la clave, más reciente primero.
func (r *StockMovementRepo) ListByKey(ctx context.Context, key entity.StockKey, limit, offset int) ([]*entity.StockMovement, error) {
	limit, offset = clampPage(limit, offset)
	query := `
		SELECT id, transaction_id, product_id, variation_id, warehouse_id, actor_id, type,
			quantity_delta, quantity_before, quantity_after, sale_id, reference, unit_cost, created_at
		FROM stock_movements
		WHERE product_id = $1 AND variation_id IS NOT DISTINCT FROM $2 AND warehouse_id = $3
		ORDER BY id DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, key.ProductID, key.VariationID, key.WarehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.StockMovement, 0, limit)
	for rows.Next() {
		var m entity.StockMovement
		var txID uuid.UUID
		var mtype string
		if err := rows.Scan(&m.ID, &txID, &m.ProductID, &m.VariationID, &m.WarehouseID, &m.ActorID, &mtype,
			&m.QuantityDelta, &m.QuantityBefore, &m.QuantityAfter, &m.SaleID, &m.Reference, &m.UnitCost, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.TransactionID = txID.String()
		m.Type = entity.MovementType(mtype)
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SumDeltas suma de quantity_delta de la clave (0 sin movimientos).
func (r *StockMovementRepo) SumDeltas(ctx context.Context, key entity.StockKey) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity_delta), 0)
		FROM stock_movements
		WHERE product_id = $1 AND variation_id IS NOT DISTINCT FROM $2 AND warehouse_id = $3`,
		key.ProductID, key.VariationID, key.WarehouseID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum stock movements: %w", err)
	}
	return sum, nil
}
