package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo saldos por (producto, variación, bodega) sobre PostgreSQL (usable con pool o tx).
// variation_id NULL se compara con IS NOT DISTINCT FROM.
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

const balanceSelect = `
	SELECT id, product_id, variation_id, warehouse_id, on_hand, reserved, updated_at
	FROM stock_balances
	WHERE product_id = $1 AND variation_id IS NOT DISTINCT FROM $2 AND warehouse_id = $3`

func scanBalance(row pgx.Row) (*entity.StockBalance, error) {
	var b entity.StockBalance
	err := row.Scan(&b.ID, &b.Key.ProductID, &b.Key.VariationID, &b.Key.WarehouseID,
		&b.OnHand, &b.Reserved, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Get obtiene el saldo de la clave; (nil, nil) si todavía no existe.
func (r *StockBalanceRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockBalance, error) {
	b, err := scanBalance(r.q.QueryRow(ctx, balanceSelect, key.ProductID, key.VariationID, key.WarehouseID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock balance: %w", err)
	}
	return b, nil
}

// GetOrCreateForUpdate inserta el saldo en cero si falta y bloquea la fila (SELECT FOR UPDATE).
// Dos transacciones que crean la misma clave a la vez terminan esperando la misma fila.
func (r *StockBalanceRepo) GetOrCreateForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockBalance, error) {
	insert := `
		INSERT INTO stock_balances (product_id, variation_id, warehouse_id, on_hand, reserved, updated_at)
		VALUES ($1, $2, $3, 0, 0, now())
		ON CONFLICT (product_id, (COALESCE(variation_id, 0)), warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, key.ProductID, key.VariationID, key.WarehouseID); err != nil {
		return nil, fmt.Errorf("create stock balance: %w", err)
	}
	b, err := scanBalance(r.q.QueryRow(ctx, balanceSelect+` FOR UPDATE`, key.ProductID, key.VariationID, key.WarehouseID))
	if err != nil {
		return nil, fmt.Errorf("get stock balance for update: %w", err)
	}
	return b, nil
}

// Update persiste on_hand y reserved.
func (r *StockBalanceRepo) Update(ctx context.Context, balance *entity.StockBalance) error {
	_, err := r.q.Exec(ctx,
		`UPDATE stock_balances SET on_hand = $2, reserved = $3, updated_at = $4 WHERE id = $1`,
		balance.ID, balance.OnHand, balance.Reserved, balance.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stock balance: %w", err)
	}
	return nil
}
