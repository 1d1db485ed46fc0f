package repository

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// StockBalanceRepository define el puerto para consultar/actualizar saldos por clave de stock.
// Usado dentro de transacciones para garantizar consistencia con el ledger.
type StockBalanceRepository interface {
	// Get devuelve (nil, nil) si todavía no existe saldo para la clave.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockBalance, error)
	// GetOrCreateForUpdate crea el saldo en cero si no existe y bloquea la fila (SELECT FOR UPDATE).
	GetOrCreateForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockBalance, error)
	Update(ctx context.Context, balance *entity.StockBalance) error
}
