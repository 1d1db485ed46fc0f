package repository

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockMovementRepository puerto del ledger: solo inserta y lee, nunca actualiza ni borra.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByKey(ctx context.Context, key entity.StockKey, limit, offset int) ([]*entity.StockMovement, error)
	SumDeltas(ctx context.Context, key entity.StockKey) (decimal.Decimal, error)
}
