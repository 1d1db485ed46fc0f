package memory

import (
	"context"
	"slices"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.StockBalanceRepository  = (*BalanceRepo)(nil)
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
)

type BalanceRepo struct{ db db }

func (r *BalanceRepo) Get(_ context.Context, key entity.StockKey) (b *entity.StockBalance, err error) {
	err = r.db.with(func(s *state) error {
		if v, ok := s.balances[key.String()]; ok {
			b = &v
		}
		return nil
	})
	return b, err
}

// GetOrCreateForUpdate la transacción ya tiene el store en exclusiva: no hace falta bloquear la fila.
func (r *BalanceRepo) GetOrCreateForUpdate(_ context.Context, key entity.StockKey) (b *entity.StockBalance, err error) {
	err = r.db.with(func(s *state) error {
		v, ok := s.balances[key.String()]
		if !ok {
			v = entity.StockBalance{
				ID:       s.next("stock_balances"),
				Key:      key,
				OnHand:   decimal.Zero,
				Reserved: decimal.Zero,
			}
			s.balances[key.String()] = v
		}
		b = &v
		return nil
	})
	return b, err
}

func (r *BalanceRepo) Update(_ context.Context, balance *entity.StockBalance) error {
	return r.db.with(func(s *state) error {
		s.balances[balance.Key.String()] = *balance
		return nil
	})
}

type MovementRepo struct{ db db }

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.db.with(func(s *state) error {
		m.ID = s.next("stock_movements")
		s.movements = append(s.movements, *m)
		return nil
	})
}

func (r *MovementRepo) ListByKey(_ context.Context, key entity.StockKey, limit, offset int) (out []*entity.StockMovement, err error) {
	err = r.db.with(func(s *state) error {
		for i := len(s.movements) - 1; i >= 0; i-- {
			m := s.movements[i]
			if m.Key().Equal(key) {
				out = append(out, &m)
			}
		}
		return nil
	})
	if offset >= len(out) {
		return []*entity.StockMovement{}, err
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return slices.Clip(out), err
}

func (r *MovementRepo) SumDeltas(_ context.Context, key entity.StockKey) (sum decimal.Decimal, err error) {
	err = r.db.with(func(s *state) error {
		for _, m := range s.movements {
			if m.Key().Equal(key) {
				sum = sum.Add(m.QuantityDelta)
			}
		}
		return nil
	})
	return sum, err
}
