package sales

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Repuestos-api/internal/application/ports"
	"github.com/jhoicas/Repuestos-api/internal/application/replenishment"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
	"github.com/jhoicas/Repuestos-api/pkg/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// ConfirmSaleInput datos de confirmación. WarehouseID 0 usa la bodega de la venta.
type ConfirmSaleInput struct {
	SaleID      int64
	WarehouseID int64
	ActorID     int64
}

// ConfirmSaleResult resumen de la confirmación.
type ConfirmSaleResult struct {
	SaleID         int64
	WarehouseID    int64
	AlreadyApplied bool
	Outflow        *inventory.OutflowResult
	Events         []*entity.ReplenishmentEvent
}

// ConfirmSaleUseCase aplica la salida de stock de una venta y acumula su reposición en una sola
// transacción, exactamente una vez por venta.
type ConfirmSaleUseCase struct {
	txRunner    ports.TxRunner
	ledger      *inventory.StockLedgerUseCase
	accumulator *replenishment.BacklogAccumulator
	now         ports.Clock
	log         zerolog.Logger
}

// NewConfirmSaleUseCase construye el caso de uso.
func NewConfirmSaleUseCase(
	txRunner ports.TxRunner,
	ledger *inventory.StockLedgerUseCase,
	accumulator *replenishment.BacklogAccumulator,
	now ports.Clock,
	log zerolog.Logger,
) *ConfirmSaleUseCase {
	return &ConfirmSaleUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		accumulator: accumulator,
		now:         now,
		log:         log,
	}
}

// ConfirmSale bloquea la venta, registra la marca de idempotencia y, si es la primera vez,
// descuenta el stock de cada línea y suma lo vendido al backlog. Si cualquiera de los pasos
// falla no queda nada aplicado.
func (uc *ConfirmSaleUseCase) ConfirmSale(ctx context.Context, in ConfirmSaleInput) (res *ConfirmSaleResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "sales.confirm_sale",
		attribute.Int64("sale_id", in.SaleID), attribute.Int64("actor_id", in.ActorID))
	defer telemetry.End(span, &err)

	if in.SaleID <= 0 || in.WarehouseID < 0 {
		return nil, domain.ErrInvalidInput
	}

	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		sale, err := repos.Sales.GetByIDForUpdate(ctx, in.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}

		warehouseID := in.WarehouseID
		if warehouseID == 0 && sale.WarehouseID != nil {
			warehouseID = *sale.WarehouseID
		}
		if warehouseID == 0 {
			return domain.ErrInvalidInput
		}
		wh, err := repos.Warehouses.GetByID(ctx, warehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.ErrNotFound
		}

		r := &ConfirmSaleResult{SaleID: sale.ID, WarehouseID: warehouseID}
		first, err := repos.Sales.MarkOutflowApplied(ctx, &entity.SaleOutflow{
			SaleID:      sale.ID,
			WarehouseID: warehouseID,
			ActorID:     in.ActorID,
			AppliedAt:   uc.now(),
		})
		if err != nil {
			return err
		}
		if !first {
			r.AlreadyApplied = true
			res = r
			return nil
		}

		outflow, err := uc.ledger.ApplySaleOutflowInTx(ctx, repos, sale, warehouseID, in.ActorID)
		if err != nil {
			return err
		}
		events, err := uc.accumulator.IncrementFromSaleInTx(ctx, repos, sale, in.ActorID)
		if err != nil {
			return err
		}
		r.Outflow = outflow
		r.Events = events
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.AlreadyApplied {
		uc.log.Info().Int64("sale_id", res.SaleID).Msg("venta ya confirmada, sin cambios")
		return res, nil
	}
	uc.log.Info().Int64("sale_id", res.SaleID).Int64("warehouse_id", res.WarehouseID).
		Int("movements", len(res.Outflow.Movements)).Int("events", len(res.Events)).
		Msg("venta confirmada")
	return res, nil
}
