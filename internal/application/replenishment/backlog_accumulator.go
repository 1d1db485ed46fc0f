package replenishment

import (
	"cmp"
	"context"
	"slices"

	"github.com/jhoicas/Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Repuestos-api/internal/application/ports"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
	"github.com/jhoicas/Repuestos-api/pkg/telemetry"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// BacklogAccumulator es el dueño de las escrituras de backlog y eventos disparadas por ventas.
type BacklogAccumulator struct {
	now ports.Clock
	log zerolog.Logger
}

// NewBacklogAccumulator construye el acumulador.
func NewBacklogAccumulator(now ports.Clock, log zerolog.Logger) *BacklogAccumulator {
	return &BacklogAccumulator{now: now, log: log}
}

// IncrementFromSaleInTx suma cada línea de la venta al backlog de (producto, proveedor más barato
// activo) y registra un evento SALE_CONFIRMED por línea, en la transacción del llamador.
// El proveedor se resuelve en este momento y no se vuelve a evaluar.
func (a *BacklogAccumulator) IncrementFromSaleInTx(
	ctx context.Context,
	repos repository.Repos,
	sale *entity.Sale,
	actorID int64,
) ([]*entity.ReplenishmentEvent, error) {
	ctx, span := telemetry.StartSpan(ctx, "replenishment.increment_from_sale", attribute.Int64("sale_id", sale.ID))
	defer span.End()

	// Candado compartido antes de leer la hora: una corrida no puede cerrar su ventana
	// mientras esta venta está en vuelo.
	if err := repos.Events.LockWindow(ctx, false); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	now := a.now()

	type saleLine struct {
		item    *entity.SaleItem
		product *entity.Product
	}
	lines := make([]saleLine, 0, len(sale.Items))
	for i := range sale.Items {
		item := &sale.Items[i]
		if !item.Quantity.GreaterThan(decimal.Zero) {
			continue
		}
		product, err := inventory.ResolveItemProduct(ctx, repos, item)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if product == nil {
			a.log.Warn().Int64("sale_id", sale.ID).Int64("item_id", item.ID).Str("sku", item.SKU).
				Msg("línea sin producto resoluble, no se acumula")
			continue
		}
		lines = append(lines, saleLine{item: item, product: product})
	}
	// Mismo orden que el ledger: las filas de backlog se bloquean por producto ascendente.
	slices.SortStableFunc(lines, func(x, y saleLine) int { return cmp.Compare(x.product.ID, y.product.ID) })

	events := make([]*entity.ReplenishmentEvent, 0, len(lines))
	for _, line := range lines {
		item, product := line.item, line.product
		supplierID, err := a.cheapestSupplier(ctx, repos, product.ID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		backlog, err := repos.Backlogs.GetOrCreateForUpdate(ctx, product.ID, supplierID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		backlog.PendingQty = backlog.PendingQty.Add(item.Quantity)
		backlog.LastActivityAt = now
		if err := repos.Backlogs.Update(ctx, backlog); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		event := &entity.ReplenishmentEvent{
			BacklogID:  backlog.ID,
			Type:       entity.EventSaleConfirmed,
			QtyDelta:   item.Quantity,
			Reference:  entity.SaleRef(sale.ID),
			ActorID:    actorID,
			HappenedAt: now,
			Note:       sale.Reference(),
		}
		if err := repos.Events.Create(ctx, event); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// cheapestSupplier devuelve el proveedor de la oferta activa con menor precio de lista, o nil.
// Con empate se queda con la primera fila y lo deja en el log: no hay regla de desempate definida.
func (a *BacklogAccumulator) cheapestSupplier(ctx context.Context, repos repository.Repos, productID int64) (*int64, error) {
	offers, err := repos.Offers.ListCheapestActive(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, nil
	}
	if len(offers) > 1 {
		ids := make([]int64, 0, len(offers))
		for _, o := range offers {
			ids = append(ids, o.SupplierID)
		}
		a.log.Warn().Int64("product_id", productID).Ints64("supplier_ids", ids).
			Str("list_price", offers[0].ListPrice.String()).
			Msg("empate de precio entre proveedores, se toma el primero")
	}
	id := offers[0].SupplierID
	return &id, nil
}
