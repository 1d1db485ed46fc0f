package inventory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Repuestos-api/internal/application/ports"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/inventory"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
	"github.com/jhoicas/Repuestos-api/pkg/telemetry"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// StockLedgerUseCase es el dueño exclusivo de las escrituras de movimientos y saldos.
// Cada mutación escribe el movimiento y el saldo en la misma transacción.
type StockLedgerUseCase struct {
	txRunner ports.TxRunner
	repos    repository.Repos // lecturas fuera de transacción
	now      ports.Clock
	log      zerolog.Logger
}

// NewStockLedgerUseCase construye el caso de uso del ledger.
func NewStockLedgerUseCase(txRunner ports.TxRunner, repos repository.Repos, now ports.Clock, log zerolog.Logger) *StockLedgerUseCase {
	return &StockLedgerUseCase{
		txRunner: txRunner,
		repos:    repos,
		now:      now,
		log:      log,
	}
}

// GetAvailableStock devuelve on_hand - reserved de la clave. Sin saldo todavía, cae al campo
// plano heredado del producto; sin ninguno de los dos devuelve 0.
func (uc *StockLedgerUseCase) GetAvailableStock(ctx context.Context, key entity.StockKey) (decimal.Decimal, error) {
	if key.ProductID <= 0 || key.WarehouseID <= 0 {
		return decimal.Zero, domain.ErrInvalidInput
	}
	balance, err := uc.repos.Balances.Get(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	if balance != nil {
		return balance.Available(), nil
	}
	product, err := uc.repos.Products.GetByID(ctx, key.ProductID)
	if err != nil {
		return decimal.Zero, err
	}
	if product != nil && product.StockDisponible != nil {
		return *product.StockDisponible, nil
	}
	return decimal.Zero, nil
}

// OutflowResult resumen de la aplicación de una venta al ledger.
type OutflowResult struct {
	TransactionID string
	Movements     []*entity.StockMovement
	SkippedItems  []int64 // ids de líneas sin producto resoluble
}

// ApplySaleOutflowInTx descuenta del saldo cada línea de la venta y agrega un movimiento SALE
// usando los repositorios del llamador (misma transacción).
// NO es idempotente: el llamador debe garantizar una sola invocación por venta.
// Las líneas sin producto resoluble se omiten (log) para no bloquear el resto de la venta.
func (uc *StockLedgerUseCase) ApplySaleOutflowInTx(
	ctx context.Context,
	repos repository.Repos,
	sale *entity.Sale,
	warehouseID, actorID int64,
) (*OutflowResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "stock_ledger.apply_sale_outflow",
		attribute.Int64("sale_id", sale.ID), attribute.Int64("warehouse_id", warehouseID))
	defer span.End()

	now := uc.now()
	res := &OutflowResult{TransactionID: uuid.New().String()}

	type saleLine struct {
		item    *entity.SaleItem
		product *entity.Product
		key     entity.StockKey
	}
	lines := make([]saleLine, 0, len(sale.Items))
	for i := range sale.Items {
		item := &sale.Items[i]
		if !item.Quantity.GreaterThan(decimal.Zero) {
			uc.log.Warn().Int64("sale_id", sale.ID).Int64("item_id", item.ID).
				Str("quantity", item.Quantity.String()).Msg("línea con cantidad no positiva, se omite")
			res.SkippedItems = append(res.SkippedItems, item.ID)
			continue
		}
		product, err := ResolveItemProduct(ctx, repos, item)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if product == nil {
			uc.log.Warn().Int64("sale_id", sale.ID).Int64("item_id", item.ID).Str("sku", item.SKU).
				Msg("línea sin producto resoluble, se omite")
			res.SkippedItems = append(res.SkippedItems, item.ID)
			continue
		}
		lines = append(lines, saleLine{
			item:    item,
			product: product,
			key:     entity.StockKey{ProductID: product.ID, VariationID: item.VariationID, WarehouseID: warehouseID},
		})
	}

	// Saldos siempre en orden de clave: dos ventas con las mismas claves no se bloquean en cruz.
	slices.SortStableFunc(lines, func(a, b saleLine) int { return a.key.Compare(b.key) })

	for _, line := range lines {
		mov, err := uc.applyInTx(ctx, repos, line.key, entity.MovementTypeSale, line.item.Quantity.Neg(), now)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		mov.TransactionID = res.TransactionID
		mov.ActorID = actorID
		saleID := sale.ID
		mov.SaleID = &saleID
		mov.UnitCost = line.product.Cost
		mov.Reference = saleLineReference(sale, line.item, line.product)
		if err := repos.Movements.Create(ctx, mov); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		uc.mirrorLegacyStock(ctx, repos, line.product.ID, mov.QuantityAfter)
		res.Movements = append(res.Movements, mov)
	}
	return res, nil
}

// ResolveItemProduct resuelve el producto de la línea: referencia directa, si no por SKU.
// Cuando se resuelve por SKU persiste la referencia en la línea. Devuelve nil si no se puede resolver.
func ResolveItemProduct(ctx context.Context, repos repository.Repos, item *entity.SaleItem) (*entity.Product, error) {
	if item.ProductID != nil {
		product, err := repos.Products.GetByID(ctx, *item.ProductID)
		if err != nil {
			return nil, err
		}
		if product != nil {
			return product, nil
		}
	}
	if item.SKU == "" {
		return nil, nil
	}
	product, err := repos.Products.GetBySKU(ctx, item.SKU)
	if err != nil || product == nil {
		return nil, err
	}
	if err := repos.Sales.SetItemProduct(ctx, item.ID, product.ID); err != nil {
		return nil, err
	}
	id := product.ID
	item.ProductID = &id
	return product, nil
}

// AdjustmentInput ajuste manual de inventario; Quantity con signo (negativo resta).
type AdjustmentInput struct {
	ProductID   int64
	VariationID *int64
	WarehouseID int64
	ActorID     int64
	Quantity    decimal.Decimal
	Reference   string
}

// RegisterAdjustment bloquea el saldo, aplica el delta y agrega un movimiento ADJUSTMENT.
func (uc *StockLedgerUseCase) RegisterAdjustment(ctx context.Context, in AdjustmentInput) (*entity.StockMovement, error) {
	if in.Quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.validateKey(ctx, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	key := entity.StockKey{ProductID: in.ProductID, VariationID: in.VariationID, WarehouseID: in.WarehouseID}
	reference := in.Reference
	if reference == "" {
		reference = "Ajuste manual"
	}

	var mov *entity.StockMovement
	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		m, err := uc.applyInTx(ctx, repos, key, entity.MovementTypeAdjustment, in.Quantity, uc.now())
		if err != nil {
			return err
		}
		m.TransactionID = uuid.New().String()
		m.ActorID = in.ActorID
		m.UnitCost = product.Cost
		m.Reference = reference
		if err := repos.Movements.Create(ctx, m); err != nil {
			return err
		}
		uc.mirrorLegacyStock(ctx, repos, in.ProductID, m.QuantityAfter)
		mov = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// ReceiptInput recepción de compra; Quantity positiva y UnitCost obligatorio.
type ReceiptInput struct {
	ProductID   int64
	VariationID *int64
	WarehouseID int64
	ActorID     int64
	Quantity    decimal.Decimal
	UnitCost    *decimal.Decimal
	Reference   string
}

// RegisterReceipt suma la recepción al saldo, recalcula el costo promedio ponderado del producto
// y agrega un movimiento PURCHASE_RECEIPT.
func (uc *StockLedgerUseCase) RegisterReceipt(ctx context.Context, in ReceiptInput) (*entity.StockMovement, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) || in.UnitCost == nil || in.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.validateKey(ctx, in.ProductID, in.WarehouseID); err != nil {
		return nil, err
	}
	key := entity.StockKey{ProductID: in.ProductID, VariationID: in.VariationID, WarehouseID: in.WarehouseID}
	unitCost := *in.UnitCost

	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		// releer dentro de la tx: el costo puede haber cambiado
		product, err := repos.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		balance, err := repos.Balances.GetOrCreateForUpdate(ctx, key)
		if err != nil {
			return err
		}
		newCost := inventory.CostCalculator(balance.OnHand, product.Cost, in.Quantity, unitCost)
		if err := repos.Products.UpdateCost(ctx, in.ProductID, newCost); err != nil {
			return err
		}
		m := inventory.ApplyDelta(balance, entity.MovementTypePurchaseReceipt, in.Quantity, uc.now())
		if err := repos.Balances.Update(ctx, balance); err != nil {
			return err
		}
		m.TransactionID = uuid.New().String()
		m.ActorID = in.ActorID
		m.UnitCost = unitCost
		m.Reference = in.Reference
		if m.Reference == "" {
			m.Reference = "Recepción de compra"
		}
		if err := repos.Movements.Create(ctx, m); err != nil {
			return err
		}
		uc.mirrorLegacyStock(ctx, repos, in.ProductID, m.QuantityAfter)
		mov = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// ListMovements lista el ledger de una clave, más reciente primero.
func (uc *StockLedgerUseCase) ListMovements(ctx context.Context, key entity.StockKey, limit, offset int) ([]*entity.StockMovement, error) {
	if key.ProductID <= 0 || key.WarehouseID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repos.Movements.ListByKey(ctx, key, limit, offset)
}

// BalanceCheck resultado de comparar el saldo con la suma del ledger.
type BalanceCheck struct {
	Key        entity.StockKey
	OnHand     decimal.Decimal
	LedgerSum  decimal.Decimal
	HasBalance bool
	Consistent bool
}

// VerifyBalance comprueba que on_hand sea igual a la suma de los deltas registrados para la clave.
func (uc *StockLedgerUseCase) VerifyBalance(ctx context.Context, key entity.StockKey) (*BalanceCheck, error) {
	if key.ProductID <= 0 || key.WarehouseID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	sum, err := uc.repos.Movements.SumDeltas(ctx, key)
	if err != nil {
		return nil, err
	}
	balance, err := uc.repos.Balances.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	check := &BalanceCheck{Key: key, LedgerSum: sum, OnHand: decimal.Zero}
	if balance != nil {
		check.HasBalance = true
		check.OnHand = balance.OnHand
	}
	check.Consistent = check.OnHand.Equal(sum)
	if !check.Consistent {
		uc.log.Error().Str("key", key.String()).Str("on_hand", check.OnHand.String()).
			Str("ledger_sum", sum.String()).Msg("saldo inconsistente con el ledger")
	}
	return check, nil
}

// applyInTx bloquea (o crea) el saldo, aplica el delta y lo persiste. El movimiento devuelto
// aún no está guardado: el llamador completa referencia/actor y lo crea.
func (uc *StockLedgerUseCase) applyInTx(
	ctx context.Context,
	repos repository.Repos,
	key entity.StockKey,
	mtype entity.MovementType,
	delta decimal.Decimal,
	now time.Time,
) (*entity.StockMovement, error) {
	balance, err := repos.Balances.GetOrCreateForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	mov := inventory.ApplyDelta(balance, mtype, delta, now)
	if err := repos.Balances.Update(ctx, balance); err != nil {
		return nil, err
	}
	return mov, nil
}

// mirrorLegacyStock copia el saldo al campo plano para compatibilidad de la UI. Best-effort.
func (uc *StockLedgerUseCase) mirrorLegacyStock(ctx context.Context, repos repository.Repos, productID int64, qty decimal.Decimal) {
	if err := repos.Products.MirrorLegacyStock(ctx, productID, qty); err != nil {
		uc.log.Warn().Err(err).Int64("product_id", productID).Msg("no se pudo reflejar el stock en el campo heredado")
	}
}

func (uc *StockLedgerUseCase) validateKey(ctx context.Context, productID, warehouseID int64) (*entity.Product, error) {
	if productID <= 0 || warehouseID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	wh, err := uc.repos.Warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func saleLineReference(sale *entity.Sale, item *entity.SaleItem, product *entity.Product) string {
	label := item.Description
	if label == "" {
		label = product.Name
	}
	if label == "" {
		label = product.SKU
	}
	return fmt.Sprintf("%s: %s x %s", sale.Reference(), label, item.Quantity.String())
}
