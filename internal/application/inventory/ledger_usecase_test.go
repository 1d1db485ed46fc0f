package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
	"github.com/jhoicas/Repuestos-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func fixedClock() time.Time { return time.Date(2026, 2, 10, 15, 30, 0, 0, time.UTC) }

func newLedger(t *testing.T) (*memory.Store, *inventory.StockLedgerUseCase, int64) {
	t.Helper()
	store := memory.NewStore()
	wh := store.AddWarehouse("Principal")
	return store, inventory.NewStockLedgerUseCase(store, store.Repos(), fixedClock, zerolog.Nop()), wh
}

// ──────────────────────────────────────────────────────────────────────────────
// GetAvailableStock
// ──────────────────────────────────────────────────────────────────────────────

func TestGetAvailableStock_CaeAlCampoHeredadoSinSaldo(t *testing.T) {
	store, ledger, wh := newLedger(t)
	legacy := store.AddProduct(entity.Product{SKU: "L", StockDisponible: decPtr("8")})
	none := store.AddProduct(entity.Product{SKU: "N"})

	got, err := ledger.GetAvailableStock(context.Background(), entity.StockKey{ProductID: legacy, WarehouseID: wh})
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("8")))

	got, err = ledger.GetAvailableStock(context.Background(), entity.StockKey{ProductID: none, WarehouseID: wh})
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ledger.GetAvailableStock(context.Background(), entity.StockKey{ProductID: legacy})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetAvailableStock_SaldoGanaAlCampoHeredado(t *testing.T) {
	store, ledger, wh := newLedger(t)
	p := store.AddProduct(entity.Product{SKU: "P", StockDisponible: decPtr("100")})
	variation := int64(3)

	_, err := ledger.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{
		ProductID: p, VariationID: &variation, WarehouseID: wh, ActorID: 1, Quantity: dec("4"),
	})
	require.NoError(t, err)

	got, err := ledger.GetAvailableStock(context.Background(), entity.StockKey{ProductID: p, VariationID: &variation, WarehouseID: wh})
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("4")))

	// la variación nil es otra clave
	got, err = ledger.GetAvailableStock(context.Background(), entity.StockKey{ProductID: p, WarehouseID: wh})
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("4")), "el campo heredado quedó reflejado con el último saldo")
}

// ──────────────────────────────────────────────────────────────────────────────
// ApplySaleOutflowInTx
// ──────────────────────────────────────────────────────────────────────────────

func TestApplySaleOutflowInTx_NoEsIdempotente(t *testing.T) {
	store, ledger, wh := newLedger(t)
	p := store.AddProduct(entity.Product{SKU: "P"})
	saleID := store.AddSale(entity.Sale{Items: []entity.SaleItem{{ProductID: &p, Quantity: dec("5")}}})

	apply := func() *inventory.OutflowResult {
		var res *inventory.OutflowResult
		err := store.Run(context.Background(), func(repos repository.Repos) error {
			sale, err := repos.Sales.GetByIDForUpdate(context.Background(), saleID)
			if err != nil {
				return err
			}
			res, err = ledger.ApplySaleOutflowInTx(context.Background(), repos, sale, wh, 1)
			return err
		})
		require.NoError(t, err)
		return res
	}

	first := apply()
	second := apply()

	assert.NotEqual(t, first.TransactionID, second.TransactionID)
	require.Len(t, second.Movements, 1)
	assert.True(t, second.Movements[0].QuantityBefore.Equal(dec("-5")))
	assert.True(t, second.Movements[0].QuantityAfter.Equal(dec("-10")))
}

// Dos ventas con las mismas claves en orden inverso toman los saldos en el mismo orden.
func TestApplySaleOutflowInTx_AplicaLineasEnOrdenDeClave(t *testing.T) {
	store, ledger, wh := newLedger(t)
	p1 := store.AddProduct(entity.Product{SKU: "P1"})
	p2 := store.AddProduct(entity.Product{SKU: "P2"})
	variation := int64(7)

	forward := store.AddSale(entity.Sale{Items: []entity.SaleItem{
		{ProductID: &p1, Quantity: dec("3")},
		{ProductID: &p1, VariationID: &variation, Quantity: dec("2")},
		{ProductID: &p2, Quantity: dec("1")},
	}})
	backward := store.AddSale(entity.Sale{Items: []entity.SaleItem{
		{ProductID: &p2, Quantity: dec("1")},
		{ProductID: &p1, VariationID: &variation, Quantity: dec("2")},
		{ProductID: &p1, Quantity: dec("3")},
	}})
	apply := func(saleID int64) *inventory.OutflowResult {
		var res *inventory.OutflowResult
		err := store.Run(context.Background(), func(repos repository.Repos) error {
			sale, err := repos.Sales.GetByIDForUpdate(context.Background(), saleID)
			if err != nil {
				return err
			}
			res, err = ledger.ApplySaleOutflowInTx(context.Background(), repos, sale, wh, 1)
			return err
		})
		require.NoError(t, err)
		return res
	}
	want := []entity.StockKey{
		{ProductID: p1, WarehouseID: wh},
		{ProductID: p1, VariationID: &variation, WarehouseID: wh},
		{ProductID: p2, WarehouseID: wh},
	}

	for _, saleID := range []int64{forward, backward} {
		res := apply(saleID)
		require.Len(t, res.Movements, len(want))
		for i, mov := range res.Movements {
			assert.True(t, want[i].Equal(mov.Key()), "venta %d movimiento %d: %s", saleID, i, mov.Key())
		}
	}

	got, err := ledger.GetAvailableStock(context.Background(), entity.StockKey{ProductID: p1, VariationID: &variation, WarehouseID: wh})
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("-4")))
}

func TestStockKeyCompare_VariacionNilPrimero(t *testing.T) {
	v1, v2 := int64(1), int64(2)
	a := entity.StockKey{ProductID: 1, WarehouseID: 9}
	b := entity.StockKey{ProductID: 1, VariationID: &v1, WarehouseID: 1}
	c := entity.StockKey{ProductID: 1, VariationID: &v2, WarehouseID: 1}
	d := entity.StockKey{ProductID: 2, WarehouseID: 1}

	assert.Negative(t, a.Compare(b))
	assert.Negative(t, b.Compare(c))
	assert.Negative(t, c.Compare(d))
	assert.Positive(t, d.Compare(a))
	assert.Zero(t, b.Compare(entity.StockKey{ProductID: 1, VariationID: &v1, WarehouseID: 1}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes, recepciones y lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterAdjustment_ValidaEntrada(t *testing.T) {
	store, ledger, wh := newLedger(t)
	p := store.AddProduct(entity.Product{SKU: "P"})

	_, err := ledger.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{ProductID: p, WarehouseID: wh})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ledger.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{ProductID: 999, WarehouseID: wh, Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = ledger.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{ProductID: p, WarehouseID: 999, Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	mov, err := ledger.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{ProductID: p, WarehouseID: wh, Quantity: dec("-2")})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeAdjustment, mov.Type)
	assert.Equal(t, "Ajuste manual", mov.Reference)
	assert.True(t, mov.QuantityAfter.Equal(dec("-2")))
}

func TestRegisterReceipt_RecalculaCostoPromedio(t *testing.T) {
	store, ledger, wh := newLedger(t)
	p := store.AddProduct(entity.Product{SKU: "P", Cost: dec("100")})

	_, err := ledger.RegisterReceipt(context.Background(), inventory.ReceiptInput{
		ProductID: p, WarehouseID: wh, ActorID: 1, Quantity: dec("10"), UnitCost: decPtr("100"),
	})
	require.NoError(t, err)
	mov, err := ledger.RegisterReceipt(context.Background(), inventory.ReceiptInput{
		ProductID: p, WarehouseID: wh, ActorID: 1, Quantity: dec("10"), UnitCost: decPtr("200"),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MovementTypePurchaseReceipt, mov.Type)
	assert.True(t, mov.QuantityAfter.Equal(dec("20")))
	assert.True(t, mov.UnitCost.Equal(dec("200")))

	product, err := store.Repos().Products.GetByID(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, product.Cost.Equal(dec("150")), "(10*100 + 10*200) / 20, got %s", product.Cost)

	_, err = ledger.RegisterReceipt(context.Background(), inventory.ReceiptInput{ProductID: p, WarehouseID: wh, Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "costo unitario obligatorio")
}

func TestListMovements_MasRecientePrimeroYPaginado(t *testing.T) {
	store, ledger, wh := newLedger(t)
	p := store.AddProduct(entity.Product{SKU: "P"})
	for _, q := range []string{"1", "2", "3"} {
		_, err := ledger.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{
			ProductID: p, WarehouseID: wh, Quantity: dec(q), Reference: "ajuste " + q,
		})
		require.NoError(t, err)
	}
	key := entity.StockKey{ProductID: p, WarehouseID: wh}

	page, err := ledger.ListMovements(context.Background(), key, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "ajuste 3", page[0].Reference)
	assert.Equal(t, "ajuste 2", page[1].Reference)

	page, err = ledger.ListMovements(context.Background(), key, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.True(t, page[0].QuantityBefore.IsZero())

	check, err := ledger.VerifyBalance(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, check.HasBalance)
	assert.True(t, check.Consistent)
	assert.True(t, check.LedgerSum.Equal(dec("6")))
}
