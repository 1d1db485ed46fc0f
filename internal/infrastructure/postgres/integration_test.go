//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Repuestos-api/internal/application/replenishment"
	"github.com/jhoicas/Repuestos-api/internal/application/sales"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
	"github.com/jhoicas/Repuestos-api/internal/infrastructure/postgres"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newTestPool levanta un PostgreSQL desechable con el esquema de testdata.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("repuestos_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.WithInitScripts("testdata/schema.sql"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "no se pudo iniciar el contenedor de PostgreSQL")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPoolFromDSN(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func insertID(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int64 {
	t.Helper()
	var id int64
	require.NoError(t, pool.QueryRow(context.Background(), query+" RETURNING id", args...).Scan(&id))
	return id
}

type pgEnv struct {
	pool    *pgxpool.Pool
	tx      *postgres.TxRunner
	repos   repository.Repos
	ledger  *inventory.StockLedgerUseCase
	confirm *sales.ConfirmSaleUseCase
	runs    *replenishment.RunUseCase
	wh      int64
}

func newPgEnv(t *testing.T) *pgEnv {
	pool := newTestPool(t)
	tx := postgres.NewTxRunner(pool)
	repos := postgres.NewRepos(pool)
	ledger := inventory.NewStockLedgerUseCase(tx, repos, time.Now, zerolog.Nop())
	acc := replenishment.NewBacklogAccumulator(time.Now, zerolog.Nop())
	return &pgEnv{
		pool:    pool,
		tx:      tx,
		repos:   repos,
		ledger:  ledger,
		confirm: sales.NewConfirmSaleUseCase(tx, ledger, acc, time.Now, zerolog.Nop()),
		runs:    replenishment.NewRunUseCase(tx, repos, nil, time.Now, zerolog.Nop()),
		wh:      insertID(t, pool, `INSERT INTO warehouses (name) VALUES ('Principal')`),
	}
}

func (e *pgEnv) sale(t *testing.T, productID int64, qty string) int64 {
	t.Helper()
	saleID := insertID(t, e.pool, `INSERT INTO sales (number, warehouse_id) VALUES ('', $1)`, e.wh)
	insertID(t, e.pool, `INSERT INTO sale_items (sale_id, product_id, quantity) VALUES ($1, $2, $3)`, saleID, productID, dec(qty))
	return saleID
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_ConfirmarVentasYGenerarCorrida(t *testing.T) {
	e := newPgEnv(t)
	ctx := context.Background()
	supplier := insertID(t, e.pool, `INSERT INTO suppliers (name) VALUES ('Frenos del Norte')`)
	p := insertID(t, e.pool, `INSERT INTO products (sku, name, stock_controlado) VALUES ('FRN-1', 'Disco', true)`)
	insertID(t, e.pool, `INSERT INTO product_suppliers (product_id, supplier_id, list_price) VALUES ($1, $2, 10)`, p, supplier)

	first := e.sale(t, p, "3")
	_, err := e.confirm.ConfirmSale(ctx, sales.ConfirmSaleInput{SaleID: first, ActorID: 1})
	require.NoError(t, err)

	again, err := e.confirm.ConfirmSale(ctx, sales.ConfirmSaleInput{SaleID: first, ActorID: 1})
	require.NoError(t, err)
	assert.True(t, again.AlreadyApplied)

	res, err := e.runs.GenerateRun(ctx, 1, replenishment.GenerateOptions{})
	require.NoError(t, err)
	require.Equal(t, replenishment.OutcomeCreated, res.Status)
	_, err = e.runs.CloseRun(ctx, res.Run.ID, 1)
	require.NoError(t, err)

	second := e.sale(t, p, "4")
	_, err = e.confirm.ConfirmSale(ctx, sales.ConfirmSaleInput{SaleID: second, ActorID: 1})
	require.NoError(t, err)

	next, err := e.runs.GenerateRun(ctx, 1, replenishment.GenerateOptions{})
	require.NoError(t, err)
	require.Equal(t, replenishment.OutcomeCreated, next.Status)
	detail, err := e.runs.GetRun(ctx, next.Run.ID)
	require.NoError(t, err)
	require.Len(t, detail.Requisitions, 1)
	require.Len(t, detail.Requisitions[0].Items, 1)
	assert.True(t, detail.Requisitions[0].Items[0].Quantity.Equal(dec("4")))
	assert.Equal(t, "Frenos del Norte", detail.Requisitions[0].SupplierName)

	available, err := e.ledger.GetAvailableStock(ctx, entity.StockKey{ProductID: p, WarehouseID: e.wh})
	require.NoError(t, err)
	assert.True(t, available.Equal(dec("-7")))
}

func TestPostgres_IndiceDeBorradorUnico(t *testing.T) {
	e := newPgEnv(t)
	ctx := context.Background()
	draft := func() *entity.ReplenishmentRun {
		return &entity.ReplenishmentRun{
			RunType: entity.RunTypeAutoReplenishment, Status: entity.RunStatusDraft,
			ToAt: time.Now(), GeneratedBy: 1, GeneratedAt: time.Now(),
		}
	}

	require.NoError(t, e.repos.Runs.Create(ctx, draft()))
	err := e.repos.Runs.Create(ctx, draft())

	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestPostgres_VentasConcurrentesMantienenElSaldo(t *testing.T) {
	e := newPgEnv(t)
	ctx := context.Background()
	p := insertID(t, e.pool, `INSERT INTO products (sku, name) VALUES ('ACE-1', 'Aceite')`)

	var ids []int64
	for i := 0; i < 10; i++ {
		ids = append(ids, e.sale(t, p, "1"))
	}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := e.confirm.ConfirmSale(ctx, sales.ConfirmSaleInput{SaleID: id, ActorID: 1})
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	check, err := e.ledger.VerifyBalance(ctx, entity.StockKey{ProductID: p, WarehouseID: e.wh})
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.True(t, check.OnHand.Equal(dec("-10")), "got %s", check.OnHand)

	var count int
	require.NoError(t, e.pool.QueryRow(ctx, `SELECT count(*) FROM stock_balances WHERE product_id = $1`, p).Scan(&count))
	assert.Equal(t, 1, count, "un solo saldo por clave")
}

func TestPostgres_VentasConLineasEnOrdenInversoNoSeBloquean(t *testing.T) {
	e := newPgEnv(t)
	ctx := context.Background()
	a := insertID(t, e.pool, `INSERT INTO products (sku, name) VALUES ('FIL-A', 'Filtro A')`)
	b := insertID(t, e.pool, `INSERT INTO products (sku, name) VALUES ('FIL-B', 'Filtro B')`)

	var ids []int64
	for i := 0; i < 10; i++ {
		first, second := a, b
		if i%2 == 1 {
			first, second = b, a
		}
		saleID := e.sale(t, first, "1")
		insertID(t, e.pool, `INSERT INTO sale_items (sale_id, product_id, quantity) VALUES ($1, $2, $3)`, saleID, second, dec("1"))
		ids = append(ids, saleID)
	}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := e.confirm.ConfirmSale(ctx, sales.ConfirmSaleInput{SaleID: id, ActorID: 1})
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	for _, p := range []int64{a, b} {
		check, err := e.ledger.VerifyBalance(ctx, entity.StockKey{ProductID: p, WarehouseID: e.wh})
		require.NoError(t, err)
		assert.True(t, check.Consistent)
		assert.True(t, check.OnHand.Equal(dec("-10")), "producto %d: %s", p, check.OnHand)
	}
}

func TestPostgres_ListBelowMinimum(t *testing.T) {
	e := newPgEnv(t)
	ctx := context.Background()
	low := insertID(t, e.pool, `INSERT INTO products (sku, stock_controlado, stock_disponible) VALUES ('A', true, 1)`)
	insertID(t, e.pool, `INSERT INTO products (sku, stock_controlado, stock_disponible) VALUES ('B', true, 9)`)
	insertID(t, e.pool, `INSERT INTO products (sku, stock_controlado) VALUES ('C', false)`)

	list, err := e.repos.Products.ListBelowMinimum(ctx, dec("2"))

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, low, list[0].ID)
	require.NotNil(t, list[0].StockDisponible)
	assert.Nil(t, list[0].StockMinimo)
}
