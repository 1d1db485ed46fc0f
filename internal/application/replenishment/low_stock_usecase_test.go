package replenishment_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Repuestos-api/internal/application/replenishment"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestGenerateLowStockRequisition_SugiereHastaElIdeal(t *testing.T) {
	e := newEnv(t)
	// disponible 1, sin mínimo ni ideal: max(1, 2*3 - 1) = 5
	p1 := e.store.AddProduct(entity.Product{SKU: "D", Name: "Filtro", StockControlado: true, StockDisponible: decPtr("1")})
	// ideal configurado por debajo del disponible: al menos 1
	p2 := e.store.AddProduct(entity.Product{SKU: "E", Name: "Correa", StockControlado: true,
		StockDisponible: decPtr("3"), StockMinimo: decPtr("4"), StockIdeal: decPtr("2")})
	// sobre el mínimo
	e.store.AddProduct(entity.Product{SKU: "F", StockControlado: true, StockDisponible: decPtr("10")})
	// sin control de stock
	e.store.AddProduct(entity.Product{SKU: "G", StockControlado: false})

	uc := replenishment.NewLowStockUseCase(e.store, decimal.Zero, e.clock.Now, zerolog.Nop())
	req, err := uc.GenerateLowStockRequisition(context.Background(), actor, 30)

	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, entity.RequisitionOriginLowStock, req.Origin)
	assert.Equal(t, entity.UnassignedSupplierName, req.SupplierName)
	assert.Nil(t, req.RunID)
	require.Len(t, req.Items, 2)

	assert.Equal(t, p1, req.Items[0].ProductID)
	assert.True(t, req.Items[0].Quantity.Equal(dec("5")), "got %s", req.Items[0].Quantity)
	require.NotNil(t, req.Items[0].StockSnapshot)
	assert.True(t, req.Items[0].StockSnapshot.Equal(dec("1")))
	assert.Contains(t, req.Items[0].Reason, "Stock bajo")

	assert.Equal(t, p2, req.Items[1].ProductID)
	assert.True(t, req.Items[1].Quantity.Equal(dec("1")))

	stored, err := replenishment.NewRequisitionUseCase(e.store.Repos().Requisitions).GetRequisition(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, 0, e.store.Counts()["replenishment_events"], "no usa el log de eventos")
}

func TestGenerateLowStockRequisition_NadaQueReponer(t *testing.T) {
	e := newEnv(t)
	e.store.AddProduct(entity.Product{SKU: "F", StockControlado: true, StockDisponible: decPtr("10")})

	uc := replenishment.NewLowStockUseCase(e.store, decimal.Zero, e.clock.Now, zerolog.Nop())
	req, err := uc.GenerateLowStockRequisition(context.Background(), actor, 0)

	require.NoError(t, err)
	assert.Nil(t, req)
	assert.Equal(t, 0, e.store.Counts()["purchase_requisitions"])
}

func TestGetRequisition_Inexistente(t *testing.T) {
	e := newEnv(t)
	uc := replenishment.NewRequisitionUseCase(e.store.Repos().Requisitions)

	_, err := uc.GetRequisition(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.GetRequisition(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
