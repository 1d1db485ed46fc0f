package replenishment_test

import (
	"testing"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/replenishment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func saleEvent(backlogID int64, qty string) *entity.ReplenishmentEvent {
	return &entity.ReplenishmentEvent{BacklogID: backlogID, Type: entity.EventSaleConfirmed, QtyDelta: dec(qty)}
}

// ──────────────────────────────────────────────────────────────────────────────
// SumByBacklog
// ──────────────────────────────────────────────────────────────────────────────

func TestSumByBacklog_SumaPorBacklogYDescartaNoPositivos(t *testing.T) {
	events := []*entity.ReplenishmentEvent{
		saleEvent(7, "3"),
		saleEvent(2, "1"),
		saleEvent(7, "4"),
		saleEvent(9, "2"),
		saleEvent(9, "-2"), // se anula: no debe aparecer
		saleEvent(4, "-1"),
	}

	deltas := replenishment.SumByBacklog(events)

	require.Len(t, deltas, 2)
	assert.Equal(t, int64(2), deltas[0].BacklogID)
	assert.True(t, deltas[0].Qty.Equal(dec("1")))
	assert.Equal(t, int64(7), deltas[1].BacklogID)
	assert.True(t, deltas[1].Qty.Equal(dec("7")), "7 = 3 + 4, got %s", deltas[1].Qty)
}

func TestSumByBacklog_SinEventos(t *testing.T) {
	assert.Empty(t, replenishment.SumByBacklog(nil))
}

// ──────────────────────────────────────────────────────────────────────────────
// GroupBySupplier
// ──────────────────────────────────────────────────────────────────────────────

func TestGroupBySupplier_UsaDeltaIncrementalNoPendingQty(t *testing.T) {
	s1, s2 := int64(20), int64(10)
	backlogs := []*entity.ReplenishmentBacklog{
		{ID: 1, ProductID: 100, SupplierID: &s1, SupplierName: "Frenos SA", PendingQty: dec("50")},
		{ID: 2, ProductID: 101, SupplierID: nil, PendingQty: dec("9")},
		{ID: 3, ProductID: 102, SupplierID: &s2, SupplierName: "Filtros Ltda", PendingQty: dec("30")},
		{ID: 4, ProductID: 103, SupplierID: &s1, SupplierName: "Frenos SA", PendingQty: dec("8")},
		{ID: 5, ProductID: 104, SupplierID: &s1, SupplierName: "Frenos SA", PendingQty: dec("8")},
	}
	deltas := []replenishment.BacklogDelta{
		{BacklogID: 1, Qty: dec("4")},
		{BacklogID: 2, Qty: dec("1")},
		{BacklogID: 3, Qty: dec("2")},
		{BacklogID: 4, Qty: dec("6")},
	}

	groups := replenishment.GroupBySupplier(backlogs, deltas)

	require.Len(t, groups, 3)

	assert.Equal(t, s2, *groups[0].SupplierID)
	assert.Equal(t, "Filtros Ltda", groups[0].SupplierName)

	assert.Equal(t, s1, *groups[1].SupplierID)
	require.Len(t, groups[1].Lines, 2, "el backlog 5 no tiene delta en la ventana")
	assert.True(t, groups[1].Lines[0].Qty.Equal(dec("4")), "nunca el PendingQty acumulado")
	assert.True(t, groups[1].Total().Equal(dec("10")))

	assert.Nil(t, groups[2].SupplierID, "el grupo sin asignar va al final")
	assert.Equal(t, entity.UnassignedSupplierName, groups[2].SupplierName)
}
