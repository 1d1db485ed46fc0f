// Package replenishment contiene la lógica pura de la reposición incremental:
// agregación de eventos por ventana, agrupación por proveedor y la regla de stock bajo.
package replenishment

import (
	"sort"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// BacklogDelta cantidad incremental de un backlog dentro de la ventana.
type BacklogDelta struct {
	BacklogID int64
	Qty       decimal.Decimal
}

// SumByBacklog agrupa los eventos por backlog y suma sus deltas. Descarta los backlogs cuyo
// total es <= 0. El resultado queda ordenado por BacklogID.
func SumByBacklog(events []*entity.ReplenishmentEvent) []BacklogDelta {
	totals := make(map[int64]decimal.Decimal)
	for _, e := range events {
		totals[e.BacklogID] = totals[e.BacklogID].Add(e.QtyDelta)
	}
	out := make([]BacklogDelta, 0, len(totals))
	for id, qty := range totals {
		if qty.GreaterThan(decimal.Zero) {
			out = append(out, BacklogDelta{BacklogID: id, Qty: qty})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BacklogID < out[j].BacklogID })
	return out
}

// GroupLine línea de un grupo de proveedor: el backlog y su delta de la ventana.
type GroupLine struct {
	Backlog *entity.ReplenishmentBacklog
	Qty     decimal.Decimal
}

// SupplierGroup backlogs de un mismo proveedor (SupplierID nil = sin asignar).
type SupplierGroup struct {
	SupplierID   *int64
	SupplierName string
	Lines        []GroupLine
}

// Total suma de las cantidades del grupo.
func (g SupplierGroup) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range g.Lines {
		total = total.Add(l.Qty)
	}
	return total
}

// GroupBySupplier arma los grupos por proveedor usando la cantidad incremental de cada backlog,
// nunca su PendingQty acumulado. Backlogs sin delta se ignoran.
// Orden: proveedores por id ascendente y el grupo sin asignar al final.
func GroupBySupplier(backlogs []*entity.ReplenishmentBacklog, deltas []BacklogDelta) []SupplierGroup {
	qtyByID := make(map[int64]decimal.Decimal, len(deltas))
	for _, d := range deltas {
		qtyByID[d.BacklogID] = d.Qty
	}

	sorted := make([]*entity.ReplenishmentBacklog, len(backlogs))
	copy(sorted, backlogs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	const unassigned = int64(-1)
	index := make(map[int64]int)
	var groups []SupplierGroup
	for _, b := range sorted {
		qty, ok := qtyByID[b.ID]
		if !ok {
			continue
		}
		key := unassigned
		if b.SupplierID != nil {
			key = *b.SupplierID
		}
		i, seen := index[key]
		if !seen {
			name := b.SupplierName
			if b.SupplierID == nil || name == "" {
				name = entity.UnassignedSupplierName
			}
			groups = append(groups, SupplierGroup{SupplierID: b.SupplierID, SupplierName: name})
			i = len(groups) - 1
			index[key] = i
		}
		groups[i].Lines = append(groups[i].Lines, GroupLine{Backlog: b, Qty: qty})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].SupplierID, groups[j].SupplierID
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return *a < *b
	})
	return groups
}
