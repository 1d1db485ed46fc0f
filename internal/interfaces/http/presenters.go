package http

import (
	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/application/replenishment"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

func toMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:             m.ID,
		TransactionID:  m.TransactionID,
		ProductID:      m.ProductID,
		VariationID:    m.VariationID,
		WarehouseID:    m.WarehouseID,
		ActorID:        m.ActorID,
		Type:           string(m.Type),
		QuantityDelta:  m.QuantityDelta,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		SaleID:         m.SaleID,
		Reference:      m.Reference,
		UnitCost:       m.UnitCost,
		CreatedAt:      m.CreatedAt,
	}
}

func toMovementResponses(list []*entity.StockMovement) []dto.StockMovementResponse {
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toEventResponses(list []*entity.ReplenishmentEvent) []dto.ReplenishmentEventResponse {
	out := make([]dto.ReplenishmentEventResponse, 0, len(list))
	for _, e := range list {
		out = append(out, dto.ReplenishmentEventResponse{
			ID:            e.ID,
			BacklogID:     e.BacklogID,
			Type:          string(e.Type),
			QtyDelta:      e.QtyDelta,
			ReferenceType: string(e.Reference.Kind),
			ReferenceID:   e.Reference.ID,
			ActorID:       e.ActorID,
			HappenedAt:    e.HappenedAt,
			Note:          e.Note,
		})
	}
	return out
}

func toRunResponse(r *entity.ReplenishmentRun) dto.RunResponse {
	return dto.RunResponse{
		ID:                   r.ID,
		RunType:              r.RunType,
		Status:               string(r.Status),
		FromAt:               r.FromAt,
		ToAt:                 r.ToAt,
		GeneratedBy:          r.GeneratedBy,
		GeneratedAt:          r.GeneratedAt,
		ClosedBy:             r.ClosedBy,
		ClosedAt:             r.ClosedAt,
		PrimaryRequisitionID: r.PrimaryRequisitionID,
		SupplierCount:        r.SupplierCount,
		ItemCount:            r.ItemCount,
		Notes:                r.Notes,
	}
}

func toGenerateRunResponse(res *replenishment.RunResult) dto.GenerateRunResponse {
	out := dto.GenerateRunResponse{
		Status:         string(res.Status),
		IsExisting:     res.IsExisting(),
		Message:        res.Message,
		RequisitionIDs: res.RequisitionIDs,
		ReplacedRunID:  res.ReplacedRunID,
	}
	if res.Run != nil {
		run := toRunResponse(res.Run)
		out.Run = &run
	}
	return out
}

func toRequisitionResponse(r *entity.PurchaseRequisition) dto.RequisitionResponse {
	items := make([]dto.RequisitionItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, dto.RequisitionItemResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			BacklogID:     it.BacklogID,
			Quantity:      it.Quantity,
			Reason:        it.Reason,
			StockSnapshot: it.StockSnapshot,
		})
	}
	return dto.RequisitionResponse{
		ID:           r.ID,
		Status:       r.Status,
		Origin:       r.Origin,
		SupplierID:   r.SupplierID,
		SupplierName: r.SupplierName,
		RunID:        r.RunID,
		Notes:        r.Notes,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
		Items:        items,
	}
}

func toPendingBacklogResponse(p replenishment.PendingBacklog) dto.PendingBacklogResponse {
	name := p.Backlog.SupplierName
	if p.Backlog.SupplierID == nil {
		name = entity.UnassignedSupplierName
	}
	return dto.PendingBacklogResponse{
		BacklogID:    p.Backlog.ID,
		ProductID:    p.Backlog.ProductID,
		ProductSKU:   p.Backlog.ProductSKU,
		ProductName:  p.Backlog.ProductName,
		SupplierID:   p.Backlog.SupplierID,
		SupplierName: name,
		Pending:      p.Pending,
	}
}

func stockKey(productID, variationID, warehouseID int64) entity.StockKey {
	key := entity.StockKey{ProductID: productID, WarehouseID: warehouseID}
	if variationID > 0 {
		key.VariationID = &variationID
	}
	return key
}
