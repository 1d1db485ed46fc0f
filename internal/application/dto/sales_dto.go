package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConfirmSaleRequest body opcional de POST /api/sales/:id/confirm. Sin bodega se usa la de la venta.
type ConfirmSaleRequest struct {
	WarehouseID int64 `json:"warehouse_id" validate:"min=0"`
}

// ConfirmSaleResponse resultado de confirmar la venta.
type ConfirmSaleResponse struct {
	SaleID         int64                        `json:"sale_id"`
	WarehouseID    int64                        `json:"warehouse_id"`
	AlreadyApplied bool                         `json:"already_applied"`
	TransactionID  string                       `json:"transaction_id,omitempty"`
	Movements      []StockMovementResponse      `json:"movements"`
	SkippedItems   []int64                      `json:"skipped_items"`
	Events         []ReplenishmentEventResponse `json:"events"`
}

// ReplenishmentEventResponse evento del log de reposición.
type ReplenishmentEventResponse struct {
	ID            int64           `json:"id"`
	BacklogID     int64           `json:"backlog_id"`
	Type          string          `json:"type"`
	QtyDelta      decimal.Decimal `json:"qty_delta"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   int64           `json:"reference_id"`
	ActorID       int64           `json:"actor_id"`
	HappenedAt    time.Time       `json:"happened_at"`
	Note          string          `json:"note,omitempty"`
}
