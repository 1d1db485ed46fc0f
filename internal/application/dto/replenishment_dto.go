package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// GenerateRunRequest body de POST /api/replenishment/runs.
type GenerateRunRequest struct {
	Force bool `json:"force"`
}

// RunResponse corrida de reposición.
type RunResponse struct {
	ID                   int64      `json:"id"`
	RunType              string     `json:"run_type"`
	Status               string     `json:"status"`
	FromAt               *time.Time `json:"from_at"`
	ToAt                 time.Time  `json:"to_at"`
	GeneratedBy          int64      `json:"generated_by"`
	GeneratedAt          time.Time  `json:"generated_at"`
	ClosedBy             *int64     `json:"closed_by,omitempty"`
	ClosedAt             *time.Time `json:"closed_at,omitempty"`
	PrimaryRequisitionID *int64     `json:"primary_requisition_id,omitempty"`
	SupplierCount        int        `json:"supplier_count"`
	ItemCount            int        `json:"item_count"`
	Notes                string     `json:"notes"`
}

// GenerateRunResponse status: created | existing | empty.
type GenerateRunResponse struct {
	Status         string       `json:"status"`
	IsExisting     bool         `json:"is_existing"`
	Message        string       `json:"message,omitempty"`
	Run            *RunResponse `json:"run,omitempty"`
	RequisitionIDs []int64      `json:"requisition_ids,omitempty"`
	ReplacedRunID  *int64       `json:"replaced_run_id,omitempty"`
}

// RunListResponse listado de corridas.
type RunListResponse struct {
	Items []RunResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// RunDetailResponse corrida con sus requisiciones.
type RunDetailResponse struct {
	RunResponse
	Requisitions []RequisitionResponse `json:"requisitions"`
}

// RequisitionResponse requisición de compra.
type RequisitionResponse struct {
	ID           int64                     `json:"id"`
	Status       string                    `json:"status"`
	Origin       string                    `json:"origin"`
	SupplierID   *int64                    `json:"supplier_id,omitempty"`
	SupplierName string                    `json:"supplier_name"`
	RunID        *int64                    `json:"run_id,omitempty"`
	Notes        string                    `json:"notes"`
	CreatedBy    int64                     `json:"created_by"`
	CreatedAt    time.Time                 `json:"created_at"`
	Items        []RequisitionItemResponse `json:"items"`
}

// RequisitionItemResponse línea de requisición.
type RequisitionItemResponse struct {
	ID            int64            `json:"id"`
	ProductID     int64            `json:"product_id"`
	BacklogID     *int64           `json:"backlog_id,omitempty"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Reason        string           `json:"reason,omitempty"`
	StockSnapshot *decimal.Decimal `json:"stock_snapshot,omitempty"`
}

// PendingBacklogResponse lo vendido desde el último corte para un backlog.
type PendingBacklogResponse struct {
	BacklogID    int64           `json:"backlog_id"`
	ProductID    int64           `json:"product_id"`
	ProductSKU   string          `json:"product_sku"`
	ProductName  string          `json:"product_name"`
	SupplierID   *int64          `json:"supplier_id,omitempty"`
	SupplierName string          `json:"supplier_name"`
	Pending      decimal.Decimal `json:"pending"`
}

// LowStockRequest body de POST /api/requisitions/low-stock.
type LowStockRequest struct {
	WindowDays int `json:"window_days" validate:"min=0,max=365"`
}

// LowStockResponse Requisition nil cuando nada está bajo el mínimo.
type LowStockResponse struct {
	Created     bool                 `json:"created"`
	Message     string               `json:"message,omitempty"`
	Requisition *RequisitionResponse `json:"requisition,omitempty"`
}
