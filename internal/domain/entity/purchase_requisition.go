package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estado y origen de las requisiciones de compra.
const (
	RequisitionStatusDraft = "DRAFT"

	RequisitionOriginAutoReplenishment = "AUTO_REPLENISHMENT"
	RequisitionOriginLowStock          = "LOW_STOCK"
)

// UnassignedSupplierName nombre del grupo sin proveedor.
const UnassignedSupplierName = "Varios"

// PurchaseRequisition solicitud interna de compra para un proveedor (o "Varios").
type PurchaseRequisition struct {
	ID           int64
	Status       string
	Origin       string
	SupplierID   *int64
	SupplierName string
	RunID        *int64
	Notes        string
	CreatedBy    int64
	CreatedAt    time.Time
	Items        []PurchaseRequisitionItem
}

// PurchaseRequisitionItem línea sugerida. Reason y StockSnapshot solo los llena el generador por stock bajo.
type PurchaseRequisitionItem struct {
	ID            int64
	RequisitionID int64
	ProductID     int64
	BacklogID     *int64
	Quantity      decimal.Decimal
	Reason        string
	StockSnapshot *decimal.Decimal
}
