package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockKeyQuery clave de stock en query string. variation_id 0 = sin variación.
type StockKeyQuery struct {
	ProductID   int64 `query:"product_id" validate:"required,min=1"`
	VariationID int64 `query:"variation_id" validate:"min=0"`
	WarehouseID int64 `query:"warehouse_id" validate:"required,min=1"`
}

// MovementListQuery query de GET /api/inventory/movements.
type MovementListQuery struct {
	ProductID   int64 `query:"product_id" validate:"required,min=1"`
	VariationID int64 `query:"variation_id" validate:"min=0"`
	WarehouseID int64 `query:"warehouse_id" validate:"required,min=1"`
	Limit       int   `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset      int   `query:"offset" validate:"min=0"`
}

// AvailableStockResponse saldo disponible de una clave.
type AvailableStockResponse struct {
	ProductID   int64           `json:"product_id"`
	VariationID *int64          `json:"variation_id,omitempty"`
	WarehouseID int64           `json:"warehouse_id"`
	Available   decimal.Decimal `json:"available"`
}

// AdjustmentRequest body para POST /api/inventory/adjustments. Quantity con signo.
type AdjustmentRequest struct {
	ProductID   int64           `json:"product_id" validate:"required,min=1"`
	VariationID *int64          `json:"variation_id" validate:"omitempty,min=1"`
	WarehouseID int64           `json:"warehouse_id" validate:"required,min=1"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reference   string          `json:"reference" validate:"max=255"`
}

// ReceiptRequest body para POST /api/inventory/receipts.
type ReceiptRequest struct {
	ProductID   int64            `json:"product_id" validate:"required,min=1"`
	VariationID *int64           `json:"variation_id" validate:"omitempty,min=1"`
	WarehouseID int64            `json:"warehouse_id" validate:"required,min=1"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost" validate:"required"`
	Reference   string           `json:"reference" validate:"max=255"`
}

// StockMovementResponse entrada del ledger.
type StockMovementResponse struct {
	ID             int64           `json:"id"`
	TransactionID  string          `json:"transaction_id"`
	ProductID      int64           `json:"product_id"`
	VariationID    *int64          `json:"variation_id,omitempty"`
	WarehouseID    int64           `json:"warehouse_id"`
	ActorID        int64           `json:"actor_id"`
	Type           string          `json:"type"`
	QuantityDelta  decimal.Decimal `json:"quantity_delta"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	SaleID         *int64          `json:"sale_id,omitempty"`
	Reference      string          `json:"reference"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	CreatedAt      time.Time       `json:"created_at"`
}

// MovementListResponse página de movimientos, más reciente primero.
type MovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// BalanceCheckResponse comparación saldo vs suma del ledger.
type BalanceCheckResponse struct {
	ProductID   int64           `json:"product_id"`
	VariationID *int64          `json:"variation_id,omitempty"`
	WarehouseID int64           `json:"warehouse_id"`
	OnHand      decimal.Decimal `json:"on_hand"`
	LedgerSum   decimal.Decimal `json:"ledger_sum"`
	HasBalance  bool            `json:"has_balance"`
	Consistent  bool            `json:"consistent"`
}
