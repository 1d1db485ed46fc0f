package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/application/inventory"
	"github.com/rs/zerolog"
)

// InventoryHandler consultas del ledger de stock, ajustes y recepciones (protegido).
type InventoryHandler struct {
	ledger *inventory.StockLedgerUseCase
	log    zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.StockLedgerUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, log: log}
}

// GetStock godoc
// @Summary      Stock disponible
// @Description  Saldo de la clave (producto, variación, bodega). Sin saldo cae al stock heredado del producto.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  int  true   "Producto"
// @Param        variation_id  query  int  false  "Variación (0 o ausente = sin variación)"
// @Param        warehouse_id  query  int  true   "Bodega"
// @Success      200  {object}  dto.AvailableStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	var q dto.StockKeyQuery
	if err := c.QueryParser(&q); err != nil {
		return badParam(c, "query")
	}
	if ok, err := validateRequest(c, &q); !ok {
		return err
	}
	key := stockKey(q.ProductID, q.VariationID, q.WarehouseID)
	available, err := h.ledger.GetAvailableStock(c.UserContext(), key)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.AvailableStockResponse{
		ProductID:   key.ProductID,
		VariationID: key.VariationID,
		WarehouseID: key.WarehouseID,
		Available:   available,
	})
}

// ListMovements godoc
// @Summary      Movimientos del ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  int  true   "Producto"
// @Param        variation_id  query  int  false  "Variación"
// @Param        warehouse_id  query  int  true   "Bodega"
// @Param        limit         query  int  false  "Máximo 100"
// @Param        offset        query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return badParam(c, "query")
	}
	if ok, err := validateRequest(c, &q); !ok {
		return err
	}
	page := dto.PageRequest{Limit: q.Limit, Offset: q.Offset}
	page.DefaultPage()

	list, err := h.ledger.ListMovements(c.UserContext(), stockKey(q.ProductID, q.VariationID, q.WarehouseID), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items: toMovementResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// VerifyBalance godoc
// @Summary      Verificar saldo contra el ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  int  true   "Producto"
// @Param        variation_id  query  int  false  "Variación"
// @Param        warehouse_id  query  int  true   "Bodega"
// @Success      200  {object}  dto.BalanceCheckResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances/verify [get]
func (h *InventoryHandler) VerifyBalance(c *fiber.Ctx) error {
	var q dto.StockKeyQuery
	if err := c.QueryParser(&q); err != nil {
		return badParam(c, "query")
	}
	if ok, err := validateRequest(c, &q); !ok {
		return err
	}
	check, err := h.ledger.VerifyBalance(c.UserContext(), stockKey(q.ProductID, q.VariationID, q.WarehouseID))
	if err != nil {
		return respondError(c, h.log, err)
	}
	if !check.Consistent {
		h.log.Warn().Str("key", check.Key.String()).Str("on_hand", check.OnHand.String()).
			Str("ledger_sum", check.LedgerSum.String()).Msg("saldo no coincide con el ledger")
	}
	return c.JSON(dto.BalanceCheckResponse{
		ProductID:   check.Key.ProductID,
		VariationID: check.Key.VariationID,
		WarehouseID: check.Key.WarehouseID,
		OnHand:      check.OnHand,
		LedgerSum:   check.LedgerSum,
		HasBalance:  check.HasBalance,
		Consistent:  check.Consistent,
	})
}

// RegisterAdjustment godoc
// @Summary      Ajuste manual de inventario
// @Description  quantity con signo: positivo entra, negativo sale. Cero es inválido.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "product_id, variation_id, warehouse_id, quantity, reference"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) RegisterAdjustment(c *fiber.Ctx) error {
	actorID, err := requireActor(c)
	if actorID == 0 {
		return err
	}
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if ok, err := validateRequest(c, &in); !ok {
		return err
	}
	mov, err := h.ledger.RegisterAdjustment(c.UserContext(), inventory.AdjustmentInput{
		ProductID:   in.ProductID,
		VariationID: in.VariationID,
		WarehouseID: in.WarehouseID,
		ActorID:     actorID,
		Quantity:    in.Quantity,
		Reference:   in.Reference,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// RegisterReceipt godoc
// @Summary      Recepción de compra
// @Description  Entrada de mercancía; recalcula el costo promedio ponderado del producto.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiptRequest  true  "product_id, warehouse_id, quantity, unit_cost"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) RegisterReceipt(c *fiber.Ctx) error {
	actorID, err := requireActor(c)
	if actorID == 0 {
		return err
	}
	var in dto.ReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if ok, err := validateRequest(c, &in); !ok {
		return err
	}
	mov, err := h.ledger.RegisterReceipt(c.UserContext(), inventory.ReceiptInput{
		ProductID:   in.ProductID,
		VariationID: in.VariationID,
		WarehouseID: in.WarehouseID,
		ActorID:     actorID,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		Reference:   in.Reference,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}
