package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/application/sales"
	"github.com/rs/zerolog"
)

// SalesHandler confirmación de ventas del POS/ERP.
type SalesHandler struct {
	uc  *sales.ConfirmSaleUseCase
	log zerolog.Logger
}

// NewSalesHandler construye el handler.
func NewSalesHandler(uc *sales.ConfirmSaleUseCase, log zerolog.Logger) *SalesHandler {
	return &SalesHandler{uc: uc, log: log}
}

// Confirm godoc
// @Summary      Confirmar venta
// @Description  Descuenta stock por cada línea y acumula el backlog de reposición. Repetir la
//
//	confirmación no vuelve a descontar (already_applied=true).
//
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                     true   "ID de la venta"
// @Param        body  body  dto.ConfirmSaleRequest  false  "warehouse_id (opcional, por defecto la bodega de la venta)"
// @Success      200   {object}  dto.ConfirmSaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/confirm [post]
func (h *SalesHandler) Confirm(c *fiber.Ctx) error {
	actorID, err := requireActor(c)
	if actorID == 0 {
		return err
	}
	saleID, err := c.ParamsInt("id")
	if err != nil || saleID <= 0 {
		return badParam(c, "id")
	}
	var in dto.ConfirmSaleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	if ok, err := validateRequest(c, &in); !ok {
		return err
	}

	res, err := h.uc.ConfirmSale(c.UserContext(), sales.ConfirmSaleInput{
		SaleID:      int64(saleID),
		WarehouseID: in.WarehouseID,
		ActorID:     actorID,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	out := dto.ConfirmSaleResponse{
		SaleID:         res.SaleID,
		WarehouseID:    res.WarehouseID,
		AlreadyApplied: res.AlreadyApplied,
		Movements:      []dto.StockMovementResponse{},
		SkippedItems:   []int64{},
		Events:         toEventResponses(res.Events),
	}
	if res.Outflow != nil {
		out.TransactionID = res.Outflow.TransactionID
		out.Movements = toMovementResponses(res.Outflow.Movements)
		if res.Outflow.SkippedItems != nil {
			out.SkippedItems = res.Outflow.SkippedItems
		}
	}
	return c.JSON(out)
}
