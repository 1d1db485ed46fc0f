package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/application/replenishment"
	"github.com/rs/zerolog"
)

// RequisitionHandler requisiciones de compra.
type RequisitionHandler struct {
	lowStock     *replenishment.LowStockUseCase
	requisitions *replenishment.RequisitionUseCase
	log          zerolog.Logger
}

// NewRequisitionHandler construye el handler.
func NewRequisitionHandler(lowStock *replenishment.LowStockUseCase, requisitions *replenishment.RequisitionUseCase, log zerolog.Logger) *RequisitionHandler {
	return &RequisitionHandler{lowStock: lowStock, requisitions: requisitions, log: log}
}

// GenerateLowStock godoc
// @Summary      Requisición por stock bajo
// @Description  Una requisición "Varios" con los productos controlados por debajo de su mínimo.
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LowStockRequest  false  "window_days"
// @Success      201   {object}  dto.LowStockResponse
// @Success      200   {object}  dto.LowStockResponse  "nada bajo el mínimo"
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/requisitions/low-stock [post]
func (h *RequisitionHandler) GenerateLowStock(c *fiber.Ctx) error {
	actorID, err := requireActor(c)
	if actorID == 0 {
		return err
	}
	var in dto.LowStockRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	if ok, err := validateRequest(c, &in); !ok {
		return err
	}
	req, err := h.lowStock.GenerateLowStockRequisition(c.UserContext(), actorID, in.WindowDays)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if req == nil {
		return c.JSON(dto.LowStockResponse{Created: false, Message: "No hay productos por debajo del mínimo"})
	}
	out := toRequisitionResponse(req)
	return c.Status(fiber.StatusCreated).JSON(dto.LowStockResponse{Created: true, Requisition: &out})
}

// GetByID godoc
// @Summary      Detalle de requisición
// @Tags         requisitions
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID de la requisición"
// @Success      200  {object}  dto.RequisitionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id} [get]
func (h *RequisitionHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badParam(c, "id")
	}
	req, err := h.requisitions.GetRequisition(c.UserContext(), int64(id))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toRequisitionResponse(req))
}
