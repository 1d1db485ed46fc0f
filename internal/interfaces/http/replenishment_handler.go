package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/application/replenishment"
	"github.com/rs/zerolog"
)

// ReplenishmentHandler corridas de reposición incremental.
type ReplenishmentHandler struct {
	runs *replenishment.RunUseCase
	log  zerolog.Logger
}

// NewReplenishmentHandler construye el handler.
func NewReplenishmentHandler(runs *replenishment.RunUseCase, log zerolog.Logger) *ReplenishmentHandler {
	return &ReplenishmentHandler{runs: runs, log: log}
}

// GenerateRun godoc
// @Summary      Generar corrida de reposición
// @Description  Agrupa por proveedor lo vendido desde el último corte cerrado. Si ya hay un borrador lo
//
//	devuelve con is_existing=true salvo force=true, que lo cierra y genera desde su corte.
//
// @Tags         replenishment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateRunRequest  false  "force"
// @Success      201   {object}  dto.GenerateRunResponse  "corrida creada"
// @Success      200   {object}  dto.GenerateRunResponse  "borrador existente o nada que reponer"
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/replenishment/runs [post]
func (h *ReplenishmentHandler) GenerateRun(c *fiber.Ctx) error {
	actorID, err := requireActor(c)
	if actorID == 0 {
		return err
	}
	var in dto.GenerateRunRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	res, err := h.runs.GenerateRun(c.UserContext(), actorID, replenishment.GenerateOptions{Force: in.Force})
	if err != nil {
		return respondError(c, h.log, err)
	}
	status := fiber.StatusOK
	if res.Status == replenishment.OutcomeCreated {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(toGenerateRunResponse(res))
}

// ListRuns godoc
// @Summary      Listar corridas
// @Tags         replenishment
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo 100"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.RunListResponse
// @Router       /api/replenishment/runs [get]
func (h *ReplenishmentHandler) ListRuns(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badParam(c, "query")
	}
	if ok, err := validateRequest(c, &page); !ok {
		return err
	}
	page.DefaultPage()
	list, err := h.runs.ListRuns(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	items := make([]dto.RunResponse, 0, len(list))
	for _, r := range list {
		items = append(items, toRunResponse(r))
	}
	return c.JSON(dto.RunListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// GetDraft godoc
// @Summary      Borrador abierto
// @Tags         replenishment
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RunResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/replenishment/runs/draft [get]
func (h *ReplenishmentHandler) GetDraft(c *fiber.Ctx) error {
	run, err := h.runs.GetDraft(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	if run == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "no hay corrida en borrador"})
	}
	return c.JSON(toRunResponse(run))
}

// GetLastClosed godoc
// @Summary      Última corrida cerrada
// @Tags         replenishment
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RunResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/replenishment/runs/last-closed [get]
func (h *ReplenishmentHandler) GetLastClosed(c *fiber.Ctx) error {
	run, err := h.runs.GetLastClosed(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	if run == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "no hay corridas cerradas"})
	}
	return c.JSON(toRunResponse(run))
}

// GetRun godoc
// @Summary      Detalle de corrida
// @Tags         replenishment
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID de la corrida"
// @Success      200  {object}  dto.RunDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/replenishment/runs/{id} [get]
func (h *ReplenishmentHandler) GetRun(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badParam(c, "id")
	}
	detail, err := h.runs.GetRun(c.UserContext(), int64(id))
	if err != nil {
		return respondError(c, h.log, err)
	}
	reqs := make([]dto.RequisitionResponse, 0, len(detail.Requisitions))
	for _, r := range detail.Requisitions {
		reqs = append(reqs, toRequisitionResponse(r))
	}
	return c.JSON(dto.RunDetailResponse{RunResponse: toRunResponse(detail.Run), Requisitions: reqs})
}

// CloseRun godoc
// @Summary      Cerrar corrida
// @Description  DRAFT -> CLOSED. Su to_at pasa a ser el corte de la siguiente corrida.
// @Tags         replenishment
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID de la corrida"
// @Success      200  {object}  dto.RunResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "la corrida no está en borrador"
// @Router       /api/replenishment/runs/{id}/close [post]
func (h *ReplenishmentHandler) CloseRun(c *fiber.Ctx) error {
	actorID, err := requireActor(c)
	if actorID == 0 {
		return err
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badParam(c, "id")
	}
	run, err := h.runs.CloseRun(c.UserContext(), int64(id), actorID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toRunResponse(run))
}

// ListBacklog godoc
// @Summary      Backlog pendiente
// @Description  Lo vendido desde el último corte cerrado, derivado del log de eventos.
// @Tags         replenishment
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PendingBacklogResponse
// @Router       /api/replenishment/backlog [get]
func (h *ReplenishmentHandler) ListBacklog(c *fiber.Ctx) error {
	list, err := h.runs.ListPendingBacklog(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.PendingBacklogResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPendingBacklogResponse(p))
	}
	return c.JSON(out)
}
