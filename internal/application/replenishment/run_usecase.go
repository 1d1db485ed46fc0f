package replenishment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Repuestos-api/internal/application/ports"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	domrep "github.com/jhoicas/Repuestos-api/internal/domain/replenishment"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
	"github.com/jhoicas/Repuestos-api/pkg/telemetry"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// Outcome resultado de GenerateRun.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeExisting Outcome = "existing"
	OutcomeEmpty    Outcome = "empty"
)

// GenerateOptions opciones de generación. Force cierra el borrador abierto (si lo hay)
// y genera la corrida siguiente desde su corte.
type GenerateOptions struct {
	Force bool
}

// RunResult respuesta de GenerateRun.
type RunResult struct {
	Status         Outcome
	Run            *entity.ReplenishmentRun
	RequisitionIDs []int64
	Message        string
	// ReplacedRunID borrador cerrado por Force; solo con OutcomeCreated.
	ReplacedRunID *int64
}

// IsExisting indica que se devolvió el borrador abierto sin cambios.
func (r *RunResult) IsExisting() bool { return r.Status == OutcomeExisting }

// RunDetail corrida con sus requisiciones.
type RunDetail struct {
	Run          *entity.ReplenishmentRun
	Requisitions []*entity.PurchaseRequisition
}

// PendingBacklog cantidad pendiente derivada del log desde el último corte cerrado.
type PendingBacklog struct {
	Backlog *entity.ReplenishmentBacklog
	Pending decimal.Decimal
}

// errDraftRace el insert chocó con el índice de borrador único: otra corrida ganó la carrera.
var errDraftRace = errors.New("borrador creado concurrentemente")

// emptyWindow anula la transacción cuando no hay nada que pedir: un borrador cerrado por Force
// vuelve a quedar abierto.
type emptyWindow struct{ msg string }

func (e *emptyWindow) Error() string { return e.msg }

// RunUseCase orquesta las corridas de reposición incremental. Es el dueño exclusivo de las
// transacciones que crean corridas.
type RunUseCase struct {
	txRunner ports.TxRunner
	repos    repository.Repos
	locker   ports.Locker // opcional
	now      ports.Clock
	log      zerolog.Logger
}

// NewRunUseCase construye el orquestador. locker puede ser nil.
func NewRunUseCase(txRunner ports.TxRunner, repos repository.Repos, locker ports.Locker, now ports.Clock, log zerolog.Logger) *RunUseCase {
	return &RunUseCase{
		txRunner: txRunner,
		repos:    repos,
		locker:   locker,
		now:      now,
		log:      log,
	}
}

// GenerateRun calcula la ventana (último corte cerrado, ahora], agrega los eventos SALE_CONFIRMED
// por backlog y crea en una sola transacción la corrida DRAFT, una requisición por proveedor con
// las cantidades incrementales y un evento REQ_GENERATED por requisición.
// Sin eventos nuevos devuelve OutcomeEmpty sin crear nada.
func (uc *RunUseCase) GenerateRun(ctx context.Context, actorID int64, opts GenerateOptions) (res *RunResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "replenishment.generate_run",
		attribute.Int64("actor_id", actorID), attribute.Bool("force", opts.Force))
	defer telemetry.End(span, &err)

	if uc.locker != nil {
		unlock, err := uc.locker.Lock(ctx, "replenishment:"+entity.RunTypeAutoReplenishment)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	if !opts.Force {
		draft, err := uc.repos.Runs.FindDraft(ctx, entity.RunTypeAutoReplenishment)
		if err != nil {
			return nil, err
		}
		if draft != nil {
			return existingResult(draft), nil
		}
	}

	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		r, err := uc.generateInTx(ctx, repos, actorID, opts)
		res = r
		return err
	})
	var empty *emptyWindow
	if errors.As(err, &empty) {
		return emptyResult(empty.msg), nil
	}
	if errors.Is(err, errDraftRace) {
		draft, ferr := uc.repos.Runs.FindDraft(ctx, entity.RunTypeAutoReplenishment)
		if ferr != nil {
			return nil, ferr
		}
		if draft == nil {
			return nil, domain.ErrConflict
		}
		return existingResult(draft), nil
	}
	if err != nil {
		return nil, err
	}
	if res.Status != OutcomeCreated {
		return res, nil
	}
	uc.log.Info().Int64("run_id", res.Run.ID).Int("suppliers", res.Run.SupplierCount).Int("items", res.Run.ItemCount).
		Ints64("requisition_ids", res.RequisitionIDs).Time("to_at", res.Run.ToAt).Msg("corrida de reposición generada")
	if res.ReplacedRunID != nil {
		uc.log.Info().Int64("run_id", *res.ReplacedRunID).Int64("actor_id", actorID).Msg("borrador cerrado por regeneración forzada")
	}
	return res, nil
}

func (uc *RunUseCase) generateInTx(ctx context.Context, repos repository.Repos, actorID int64, opts GenerateOptions) (*RunResult, error) {
	// Exclusivo: ninguna venta queda en vuelo con happened_at <= to_at.
	if err := repos.Events.LockWindow(ctx, true); err != nil {
		return nil, err
	}
	now := uc.now()

	draft, err := repos.Runs.FindDraft(ctx, entity.RunTypeAutoReplenishment)
	if err != nil {
		return nil, err
	}
	if draft != nil {
		if !opts.Force {
			return existingResult(draft), nil
		}
		draft.Close(actorID, now)
		draft.Notes = appendNote(draft.Notes, "Cerrada por regeneración forzada")
		if err := repos.Runs.Update(ctx, draft); err != nil {
			return nil, err
		}
	}

	var from *time.Time
	last, err := repos.Runs.FindLastClosed(ctx, entity.RunTypeAutoReplenishment)
	if err != nil {
		return nil, err
	}
	if last != nil {
		cutoff := last.ToAt
		from = &cutoff
	}
	to := now

	events, err := repos.Events.ListBetween(ctx, entity.EventSaleConfirmed, from, to)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, &emptyWindow{msg: "No hay ventas nuevas desde el último corte"}
	}
	deltas := domrep.SumByBacklog(events)
	if len(deltas) == 0 {
		return nil, &emptyWindow{msg: "No hay cantidades pendientes en la ventana"}
	}

	ids := make([]int64, len(deltas))
	for i, d := range deltas {
		ids[i] = d.BacklogID
	}
	backlogs, err := repos.Backlogs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	groups := domrep.GroupBySupplier(backlogs, deltas)
	if len(groups) == 0 {
		return nil, &emptyWindow{msg: "No hay cantidades pendientes en la ventana"}
	}
	itemCount := 0
	for _, g := range groups {
		itemCount += len(g.Lines)
	}

	run := &entity.ReplenishmentRun{
		RunType:       entity.RunTypeAutoReplenishment,
		Status:        entity.RunStatusDraft,
		FromAt:        from,
		ToAt:          to,
		GeneratedBy:   actorID,
		GeneratedAt:   now,
		SupplierCount: len(groups),
		ItemCount:     itemCount,
	}
	if err := repos.Runs.Create(ctx, run); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, errDraftRace
		}
		return nil, err
	}

	reqIDs := make([]int64, 0, len(groups))
	for _, g := range groups {
		reqID, err := uc.createGroupRequisition(ctx, repos, run, g, actorID, now)
		if err != nil {
			return nil, err
		}
		reqIDs = append(reqIDs, reqID)
	}

	primary := reqIDs[0]
	run.PrimaryRequisitionID = &primary
	run.Notes = requisitionNotes(reqIDs)
	if err := repos.Runs.Update(ctx, run); err != nil {
		return nil, err
	}

	res := &RunResult{Status: OutcomeCreated, Run: run, RequisitionIDs: reqIDs}
	if draft != nil {
		res.ReplacedRunID = &draft.ID
	}
	return res, nil
}

// createGroupRequisition crea la requisición del grupo con sus líneas (cantidad incremental de la
// ventana) y el evento REQ_GENERATED de trazabilidad.
func (uc *RunUseCase) createGroupRequisition(
	ctx context.Context,
	repos repository.Repos,
	run *entity.ReplenishmentRun,
	g domrep.SupplierGroup,
	actorID int64,
	now time.Time,
) (int64, error) {
	runID := run.ID
	req := &entity.PurchaseRequisition{
		Status:       entity.RequisitionStatusDraft,
		Origin:       entity.RequisitionOriginAutoReplenishment,
		SupplierID:   g.SupplierID,
		SupplierName: g.SupplierName,
		RunID:        &runID,
		Notes:        fmt.Sprintf("Reposición automática, corrida #%d - %s", run.ID, g.SupplierName),
		CreatedBy:    actorID,
		CreatedAt:    now,
	}
	if err := repos.Requisitions.Create(ctx, req); err != nil {
		return 0, err
	}
	for _, line := range g.Lines {
		backlogID := line.Backlog.ID
		item := &entity.PurchaseRequisitionItem{
			RequisitionID: req.ID,
			ProductID:     line.Backlog.ProductID,
			BacklogID:     &backlogID,
			Quantity:      line.Qty,
		}
		if err := repos.Requisitions.CreateItem(ctx, item); err != nil {
			return 0, err
		}
		req.Items = append(req.Items, *item)
	}

	trace := &entity.ReplenishmentEvent{
		BacklogID:  g.Lines[0].Backlog.ID,
		Type:       entity.EventReqGenerated,
		QtyDelta:   decimal.Zero,
		Reference:  entity.RunRef(run.ID),
		ActorID:    actorID,
		HappenedAt: now,
		Note: fmt.Sprintf("Requisición #%d para %s: %d ítems, total %s",
			req.ID, g.SupplierName, len(g.Lines), g.Total().String()),
	}
	if err := repos.Events.Create(ctx, trace); err != nil {
		return 0, err
	}
	return req.ID, nil
}

// CloseRun pasa la corrida de DRAFT a CLOSED. Su to_at se convierte en el corte de la siguiente.
// No toca los backlogs.
func (uc *RunUseCase) CloseRun(ctx context.Context, runID, actorID int64) (run *entity.ReplenishmentRun, err error) {
	ctx, span := telemetry.StartSpan(ctx, "replenishment.close_run",
		attribute.Int64("run_id", runID), attribute.Int64("actor_id", actorID))
	defer telemetry.End(span, &err)

	if runID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		r, err := repos.Runs.GetByIDForUpdate(ctx, runID)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		if !r.Close(actorID, uc.now()) {
			return domain.ErrInvalidState
		}
		if err := repos.Runs.Update(ctx, r); err != nil {
			return err
		}
		run = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("run_id", run.ID).Int64("actor_id", actorID).Time("cutoff", run.ToAt).Msg("corrida de reposición cerrada")
	return run, nil
}

// ListRuns lista las corridas, más reciente primero.
func (uc *RunUseCase) ListRuns(ctx context.Context, limit, offset int) ([]*entity.ReplenishmentRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repos.Runs.List(ctx, entity.RunTypeAutoReplenishment, limit, offset)
}

// GetDraft devuelve el borrador abierto o nil.
func (uc *RunUseCase) GetDraft(ctx context.Context) (*entity.ReplenishmentRun, error) {
	return uc.repos.Runs.FindDraft(ctx, entity.RunTypeAutoReplenishment)
}

// GetLastClosed devuelve la última corrida cerrada o nil.
func (uc *RunUseCase) GetLastClosed(ctx context.Context) (*entity.ReplenishmentRun, error) {
	return uc.repos.Runs.FindLastClosed(ctx, entity.RunTypeAutoReplenishment)
}

// GetRun devuelve la corrida con sus requisiciones.
func (uc *RunUseCase) GetRun(ctx context.Context, runID int64) (*RunDetail, error) {
	run, err := uc.repos.Runs.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, domain.ErrNotFound
	}
	reqs, err := uc.repos.Requisitions.ListByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &RunDetail{Run: run, Requisitions: reqs}, nil
}

// ListPendingBacklog deriva del log lo vendido desde el último corte cerrado, por backlog.
// Incluye lo que cubre un borrador abierto: no está confirmado hasta que se cierre.
func (uc *RunUseCase) ListPendingBacklog(ctx context.Context) ([]PendingBacklog, error) {
	var from *time.Time
	last, err := uc.repos.Runs.FindLastClosed(ctx, entity.RunTypeAutoReplenishment)
	if err != nil {
		return nil, err
	}
	if last != nil {
		cutoff := last.ToAt
		from = &cutoff
	}
	events, err := uc.repos.Events.ListBetween(ctx, entity.EventSaleConfirmed, from, uc.now())
	if err != nil {
		return nil, err
	}
	deltas := domrep.SumByBacklog(events)
	if len(deltas) == 0 {
		return []PendingBacklog{}, nil
	}
	ids := make([]int64, len(deltas))
	for i, d := range deltas {
		ids[i] = d.BacklogID
	}
	backlogs, err := uc.repos.Backlogs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*entity.ReplenishmentBacklog, len(backlogs))
	for _, b := range backlogs {
		byID[b.ID] = b
	}
	out := make([]PendingBacklog, 0, len(deltas))
	for _, d := range deltas {
		if b, ok := byID[d.BacklogID]; ok {
			out = append(out, PendingBacklog{Backlog: b, Pending: d.Qty})
		}
	}
	return out, nil
}

func existingResult(draft *entity.ReplenishmentRun) *RunResult {
	return &RunResult{
		Status:  OutcomeExisting,
		Run:     draft,
		Message: fmt.Sprintf("Ya existe la corrida #%d en borrador", draft.ID),
	}
}

func emptyResult(msg string) *RunResult {
	return &RunResult{Status: OutcomeEmpty, Message: msg}
}

func requisitionNotes(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return "Requisiciones generadas: " + strings.Join(parts, ", ")
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}
	return notes + "\n" + note
}
