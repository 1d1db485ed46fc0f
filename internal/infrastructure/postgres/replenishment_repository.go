package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

var (
	_ repository.BacklogRepository            = (*BacklogRepo)(nil)
	_ repository.ReplenishmentEventRepository = (*ReplenishmentEventRepo)(nil)
	_ repository.ReplenishmentRunRepository   = (*ReplenishmentRunRepo)(nil)
)

// replenishmentWindowLock clave del advisory lock de la ventana de reposición.
const replenishmentWindowLock int64 = 0x5245504f53

// ─── Backlog ────────────────────────────────────────────────────────────────

// BacklogRepo acumulados por (producto, proveedor).
type BacklogRepo struct {
	q Querier
}

func NewBacklogRepository(q Querier) *BacklogRepo {
	return &BacklogRepo{q: q}
}

// GetOrCreateForUpdate mismo patrón que los saldos: insert idempotente y SELECT FOR UPDATE.
func (r *BacklogRepo) GetOrCreateForUpdate(ctx context.Context, productID int64, supplierID *int64) (*entity.ReplenishmentBacklog, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO replenishment_backlog (product_id, supplier_id, pending_qty, created_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, (COALESCE(supplier_id, 0))) DO NOTHING`, productID, supplierID)
	if err != nil {
		return nil, fmt.Errorf("create backlog: %w", err)
	}
	var b entity.ReplenishmentBacklog
	var lastActivity *time.Time
	err = r.q.QueryRow(ctx, `
		SELECT id, product_id, supplier_id, pending_qty, last_activity_at, created_at
		FROM replenishment_backlog
		WHERE product_id = $1 AND supplier_id IS NOT DISTINCT FROM $2
		FOR UPDATE`, productID, supplierID,
	).Scan(&b.ID, &b.ProductID, &b.SupplierID, &b.PendingQty, &lastActivity, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get backlog for update: %w", err)
	}
	if lastActivity != nil {
		b.LastActivityAt = *lastActivity
	}
	return &b, nil
}

func (r *BacklogRepo) Update(ctx context.Context, b *entity.ReplenishmentBacklog) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE replenishment_backlog SET pending_qty = $2, last_activity_at = $3 WHERE id = $1`,
		b.ID, b.PendingQty, b.LastActivityAt)
	if err != nil {
		return fmt.Errorf("update backlog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByIDs carga los backlogs con SKU, nombre de producto y proveedor.
func (r *BacklogRepo) ListByIDs(ctx context.Context, ids []int64) ([]*entity.ReplenishmentBacklog, error) {
	if len(ids) == 0 {
		return []*entity.ReplenishmentBacklog{}, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT b.id, b.product_id, b.supplier_id, b.pending_qty, b.last_activity_at, b.created_at,
			p.sku, p.name, COALESCE(s.name, '')
		FROM replenishment_backlog b
		JOIN products p ON p.id = b.product_id
		LEFT JOIN suppliers s ON s.id = b.supplier_id
		WHERE b.id = ANY($1)
		ORDER BY b.id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list backlogs: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReplenishmentBacklog
	for rows.Next() {
		var b entity.ReplenishmentBacklog
		var lastActivity *time.Time
		if err := rows.Scan(&b.ID, &b.ProductID, &b.SupplierID, &b.PendingQty, &lastActivity, &b.CreatedAt,
			&b.ProductSKU, &b.ProductName, &b.SupplierName); err != nil {
			return nil, fmt.Errorf("scan backlog: %w", err)
		}
		if lastActivity != nil {
			b.LastActivityAt = *lastActivity
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// ─── Eventos ────────────────────────────────────────────────────────────────

// ReplenishmentEventRepo log append-only de eventos.
type ReplenishmentEventRepo struct {
	q Querier
}

func NewReplenishmentEventRepository(q Querier) *ReplenishmentEventRepo {
	return &ReplenishmentEventRepo{q: q}
}

// LockWindow advisory lock de transacción: compartido para ventas, exclusivo para corridas.
// Se libera solo al terminar la transacción.
func (r *ReplenishmentEventRepo) LockWindow(ctx context.Context, exclusive bool) error {
	query := `SELECT pg_advisory_xact_lock_shared($1)`
	if exclusive {
		query = `SELECT pg_advisory_xact_lock($1)`
	}
	if _, err := r.q.Exec(ctx, query, replenishmentWindowLock); err != nil {
		return fmt.Errorf("lock replenishment window: %w", err)
	}
	return nil
}

func (r *ReplenishmentEventRepo) Create(ctx context.Context, e *entity.ReplenishmentEvent) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO replenishment_events (backlog_id, type, qty_delta, reference_type, reference_id, actor_id, happened_at, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		e.BacklogID, string(e.Type), e.QtyDelta, string(e.Reference.Kind), e.Reference.ID, e.ActorID, e.HappenedAt, e.Note,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("create replenishment event: %w", err)
	}
	return nil
}

// ListBetween eventos con from < happened_at <= to; sin from no hay cota inferior.
func (r *ReplenishmentEventRepo) ListBetween(ctx context.Context, eventType entity.EventType, from *time.Time, to time.Time) ([]*entity.ReplenishmentEvent, error) {
	const cols = `SELECT id, backlog_id, type, qty_delta, reference_type, reference_id, actor_id, happened_at, note
		FROM replenishment_events`
	var rows pgx.Rows
	var err error
	if from == nil {
		rows, err = r.q.Query(ctx, cols+` WHERE type = $1 AND happened_at <= $2 ORDER BY id`, string(eventType), to)
	} else {
		rows, err = r.q.Query(ctx, cols+` WHERE type = $1 AND happened_at > $2 AND happened_at <= $3 ORDER BY id`,
			string(eventType), *from, to)
	}
	if err != nil {
		return nil, fmt.Errorf("list replenishment events: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReplenishmentEvent
	for rows.Next() {
		var e entity.ReplenishmentEvent
		var etype, kind string
		if err := rows.Scan(&e.ID, &e.BacklogID, &etype, &e.QtyDelta, &kind, &e.Reference.ID,
			&e.ActorID, &e.HappenedAt, &e.Note); err != nil {
			return nil, fmt.Errorf("scan replenishment event: %w", err)
		}
		e.Type = entity.EventType(etype)
		e.Reference.Kind = entity.ReferenceKind(kind)
		list = append(list, &e)
	}
	return list, rows.Err()
}

// ─── Corridas ───────────────────────────────────────────────────────────────

// ReplenishmentRunRepo corridas de reposición.
type ReplenishmentRunRepo struct {
	q Querier
}

func NewReplenishmentRunRepository(q Querier) *ReplenishmentRunRepo {
	return &ReplenishmentRunRepo{q: q}
}

const runColumns = `id, run_type, status, from_at, to_at, generated_by, generated_at, closed_by, closed_at,
	primary_requisition_id, supplier_count, item_count, notes`

func scanRun(row pgx.Row) (*entity.ReplenishmentRun, error) {
	var run entity.ReplenishmentRun
	var status string
	err := row.Scan(&run.ID, &run.RunType, &status, &run.FromAt, &run.ToAt, &run.GeneratedBy, &run.GeneratedAt,
		&run.ClosedBy, &run.ClosedAt, &run.PrimaryRequisitionID, &run.SupplierCount, &run.ItemCount, &run.Notes)
	if err != nil {
		return nil, err
	}
	run.Status = entity.RunStatus(status)
	return &run, nil
}

// Create inserta la corrida. El índice parcial uq_replenishment_runs_draft rechaza un segundo borrador.
func (r *ReplenishmentRunRepo) Create(ctx context.Context, run *entity.ReplenishmentRun) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO replenishment_runs (run_type, status, from_at, to_at, generated_by, generated_at,
			primary_requisition_id, supplier_count, item_count, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		run.RunType, string(run.Status), run.FromAt, run.ToAt, run.GeneratedBy, run.GeneratedAt,
		run.PrimaryRequisitionID, run.SupplierCount, run.ItemCount, run.Notes,
	).Scan(&run.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create replenishment run: %w", err)
	}
	return nil
}

func (r *ReplenishmentRunRepo) getOne(ctx context.Context, query string, args ...any) (*entity.ReplenishmentRun, error) {
	run, err := scanRun(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get replenishment run: %w", err)
	}
	return run, nil
}

func (r *ReplenishmentRunRepo) GetByID(ctx context.Context, id int64) (*entity.ReplenishmentRun, error) {
	return r.getOne(ctx, `SELECT `+runColumns+` FROM replenishment_runs WHERE id = $1`, id)
}

func (r *ReplenishmentRunRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.ReplenishmentRun, error) {
	return r.getOne(ctx, `SELECT `+runColumns+` FROM replenishment_runs WHERE id = $1 FOR UPDATE`, id)
}

func (r *ReplenishmentRunRepo) FindDraft(ctx context.Context, runType string) (*entity.ReplenishmentRun, error) {
	return r.getOne(ctx, `SELECT `+runColumns+` FROM replenishment_runs
		WHERE run_type = $1 AND status = 'DRAFT' LIMIT 1`, runType)
}

// FindLastClosed la corrida cerrada con el corte más reciente.
func (r *ReplenishmentRunRepo) FindLastClosed(ctx context.Context, runType string) (*entity.ReplenishmentRun, error) {
	return r.getOne(ctx, `SELECT `+runColumns+` FROM replenishment_runs
		WHERE run_type = $1 AND status = 'CLOSED'
		ORDER BY to_at DESC, id DESC LIMIT 1`, runType)
}

func (r *ReplenishmentRunRepo) List(ctx context.Context, runType string, limit, offset int) ([]*entity.ReplenishmentRun, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.q.Query(ctx, `SELECT `+runColumns+` FROM replenishment_runs
		WHERE run_type = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`, runType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list replenishment runs: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.ReplenishmentRun, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan replenishment run: %w", err)
		}
		list = append(list, run)
	}
	return list, rows.Err()
}

func (r *ReplenishmentRunRepo) Update(ctx context.Context, run *entity.ReplenishmentRun) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE replenishment_runs
		SET status = $2, closed_by = $3, closed_at = $4, primary_requisition_id = $5,
			supplier_count = $6, item_count = $7, notes = $8
		WHERE id = $1`,
		run.ID, string(run.Status), run.ClosedBy, run.ClosedAt, run.PrimaryRequisitionID,
		run.SupplierCount, run.ItemCount, run.Notes)
	if err != nil {
		return fmt.Errorf("update replenishment run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
