package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

var _ repository.PurchaseRequisitionRepository = (*PurchaseRequisitionRepo)(nil)

// PurchaseRequisitionRepo requisiciones de compra y sus líneas.
type PurchaseRequisitionRepo struct {
	q Querier
}

func NewPurchaseRequisitionRepository(q Querier) *PurchaseRequisitionRepo {
	return &PurchaseRequisitionRepo{q: q}
}

func (r *PurchaseRequisitionRepo) Create(ctx context.Context, req *entity.PurchaseRequisition) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO purchase_requisitions (status, origin, supplier_id, supplier_name, run_id, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		req.Status, req.Origin, req.SupplierID, req.SupplierName, req.RunID, req.Notes, req.CreatedBy, req.CreatedAt,
	).Scan(&req.ID)
	if err != nil {
		return fmt.Errorf("create purchase requisition: %w", err)
	}
	return nil
}

func (r *PurchaseRequisitionRepo) CreateItem(ctx context.Context, item *entity.PurchaseRequisitionItem) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO purchase_requisition_items (requisition_id, product_id, backlog_id, quantity, reason, stock_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		item.RequisitionID, item.ProductID, item.BacklogID, item.Quantity, item.Reason, item.StockSnapshot,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("create purchase requisition item: %w", err)
	}
	return nil
}

const requisitionColumns = `id, status, origin, supplier_id, supplier_name, run_id, notes, created_by, created_at`

// GetByID requisición con sus líneas; (nil, nil) si no existe.
func (r *PurchaseRequisitionRepo) GetByID(ctx context.Context, id int64) (*entity.PurchaseRequisition, error) {
	list, err := r.list(ctx, `SELECT `+requisitionColumns+` FROM purchase_requisitions WHERE id = $1`, id)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// ListByRun requisiciones de la corrida en orden de creación.
func (r *PurchaseRequisitionRepo) ListByRun(ctx context.Context, runID int64) ([]*entity.PurchaseRequisition, error) {
	return r.list(ctx, `SELECT `+requisitionColumns+` FROM purchase_requisitions WHERE run_id = $1 ORDER BY id`, runID)
}

func (r *PurchaseRequisitionRepo) list(ctx context.Context, query string, arg int64) ([]*entity.PurchaseRequisition, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list purchase requisitions: %w", err)
	}
	var list []*entity.PurchaseRequisition
	byID := make(map[int64]*entity.PurchaseRequisition)
	ids := make([]int64, 0)
	for rows.Next() {
		var req entity.PurchaseRequisition
		if err := rows.Scan(&req.ID, &req.Status, &req.Origin, &req.SupplierID, &req.SupplierName,
			&req.RunID, &req.Notes, &req.CreatedBy, &req.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan purchase requisition: %w", err)
		}
		list = append(list, &req)
		byID[req.ID] = &req
		ids = append(ids, req.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list purchase requisitions: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}

	items, err := r.q.Query(ctx, `
		SELECT id, requisition_id, product_id, backlog_id, quantity, reason, stock_snapshot
		FROM purchase_requisition_items WHERE requisition_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list purchase requisition items: %w", err)
	}
	defer items.Close()
	for items.Next() {
		var it entity.PurchaseRequisitionItem
		if err := items.Scan(&it.ID, &it.RequisitionID, &it.ProductID, &it.BacklogID, &it.Quantity,
			&it.Reason, &it.StockSnapshot); err != nil {
			return nil, fmt.Errorf("scan purchase requisition item: %w", err)
		}
		if req, ok := byID[it.RequisitionID]; ok {
			req.Items = append(req.Items, it)
		}
	}
	return list, items.Err()
}
