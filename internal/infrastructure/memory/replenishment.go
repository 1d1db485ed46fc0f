package memory

import (
	"context"
	"slices"
	"time"

	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.BacklogRepository             = (*BacklogRepo)(nil)
	_ repository.ReplenishmentEventRepository  = (*EventRepo)(nil)
	_ repository.ReplenishmentRunRepository    = (*RunRepo)(nil)
	_ repository.PurchaseRequisitionRepository = (*RequisitionRepo)(nil)
)

type BacklogRepo struct{ db db }

func (r *BacklogRepo) GetOrCreateForUpdate(_ context.Context, productID int64, supplierID *int64) (b *entity.ReplenishmentBacklog, err error) {
	err = r.db.with(func(s *state) error {
		for _, v := range s.backlogs {
			if v.ProductID == productID && sameSupplier(v.SupplierID, supplierID) {
				b = &v
				return nil
			}
		}
		v := entity.ReplenishmentBacklog{
			ID:         s.next("replenishment_backlog"),
			ProductID:  productID,
			SupplierID: supplierID,
			PendingQty: decimal.Zero,
			CreatedAt:  time.Now(),
		}
		s.backlogs[v.ID] = v
		b = &v
		return nil
	})
	return b, err
}

func (r *BacklogRepo) Update(_ context.Context, backlog *entity.ReplenishmentBacklog) error {
	return r.db.with(func(s *state) error {
		if _, ok := s.backlogs[backlog.ID]; !ok {
			return domain.ErrNotFound
		}
		v := *backlog
		v.ProductSKU, v.ProductName, v.SupplierName = "", "", ""
		s.backlogs[backlog.ID] = v
		return nil
	})
}

func (r *BacklogRepo) ListByIDs(_ context.Context, ids []int64) (out []*entity.ReplenishmentBacklog, err error) {
	err = r.db.with(func(s *state) error {
		for _, id := range ids {
			v, ok := s.backlogs[id]
			if !ok {
				continue
			}
			p := s.products[v.ProductID]
			v.ProductSKU, v.ProductName = p.SKU, p.Name
			if v.SupplierID != nil {
				v.SupplierName = s.suppliers[*v.SupplierID].Name
			}
			out = append(out, &v)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.ReplenishmentBacklog) int { return cmpInt64(a.ID, b.ID) })
	return out, err
}

func sameSupplier(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type EventRepo struct{ db db }

// LockWindow no hace nada: las transacciones del store ya son serializables.
func (r *EventRepo) LockWindow(context.Context, bool) error { return nil }

func (r *EventRepo) Create(_ context.Context, e *entity.ReplenishmentEvent) error {
	return r.db.with(func(s *state) error {
		e.ID = s.next("replenishment_events")
		s.events = append(s.events, *e)
		return nil
	})
}

func (r *EventRepo) ListBetween(_ context.Context, eventType entity.EventType, from *time.Time, to time.Time) (out []*entity.ReplenishmentEvent, err error) {
	err = r.db.with(func(s *state) error {
		for _, e := range s.events {
			if e.Type != eventType || e.HappenedAt.After(to) {
				continue
			}
			if from != nil && !e.HappenedAt.After(*from) {
				continue
			}
			out = append(out, &e)
		}
		return nil
	})
	return out, err
}

type RunRepo struct{ db db }

func (r *RunRepo) Create(_ context.Context, run *entity.ReplenishmentRun) error {
	return r.db.with(func(s *state) error {
		if run.Status == entity.RunStatusDraft {
			for _, v := range s.runs {
				if v.RunType == run.RunType && v.Status == entity.RunStatusDraft {
					return domain.ErrDuplicate
				}
			}
		}
		run.ID = s.next("replenishment_runs")
		s.runs[run.ID] = *run
		return nil
	})
}

func (r *RunRepo) GetByID(_ context.Context, id int64) (run *entity.ReplenishmentRun, err error) {
	err = r.db.with(func(s *state) error {
		if v, ok := s.runs[id]; ok {
			run = &v
		}
		return nil
	})
	return run, err
}

func (r *RunRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.ReplenishmentRun, error) {
	return r.GetByID(ctx, id)
}

func (r *RunRepo) FindDraft(_ context.Context, runType string) (run *entity.ReplenishmentRun, err error) {
	err = r.db.with(func(s *state) error {
		for _, v := range s.runs {
			if v.RunType == runType && v.Status == entity.RunStatusDraft {
				run = &v
				return nil
			}
		}
		return nil
	})
	return run, err
}

func (r *RunRepo) FindLastClosed(_ context.Context, runType string) (run *entity.ReplenishmentRun, err error) {
	err = r.db.with(func(s *state) error {
		for _, v := range s.runs {
			if v.RunType != runType || v.Status != entity.RunStatusClosed {
				continue
			}
			if run == nil || v.ToAt.After(run.ToAt) || (v.ToAt.Equal(run.ToAt) && v.ID > run.ID) {
				run = &v
			}
		}
		return nil
	})
	return run, err
}

func (r *RunRepo) List(_ context.Context, runType string, limit, offset int) (out []*entity.ReplenishmentRun, err error) {
	err = r.db.with(func(s *state) error {
		for _, v := range s.runs {
			if v.RunType == runType {
				out = append(out, &v)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.ReplenishmentRun) int { return cmpInt64(b.ID, a.ID) })
	if offset >= len(out) {
		return []*entity.ReplenishmentRun{}, err
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *RunRepo) Update(_ context.Context, run *entity.ReplenishmentRun) error {
	return r.db.with(func(s *state) error {
		if _, ok := s.runs[run.ID]; !ok {
			return domain.ErrNotFound
		}
		s.runs[run.ID] = *run
		return nil
	})
}

type RequisitionRepo struct{ db db }

func (r *RequisitionRepo) Create(_ context.Context, req *entity.PurchaseRequisition) error {
	return r.db.with(func(s *state) error {
		req.ID = s.next("purchase_requisitions")
		v := *req
		v.Items = nil
		s.requisitions[req.ID] = v
		return nil
	})
}

func (r *RequisitionRepo) CreateItem(_ context.Context, item *entity.PurchaseRequisitionItem) error {
	return r.db.with(func(s *state) error {
		if _, ok := s.requisitions[item.RequisitionID]; !ok {
			return domain.ErrNotFound
		}
		item.ID = s.next("purchase_requisition_items")
		s.reqItems = append(s.reqItems, *item)
		return nil
	})
}

func (r *RequisitionRepo) GetByID(_ context.Context, id int64) (req *entity.PurchaseRequisition, err error) {
	err = r.db.with(func(s *state) error {
		if v, ok := s.requisitions[id]; ok {
			req = withItems(s, v)
		}
		return nil
	})
	return req, err
}

func (r *RequisitionRepo) ListByRun(_ context.Context, runID int64) (out []*entity.PurchaseRequisition, err error) {
	err = r.db.with(func(s *state) error {
		for _, v := range s.requisitions {
			if v.RunID != nil && *v.RunID == runID {
				out = append(out, withItems(s, v))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.PurchaseRequisition) int { return cmpInt64(a.ID, b.ID) })
	return out, err
}

func withItems(s *state, req entity.PurchaseRequisition) *entity.PurchaseRequisition {
	req.Items = nil
	for _, it := range s.reqItems {
		if it.RequisitionID == req.ID {
			req.Items = append(req.Items, it)
		}
	}
	return &req
}
