package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// BacklogRepository acumulados por (producto, proveedor).
type BacklogRepository interface {
	GetOrCreateForUpdate(ctx context.Context, productID int64, supplierID *int64) (*entity.ReplenishmentBacklog, error)
	Update(ctx context.Context, backlog *entity.ReplenishmentBacklog) error
	// ListByIDs carga las filas con nombre de producto y proveedor.
	ListByIDs(ctx context.Context, ids []int64) ([]*entity.ReplenishmentBacklog, error)
}

// ReplenishmentEventRepository log de eventos de reposición (append-only).
type ReplenishmentEventRepository interface {
	// LockWindow toma el candado de la ventana de reposición para la transacción en curso:
	// compartido para quien registra ventas, exclusivo para quien genera corridas.
	LockWindow(ctx context.Context, exclusive bool) error
	Create(ctx context.Context, event *entity.ReplenishmentEvent) error
	// ListBetween eventos del tipo con from < happened_at <= to. from nil = sin cota inferior.
	ListBetween(ctx context.Context, eventType entity.EventType, from *time.Time, to time.Time) ([]*entity.ReplenishmentEvent, error)
}

// ReplenishmentRunRepository corridas de reposición.
type ReplenishmentRunRepository interface {
	// Create devuelve domain.ErrDuplicate si ya existe un borrador del mismo tipo.
	Create(ctx context.Context, run *entity.ReplenishmentRun) error
	GetByID(ctx context.Context, id int64) (*entity.ReplenishmentRun, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*entity.ReplenishmentRun, error)
	FindDraft(ctx context.Context, runType string) (*entity.ReplenishmentRun, error)
	FindLastClosed(ctx context.Context, runType string) (*entity.ReplenishmentRun, error)
	List(ctx context.Context, runType string, limit, offset int) ([]*entity.ReplenishmentRun, error)
	Update(ctx context.Context, run *entity.ReplenishmentRun) error
}

// PurchaseRequisitionRepository requisiciones de compra y sus líneas.
type PurchaseRequisitionRepository interface {
	Create(ctx context.Context, req *entity.PurchaseRequisition) error
	CreateItem(ctx context.Context, item *entity.PurchaseRequisitionItem) error
	GetByID(ctx context.Context, id int64) (*entity.PurchaseRequisition, error)
	ListByRun(ctx context.Context, runID int64) ([]*entity.PurchaseRequisition, error)
}
