package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReplenishmentBacklog acumulado de ventas por (producto, proveedor). SupplierID nil = "sin asignar".
// PendingQty es un contador acumulado de por vida: la corrida nunca lo usa, el log de eventos manda.
type ReplenishmentBacklog struct {
	ID             int64
	ProductID      int64
	SupplierID     *int64
	PendingQty     decimal.Decimal
	LastActivityAt time.Time
	CreatedAt      time.Time

	// Solo lectura, cargados por ListByIDs.
	ProductSKU   string
	ProductName  string
	SupplierName string
}

// EventType tipo de evento de reposición.
type EventType string

const (
	EventSaleConfirmed EventType = "SALE_CONFIRMED"
	EventReqGenerated  EventType = "REQ_GENERATED"
)

// ReferenceKind variante de la referencia de un evento.
type ReferenceKind string

const (
	RefSale ReferenceKind = "SALE"
	RefRun  ReferenceKind = "RUN"
)

// EventReference apunta a la venta o a la corrida que originó el evento.
type EventReference struct {
	Kind ReferenceKind
	ID   int64
}

// SaleRef referencia a una venta.
func SaleRef(saleID int64) EventReference { return EventReference{Kind: RefSale, ID: saleID} }

// RunRef referencia a una corrida de reposición.
func RunRef(runID int64) EventReference { return EventReference{Kind: RefRun, ID: runID} }

// SaleID devuelve el id de la venta si la referencia es de venta.
func (r EventReference) SaleID() (int64, bool) {
	return r.ID, r.Kind == RefSale
}

// RunID devuelve el id de la corrida si la referencia es de corrida.
func (r EventReference) RunID() (int64, bool) {
	return r.ID, r.Kind == RefRun
}

// ReplenishmentEvent entrada inmutable del log de reposición.
type ReplenishmentEvent struct {
	ID         int64
	BacklogID  int64
	Type       EventType
	QtyDelta   decimal.Decimal
	Reference  EventReference
	ActorID    int64
	HappenedAt time.Time
	Note       string
}

// RunType tipo de corrida; este núcleo solo maneja la automática.
const RunTypeAutoReplenishment = "AUTO_REPLENISHMENT"

// RunStatus estado de la corrida: DRAFT -> CLOSED, sin otras transiciones.
type RunStatus string

const (
	RunStatusDraft  RunStatus = "DRAFT"
	RunStatusClosed RunStatus = "CLOSED"
)

// ReplenishmentRun un ciclo de reposición incremental sobre la ventana (FromAt, ToAt].
// FromAt nil significa que no había corte previo (primera corrida).
type ReplenishmentRun struct {
	ID                   int64
	RunType              string
	Status               RunStatus
	FromAt               *time.Time
	ToAt                 time.Time
	GeneratedBy          int64
	GeneratedAt          time.Time
	ClosedBy             *int64
	ClosedAt             *time.Time
	PrimaryRequisitionID *int64
	SupplierCount        int
	ItemCount            int
	Notes                string
}

// Close pasa la corrida a CLOSED. Solo válido desde DRAFT.
func (r *ReplenishmentRun) Close(actorID int64, at time.Time) bool {
	if r.Status != RunStatusDraft {
		return false
	}
	r.Status = RunStatusClosed
	r.ClosedBy = &actorID
	r.ClosedAt = &at
	return true
}
