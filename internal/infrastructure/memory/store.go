// Package memory implementa los repositorios y el TxRunner en memoria, para desarrollo local
// (STORE_DRIVER=memory) y para las pruebas de los casos de uso.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/Repuestos-api/internal/application/ports"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

// state son las tablas. Los mapas guardan valores, no punteros: clonar los mapas basta para
// aislar una transacción.
type state struct {
	seq map[string]int64

	products     map[int64]entity.Product
	warehouses   map[int64]entity.Warehouse
	suppliers    map[int64]entity.Supplier
	offers       []entity.SupplierOffer
	sales        map[int64]entity.Sale // sin Items; las líneas viven en saleItems
	saleItems    map[int64]entity.SaleItem
	outflows     map[int64]entity.SaleOutflow
	balances     map[string]entity.StockBalance
	movements    []entity.StockMovement
	backlogs     map[int64]entity.ReplenishmentBacklog
	events       []entity.ReplenishmentEvent
	runs         map[int64]entity.ReplenishmentRun
	requisitions map[int64]entity.PurchaseRequisition // sin Items
	reqItems     []entity.PurchaseRequisitionItem
}

func newState() *state {
	return &state{
		seq:          make(map[string]int64),
		products:     make(map[int64]entity.Product),
		warehouses:   make(map[int64]entity.Warehouse),
		suppliers:    make(map[int64]entity.Supplier),
		sales:        make(map[int64]entity.Sale),
		saleItems:    make(map[int64]entity.SaleItem),
		outflows:     make(map[int64]entity.SaleOutflow),
		balances:     make(map[string]entity.StockBalance),
		backlogs:     make(map[int64]entity.ReplenishmentBacklog),
		runs:         make(map[int64]entity.ReplenishmentRun),
		requisitions: make(map[int64]entity.PurchaseRequisition),
	}
}

func (s *state) clone() *state {
	return &state{
		seq:          maps.Clone(s.seq),
		products:     maps.Clone(s.products),
		warehouses:   maps.Clone(s.warehouses),
		suppliers:    maps.Clone(s.suppliers),
		offers:       slices.Clone(s.offers),
		sales:        maps.Clone(s.sales),
		saleItems:    maps.Clone(s.saleItems),
		outflows:     maps.Clone(s.outflows),
		balances:     maps.Clone(s.balances),
		movements:    slices.Clone(s.movements),
		backlogs:     maps.Clone(s.backlogs),
		events:       slices.Clone(s.events),
		runs:         maps.Clone(s.runs),
		requisitions: maps.Clone(s.requisitions),
		reqItems:     slices.Clone(s.reqItems),
	}
}

func (s *state) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// Store base de datos en memoria. Las transacciones se serializan con un único candado de
// escritura y trabajan sobre una copia que se publica solo en el commit.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Run ejecuta fn sobre una copia del estado; si fn devuelve nil la copia reemplaza al estado.
// Un pánico dentro de fn descarta la copia.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(reposFor(work, nil)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.data = work
	return nil
}

// Repos devuelve repositorios fuera de transacción: cada llamada toma el candado del store.
// No se deben usar dentro de Run (el candado no es reentrante).
func (s *Store) Repos() repository.Repos {
	return reposFor(nil, s)
}

// Counts número de filas por tabla, para diagnóstico y pruebas.
func (s *Store) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.data
	return map[string]int{
		"products":                   len(d.products),
		"sales":                      len(d.sales),
		"stock_movements":            len(d.movements),
		"stock_balances":             len(d.balances),
		"replenishment_backlog":      len(d.backlogs),
		"replenishment_events":       len(d.events),
		"replenishment_runs":         len(d.runs),
		"purchase_requisitions":      len(d.requisitions),
		"purchase_requisition_items": len(d.reqItems),
	}
}

// db da acceso al estado: el de la transacción, o el publicado bajo candado.
type db struct {
	tx    *state
	store *Store
}

func (d db) with(fn func(s *state) error) error {
	if d.tx != nil {
		return fn(d.tx)
	}
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	return fn(d.store.data)
}

func reposFor(tx *state, store *Store) repository.Repos {
	d := db{tx: tx, store: store}
	return repository.Repos{
		Products:     &ProductRepo{d},
		Warehouses:   &WarehouseRepo{d},
		Balances:     &BalanceRepo{d},
		Movements:    &MovementRepo{d},
		Sales:        &SaleRepo{d},
		Offers:       &OfferRepo{d},
		Backlogs:     &BacklogRepo{d},
		Events:       &EventRepo{d},
		Runs:         &RunRepo{d},
		Requisitions: &RequisitionRepo{d},
	}
}
