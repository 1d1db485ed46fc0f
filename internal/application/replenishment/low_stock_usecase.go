package replenishment

import (
	"context"
	"fmt"

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

// LowStockUseCase genera una requisición directa con los productos bajo su mínimo.
// No usa ventanas, eventos ni corridas.
type LowStockUseCase struct {
	txRunner       ports.TxRunner
	defaultMinimum decimal.Decimal
	now            ports.Clock
	log            zerolog.Logger
}

// NewLowStockUseCase construye el generador. defaultMinimum <= 0 usa domrep.DefaultMinimum.
func NewLowStockUseCase(txRunner ports.TxRunner, defaultMinimum decimal.Decimal, now ports.Clock, log zerolog.Logger) *LowStockUseCase {
	if !defaultMinimum.GreaterThan(decimal.Zero) {
		defaultMinimum = domrep.DefaultMinimum
	}
	return &LowStockUseCase{
		txRunner:       txRunner,
		defaultMinimum: defaultMinimum,
		now:            now,
		log:            log,
	}
}

// GenerateLowStockRequisition crea una requisición con una línea por producto bajo mínimo.
// windowDays se acepta por compatibilidad con la API y no interviene en el cálculo.
// Devuelve nil sin error cuando ningún producto califica.
func (uc *LowStockUseCase) GenerateLowStockRequisition(ctx context.Context, actorID int64, windowDays int) (req *entity.PurchaseRequisition, err error) {
	ctx, span := telemetry.StartSpan(ctx, "replenishment.low_stock_requisition",
		attribute.Int64("actor_id", actorID), attribute.Int("window_days", windowDays))
	defer telemetry.End(span, &err)

	if windowDays < 0 {
		return nil, domain.ErrInvalidInput
	}

	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		products, err := repos.Products.ListBelowMinimum(ctx, uc.defaultMinimum)
		if err != nil {
			return err
		}
		var suggestions []domrep.LowStockSuggestion
		for _, p := range products {
			if s, ok := domrep.SuggestLowStock(p, uc.defaultMinimum); ok {
				suggestions = append(suggestions, s)
			}
		}
		if len(suggestions) == 0 {
			return nil
		}

		r := &entity.PurchaseRequisition{
			Status:       entity.RequisitionStatusDraft,
			Origin:       entity.RequisitionOriginLowStock,
			SupplierName: entity.UnassignedSupplierName,
			Notes:        fmt.Sprintf("Requisición por stock bajo: %d productos", len(suggestions)),
			CreatedBy:    actorID,
			CreatedAt:    uc.now(),
		}
		if err := repos.Requisitions.Create(ctx, r); err != nil {
			return err
		}
		for _, s := range suggestions {
			snapshot := s.Current
			item := &entity.PurchaseRequisitionItem{
				RequisitionID: r.ID,
				ProductID:     s.ProductID,
				Quantity:      s.Quantity,
				Reason:        s.Reason,
				StockSnapshot: &snapshot,
			}
			if err := repos.Requisitions.CreateItem(ctx, item); err != nil {
				return err
			}
			r.Items = append(r.Items, *item)
		}
		req = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if req == nil {
		uc.log.Debug().Msg("ningún producto bajo mínimo")
		return nil, nil
	}
	uc.log.Info().Int64("requisition_id", req.ID).Int("items", len(req.Items)).Msg("requisición por stock bajo generada")
	return req, nil
}

// RequisitionUseCase lectura de requisiciones.
type RequisitionUseCase struct {
	repo repository.PurchaseRequisitionRepository
}

func NewRequisitionUseCase(repo repository.PurchaseRequisitionRepository) *RequisitionUseCase {
	return &RequisitionUseCase{repo: repo}
}

// GetRequisition devuelve la requisición con sus líneas o ErrNotFound.
func (uc *RequisitionUseCase) GetRequisition(ctx context.Context, id int64) (*entity.PurchaseRequisition, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidInput
	}
	req, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}
