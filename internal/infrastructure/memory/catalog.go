package memory

import (
	"context"
	"slices"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.WarehouseRepository     = (*WarehouseRepo)(nil)
	_ repository.SupplierOfferRepository = (*OfferRepo)(nil)
	_ repository.SaleRepository          = (*SaleRepo)(nil)
)

type ProductRepo struct{ db db }

func (r *ProductRepo) GetByID(_ context.Context, id int64) (p *entity.Product, err error) {
	err = r.db.with(func(s *state) error {
		if v, ok := s.products[id]; ok {
			p = &v
		}
		return nil
	})
	return p, err
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (p *entity.Product, err error) {
	err = r.db.with(func(s *state) error {
		for _, v := range s.products {
			if v.SKU == sku {
				p = &v
				return nil
			}
		}
		return nil
	})
	return p, err
}

func (r *ProductRepo) UpdateCost(_ context.Context, productID int64, cost decimal.Decimal) error {
	return r.db.with(func(s *state) error {
		p, ok := s.products[productID]
		if !ok {
			return nil
		}
		p.Cost = cost
		s.products[productID] = p
		return nil
	})
}

func (r *ProductRepo) MirrorLegacyStock(_ context.Context, productID int64, qty decimal.Decimal) error {
	return r.db.with(func(s *state) error {
		p, ok := s.products[productID]
		if !ok {
			return nil
		}
		p.StockDisponible = &qty
		s.products[productID] = p
		return nil
	})
}

func (r *ProductRepo) ListBelowMinimum(_ context.Context, defaultMinimum decimal.Decimal) (out []*entity.Product, err error) {
	err = r.db.with(func(s *state) error {
		for _, p := range s.products {
			if !p.StockControlado {
				continue
			}
			current := decimal.Zero
			if p.StockDisponible != nil {
				current = *p.StockDisponible
			}
			minimum := defaultMinimum
			if p.StockMinimo != nil {
				minimum = *p.StockMinimo
			}
			if current.LessThanOrEqual(minimum) {
				v := p
				out = append(out, &v)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Product) int { return cmpInt64(a.ID, b.ID) })
	return out, err
}

type WarehouseRepo struct{ db db }

func (r *WarehouseRepo) GetByID(_ context.Context, id int64) (w *entity.Warehouse, err error) {
	err = r.db.with(func(s *state) error {
		if v, ok := s.warehouses[id]; ok {
			w = &v
		}
		return nil
	})
	return w, err
}

type OfferRepo struct{ db db }

func (r *OfferRepo) ListCheapestActive(_ context.Context, productID int64) (out []entity.SupplierOffer, err error) {
	err = r.db.with(func(s *state) error {
		var best *decimal.Decimal
		for _, o := range s.offers {
			if o.ProductID != productID || !o.Active {
				continue
			}
			if best == nil || o.ListPrice.LessThan(*best) {
				price := o.ListPrice
				best = &price
			}
		}
		if best == nil {
			return nil
		}
		for _, o := range s.offers {
			if o.ProductID == productID && o.Active && o.ListPrice.Equal(*best) {
				o.SupplierName = s.suppliers[o.SupplierID].Name
				out = append(out, o)
			}
		}
		return nil
	})
	return out, err
}

type SaleRepo struct{ db db }

func (r *SaleRepo) GetByIDForUpdate(_ context.Context, id int64) (sale *entity.Sale, err error) {
	err = r.db.with(func(s *state) error {
		v, ok := s.sales[id]
		if !ok {
			return nil
		}
		v.Items = nil
		for _, it := range s.saleItems {
			if it.SaleID == id {
				v.Items = append(v.Items, it)
			}
		}
		slices.SortFunc(v.Items, func(a, b entity.SaleItem) int { return cmpInt64(a.ID, b.ID) })
		sale = &v
		return nil
	})
	return sale, err
}

func (r *SaleRepo) SetItemProduct(_ context.Context, itemID, productID int64) error {
	return r.db.with(func(s *state) error {
		it, ok := s.saleItems[itemID]
		if !ok {
			return nil
		}
		it.ProductID = &productID
		s.saleItems[itemID] = it
		return nil
	})
}

func (r *SaleRepo) MarkOutflowApplied(_ context.Context, outflow *entity.SaleOutflow) (first bool, err error) {
	err = r.db.with(func(s *state) error {
		if _, ok := s.outflows[outflow.SaleID]; ok {
			return nil
		}
		s.outflows[outflow.SaleID] = *outflow
		first = true
		return nil
	})
	return first, err
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
