package memory

import (
	"time"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AddProduct inserta un producto; asigna ID si viene en cero.
func (s *Store) AddProduct(p entity.Product) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.data.next("products")
	}
	s.data.products[p.ID] = p
	return p.ID
}

// AddWarehouse inserta una bodega.
func (s *Store) AddWarehouse(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.data.next("warehouses")
	s.data.warehouses[id] = entity.Warehouse{ID: id, Name: name, CreatedAt: time.Now()}
	return id
}

// AddSupplier inserta un proveedor.
func (s *Store) AddSupplier(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.data.next("suppliers")
	s.data.suppliers[id] = entity.Supplier{ID: id, Name: name, CreatedAt: time.Now()}
	return id
}

// AddOffer agrega una fila a la tabla de precios producto-proveedor.
func (s *Store) AddOffer(productID, supplierID int64, listPrice decimal.Decimal, active bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.data.next("product_suppliers")
	s.data.offers = append(s.data.offers, entity.SupplierOffer{
		ID: id, ProductID: productID, SupplierID: supplierID, ListPrice: listPrice, Active: active,
	})
	return id
}

// AddSale inserta una venta con sus líneas y devuelve su ID.
func (s *Store) AddSale(sale entity.Sale) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale.ID = s.data.next("sales")
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}
	for _, it := range sale.Items {
		it.ID = s.data.next("sale_items")
		it.SaleID = sale.ID
		s.data.saleItems[it.ID] = it
	}
	sale.Items = nil
	s.data.sales[sale.ID] = sale
	return sale.ID
}

// SeedDemo carga un catálogo mínimo para levantar la API sin base de datos.
func SeedDemo(s *Store) {
	wh := s.AddWarehouse("Bodega principal")
	frenos := s.AddSupplier("Frenos del Norte")
	lubri := s.AddSupplier("Lubricantes Andinos")

	two := decimal.NewFromInt(2)
	pastillas := s.AddProduct(entity.Product{SKU: "FRN-PAS-001", Name: "Pastillas de freno delanteras",
		Cost: decimal.NewFromInt(45000), StockControlado: true, StockMinimo: &two, CreatedAt: time.Now()})
	aceite := s.AddProduct(entity.Product{SKU: "LUB-ACE-20W50", Name: "Aceite 20W50 galón",
		Cost: decimal.NewFromInt(68000), StockControlado: true, CreatedAt: time.Now()})
	bujia := s.AddProduct(entity.Product{SKU: "ENC-BUJ-014", Name: "Bujía iridio",
		Cost: decimal.NewFromInt(18000), StockControlado: false, CreatedAt: time.Now()})

	s.AddOffer(pastillas, frenos, decimal.NewFromInt(52000), true)
	s.AddOffer(aceite, lubri, decimal.NewFromInt(71000), true)
	s.AddOffer(aceite, frenos, decimal.NewFromInt(75000), true)

	s.AddSale(entity.Sale{Number: "POS-0001", WarehouseID: &wh, Items: []entity.SaleItem{
		{ProductID: &pastillas, Description: "Pastillas de freno delanteras", Quantity: decimal.NewFromInt(2)},
		{SKU: "LUB-ACE-20W50", Quantity: decimal.NewFromInt(1)},
		{ProductID: &bujia, Quantity: decimal.NewFromInt(4)},
	}})
}
