package repository

// Repos agrupa los repositorios atados a una misma transacción (o al pool fuera de ella).
type Repos struct {
	Products     ProductRepository
	Warehouses   WarehouseRepository
	Balances     StockBalanceRepository
	Movements    StockMovementRepository
	Sales        SaleRepository
	Offers       SupplierOfferRepository
	Backlogs     BacklogRepository
	Events       ReplenishmentEventRepository
	Runs         ReplenishmentRunRepository
	Requisitions PurchaseRequisitionRepository
}
