package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Repuestos-api/internal/application/replenishment"
	"github.com/jhoicas/Repuestos-api/internal/application/sales"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger       *inventory.StockLedgerUseCase
	ConfirmSale  *sales.ConfirmSaleUseCase
	Runs         *replenishment.RunUseCase
	LowStock     *replenishment.LowStockUseCase
	Requisitions *replenishment.RequisitionUseCase
	JWTSecret    string
	JWTIssuer    string
	Log          zerolog.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	salesHandler := NewSalesHandler(deps.ConfirmSale, deps.Log)
	api.Post("/sales/:id/confirm", salesHandler.Confirm)

	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Log)
	inv.Get("/stock", inventoryHandler.GetStock)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/balances/verify", inventoryHandler.VerifyBalance)
	inv.Post("/adjustments", inventoryHandler.RegisterAdjustment)
	inv.Post("/receipts", inventoryHandler.RegisterReceipt)

	// Las rutas fijas van antes de /runs/:id
	repl := api.Group("/replenishment")
	replHandler := NewReplenishmentHandler(deps.Runs, deps.Log)
	repl.Post("/runs", replHandler.GenerateRun)
	repl.Get("/runs", replHandler.ListRuns)
	repl.Get("/runs/draft", replHandler.GetDraft)
	repl.Get("/runs/last-closed", replHandler.GetLastClosed)
	repl.Get("/runs/:id", replHandler.GetRun)
	repl.Post("/runs/:id/close", replHandler.CloseRun)
	repl.Get("/backlog", replHandler.ListBacklog)

	reqs := api.Group("/requisitions")
	reqHandler := NewRequisitionHandler(deps.LowStock, deps.Requisitions, deps.Log)
	reqs.Post("/low-stock", reqHandler.GenerateLowStock)
	reqs.Get("/:id", reqHandler.GetByID)
}
