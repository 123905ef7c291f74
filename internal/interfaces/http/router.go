package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger     *inventory.StockLedger
	UDCs       *inventory.UDCCapacityManager
	Counts     *inventory.ReconciliationUseCase
	CountSheet *inventory.CountSheetUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1", TenantMiddleware())

	movementHandler := NewMovementHandler(deps.Ledger)
	api.Post("/movements", movementHandler.Create)
	api.Post("/movements/:id/approve", movementHandler.Approve)
	api.Post("/movements/:id/reject", movementHandler.Reject)
	api.Get("/products/:productID/movements", movementHandler.History)

	stockHandler := NewStockHandler(deps.Ledger)
	api.Get("/stock/low", stockHandler.LowStock)
	api.Get("/stock/:productID", stockHandler.Get)

	// UDC: recurso físico compartido por todos los committenti del almacén
	udcHandler := NewUDCHandler(deps.UDCs)
	api.Get("/udcs/available", udcHandler.Available)
	api.Get("/udcs/:id", udcHandler.Get)
	api.Post("/udcs/:id/place", udcHandler.Place)
	api.Post("/udcs/:id/remove", udcHandler.Remove)
	api.Post("/udcs/:id/block", udcHandler.Block)

	countHandler := NewCountHandler(deps.Counts, deps.CountSheet)
	api.Post("/counts", countHandler.Open)
	api.Get("/counts/:id", countHandler.Get)
	api.Post("/counts/:id/start", countHandler.Start)
	api.Put("/counts/:id/lines/:productID", countHandler.RecordCount)
	api.Post("/counts/:id/close", countHandler.Close)
	api.Get("/counts/:id/sheet.pdf", countHandler.SheetPDF)
}
