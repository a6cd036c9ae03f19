package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Operaciones-api/internal/application/inventory"
	"github.com/jhoicas/Operaciones-api/internal/application/usecase"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Lifecycle *inventory.LifecycleUseCase
	Projector *inventory.StockLevelProjector
	Voucher   *inventory.VoucherUseCase
	CatalogUC *usecase.CatalogUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Transacciones de stock
	inv := protected.Group("/inventory")
	txHandler := NewTransactionHandler(deps.Lifecycle, deps.Voucher)
	inv.Post("/transactions", RequireRole(editRoles...), txHandler.Create)
	inv.Get("/transactions", txHandler.List)
	inv.Get("/transactions/:id", txHandler.GetByID)
	// la autorización por estado destino la resuelve el handler
	inv.Patch("/transactions/:id", txHandler.Transition)
	inv.Put("/transactions/:id", txHandler.Transition)
	if deps.Voucher != nil {
		inv.Get("/transactions/:id/pdf", txHandler.DownloadPDF)
	}

	// Niveles de stock
	stockHandler := NewStockLevelHandler(deps.Projector)
	inv.Get("/stock-levels/:itemId/:locationId", stockHandler.Get)
	inv.Post("/stock-levels/:itemId/:locationId/recompute", RequireRole(entity.RoleRoot, entity.RoleManager), stockHandler.Recompute)

	// Catálogo (solo lectura)
	if deps.CatalogUC != nil {
		catalog := protected.Group("/catalog")
		catalogHandler := NewCatalogHandler(deps.CatalogUC)
		catalog.Get("/items", catalogHandler.ListItems)
		catalog.Get("/items/:id", catalogHandler.GetItem)
		catalog.Get("/locations/:id", catalogHandler.GetLocation)
		catalog.Get("/warehouses/:warehouseId/locations", catalogHandler.ListLocations)
	}
}
