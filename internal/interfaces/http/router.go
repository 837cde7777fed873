package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoques-api/internal/application/audit"
	"github.com/jhoicas/estoques-api/internal/application/inventory"
	"github.com/jhoicas/estoques-api/internal/application/order"
	"github.com/jhoicas/estoques-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC        *usecase.ProductUseCase
	StockUC          *usecase.StockUseCase
	StoreUC          *usecase.StoreUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	MovementQuery    *inventory.MovementQueryUseCase
	OrderUC          *order.OrderUseCase
	AuditQuery       *audit.QueryUseCase
	JWTSecret        string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Movimientos antes de /stocks/:id para que no los capture el parámetro.
	stocks := api.Group("/stocks")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.MovementQuery)
	stocks.Post("/movements", inventoryHandler.RegisterMovement)
	stocks.Get("/movements", inventoryHandler.ListMovements)
	stocks.Get("/movements/product/:id", inventoryHandler.ListByProduct)
	stocks.Get("/movements/:id", inventoryHandler.GetMovement)

	stockHandler := NewStockHandler(deps.StockUC)
	stocks.Post("/product", stockHandler.AddProduct)
	stocks.Post("/", stockHandler.Create)
	stocks.Get("/", stockHandler.List)
	stocks.Get("/:id", stockHandler.GetByID)
	stocks.Put("/:id", stockHandler.Update)
	stocks.Delete("/:id", stockHandler.Delete)

	stores := api.Group("/stores")
	storeHandler := NewStoreHandler(deps.StoreUC)
	stores.Post("/", storeHandler.Create)
	stores.Get("/", storeHandler.List)
	stores.Get("/:id", storeHandler.GetByID)
	stores.Put("/:id", storeHandler.Update)
	stores.Delete("/:id", storeHandler.Delete)

	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Patch("/items/:id", orderHandler.PatchItem)
	orders.Delete("/items/:id", orderHandler.DeleteItem)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id", orderHandler.Update)
	orders.Delete("/:id", orderHandler.Delete)
	orders.Patch("/:id/finalize", orderHandler.Finalize)
	orders.Post("/:id/checkout", orderHandler.Checkout)
	orders.Patch("/:id/total", orderHandler.RecalculateTotal)
	orders.Get("/:id/items", orderHandler.ListItems)
	orders.Post("/:id/items", orderHandler.AddItem)

	auditHandler := NewAuditHandler(deps.AuditQuery)
	api.Get("/auditoria", auditHandler.List)
	api.Get("/auditoria/:kind", auditHandler.List)
	api.Get("/auditoria/:kind/:id", auditHandler.List)
}
