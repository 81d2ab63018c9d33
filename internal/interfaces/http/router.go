package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mbenitez/factupos-api/internal/application/auth"
	"github.com/mbenitez/factupos-api/internal/application/catalog"
	"github.com/mbenitez/factupos-api/internal/application/closing"
	"github.com/mbenitez/factupos-api/internal/application/sales"
	"github.com/mbenitez/factupos-api/internal/application/timbrados"
	"github.com/mbenitez/factupos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SalesUC    *sales.UseCase
	TimbradoUC *timbrados.UseCase
	ClosingUC  *closing.UseCase
	ProductUC  *catalog.ProductUseCase
	CategoryUC *catalog.CategoryUseCase
	CustomerUC *catalog.CustomerUseCase
	AuthUC     *auth.UseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	adminOnly := RequireRole(entity.RoleAdmin, entity.RoleSpAdmin)

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Sales (protegido)
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SalesUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.Get)
	salesGroup.Put("/:id", saleHandler.Update)
	salesGroup.Patch("/:id/status", saleHandler.UpdateStatus)
	salesGroup.Patch("/:id/ready", saleHandler.MarkReady)
	salesGroup.Post("/:id/invoice", saleHandler.Invoice)
	salesGroup.Post("/:id/payments", saleHandler.AddPayment)

	// Timbrados (protegido; alta solo admin)
	timbradosGroup := protected.Group("/timbrados")
	timbradoHandler := NewTimbradoHandler(deps.TimbradoUC)
	timbradosGroup.Post("/", adminOnly, timbradoHandler.Register)
	timbradosGroup.Get("/", timbradoHandler.List)
	timbradosGroup.Get("/active", timbradoHandler.Active)

	// Cash closings (protegido)
	closingsGroup := protected.Group("/cash-closings")
	closingHandler := NewClosingHandler(deps.ClosingUC)
	closingsGroup.Post("/", closingHandler.Open)
	closingsGroup.Get("/", adminOnly, closingHandler.List)
	closingsGroup.Get("/current", closingHandler.Current)
	closingsGroup.Patch("/:id/close", closingHandler.Close)

	// Products (protegido; escritura solo admin)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// Categories (protegido; escritura solo admin)
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", adminOnly, categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Put("/:id", adminOnly, categoryHandler.Update)
	categories.Delete("/:id", adminOnly, categoryHandler.Delete)

	// Customers (protegido)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Delete("/:id", adminOnly, customerHandler.Delete)
}
