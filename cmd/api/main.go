package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mbenitez/factupos-api/internal/application/auth"
	"github.com/mbenitez/factupos-api/internal/application/catalog"
	"github.com/mbenitez/factupos-api/internal/application/closing"
	"github.com/mbenitez/factupos-api/internal/application/sales"
	"github.com/mbenitez/factupos-api/internal/application/timbrados"
	"github.com/mbenitez/factupos-api/internal/infrastructure/postgres"
	"github.com/mbenitez/factupos-api/internal/infrastructure/printer"
	httpRouter "github.com/mbenitez/factupos-api/internal/interfaces/http"
	"github.com/mbenitez/factupos-api/pkg/config"
	"github.com/mbenitez/factupos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		App:   cfg.App.Name,
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	saleRepo := postgres.NewSaleRepository(pool)
	counterRepo := postgres.NewCounterRepository(pool)
	timbradoRepo := postgres.NewTimbradoRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	closingRepo := postgres.NewCashClosingRepository(pool)

	printerSvc := printer.New(printer.Config{
		Enabled:   cfg.Printer.Enabled,
		BridgeURL: cfg.Printer.BridgeURL,
		Timeout:   cfg.Printer.Timeout,
		QueueSize: cfg.Printer.QueueSize,
	}, log)
	defer printerSvc.Close()

	timbradoUC := timbrados.NewUseCase(timbradoRepo)
	salesUC := sales.NewUseCase(saleRepo, counterRepo, timbradoUC, printerSvc, log, cfg.Sales.DefaultStatus)
	closingUC := closing.NewUseCase(closingRepo, saleRepo)
	productUC := catalog.NewProductUseCase(productRepo)
	categoryUC := catalog.NewCategoryUseCase(categoryRepo)
	customerUC := catalog.NewCustomerUseCase(customerRepo)
	authUC := auth.NewUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "FactuPOS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SalesUC:    salesUC,
		TimbradoUC: timbradoUC,
		ClosingUC:  closingUC,
		ProductUC:  productUC,
		CategoryUC: categoryUC,
		CustomerUC: customerUC,
		AuthUC:     authUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
