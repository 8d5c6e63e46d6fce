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
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
	"github.com/jhoicas/ventas-cfdi/internal/application/inventory"
	"github.com/jhoicas/ventas-cfdi/internal/application/sales"
	"github.com/jhoicas/ventas-cfdi/internal/domain/fiscal"
	"github.com/jhoicas/ventas-cfdi/internal/infrastructure/lock"
	"github.com/jhoicas/ventas-cfdi/internal/infrastructure/pac"
	infrapdf "github.com/jhoicas/ventas-cfdi/internal/infrastructure/pdf"
	"github.com/jhoicas/ventas-cfdi/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/ventas-cfdi/internal/interfaces/http"
	"github.com/jhoicas/ventas-cfdi/pkg/config"
	"github.com/jhoicas/ventas-cfdi/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("pac_mode", cfg.PAC.Mode).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool)
	repos := txRunner.Repos()
	ledger := inventory.NewLedger()

	createSaleUC := sales.NewCreateSaleUseCase(txRunner, ledger, repos.Customers, repos.Products, repos.Sales)
	quotationUC := sales.NewQuotationUseCase(txRunner, createSaleUC, repos.Customers, repos.Products, repos.Quotations)
	adjustStockUC := inventory.NewAdjustStockUseCase(txRunner, ledger, repos.Products, repos.Movements)

	// Candado por factura: Redis si hay dirección (varias réplicas), si no en proceso.
	var locker billing.Locker
	if cfg.Redis.Addr != "" {
		redisLocker, err := lock.NewRedisLocker(lock.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisLocker.Close()
		locker = redisLocker
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: candado de timbrado en proceso, no usar con varias réplicas")
		locker = lock.NewLocalLocker()
	}

	pacGateway, err := pac.NewGateway(pac.Config{
		Mode:            cfg.PAC.Mode,
		SandboxURL:      cfg.PAC.SandboxURL,
		ProductionURL:   cfg.PAC.ProductionURL,
		User:            cfg.PAC.User,
		Password:        cfg.PAC.Password,
		Timeout:         cfg.PAC.Timeout,
		VerificationURL: cfg.Fiscal.VerificationURL,
	}, log.Component("pac"))
	if err != nil {
		log.Fatal().Err(err).Msg("configurar PAC")
	}

	invoiceSvc := billing.NewInvoiceService(billing.ServiceDeps{
		TxRunner:     txRunner,
		InvoiceRepo:  repos.Invoices,
		SaleRepo:     repos.Sales,
		CustomerRepo: repos.Customers,
		ProductRepo:  repos.Products,
		CompanyRepo:  repos.Companies,
		Signer:       pac.NewSealer(),
		PAC:          pacGateway,
		Locker:       locker,
		Logger:       log.Component("billing"),
	}, billing.Config{
		PACTimeout: cfg.PAC.Timeout,
		LockTTL:    cfg.Fiscal.LockTTL,
		Validation: fiscal.Options{
			MinAmount: cfg.Fiscal.MinAmount,
			MaxAmount: cfg.Fiscal.MaxAmount,
		},
	})
	invoicePDFUC := billing.NewPDFUseCase(invoiceSvc, infrapdf.NewMarotoRenderer())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.PAC.Timeout + 10*time.Second,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Ventas CFDI API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateSale:  createSaleUC,
		Quotations:  quotationUC,
		AdjustStock: adjustStockUC,
		Invoices:    invoiceSvc,
		PDF:         invoicePDFUC,
		JWTSecret:   cfg.JWT.Secret,
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

	// Da tiempo a que terminen los timbrados en curso (el PAC corre con su propio timeout).
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.PAC.Timeout+5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
