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

	_ "github.com/jhoicas/biomed-stock/docs"
	appanalytics "github.com/jhoicas/biomed-stock/internal/application/analytics"
	"github.com/jhoicas/biomed-stock/internal/application/auth"
	"github.com/jhoicas/biomed-stock/internal/application/documents"
	"github.com/jhoicas/biomed-stock/internal/application/inventory"
	"github.com/jhoicas/biomed-stock/internal/application/ports"
	"github.com/jhoicas/biomed-stock/internal/application/usecase"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
	"github.com/jhoicas/biomed-stock/internal/infrastructure/cache"
	"github.com/jhoicas/biomed-stock/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/biomed-stock/internal/infrastructure/pdf"
	"github.com/jhoicas/biomed-stock/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/biomed-stock/internal/interfaces/http"
	"github.com/jhoicas/biomed-stock/pkg/config"
	"github.com/jhoicas/biomed-stock/pkg/logger"
)

// backend repositorios de la fuente de datos elegida por DB_DRIVER.
type backend struct {
	tx         repository.TxRunner
	products   repository.ProductRepository
	movements  repository.StockMovementRepository
	documents  repository.DocumentRepository
	customers  repository.CustomerRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	analytics  repository.AnalyticsRepository
	close      func()
}

// @title        Biomed Stock API
// @version      1.0
// @description  Inventario, ventas, pedidos y cotizaciones de equipos biomédicos.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir base de datos")
	}
	defer be.close()

	idem, closeIdem, err := openIdempotency(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de idempotencia")
	}
	defer closeIdem()

	ledger := inventory.NewStockLedger(be.tx, be.products, be.movements, log.Component("ledger"))
	replenishmentUC := inventory.NewReplenishmentUseCase(be.products, be.analytics)
	reconciler := documents.NewReconciler(be.tx, ledger, log.Component("reconciler"))
	documentSvc := documents.NewService(be.tx, reconciler, be.documents, be.products, be.customers, log.Component("documents"))
	documentPDF := documents.NewPDFUseCase(be.documents, be.customers, be.products, infrapdf.NewMarotoPDFGenerator(cfg.Documents), cfg.Documents.VATRate)

	productUC := usecase.NewProductUseCase(be.tx, be.products, be.categories, ledger, log.Component("products"))
	customerUC := usecase.NewCustomerUseCase(be.customers)
	userUC := usecase.NewUserUseCase(be.users)
	dashboardUC := appanalytics.NewDashboardUseCase(be.analytics, be.documents, replenishmentUC, ledger)

	authUC := auth.NewAuthUseCase(be.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))
	if err := authUC.EnsureManager(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("crear gerente inicial")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Biomed Stock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "db": cfg.DB.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		UserUC:         userUC,
		ProductUC:      productUC,
		CustomerUC:     customerUC,
		Ledger:         ledger,
		Replenishment:  replenishmentUC,
		Documents:      documentSvc,
		DocumentPDF:    documentPDF,
		DashboardUC:    dashboardUC,
		Idempotency:    idem,
		IdempotencyTTL: time.Duration(cfg.Redis.IdempotencyTTL) * time.Second,
		JWTSecret:      cfg.JWT.Secret,
		Log:            log.Component("http"),
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

// openBackend con "postgres" aplica las migraciones embebidas antes de abrir el pool.
func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.DB.Driver == "memory" {
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &backend{
			tx:         store,
			products:   store.Products(),
			movements:  store.Movements(),
			documents:  store.Documents(),
			customers:  store.Customers(),
			users:      store.Users(),
			categories: store.Categories(),
			analytics:  store.Analytics(),
			close:      func() {},
		}, nil
	}

	migrator, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Component("migrate"))
	if err != nil {
		return nil, err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return nil, err
	}
	if err := migrator.Close(); err != nil {
		log.Warn().Err(err).Msg("cerrar migrador")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &backend{
		tx:         postgres.NewTxRunner(pool),
		products:   postgres.NewProductRepository(pool),
		movements:  postgres.NewStockMovementRepository(pool),
		documents:  postgres.NewDocumentRepository(pool),
		customers:  postgres.NewCustomerRepository(pool),
		users:      postgres.NewUserRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		analytics:  postgres.NewAnalyticsRepository(pool),
		close:      pool.Close,
	}, nil
}

// openIdempotency Redis si REDIS_ADDR está definido; si no, mapa en memoria (una sola instancia).
func openIdempotency(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.IdempotencyStore, func(), error) {
	if cfg.Redis.Addr == "" {
		store := cache.NewInMemoryIdempotencyStore(time.Minute)
		return store, func() { _ = store.Close() }, nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotencia en Redis")
	store := cache.NewRedisIdempotencyStore(client, "")
	return store, func() { _ = store.Close() }, nil
}
