package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/biomed-stock/internal/application/analytics"
	"github.com/jhoicas/biomed-stock/internal/application/auth"
	"github.com/jhoicas/biomed-stock/internal/application/documents"
	"github.com/jhoicas/biomed-stock/internal/application/inventory"
	"github.com/jhoicas/biomed-stock/internal/application/ports"
	"github.com/jhoicas/biomed-stock/internal/application/usecase"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	UserUC         *usecase.UserUseCase
	ProductUC      *usecase.ProductUseCase
	CustomerUC     *usecase.CustomerUseCase
	Ledger         *inventory.StockLedger
	Replenishment  *inventory.ReplenishmentUseCase
	Documents      *documents.Service
	DocumentPDF    *documents.PDFUseCase
	DashboardUC    *appanalytics.DashboardUseCase
	Idempotency    ports.IdempotencyStore
	IdempotencyTTL time.Duration
	JWTSecret      string
	Log            zerolog.Logger
}

const (
	manager  = entity.RoleManager
	showroom = entity.RoleCommercialShowroom
	terrain  = entity.RoleCommercialTerrain
	tech     = entity.RoleTechnician
)

// Router registra las rutas de la API. Permisos por perfil:
// gerente todo; técnico catálogo y stock; comercial de sala ventas y pedidos;
// comercial de terreno cotizaciones; ambos comerciales clientes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (login público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	allRoles := RequireRole(manager, showroom, terrain, tech)
	onlyManager := RequireRole(manager)

	protected.Post("/auth/register", onlyManager, authHandler.Register)

	userHandler := NewUserHandler(deps.UserUC)
	users := protected.Group("/users", onlyManager)
	users.Get("/", userHandler.List)
	users.Patch("/:id/active", userHandler.SetActive)

	// Catálogo: lectura para todos, escritura gerente y técnico
	productHandler := NewProductHandler(deps.ProductUC, deps.Ledger, deps.Replenishment)
	catalogWrite := RequireRole(manager, tech)
	products := protected.Group("/products")
	products.Get("/", allRoles, productHandler.List)
	products.Get("/low-stock", allRoles, productHandler.LowStock)
	products.Post("/", catalogWrite, productHandler.Create)
	products.Get("/:id", allRoles, productHandler.GetByID)
	products.Put("/:id", catalogWrite, productHandler.Update)
	products.Delete("/:id", onlyManager, productHandler.Delete)
	products.Get("/:id/movements", catalogWrite, productHandler.Movements)
	products.Get("/:id/ledger", catalogWrite, productHandler.Ledger)

	categories := protected.Group("/categories")
	categories.Get("/", allRoles, productHandler.Categories)
	categories.Post("/", catalogWrite, productHandler.CreateCategory)

	stockHandler := NewStockHandler(deps.Ledger)
	stock := protected.Group("/stock", catalogWrite)
	stock.Get("/movements", stockHandler.List)
	stock.Post("/movements", IdempotencyMiddleware(deps.Idempotency, deps.IdempotencyTTL, deps.Log), stockHandler.RegisterMovement)

	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers := protected.Group("/customers", RequireRole(manager, showroom, terrain))
	customers.Get("/", customerHandler.List)
	customers.Post("/", customerHandler.Create)
	customers.Get("/:id", customerHandler.GetByID)

	// Documentos con líneas
	idem := IdempotencyMiddleware(deps.Idempotency, deps.IdempotencyTTL, deps.Log)
	for _, d := range []struct {
		kind  entity.DocumentKind
		path  string
		roles []string
	}{
		{entity.DocumentOrder, "/orders", []string{manager, showroom}},
		{entity.DocumentSale, "/sales", []string{manager, showroom}},
		{entity.DocumentQuote, "/quotes", []string{manager, terrain}},
	} {
		h := NewDocumentHandler(d.kind, "/api"+d.path, deps.Documents, deps.DocumentPDF)
		g := protected.Group(d.path, RequireRole(d.roles...))
		g.Get("/", h.List)
		g.Post("/", idem, h.Create)
		g.Get("/:id", h.Get)
		g.Put("/:id", idem, h.Update)
		g.Delete("/:id", h.Delete)
		g.Delete("/:id/lines/:lineId", h.DeleteLine)
		g.Get("/:id/pdf", h.PDF)
	}

	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard", allRoles, dashboardHandler.GetSummary)
}
