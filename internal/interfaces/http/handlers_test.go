package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/biomed-stock/internal/application/analytics"
	"github.com/jhoicas/biomed-stock/internal/application/auth"
	"github.com/jhoicas/biomed-stock/internal/application/documents"
	"github.com/jhoicas/biomed-stock/internal/application/dto"
	"github.com/jhoicas/biomed-stock/internal/application/inventory"
	"github.com/jhoicas/biomed-stock/internal/application/usecase"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/infrastructure/cache"
	"github.com/jhoicas/biomed-stock/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/biomed-stock/internal/interfaces/http"
)

type stubPDF struct{}

func (stubPDF) Generate(_ context.Context, _ documents.Printable) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

type server struct {
	app   *fiber.App
	store *memory.Store
}

// newServer arma la API completa sobre el backend en memoria con un producto
// "A" (Tensiómetro, stock 5) y un cliente "c1".
func newServer(t *testing.T) *server {
	t.Helper()
	ctx := context.Background()
	log := zerolog.Nop()
	store := memory.NewStore()
	idem := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = idem.Close() })

	ledger := inventory.NewStockLedger(store, store.Products(), store.Movements(), log)
	replenishment := inventory.NewReplenishmentUseCase(store.Products(), store.Analytics())
	reconciler := documents.NewReconciler(store, ledger, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:         auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, log),
		UserUC:         usecase.NewUserUseCase(store.Users()),
		ProductUC:      usecase.NewProductUseCase(store, store.Products(), store.Categories(), ledger, log),
		CustomerUC:     usecase.NewCustomerUseCase(store.Customers()),
		Ledger:         ledger,
		Replenishment:  replenishment,
		Documents:      documents.NewService(store, reconciler, store.Documents(), store.Products(), store.Customers(), log),
		DocumentPDF:    documents.NewPDFUseCase(store.Documents(), store.Customers(), store.Products(), stubPDF{}, decimal.RequireFromString("0.18")),
		DashboardUC:    appanalytics.NewDashboardUseCase(store.Analytics(), store.Documents(), replenishment, ledger),
		Idempotency:    idem,
		IdempotencyTTL: time.Minute,
		JWTSecret:      testJWTSecret,
		Log:            log,
	})

	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "A", Reference: "TEN-01", Name: "Tensiómetro", Active: true,
		LowStockThreshold: 2, SalePrice: decimal.NewFromInt(10), PurchasePrice: decimal.NewFromInt(6),
	}))
	_, err := ledger.RecordMovement(ctx, inventory.MovementInput{ProductID: "A", Kind: entity.MovementIn, Quantity: 5, Reason: "Stock inicial"})
	require.NoError(t, err)
	require.NoError(t, store.Customers().Create(ctx, &entity.Customer{ID: "c1", Company: "Clínica Norte", Active: true}))
	return &server{app: app, store: store}
}

func (s *server) do(t *testing.T, method, path, role string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (s *server) json(t *testing.T, method, path, role string, payload interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return s.do(t, method, path, role, strings.NewReader(string(raw)), map[string]string{"Content-Type": "application/json"})
}

func (s *server) form(t *testing.T, method, path, role string, values url.Values, headers map[string]string) *http.Response {
	t.Helper()
	if headers == nil {
		headers = map[string]string{}
	}
	headers["Content-Type"] = "application/x-www-form-urlencoded"
	return s.do(t, method, path, role, strings.NewReader(values.Encode()), headers)
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func saleForm(qty string) url.Values {
	return url.Values{
		"payment_mode":      {"CARD"},
		"line_0_product_id": {"A"},
		"line_0_quantity":   {qty},
		"line_0_unit_price": {"10"},
		"line_1_product_id": {"0"},
		"line_1_quantity":   {""},
		"line_1_unit_price": {""},
	}
}

func TestLoginAndRegister(t *testing.T) {
	s := newServer(t)

	resp := s.json(t, http.MethodPost, "/api/auth/register", entity.RoleTechnician, dto.RegisterRequest{
		Username: "ana", Email: "ana@biomed.test", Password: "secreto123", Role: entity.RoleTechnician,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.json(t, http.MethodPost, "/api/auth/register", entity.RoleManager, dto.RegisterRequest{
		Username: "ana", Email: "ana@biomed.test", Password: "corta", Role: entity.RoleTechnician,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var verr dto.ValidationErrorResponse
	decode(t, resp, &verr)
	require.Len(t, verr.Details, 1)
	assert.Equal(t, "password", verr.Details[0].Field)

	resp = s.json(t, http.MethodPost, "/api/auth/register", entity.RoleManager, dto.RegisterRequest{
		Username: "ana", Email: "ana@biomed.test", Password: "secreto123", Role: entity.RoleTechnician,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.json(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ana@biomed.test", Password: "mala-clave"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.json(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ana@biomed.test", Password: "secreto123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login dto.LoginResponse
	decode(t, resp, &login)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, entity.RoleTechnician, login.User.Role)
}

func TestProducts_CreateAndPermissions(t *testing.T) {
	s := newServer(t)
	in := dto.CreateProductRequest{
		Reference: "OXI-01", Name: "Oxímetro", SalePrice: decimal.NewFromInt(5), PurchasePrice: decimal.NewFromInt(3), InitialStock: 7,
	}

	resp := s.json(t, http.MethodPost, "/api/products", entity.RoleCommercialTerrain, in)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.json(t, http.MethodPost, "/api/products", entity.RoleTechnician, in)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)
	assert.Equal(t, 7, p.Stock)
	assert.Equal(t, "/api/products/"+p.ID, resp.Header.Get("Location"))

	resp = s.json(t, http.MethodPost, "/api/products", entity.RoleManager, in)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.json(t, http.MethodPost, "/api/products", entity.RoleManager, dto.CreateProductRequest{Name: "Sin referencia"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/products/"+p.ID+"/movements", entity.RoleTechnician, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movs []dto.MovementResponse
	decode(t, resp, &movs)
	require.Len(t, movs, 1)
	assert.Equal(t, "Stock inicial", movs[0].Reason)

	resp = s.do(t, http.MethodGet, "/api/products?q=oxi", entity.RoleCommercialShowroom, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.ProductListResponse
	decode(t, resp, &list)
	assert.Len(t, list.Items, 1)
}

func TestStockMovement_InsufficientStockAndLedger(t *testing.T) {
	s := newServer(t)

	resp := s.json(t, http.MethodPost, "/api/stock/movements", entity.RoleTechnician, dto.RegisterMovementRequest{
		ProductID: "A", Kind: "OUT", Quantity: 9, Reason: "Prueba",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var e dto.ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)

	resp = s.json(t, http.MethodPost, "/api/stock/movements", entity.RoleTechnician, dto.RegisterMovementRequest{
		ProductID: "A", Kind: "ADJUST", Direction: "decrease", Quantity: 2, Reason: "Inventario",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var mov dto.MovementResponse
	decode(t, resp, &mov)
	assert.Equal(t, 5, mov.QuantityBefore)
	assert.Equal(t, 3, mov.QuantityAfter)
	assert.Equal(t, testUserID, mov.ActorID)

	resp = s.do(t, http.MethodGet, "/api/products/A/ledger", entity.RoleManager, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report dto.LedgerReportResponse
	decode(t, resp, &report)
	assert.True(t, report.Consistent)
	assert.Equal(t, 3, report.Replayed)
	assert.Equal(t, 2, report.Movements)
}

func TestSales_CreateJSONAndRedirect(t *testing.T) {
	s := newServer(t)

	resp := s.form(t, http.MethodPost, "/api/sales", entity.RoleCommercialShowroom, saleForm("2"), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sale dto.DocumentResponse
	decode(t, resp, &sale)
	assert.Equal(t, "20", sale.Total.String())
	assert.Equal(t, entity.PaymentCard, sale.PaymentMode)
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, "/api/sales/"+sale.ID, resp.Header.Get("Location"))

	resp = s.form(t, http.MethodPost, "/api/sales", entity.RoleCommercialShowroom, saleForm("1"), map[string]string{"Accept": "text/html"})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/api/sales/"))

	p, err := s.store.Products().GetByID(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)

	resp = s.form(t, http.MethodPost, "/api/sales", entity.RoleCommercialTerrain, saleForm("1"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSales_RejectedEchoesForm(t *testing.T) {
	s := newServer(t)
	form := saleForm("99")
	form.Set("line_2_product_id", "A")
	form.Set("line_2_quantity", "1")
	form.Set("line_2_unit_price", "10")
	form.Set("line_2_discount", "150")

	resp := s.form(t, http.MethodPost, "/api/sales", entity.RoleManager, form, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body dto.ReconcileErrorResponse
	decode(t, resp, &body)
	assert.Len(t, body.Errors, 2)
	assert.Equal(t, "99", body.Form["line_0_quantity"])
	assert.Equal(t, "150", body.Form["line_2_discount"])

	p, err := s.store.Products().GetByID(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
}

func TestSales_BadDateIs422(t *testing.T) {
	s := newServer(t)
	form := saleForm("1")
	form.Set("customer_id", "c1")
	form.Set("delivery_date", "31/12/2026")

	resp := s.form(t, http.MethodPost, "/api/orders", entity.RoleManager, form, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSales_IdempotencyKey(t *testing.T) {
	s := newServer(t)
	key := map[string]string{apphttp.HeaderIdempotencyKey: "form-1"}

	resp := s.form(t, http.MethodPost, "/api/sales", entity.RoleManager, saleForm("1"), key)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.form(t, http.MethodPost, "/api/sales", entity.RoleManager, saleForm("1"), key)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var e dto.ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, "DUPLICATE_SUBMISSION", e.Code)

	// un envío rechazado libera su clave
	retry := map[string]string{apphttp.HeaderIdempotencyKey: "form-2"}
	resp = s.form(t, http.MethodPost, "/api/sales", entity.RoleManager, saleForm("50"), retry)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp = s.form(t, http.MethodPost, "/api/sales", entity.RoleManager, saleForm("1"), retry)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	p, err := s.store.Products().GetByID(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestQuotes_PDFAndDeleteLine(t *testing.T) {
	s := newServer(t)
	form := url.Values{
		"customer_id":       {"c1"},
		"line_0_product_id": {"A"}, "line_0_quantity": {"1"}, "line_0_unit_price": {"10"},
		"line_1_product_id": {"A"}, "line_1_quantity": {"3"}, "line_1_unit_price": {"10"},
	}
	resp := s.form(t, http.MethodPost, "/api/quotes", entity.RoleCommercialTerrain, form, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var quote dto.DocumentResponse
	decode(t, resp, &quote)
	assert.Equal(t, entity.QuoteDraft, quote.Status)
	assert.Equal(t, "Clínica Norte", quote.CustomerName)
	require.Len(t, quote.Lines, 2)

	resp = s.do(t, http.MethodGet, "/api/quotes/"+quote.ID+"/pdf", entity.RoleCommercialTerrain, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "cotizacion_"+quote.Number+".pdf")

	resp = s.do(t, http.MethodDelete, "/api/quotes/"+quote.ID+"/lines/"+quote.Lines[1].ID, entity.RoleManager, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var after dto.DocumentResponse
	decode(t, resp, &after)
	assert.Equal(t, "10", after.Total.String())

	resp = s.do(t, http.MethodDelete, "/api/quotes/"+quote.ID+"/lines/"+quote.Lines[0].ID, entity.RoleManager, nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/sales/"+quote.ID, entity.RoleManager, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDashboard_ByRole(t *testing.T) {
	s := newServer(t)

	resp := s.do(t, http.MethodGet, "/api/dashboard", entity.RoleTechnician, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary dto.DashboardSummaryDTO
	decode(t, resp, &summary)
	assert.Equal(t, entity.RoleTechnician, summary.Role)
	assert.Nil(t, summary.MonthlySales)
	assert.NotEmpty(t, summary.RecentMovements)
}
