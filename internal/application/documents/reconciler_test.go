package documents_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biomed-stock/internal/application/documents"
	"github.com/jhoicas/biomed-stock/internal/application/inventory"
	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
	"github.com/jhoicas/biomed-stock/internal/infrastructure/memory"
)

type fixture struct {
	store      *memory.Store
	ledger     *inventory.StockLedger
	reconciler *documents.Reconciler
	service    *documents.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	ledger := inventory.NewStockLedger(store, store.Products(), store.Movements(), zerolog.Nop())
	rec := documents.NewReconciler(store, ledger, zerolog.Nop())
	svc := documents.NewService(store, rec, store.Documents(), store.Products(), store.Customers(), zerolog.Nop())

	for _, p := range []*entity.Product{
		{ID: "A", Reference: "TEN-01", Name: "Tensiómetro", Active: true, SalePrice: decimal.NewFromInt(10)},
		{ID: "B", Reference: "OXI-01", Name: "Oxímetro", Active: true, SalePrice: decimal.NewFromInt(5)},
		{ID: "X", Reference: "OLD-01", Name: "Descontinuado", Active: false},
	} {
		require.NoError(t, store.Products().Create(ctx, p))
	}
	for id, qty := range map[string]int{"A": 5, "B": 5} {
		_, err := ledger.RecordMovement(ctx, inventory.MovementInput{ProductID: id, Kind: entity.MovementIn, Quantity: qty, Reason: "Stock inicial"})
		require.NoError(t, err)
	}
	require.NoError(t, store.Customers().Create(ctx, &entity.Customer{ID: "c1", FirstName: "Clínica", LastName: "Norte", Active: true}))
	return &fixture{store: store, ledger: ledger, reconciler: rec, service: svc}
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) lineCount(t *testing.T, docID string) int {
	t.Helper()
	lines, err := f.store.Documents().ListLines(context.Background(), docID)
	require.NoError(t, err)
	return len(lines)
}

func twoLines() map[string]string {
	return map[string]string{
		"line_0_product_id": "A", "line_0_quantity": "2", "line_0_unit_price": "10",
		"line_1_product_id": "B", "line_1_quantity": "1", "line_1_unit_price": "5",
	}
}

func reconcileErr(t *testing.T, err error) *domain.ReconcileError {
	t.Helper()
	var re *domain.ReconcileError
	require.True(t, errors.As(err, &re), "se esperaba ReconcileError, llegó %v", err)
	return re
}

func TestReconcile_TwoLinesTotal25(t *testing.T) {
	f := newFixture(t)
	res, err := f.reconciler.Reconcile(context.Background(), documents.Submission{
		Kind:   entity.DocumentOrder,
		Header: &documents.Header{CustomerID: "c1"},
		Fields: twoLines(),
	})
	require.NoError(t, err)
	assert.True(t, res.Document.Total.Equal(decimal.NewFromInt(25)), res.Document.Total.String())
	assert.Equal(t, 2, f.lineCount(t, res.Document.ID))
	assert.Equal(t, entity.OrderPending, res.Document.Status)

	saved, err := f.store.Documents().GetByID(context.Background(), res.Document.ID)
	require.NoError(t, err)
	assert.True(t, saved.Total.Equal(decimal.NewFromInt(25)))
}

func TestReconcile_DiscountApplied(t *testing.T) {
	f := newFixture(t)
	res, err := f.reconciler.Reconcile(context.Background(), documents.Submission{
		Kind:   entity.DocumentQuote,
		Header: &documents.Header{CustomerID: "c1"},
		Fields: map[string]string{"line_0_product_id": "A", "line_0_quantity": "1", "line_0_unit_price": "10", "line_0_discount": "50"},
	})
	require.NoError(t, err)
	assert.True(t, res.Document.Total.Equal(decimal.NewFromInt(5)))
	assert.Regexp(t, `^DEV\d{8}$`, res.Document.Number)
}

func TestReconcile_ZeroProductIDIsSkipped(t *testing.T) {
	f := newFixture(t)
	fields := twoLines()
	fields["line_2_product_id"] = "0"
	fields["line_2_quantity"] = "abc"

	res, err := f.reconciler.Reconcile(context.Background(), documents.Submission{
		Kind:   entity.DocumentOrder,
		Header: &documents.Header{CustomerID: "c1"},
		Fields: fields,
	})
	require.NoError(t, err)
	assert.Len(t, res.Lines, 2)
}

func TestReconcile_AllBlankRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.reconciler.Reconcile(context.Background(), documents.Submission{
		Kind:   entity.DocumentOrder,
		Header: &documents.Header{CustomerID: "c1"},
		Fields: map[string]string{"line_0_product_id": "", "line_1_product_id": "0"},
	})
	assert.ErrorIs(t, err, domain.ErrNoLines)

	docs, err := f.store.Documents().List(context.Background(), repositoryFilter(entity.DocumentOrder))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestReconcile_AccumulatesEveryLineError(t *testing.T) {
	f := newFixture(t)
	_, err := f.reconciler.Reconcile(context.Background(), documents.Submission{
		Kind:   entity.DocumentOrder,
		Header: &documents.Header{CustomerID: "c1"},
		Fields: map[string]string{
			"line_0_product_id": "missing", "line_0_quantity": "1", "line_0_unit_price": "1",
			"line_1_product_id": "X", "line_1_quantity": "1", "line_1_unit_price": "1",
			"line_2_product_id": "A", "line_2_unit_price": "1",
			"line_3_product_id": "A", "line_3_quantity": "0", "line_3_unit_price": "1",
			"line_4_product_id": "A", "line_4_quantity": "1", "line_4_unit_price": "-1",
			"line_5_product_id": "A", "line_5_quantity": "1", "line_5_unit_price": "1", "line_5_discount": "120",
			"line_6_product_id": "A", "line_6_quantity": "1.5", "line_6_unit_price": "1",
		},
	})
	re := reconcileErr(t, err)
	require.Len(t, re.Errors, 7)
	want := []error{
		domain.ErrProductNotFound, domain.ErrProductNotFound, domain.ErrMissingField,
		domain.ErrInvalidQuantity, domain.ErrInvalidPrice, domain.ErrInvalidDiscount, domain.ErrMissingField,
	}
	for i, w := range want {
		assert.ErrorIs(t, re.Errors[i], w, "línea %d", i)
		assert.Equal(t, i, re.Errors[i].Index)
	}
}

func TestReconcile_RejectsMalformedLineValues(t *testing.T) {
	tests := []struct {
		name     string
		qty      string
		price    string
		discount string
		want     error
	}{
		{"cantidad no numérica", "abc", "10", "", domain.ErrMissingField},
		{"cantidad fraccionaria", "1.5", "10", "", domain.ErrMissingField},
		{"cantidad negativa", "-3", "10", "", domain.ErrInvalidQuantity},
		{"cantidad sobre int32", "2147483648", "10", "", domain.ErrInvalidQuantity},
		{"cantidad sobre int64", "18446744073709551617", "10", "", domain.ErrInvalidQuantity},
		{"precio con tres decimales", "3", "10.005", "", domain.ErrInvalidPrice},
		{"precio fuera de rango", "1", "1000000000000", "", domain.ErrInvalidPrice},
		{"descuento con tres decimales", "1", "10", "12.345", domain.ErrInvalidDiscount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			fields := map[string]string{"line_0_product_id": "A", "line_0_quantity": tt.qty, "line_0_unit_price": tt.price}
			if tt.discount != "" {
				fields["line_0_discount"] = tt.discount
			}
			_, err := f.reconciler.Reconcile(context.Background(), documents.Submission{
				Kind:   entity.DocumentSale,
				Header: &documents.Header{},
				Fields: fields,
			})
			re := reconcileErr(t, err)
			require.Len(t, re.Errors, 1)
			assert.ErrorIs(t, re.Errors[0], tt.want)
			assert.Equal(t, 5, f.stock(t, "A"))

			docs, err := f.store.Documents().List(context.Background(), repository.DocumentFilter{Kind: entity.DocumentSale, Limit: 10})
			require.NoError(t, err)
			assert.Empty(t, docs)
		})
	}
}

func TestReconcile_TwoDecimalValuesKeepTotalConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.reconciler.Reconcile(ctx, documents.Submission{
		Kind:   entity.DocumentQuote,
		Header: &documents.Header{CustomerID: "c1"},
		Fields: map[string]string{
			"line_0_product_id": "A", "line_0_quantity": "2.0", "line_0_unit_price": "10.500",
			"line_1_product_id": "B", "line_1_quantity": "3", "line_1_unit_price": "10.01", "line_1_discount": "12.5",
		},
	})
	require.NoError(t, err)

	lines, err := f.store.Documents().ListLines(ctx, res.Document.ID)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, l := range lines {
		assert.True(t, entity.HasMoneyScale(l.UnitPrice))
		sum = sum.Add(l.Subtotal())
	}
	assert.True(t, res.Document.Total.Equal(sum), "%s != %s", res.Document.Total, sum)
	assert.Equal(t, "47.28", res.Document.Total.StringFixed(2))
}

func TestReconcile_TotalOutOfRangeRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.reconciler.Reconcile(context.Background(), documents.Submission{
		Kind:   entity.DocumentOrder,
		Header: &documents.Header{CustomerID: "c1"},
		Fields: map[string]string{"line_0_product_id": "A", "line_0_quantity": "2000", "line_0_unit_price": "999999999999.99"},
	})
	re := reconcileErr(t, err)
	assert.Empty(t, re.Errors)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReconcile_EditReplacesLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.reconciler.Reconcile(ctx, documents.Submission{Kind: entity.DocumentOrder, Header: &documents.Header{CustomerID: "c1"}, Fields: twoLines()})
	require.NoError(t, err)

	edited, err := f.reconciler.Reconcile(ctx, documents.Submission{
		Kind:       entity.DocumentOrder,
		DocumentID: res.Document.ID,
		Header:     &documents.Header{CustomerID: "c1", Status: entity.OrderConfirmed},
		Fields:     map[string]string{"line_0_product_id": "B", "line_0_quantity": "3", "line_0_unit_price": "5"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.lineCount(t, res.Document.ID))
	assert.True(t, edited.Document.Total.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, entity.OrderConfirmed, edited.Document.Status)
	assert.Equal(t, res.Document.Number, edited.Document.Number)
}

func TestReconcile_FailedEditKeepsPreviousState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.reconciler.Reconcile(ctx, documents.Submission{Kind: entity.DocumentSale, Header: &documents.Header{}, Fields: twoLines()})
	require.NoError(t, err)
	require.Equal(t, 3, f.stock(t, "A"))

	_, err = f.reconciler.Reconcile(ctx, documents.Submission{
		Kind:       entity.DocumentSale,
		DocumentID: res.Document.ID,
		Header:     &documents.Header{},
		Fields:     map[string]string{"line_0_product_id": "A", "line_0_quantity": "99", "line_0_unit_price": "10"},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, f.lineCount(t, res.Document.ID))
	assert.Equal(t, 3, f.stock(t, "A"))
	assert.Equal(t, 4, f.stock(t, "B"))
}

func TestReconcile_SaleRejectsOrderWarns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	over := map[string]string{"line_0_product_id": "A", "line_0_quantity": "6", "line_0_unit_price": "10"}

	_, err := f.reconciler.Reconcile(ctx, documents.Submission{Kind: entity.DocumentSale, Header: &documents.Header{}, Fields: over})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, f.stock(t, "A"))

	res, err := f.reconciler.Reconcile(ctx, documents.Submission{Kind: entity.DocumentOrder, Header: &documents.Header{CustomerID: "c1"}, Fields: over})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "stock insuficiente")
	assert.Equal(t, 5, f.stock(t, "A"))
}

func TestReconcile_SaleStockCheckIsCumulativePerProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.reconciler.Reconcile(context.Background(), documents.Submission{
		Kind:   entity.DocumentSale,
		Header: &documents.Header{},
		Fields: map[string]string{
			"line_0_product_id": "A", "line_0_quantity": "3", "line_0_unit_price": "10",
			"line_1_product_id": "A", "line_1_quantity": "3", "line_1_unit_price": "10",
		},
	})
	re := reconcileErr(t, err)
	require.Len(t, re.Errors, 1)
	assert.Equal(t, 1, re.Errors[0].Index)
	assert.Equal(t, 5, f.stock(t, "A"))
}

func TestReconcile_SaleRecordsOutMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.reconciler.Reconcile(ctx, documents.Submission{
		Kind:    entity.DocumentSale,
		Header:  &documents.Header{Number: "VTE-TEST-1", PaymentMode: entity.PaymentCard},
		Fields:  twoLines(),
		ActorID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, "VTE-TEST-1", res.Document.Number)
	assert.Equal(t, 3, f.stock(t, "A"))
	assert.Equal(t, 4, f.stock(t, "B"))

	movs, err := f.store.Movements().ListByReference(ctx, res.Document.ID)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, entity.MovementOut, m.Kind)
		assert.Equal(t, "Venta VTE-TEST-1", m.Reason)
		assert.Equal(t, "u1", m.ActorID)
	}
}

func TestReconcile_SaleEditReturnsThenTakes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.reconciler.Reconcile(ctx, documents.Submission{
		Kind: entity.DocumentSale, Header: &documents.Header{},
		Fields: map[string]string{"line_0_product_id": "A", "line_0_quantity": "5", "line_0_unit_price": "10"},
	})
	require.NoError(t, err)
	require.Equal(t, 0, f.stock(t, "A"))

	// Con el stock devuelto primero, la edición a 4 unidades cabe.
	_, err = f.reconciler.Reconcile(ctx, documents.Submission{
		Kind: entity.DocumentSale, DocumentID: res.Document.ID, Header: &documents.Header{},
		Fields: map[string]string{"line_0_product_id": "A", "line_0_quantity": "4", "line_0_unit_price": "10"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.stock(t, "A"))

	report, err := f.ledger.Verify(ctx, "A")
	require.NoError(t, err)
	assert.True(t, report.Consistent, report.Divergences)
}

func TestReconcile_HeaderErrorsRollBack(t *testing.T) {
	f := newFixture(t)
	_, err := f.reconciler.Reconcile(context.Background(), documents.Submission{
		Kind:   entity.DocumentQuote,
		Header: &documents.Header{CustomerID: "ghost", Status: "SHIPPED"},
		Fields: twoLines(),
	})
	re := reconcileErr(t, err)
	assert.Len(t, re.Global, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReconcile_ConcurrentSalesAtMostOneSucceeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fields := map[string]string{"line_0_product_id": "A", "line_0_quantity": "3", "line_0_unit_price": "10"}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.reconciler.Reconcile(ctx, documents.Submission{Kind: entity.DocumentSale, Header: &documents.Header{}, Fields: fields})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 2, f.stock(t, "A"))
	report, err := f.ledger.Verify(ctx, "A")
	require.NoError(t, err)
	assert.True(t, report.Consistent, report.Divergences)
}
