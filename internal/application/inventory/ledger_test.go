package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biomed-stock/internal/application/inventory"
	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/infrastructure/memory"
)

func newLedger(t *testing.T, stock int) (*inventory.StockLedger, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: "p1", Reference: "ECG-100", Name: "Electrocardiógrafo", Active: true,
		LowStockThreshold: 3, PurchasePrice: decimal.NewFromInt(100),
	}))
	l := inventory.NewStockLedger(store, store.Products(), store.Movements(), zerolog.Nop())
	if stock > 0 {
		_, err := l.RecordMovement(context.Background(), inventory.MovementInput{ProductID: "p1", Kind: entity.MovementIn, Quantity: stock, Reason: "Stock inicial"})
		require.NoError(t, err)
	}
	return l, store
}

func TestRecordMovement_WritesBeforeAfter(t *testing.T) {
	ctx := context.Background()
	l, store := newLedger(t, 10)

	mov, err := l.RecordMovement(ctx, inventory.MovementInput{ProductID: "p1", Kind: entity.MovementOut, Quantity: 4, Reason: "Venta", ActorID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 10, mov.QuantityBefore)
	assert.Equal(t, 6, mov.QuantityAfter)
	assert.Equal(t, "u1", mov.ActorID)

	p, _ := store.Products().GetByID(ctx, "p1")
	assert.Equal(t, 6, p.Stock)
}

func TestRecordMovement_InsufficientStockLeavesQuantity(t *testing.T) {
	ctx := context.Background()
	l, store := newLedger(t, 3)

	_, err := l.RecordMovement(ctx, inventory.MovementInput{ProductID: "p1", Kind: entity.MovementOut, Quantity: 4})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	p, _ := store.Products().GetByID(ctx, "p1")
	assert.Equal(t, 3, p.Stock)
	hist, _ := store.Movements().History(ctx, "p1")
	assert.Len(t, hist, 1)
}

func TestRecordMovement_Validation(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t, 0)

	_, err := l.RecordMovement(ctx, inventory.MovementInput{ProductID: "p1", Kind: entity.MovementIn, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = l.RecordMovement(ctx, inventory.MovementInput{ProductID: "p1", Kind: "LOAN", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = l.RecordMovement(ctx, inventory.MovementInput{ProductID: "nope", Kind: entity.MovementIn, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestRecordMovement_InWithCostUpdatesPurchasePrice(t *testing.T) {
	ctx := context.Background()
	l, store := newLedger(t, 10)

	_, err := l.RecordMovement(ctx, inventory.MovementInput{ProductID: "p1", Kind: entity.MovementIn, Quantity: 10, UnitCost: decimal.NewFromInt(200)})
	require.NoError(t, err)
	p, _ := store.Products().GetByID(ctx, "p1")
	assert.True(t, p.PurchasePrice.Equal(decimal.NewFromInt(150)), p.PurchasePrice.String())
}

func TestSetStock_RecordsAdjustInBothDirections(t *testing.T) {
	ctx := context.Background()
	l, store := newLedger(t, 10)

	mov, err := l.SetStock(ctx, "p1", 7, "Inventario físico", "u1")
	require.NoError(t, err)
	require.NotNil(t, mov)
	assert.Equal(t, entity.MovementAdjust, mov.Kind)
	assert.Equal(t, 3, mov.Quantity)
	assert.Equal(t, -3, mov.Delta())

	mov, err = l.SetStock(ctx, "p1", 12, "Inventario físico", "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, mov.Delta())

	mov, err = l.SetStock(ctx, "p1", 12, "sin cambio", "u1")
	require.NoError(t, err)
	assert.Nil(t, mov)

	p, _ := store.Products().GetByID(ctx, "p1")
	assert.Equal(t, 12, p.Stock)
}

func TestVerify_ReplaysWholeHistory(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t, 10)
	steps := []inventory.MovementInput{
		{Kind: entity.MovementOut, Quantity: 3},
		{Kind: entity.MovementReturn, Quantity: 1},
		{Kind: entity.MovementAdjust, Quantity: 2, Decrease: true},
		{Kind: entity.MovementIn, Quantity: 5},
	}
	for _, s := range steps {
		s.ProductID = "p1"
		_, err := l.RecordMovement(ctx, s)
		require.NoError(t, err)
	}

	report, err := l.Verify(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, report.Consistent, report.Divergences)
	assert.Equal(t, 11, report.Replayed)
	assert.Equal(t, 11, report.Recorded)
	assert.Equal(t, 5, report.Movements)
}

func TestListMovements_NewestFirst(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t, 10)
	_, err := l.RecordMovement(ctx, inventory.MovementInput{ProductID: "p1", Kind: entity.MovementOut, Quantity: 1, Reason: "segundo"})
	require.NoError(t, err)

	list, err := l.ListMovements(ctx, "p1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "segundo", list[0].Reason)
	assert.Equal(t, "Stock inicial", list[1].Reason)
}

func TestIsLowStock(t *testing.T) {
	l, _ := newLedger(t, 0)
	assert.True(t, l.IsLowStock(&entity.Product{Stock: 3, LowStockThreshold: 3}))
	assert.False(t, l.IsLowStock(&entity.Product{Stock: 4, LowStockThreshold: 3}))
}

func TestRecordMovement_ConcurrentOutsNeverGoNegative(t *testing.T) {
	ctx := context.Background()
	l, store := newLedger(t, 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.RecordMovement(ctx, inventory.MovementInput{ProductID: "p1", Kind: entity.MovementOut, Quantity: 1}); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	p, _ := store.Products().GetByID(ctx, "p1")
	assert.Equal(t, 0, p.Stock)
	report, err := l.Verify(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, report.Consistent, report.Divergences)
}
