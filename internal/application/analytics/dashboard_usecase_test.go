package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biomed-stock/internal/application/inventory"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/infrastructure/memory"
)

func newDashboard(t *testing.T) *DashboardUseCase {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	ledger := inventory.NewStockLedger(store, store.Products(), store.Movements(), zerolog.Nop())
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "p1", Reference: "GLU-01", Name: "Glucómetro", Active: true,
		LowStockThreshold: 5, PurchasePrice: decimal.NewFromInt(10),
	}))
	_, err := ledger.RecordMovement(ctx, inventory.MovementInput{ProductID: "p1", Kind: entity.MovementIn, Quantity: 3, Reason: "Stock inicial"})
	require.NoError(t, err)
	require.NoError(t, store.Documents().Create(ctx, &entity.Document{ID: "o1", Kind: entity.DocumentOrder, Number: "CMD-1", Status: entity.OrderPending, CreatedAt: time.Now()}))
	require.NoError(t, store.Documents().Create(ctx, &entity.Document{ID: "q1", Kind: entity.DocumentQuote, Number: "DEV1", Status: entity.QuoteSent, CreatedAt: time.Now()}))
	require.NoError(t, store.Documents().Create(ctx, &entity.Document{ID: "q2", Kind: entity.DocumentQuote, Number: "DEV2", Status: entity.QuoteAccepted, CreatedAt: time.Now()}))

	return NewDashboardUseCase(store.Analytics(), store.Documents(), inventory.NewReplenishmentUseCase(store.Products(), store.Analytics()), ledger)
}

func TestGetSummary_Manager(t *testing.T) {
	uc := newDashboard(t)
	uc.now = func() time.Time { return time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC) }

	s, err := uc.GetSummary(context.Background(), entity.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, 1, s.LowStockCount)
	require.NotNil(t, s.StockValue)
	assert.Equal(t, "30", s.StockValue.String())
	assert.Equal(t, 1, s.PendingOrders)
	assert.Equal(t, 1, s.OpenQuotes)
	assert.Len(t, s.RecentMovements, 1)
	require.NotNil(t, s.MonthlySales)
	assert.True(t, s.MonthlySales.IsZero())
	assert.Equal(t, "Febrero 2026", s.DateLabel)
}

func TestGetSummary_RoleWidgets(t *testing.T) {
	uc := newDashboard(t)

	tech, err := uc.GetSummary(context.Background(), entity.RoleTechnician)
	require.NoError(t, err)
	assert.Equal(t, 1, tech.LowStockCount)
	assert.Nil(t, tech.MonthlySales)
	assert.Nil(t, tech.StockValue)
	assert.Zero(t, tech.OpenQuotes)

	terrain, err := uc.GetSummary(context.Background(), entity.RoleCommercialTerrain)
	require.NoError(t, err)
	assert.Zero(t, terrain.LowStockCount)
	assert.Equal(t, 1, terrain.OpenQuotes)
	assert.Empty(t, terrain.RecentMovements)
}
