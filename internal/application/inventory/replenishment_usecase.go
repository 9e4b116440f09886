package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biomed-stock/internal/application/dto"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

// ReplenishmentUseCase lista los productos en stock bajo con la cantidad sugerida a pedir.
type ReplenishmentUseCase struct {
	products  repository.ProductRepository
	analytics repository.AnalyticsRepository
	now       func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso. analytics puede ser nil (sin ranking por ventas).
func NewReplenishmentUseCase(products repository.ProductRepository, analytics repository.AnalyticsRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{products: products, analytics: analytics, now: time.Now}
}

// LowStock productos activos con stock <= umbral. Stock ideal = 1.5 × umbral.
// Orden: más unidades vendidas en 90 días, luego mayor déficit.
func (uc *ReplenishmentUseCase) LowStock(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	items, err := uc.products.List(ctx, repository.ProductFilter{OnlyActive: true, OnlyLowStock: true, Limit: 500})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	sold := map[string]int{}
	if uc.analytics != nil {
		end := uc.now()
		top, err := uc.analytics.TopProducts(ctx, end.AddDate(0, 0, -90), end, 500)
		if err != nil {
			return nil, err
		}
		for _, t := range top {
			sold[t.ProductID] = t.Units
		}
	}

	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(items))
	for _, p := range items {
		ideal := (p.LowStockThreshold*3 + 1) / 2
		suggested := ideal - p.Stock
		if suggested < 0 {
			suggested = 0
		}
		out = append(out, dto.ReplenishmentSuggestionDTO{
			ProductID:           p.ID,
			Reference:           p.Reference,
			ProductName:         p.Name,
			CurrentStock:        p.Stock,
			Threshold:           p.LowStockThreshold,
			IdealStock:          ideal,
			SuggestedOrderQty:   suggested,
			UnitCost:            p.PurchasePrice,
			EstimatedOrderCost:  p.PurchasePrice.Mul(decimal.NewFromInt(int64(suggested))),
			UnitsSoldLast90Days: sold[p.ID],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.UnitsSoldLast90Days != b.UnitsSoldLast90Days {
			return a.UnitsSoldLast90Days > b.UnitsSoldLast90Days
		}
		return a.Threshold-a.CurrentStock > b.Threshold-b.CurrentStock
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}
