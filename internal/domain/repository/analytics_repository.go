package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesByModeResult ventas agregadas por modo de pago.
type SalesByModeResult struct {
	PaymentMode string
	Count       int
	Total       decimal.Decimal
}

// TopProductResult unidades vendidas por producto.
type TopProductResult struct {
	ProductID string
	Reference string
	Name      string
	Units     int
	Revenue   decimal.Decimal
}

// AnalyticsRepository consultas agregadas de solo lectura para el tablero.
type AnalyticsRepository interface {
	SalesByPaymentMode(ctx context.Context, from, to time.Time) ([]SalesByModeResult, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProductResult, error)
	// StockValue valor total del stock activo a precio de compra.
	StockValue(ctx context.Context) (decimal.Decimal, error)
}
