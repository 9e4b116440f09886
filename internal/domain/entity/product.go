package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold umbral de alerta si el producto no define uno.
const DefaultLowStockThreshold = 10

// Product equipo o consumible del catálogo.
// Stock solo cambia a través del libro de movimientos (inventory.StockLedger).
type Product struct {
	ID                string
	Reference         string // código interno único
	Barcode           string
	Name              string
	Description       string
	CategoryID        string
	Brand             string
	PurchasePrice     decimal.Decimal
	SalePrice         decimal.Decimal
	Stock             int
	LowStockThreshold int
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLowStock stock en o por debajo del umbral.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// StockValue valor del stock a precio de compra.
func (p *Product) StockValue() decimal.Decimal {
	return p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.Stock)))
}

// MarginPercent margen sobre el precio de compra; 0 si no hay precio de compra.
func (p *Product) MarginPercent() decimal.Decimal {
	if p.PurchasePrice.IsZero() {
		return decimal.Zero
	}
	return p.SalePrice.Sub(p.PurchasePrice).Div(p.PurchasePrice).Mul(decimal.NewFromInt(100)).Round(2)
}

// Label nombre para mensajes (referencia si no hay nombre).
func (p *Product) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Reference
}
