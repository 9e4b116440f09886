package entity

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Límites de las columnas INTEGER y NUMERIC(14,2).
var (
	MaxQuantity = math.MaxInt32
	// MaxAmount cota exclusiva de precios y totales.
	MaxAmount = decimal.New(1, 12)
)

// MoneyScale decimales admitidos en precios y descuentos.
const MoneyScale = 2

// HasMoneyScale indica si d no tiene más de MoneyScale decimales significativos.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

// LineItem línea de un documento. Se reemplazan todas en cada edición.
type LineItem struct {
	ID         string
	DocumentID string
	ProductID  string
	Position   int // índice enviado en el formulario
	Quantity   int
	UnitPrice  decimal.Decimal
	Discount   decimal.Decimal // porcentaje 0..100
}

// Subtotal cantidad × precio × (1 − descuento/100), redondeado a 2 decimales.
func (l *LineItem) Subtotal() decimal.Decimal {
	gross := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	if l.Discount.IsZero() {
		return gross.Round(2)
	}
	factor := hundred.Sub(l.Discount).Div(hundred)
	return gross.Mul(factor).Round(2)
}

// SumSubtotals total de un conjunto de líneas.
func SumSubtotals(lines []*LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
