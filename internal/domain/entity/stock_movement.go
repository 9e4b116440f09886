package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento de stock.
type MovementKind string

const (
	MovementIn     MovementKind = "IN"     // entrada (compra, recepción)
	MovementOut    MovementKind = "OUT"    // salida (venta)
	MovementAdjust MovementKind = "ADJUST" // corrección de inventario, en cualquier sentido
	MovementReturn MovementKind = "RETURN" // devolución al stock
)

// Valid indica si el tipo es uno de los conocidos.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementIn, MovementOut, MovementAdjust, MovementReturn:
		return true
	}
	return false
}

// StockMovement registro inmutable de un cambio de stock con cantidades antes y después.
type StockMovement struct {
	ID             string
	Seq            int64 // orden de inserción, desempata movimientos con la misma fecha
	ProductID      string
	Kind           MovementKind
	Quantity       int // siempre > 0; el sentido lo dan Before/After
	QuantityBefore int
	QuantityAfter  int
	Reason         string
	LotNumber      string
	UnitCost       decimal.Decimal // costo unitario de una entrada; cero si no se informó
	Reference      string // id del documento que originó el movimiento, si aplica
	ActorID        string
	CreatedAt      time.Time
}

// Delta variación firmada aplicada al stock.
func (m *StockMovement) Delta() int {
	return m.QuantityAfter - m.QuantityBefore
}
