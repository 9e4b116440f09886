// Package inventory reglas puras del libro de stock: aplicar un movimiento,
// reconstruir el stock desde el historial y verificar la cadena antes/después.
package inventory

import (
	"fmt"

	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
)

// Apply calcula el stock resultante de aplicar un movimiento a before.
// ADJUST suma salvo que decrease sea true. Devuelve ErrInsufficientStock si el
// resultado sería negativo y ErrInvalidQuantity si quantity o el resultado salen de
// 1..MaxQuantity.
func Apply(before int, kind entity.MovementKind, quantity int, decrease bool) (int, error) {
	if quantity <= 0 || quantity > entity.MaxQuantity {
		return before, domain.ErrInvalidQuantity
	}
	var after int
	switch kind {
	case entity.MovementIn, entity.MovementReturn:
		after = before + quantity
	case entity.MovementOut:
		after = before - quantity
	case entity.MovementAdjust:
		if decrease {
			after = before - quantity
		} else {
			after = before + quantity
		}
	default:
		return before, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, kind)
	}
	if after < 0 {
		return before, domain.ErrInsufficientStock
	}
	if after > entity.MaxQuantity {
		return before, fmt.Errorf("%w: el stock superaría %d", domain.ErrInvalidQuantity, entity.MaxQuantity)
	}
	return after, nil
}

// AdjustmentFor traduce un stock objetivo en un ADJUST (cantidad y sentido).
// ok es false si no hay diferencia.
func AdjustmentFor(current, target int) (quantity int, decrease bool, ok bool) {
	switch {
	case target > current:
		return target - current, false, true
	case target < current:
		return current - target, true, true
	}
	return 0, false, false
}

// Report resultado de reconstruir el stock de un producto desde sus movimientos.
type Report struct {
	ProductID   string
	Movements   int
	Replayed    int // stock reconstruido desde cero
	Recorded    int // stock guardado en el producto
	Consistent  bool
	Divergences []string
}

// Replay reconstruye el stock desde cero. movements debe venir en orden de
// inserción (Seq ascendente). Comprueba que cada fila respete su propio tipo y
// que su "antes" coincida con el "después" de la anterior.
func Replay(product *entity.Product, movements []*entity.StockMovement) Report {
	r := Report{ProductID: product.ID, Movements: len(movements), Recorded: product.Stock}
	qty := 0
	for i, m := range movements {
		if m.QuantityBefore != qty {
			r.Divergences = append(r.Divergences,
				fmt.Sprintf("movimiento %d (%s): antes=%d, esperado %d", i, m.ID, m.QuantityBefore, qty))
		}
		decrease := m.Kind == entity.MovementAdjust && m.QuantityAfter < m.QuantityBefore
		after, err := Apply(m.QuantityBefore, m.Kind, m.Quantity, decrease)
		if err != nil || after != m.QuantityAfter {
			r.Divergences = append(r.Divergences,
				fmt.Sprintf("movimiento %d (%s): %s %d no lleva %d a %d", i, m.ID, m.Kind, m.Quantity, m.QuantityBefore, m.QuantityAfter))
		}
		qty += SignedQuantity(m)
	}
	r.Replayed = qty
	if qty != product.Stock {
		r.Divergences = append(r.Divergences,
			fmt.Sprintf("stock reconstruido %d distinto del registrado %d", qty, product.Stock))
	}
	r.Consistent = len(r.Divergences) == 0
	return r
}

// SignedQuantity cantidad con signo que el movimiento aporta al stock.
func SignedQuantity(m *entity.StockMovement) int {
	switch m.Kind {
	case entity.MovementOut:
		return -m.Quantity
	case entity.MovementAdjust:
		if m.QuantityAfter < m.QuantityBefore {
			return -m.Quantity
		}
	}
	return m.Quantity
}
