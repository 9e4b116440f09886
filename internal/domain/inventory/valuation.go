package inventory

import "github.com/shopspring/decimal"

// WeightedCost costo promedio ponderado tras una entrada:
// ((stock * costo) + (cantEntrada * costoEntrada)) / (stock + cantEntrada).
// Si la entrada no trae costo se conserva el actual.
func WeightedCost(stock int, cost decimal.Decimal, inQty int, inCost decimal.Decimal) decimal.Decimal {
	if inCost.IsZero() || inQty <= 0 {
		return cost
	}
	s := decimal.NewFromInt(int64(stock))
	q := decimal.NewFromInt(int64(inQty))
	sum := s.Add(q)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return s.Mul(cost).Add(q.Mul(inCost)).Div(sum).Round(2)
}
