package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/stock/movements.
// Direction solo aplica a ADJUST: "increase" (por defecto) o "decrease".
type RegisterMovementRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Kind      string           `json:"kind" validate:"required,oneof=IN OUT ADJUST RETURN"`
	Quantity  int              `json:"quantity" validate:"required,gt=0"`
	Direction string           `json:"direction" validate:"omitempty,oneof=increase decrease"`
	Reason    string           `json:"reason" validate:"max=255"`
	LotNumber string           `json:"lot_number" validate:"max=50"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// MovementResponse movimiento de stock en respuestas.
type MovementResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	Kind           string          `json:"kind"`
	Quantity       int             `json:"quantity"`
	QuantityBefore int             `json:"quantity_before"`
	QuantityAfter  int             `json:"quantity_after"`
	Reason         string          `json:"reason"`
	LotNumber      string          `json:"lot_number,omitempty"`
	Reference      string          `json:"reference,omitempty"`
	UnitCost       decimal.Decimal `json:"unit_cost,omitempty"`
	ActorID        string          `json:"actor_id"`
	CreatedAt      time.Time       `json:"created_at"`
}

// LedgerReportResponse resultado de reconstruir el stock desde el historial.
type LedgerReportResponse struct {
	ProductID   string   `json:"product_id"`
	Movements   int      `json:"movements"`
	Replayed    int      `json:"replayed_stock"`
	Recorded    int      `json:"recorded_stock"`
	Consistent  bool     `json:"consistent"`
	Divergences []string `json:"divergences,omitempty"`
}

// ReplenishmentSuggestionDTO producto en stock bajo con la cantidad sugerida a pedir.
type ReplenishmentSuggestionDTO struct {
	ProductID           string          `json:"product_id"`
	Reference           string          `json:"reference"`
	ProductName         string          `json:"product_name"`
	CurrentStock        int             `json:"current_stock"`
	Threshold           int             `json:"low_stock_threshold"`
	IdealStock          int             `json:"ideal_stock"`         // 1.5 × umbral
	SuggestedOrderQty   int             `json:"suggested_order_qty"` // ideal - actual
	UnitCost            decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost  decimal.Decimal `json:"estimated_order_cost"`
	UnitsSoldLast90Days int             `json:"units_sold_last_90d"`
	Priority            int             `json:"priority"` // 1 = más urgente
}
