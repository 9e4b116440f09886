package inventory

import (
	"github.com/jhoicas/biomed-stock/internal/application/dto"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/inventory"
)

// ToMovementResponse movimiento para respuestas HTTP.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		Kind:           string(m.Kind),
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reason:         m.Reason,
		LotNumber:      m.LotNumber,
		Reference:      m.Reference,
		UnitCost:       m.UnitCost,
		ActorID:        m.ActorID,
		CreatedAt:      m.CreatedAt,
	}
}

// ToMovementResponses lista vacía en lugar de nil para que el JSON sea [].
func ToMovementResponses(ms []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

// ToReportResponse resultado de Verify.
func ToReportResponse(r inventory.Report) dto.LedgerReportResponse {
	return dto.LedgerReportResponse{
		ProductID:   r.ProductID,
		Movements:   r.Movements,
		Replayed:    r.Replayed,
		Recorded:    r.Recorded,
		Consistent:  r.Consistent,
		Divergences: r.Divergences,
	}
}
