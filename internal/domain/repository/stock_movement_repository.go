package repository

import (
	"context"

	"github.com/jhoicas/biomed-stock/internal/domain/entity"
)

// StockMovementRepository puerto del historial de movimientos (solo inserción).
type StockMovementRepository interface {
	// Create inserta el movimiento y asigna Seq.
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct más recientes primero, para auditoría.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
	// History todos los movimientos del producto en orden de inserción.
	History(ctx context.Context, productID string) ([]*entity.StockMovement, error)
	// ListByReference movimientos generados por un documento.
	ListByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error)
	List(ctx context.Context, limit, offset int) ([]*entity.StockMovement, error)
}
