package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, seq, product_id, kind, quantity, quantity_before, quantity_after,
	reason, lot_number, unit_cost, reference, actor_id, created_at`

// StockMovementRepo historial de movimientos sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento; seq lo asigna la secuencia de la tabla.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, product_id, kind, quantity, quantity_before, quantity_after,
			reason, lot_number, unit_cost, reference, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ProductID, string(m.Kind), m.Quantity, m.QuantityBefore, m.QuantityAfter,
		m.Reason, m.LotNumber, m.UnitCost, m.Reference, nullable(m.ActorID), m.CreatedAt,
	).Scan(&m.Seq)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByProduct movimientos de un producto, más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	if !validID(productID) {
		return nil, nil
	}
	return r.query(ctx, "list by product", `
		SELECT `+movementColumns+` FROM stock_movements WHERE product_id = $1
		ORDER BY created_at DESC, seq DESC LIMIT $2 OFFSET $3`, productID, limit, offset)
}

// History todos los movimientos del producto en orden de inserción.
func (r *StockMovementRepo) History(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	if !validID(productID) {
		return nil, nil
	}
	return r.query(ctx, "history", `
		SELECT `+movementColumns+` FROM stock_movements WHERE product_id = $1 ORDER BY seq`, productID)
}

// ListByReference movimientos generados por un documento.
func (r *StockMovementRepo) ListByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error) {
	return r.query(ctx, "list by reference", `
		SELECT `+movementColumns+` FROM stock_movements WHERE reference = $1 ORDER BY seq`, reference)
}

// List todos los movimientos, más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, limit, offset int) ([]*entity.StockMovement, error) {
	return r.query(ctx, "list movements", `
		SELECT `+movementColumns+` FROM stock_movements
		ORDER BY created_at DESC, seq DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *StockMovementRepo) query(ctx context.Context, op, sql string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var kind string
	var actorID *string
	err := row.Scan(
		&m.ID, &m.Seq, &m.ProductID, &kind, &m.Quantity, &m.QuantityBefore, &m.QuantityAfter,
		&m.Reason, &m.LotNumber, &m.UnitCost, &m.Reference, &actorID, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Kind = entity.MovementKind(kind)
	m.ActorID = deref(actorID)
	return &m, nil
}
