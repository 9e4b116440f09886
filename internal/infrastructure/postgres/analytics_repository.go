package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el tablero.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// SalesByPaymentMode número de ventas y total por modo de pago en [from, to).
func (r *AnalyticsRepo) SalesByPaymentMode(ctx context.Context, from, to time.Time) ([]repository.SalesByModeResult, error) {
	const query = `
	SELECT payment_mode, COUNT(*) AS sales, COALESCE(SUM(total), 0) AS total
	FROM documents
	WHERE kind = 'SALE'
	  AND created_at >= $1 AND created_at < $2
	GROUP BY payment_mode
	ORDER BY total DESC`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("analytics.SalesByPaymentMode: %w", err)
	}
	defer rows.Close()

	var results []repository.SalesByModeResult
	for rows.Next() {
		var row repository.SalesByModeResult
		if err := rows.Scan(&row.PaymentMode, &row.Count, &row.Total); err != nil {
			return nil, fmt.Errorf("analytics.SalesByPaymentMode scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// TopProducts productos más vendidos por unidades en [from, to).
// El ingreso repite la fórmula del subtotal de línea: cantidad × precio × (1 − descuento/100).
func (r *AnalyticsRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.TopProductResult, error) {
	const query = `
	SELECT
	    p.id,
	    p.reference,
	    p.name,
	    SUM(l.quantity)                                                        AS units,
	    SUM(ROUND(l.quantity * l.unit_price * (100 - l.discount) / 100, 2))    AS revenue
	FROM documents d
	JOIN line_items l ON l.document_id = d.id
	JOIN products   p ON p.id          = l.product_id
	WHERE d.kind = 'SALE'
	  AND d.created_at >= $1 AND d.created_at < $2
	GROUP BY p.id, p.reference, p.name
	ORDER BY units DESC, p.id
	LIMIT $3`

	rows, err := r.pool.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.TopProducts: %w", err)
	}
	defer rows.Close()

	var results []repository.TopProductResult
	for rows.Next() {
		var row repository.TopProductResult
		if err := rows.Scan(&row.ProductID, &row.Reference, &row.Name, &row.Units, &row.Revenue); err != nil {
			return nil, fmt.Errorf("analytics.TopProducts scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// StockValue valor del stock activo a precio de compra.
func (r *AnalyticsRepo) StockValue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(stock * purchase_price), 0) FROM products WHERE active`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("analytics.StockValue: %w", err)
	}
	return total, nil
}
