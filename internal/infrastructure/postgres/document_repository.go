package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentColumns = `id, kind, number, customer_id, status, payment_mode, delivery_date,
	delivery_address, valid_until, notes, total, created_by, created_at, updated_at`

// DocumentRepo cabeceras y líneas de pedidos, ventas y cotizaciones (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	var kind string
	var customerID, createdBy *string
	err := row.Scan(
		&d.ID, &kind, &d.Number, &customerID, &d.Status, &d.PaymentMode, &d.DeliveryDate,
		&d.DeliveryAddress, &d.ValidUntil, &d.Notes, &d.Total, &createdBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Kind = entity.DocumentKind(kind)
	d.CustomerID = deref(customerID)
	d.CreatedBy = deref(createdBy)
	return &d, nil
}

// Create persiste la cabecera. El número es único entre todos los tipos.
func (r *DocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		d.ID, string(d.Kind), d.Number, nullable(d.CustomerID), d.Status, d.PaymentMode, d.DeliveryDate,
		d.DeliveryAddress, d.ValidUntil, d.Notes, d.Total, nullable(d.CreatedBy), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número %s", domain.ErrDuplicate, d.Number)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) getOne(ctx context.Context, query, op, id string) (*entity.Document, error) {
	if !validID(id) {
		return nil, nil
	}
	d, err := scanDocument(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// GetByID obtiene una cabecera por ID.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, "get document", id)
}

// GetForUpdate bloquea la cabecera hasta el fin de la transacción.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, "lock document", id)
}

// Update guarda cabecera y total.
func (r *DocumentRepo) Update(ctx context.Context, d *entity.Document) error {
	query := `
		UPDATE documents SET customer_id = $2, status = $3, payment_mode = $4, delivery_date = $5,
			delivery_address = $6, valid_until = $7, notes = $8, total = $9, updated_at = $10
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		d.ID, nullable(d.CustomerID), d.Status, d.PaymentMode, d.DeliveryDate,
		d.DeliveryAddress, d.ValidUntil, d.Notes, d.Total, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List cabeceras filtradas, más recientes primero.
func (r *DocumentRepo) List(ctx context.Context, f repository.DocumentFilter) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE 1 = 1`
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.Kind != "" {
		add("kind = $%d", string(f.Kind))
	}
	if (f.CustomerID != "" && !validID(f.CustomerID)) || (f.CreatedBy != "" && !validID(f.CreatedBy)) {
		return nil, nil
	}
	if f.CustomerID != "" {
		add("customer_id = $%d", f.CustomerID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.CreatedBy != "" {
		add("created_by = $%d", f.CreatedBy)
	}
	query += " ORDER BY created_at DESC, number DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var list []*entity.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// Delete elimina la cabecera; las líneas caen por ON DELETE CASCADE.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// LastNumberWithPrefix mayor número con ese prefijo, comparando primero por longitud.
func (r *DocumentRepo) LastNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var last string
	err := r.q.QueryRow(ctx, `
		SELECT number FROM documents WHERE starts_with(number, $1)
		ORDER BY length(number) DESC, number DESC LIMIT 1`, prefix).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last document number: %w", err)
	}
	return last, nil
}

// ListLines líneas del documento por posición.
func (r *DocumentRepo) ListLines(ctx context.Context, documentID string) ([]*entity.LineItem, error) {
	if !validID(documentID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, document_id, product_id, position, quantity, unit_price, discount
		FROM line_items WHERE document_id = $1 ORDER BY position, id`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.LineItem
	for rows.Next() {
		var l entity.LineItem
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.ProductID, &l.Position, &l.Quantity, &l.UnitPrice, &l.Discount); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// CreateLine inserta una línea. Documento y producto deben existir.
func (r *DocumentRepo) CreateLine(ctx context.Context, l *entity.LineItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO line_items (id, document_id, product_id, position, quantity, unit_price, discount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.DocumentID, l.ProductID, l.Position, l.Quantity, l.UnitPrice, l.Discount,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert line: %w", err)
	}
	return nil
}

// DeleteLines borra todas las líneas del documento.
func (r *DocumentRepo) DeleteLines(ctx context.Context, documentID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM line_items WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}
	return nil
}
