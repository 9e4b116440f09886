package repository

import (
	"context"

	"github.com/jhoicas/biomed-stock/internal/domain/entity"
)

// DocumentFilter filtros del listado de documentos.
type DocumentFilter struct {
	Kind       entity.DocumentKind
	CustomerID string
	Status     string
	CreatedBy  string
	Limit      int
	Offset     int
}

// DocumentRepository puerto de persistencia de pedidos, ventas y cotizaciones con sus líneas.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	// GetForUpdate bloquea la cabecera para serializar ediciones del mismo documento.
	GetForUpdate(ctx context.Context, id string) (*entity.Document, error)
	// Update guarda cabecera y total.
	Update(ctx context.Context, doc *entity.Document) error
	List(ctx context.Context, filter DocumentFilter) ([]*entity.Document, error)
	// Delete elimina la cabecera y sus líneas.
	Delete(ctx context.Context, id string) error
	// LastNumberWithPrefix mayor número existente que empieza por prefix ("" si ninguno).
	LastNumberWithPrefix(ctx context.Context, prefix string) (string, error)

	ListLines(ctx context.Context, documentID string) ([]*entity.LineItem, error)
	CreateLine(ctx context.Context, line *entity.LineItem) error
	DeleteLines(ctx context.Context, documentID string) error
}
