package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biomed-stock/internal/domain/entity"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Query        string // referencia, nombre o código de barras
	CategoryID   string
	OnlyActive   bool
	OnlyLowStock bool
	Limit        int
	Offset       int
}

// ProductRepository puerto de persistencia de productos.
// Los métodos Get devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate lee y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetByReference(ctx context.Context, reference string) (*entity.Product, error)
	// Update guarda los datos de catálogo. Nunca escribe Stock.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock solo debe llamarlo el libro de stock, junto con el movimiento.
	UpdateStock(ctx context.Context, productID string, stock int) error
	UpdatePurchasePrice(ctx context.Context, productID string, price decimal.Decimal) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}
