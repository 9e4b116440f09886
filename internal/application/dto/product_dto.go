package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. InitialStock se registra como entrada.
type CreateProductRequest struct {
	Reference         string          `json:"reference" validate:"required,max=50"`
	Barcode           string          `json:"barcode" validate:"omitempty,max=50"`
	Name              string          `json:"name" validate:"required,min=1,max=200"`
	Description       string          `json:"description"`
	CategoryID        string          `json:"category_id" validate:"omitempty,uuid"`
	Brand             string          `json:"brand" validate:"omitempty,max=100"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	SalePrice         decimal.Decimal `json:"sale_price"`
	InitialStock      int             `json:"initial_stock" validate:"min=0"`
	LowStockThreshold *int            `json:"low_stock_threshold" validate:"omitempty,min=0"`
}

// UpdateProductRequest entrada para actualizar un producto.
// Stock, si viene, se aplica como ajuste en el libro de stock.
type UpdateProductRequest struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Barcode           *string          `json:"barcode" validate:"omitempty,max=50"`
	Description       *string          `json:"description"`
	CategoryID        *string          `json:"category_id" validate:"omitempty,uuid"`
	Brand             *string          `json:"brand" validate:"omitempty,max=100"`
	PurchasePrice     *decimal.Decimal `json:"purchase_price"`
	SalePrice         *decimal.Decimal `json:"sale_price"`
	LowStockThreshold *int             `json:"low_stock_threshold" validate:"omitempty,min=0"`
	Active            *bool            `json:"active"`
	Stock             *int             `json:"stock" validate:"omitempty,min=0"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                string          `json:"id"`
	Reference         string          `json:"reference"`
	Barcode           string          `json:"barcode,omitempty"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	CategoryID        string          `json:"category_id,omitempty"`
	Brand             string          `json:"brand,omitempty"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	SalePrice         decimal.Decimal `json:"sale_price"`
	MarginPercent     decimal.Decimal `json:"margin_percent"`
	Stock             int             `json:"stock"`
	StockValue        decimal.Decimal `json:"stock_value"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	LowStock          bool            `json:"low_stock"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CreateCategoryRequest entrada para crear una categoría.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
