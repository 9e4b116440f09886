package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentHeaderInput campos de cabecera leídos del formulario.
// Las líneas viajan aparte como line_<índice>_<campo>.
type DocumentHeaderInput struct {
	Number          string `form:"number"`
	CustomerID      string `form:"customer_id"`
	Status          string `form:"status"`
	PaymentMode     string `form:"payment_mode"`
	DeliveryDate    string `form:"delivery_date"` // YYYY-MM-DD
	DeliveryAddress string `form:"delivery_address"`
	ValidUntil      string `form:"valid_until"` // YYYY-MM-DD
	Notes           string `form:"notes"`
}

// LineItemResponse línea de documento.
type LineItemResponse struct {
	ID          string          `json:"id"`
	Position    int             `json:"position"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// DocumentResponse pedido, venta o cotización con sus líneas.
type DocumentResponse struct {
	ID              string             `json:"id"`
	Kind            string             `json:"kind"`
	Number          string             `json:"number"`
	CustomerID      string             `json:"customer_id,omitempty"`
	CustomerName    string             `json:"customer_name,omitempty"`
	Status          string             `json:"status"`
	PaymentMode     string             `json:"payment_mode,omitempty"`
	DeliveryDate    *time.Time         `json:"delivery_date,omitempty"`
	DeliveryAddress string             `json:"delivery_address,omitempty"`
	ValidUntil      *time.Time         `json:"valid_until,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	Total           decimal.Decimal    `json:"total"`
	CreatedBy       string             `json:"created_by"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	Lines           []LineItemResponse `json:"lines"`
	Warnings        []string           `json:"warnings,omitempty"`
}

// DocumentListResponse lista paginada de documentos (sin líneas).
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ReconcileErrorResponse 422: mensajes por línea y el formulario enviado para volver a mostrarlo.
type ReconcileErrorResponse struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Errors   []string          `json:"errors"`
	Warnings []string          `json:"warnings,omitempty"`
	Form     map[string]string `json:"form"`
}
