package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind tipo de documento comercial con líneas.
type DocumentKind string

const (
	DocumentOrder DocumentKind = "ORDER" // pedido de cliente
	DocumentSale  DocumentKind = "SALE"  // venta de mostrador
	DocumentQuote DocumentKind = "QUOTE" // cotización
)

// Valid indica si el tipo es conocido.
func (k DocumentKind) Valid() bool {
	switch k {
	case DocumentOrder, DocumentSale, DocumentQuote:
		return true
	}
	return false
}

// Estados de pedido.
const (
	OrderPending   = "PENDING"
	OrderConfirmed = "CONFIRMED"
	OrderShipped   = "SHIPPED"
	OrderDelivered = "DELIVERED"
	OrderCancelled = "CANCELLED"
)

// Estados de cotización.
const (
	QuoteDraft    = "DRAFT"
	QuoteSent     = "SENT"
	QuoteAccepted = "ACCEPTED"
	QuoteRefused  = "REFUSED"
	QuoteExpired  = "EXPIRED"
)

// SaleCompleted único estado de una venta.
const SaleCompleted = "COMPLETED"

// Modos de pago de una venta.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentCheck    = "CHECK"
	PaymentTransfer = "TRANSFER"
	PaymentCredit   = "CREDIT"
)

var statusesByKind = map[DocumentKind][]string{
	DocumentOrder: {OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled},
	DocumentQuote: {QuoteDraft, QuoteSent, QuoteAccepted, QuoteRefused, QuoteExpired},
	DocumentSale:  {SaleCompleted},
}

// DefaultStatus estado inicial por tipo.
func (k DocumentKind) DefaultStatus() string {
	if s := statusesByKind[k]; len(s) > 0 {
		return s[0]
	}
	return ""
}

// ValidStatus indica si status aplica al tipo.
func (k DocumentKind) ValidStatus(status string) bool {
	for _, s := range statusesByKind[k] {
		if s == status {
			return true
		}
	}
	return false
}

// ValidPaymentMode indica si mode es un modo de pago conocido.
func ValidPaymentMode(mode string) bool {
	switch mode {
	case PaymentCash, PaymentCard, PaymentCheck, PaymentTransfer, PaymentCredit:
		return true
	}
	return false
}

// Document cabecera de pedido, venta o cotización.
// Total es la suma de los subtotales de sus líneas y se recalcula en cada conciliación.
type Document struct {
	ID              string
	Kind            DocumentKind
	Number          string
	CustomerID      string // obligatorio salvo en venta de mostrador
	Status          string
	PaymentMode     string     // SALE
	DeliveryDate    *time.Time // ORDER
	DeliveryAddress string     // ORDER
	ValidUntil      *time.Time // QUOTE
	Notes           string
	Total           decimal.Decimal
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
