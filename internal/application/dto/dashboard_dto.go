package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard según el perfil del usuario.
type DashboardSummaryDTO struct {
	Role string `json:"role"`

	// Stock (MANAGER, TECHNICIAN)
	LowStockCount int                          `json:"low_stock_count"`
	LowStock      []ReplenishmentSuggestionDTO `json:"low_stock,omitempty"`
	StockValue    *decimal.Decimal             `json:"stock_value,omitempty"`

	// Ventas del mes (MANAGER, COMMERCIAL_SHOWROOM)
	MonthlySales  *decimal.Decimal `json:"monthly_sales,omitempty"`
	SalesByMode   []SalesByModeDTO `json:"sales_by_mode,omitempty"`
	TopProducts   []TopProductDTO  `json:"top_products,omitempty"`
	PendingOrders int              `json:"pending_orders"`

	// Cotizaciones (MANAGER, COMMERCIAL_TERRAIN)
	OpenQuotes int `json:"open_quotes"`

	RecentMovements []MovementResponse `json:"recent_movements,omitempty"`
	DateLabel       string             `json:"date_label"`
}

// SalesByModeDTO ventas del mes por modo de pago.
type SalesByModeDTO struct {
	PaymentMode string          `json:"payment_mode"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
}

// TopProductDTO producto más vendido del mes.
type TopProductDTO struct {
	ProductID string          `json:"product_id"`
	Reference string          `json:"reference"`
	Name      string          `json:"name"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}
