package documents

import "github.com/jhoicas/biomed-stock/internal/domain/entity"

// StockCheck qué hacer cuando una línea pide más de lo disponible.
type StockCheck int

const (
	StockCheckNone   StockCheck = iota // no se compara con el stock
	StockCheckWarn                     // se acepta con aviso
	StockCheckReject                   // se rechaza el documento entero
)

// Policy comportamiento de stock por tipo de documento.
type Policy struct {
	StockCheck StockCheck
	// MovesStock cada línea genera una salida (OUT) y la edición o borrado las devuelve (RETURN).
	MovesStock bool
	// LockProducts lee los productos con SELECT FOR UPDATE, en orden de id.
	LockProducts bool
	// RequiresCustomer la cabecera exige un cliente existente.
	RequiresCustomer bool
}

// PolicyFor política de cada tipo. Los pedidos son demanda todavía no servida:
// avisan del faltante pero no bloquean ni mueven stock, así que leen sin bloqueo.
func PolicyFor(kind entity.DocumentKind) Policy {
	switch kind {
	case entity.DocumentSale:
		return Policy{StockCheck: StockCheckReject, MovesStock: true, LockProducts: true}
	case entity.DocumentOrder:
		return Policy{StockCheck: StockCheckWarn, RequiresCustomer: true}
	case entity.DocumentQuote:
		return Policy{StockCheck: StockCheckNone, RequiresCustomer: true}
	}
	return Policy{}
}
