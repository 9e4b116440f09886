package documents

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

// PrintLine línea lista para imprimir.
type PrintLine struct {
	Position  int
	Reference string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Subtotal  decimal.Decimal
}

// Totals importes del pie: HT es el total de las líneas, TVA = HT × tasa, TTC = HT + TVA.
type Totals struct {
	HT      decimal.Decimal
	VATRate decimal.Decimal
	VAT     decimal.Decimal
	TTC     decimal.Decimal
}

// ComputeTotals único cálculo de impuestos usado por todos los documentos impresos.
func ComputeTotals(ht, rate decimal.Decimal) Totals {
	vat := ht.Mul(rate).Round(2)
	return Totals{HT: ht, VATRate: rate, VAT: vat, TTC: ht.Add(vat)}
}

// Printable todo lo que necesita el generador.
type Printable struct {
	Document *entity.Document
	Customer *entity.Customer // nil en venta de mostrador
	Lines    []PrintLine
	Totals   Totals
}

// PDFGenerator puerto de salida hacia la librería de PDF.
type PDFGenerator interface {
	Generate(ctx context.Context, doc Printable) ([]byte, error)
}

// PDFUseCase arma cotizaciones, facturas (ventas) y remisiones (pedidos).
type PDFUseCase struct {
	documents repository.DocumentRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	generator PDFGenerator
	vatRate   decimal.Decimal
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	documents repository.DocumentRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	generator PDFGenerator,
	vatRate decimal.Decimal,
) *PDFUseCase {
	return &PDFUseCase{
		documents: documents,
		customers: customers,
		products:  products,
		generator: generator,
		vatRate:   vatRate,
	}
}

// Download genera el PDF del documento y su nombre de archivo.
func (uc *PDFUseCase) Download(ctx context.Context, kind entity.DocumentKind, id string) ([]byte, string, error) {
	p, err := uc.Printable(ctx, kind, id)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err := uc.generator.Generate(ctx, *p)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, Filename(kind, p.Document.Number), nil
}

// Printable carga cabecera, cliente y líneas con nombre de producto.
func (uc *PDFUseCase) Printable(ctx context.Context, kind entity.DocumentKind, id string) (*Printable, error) {
	doc, err := uc.documents.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener documento: %w", err)
	}
	if doc == nil || doc.Kind != kind {
		return nil, domain.ErrNotFound
	}

	var customer *entity.Customer
	if doc.CustomerID != "" {
		if customer, err = uc.customers.GetByID(ctx, doc.CustomerID); err != nil {
			return nil, fmt.Errorf("pdf: obtener cliente: %w", err)
		}
	}

	raw, err := uc.documents.ListLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener líneas: %w", err)
	}
	lines := make([]PrintLine, 0, len(raw))
	for _, l := range raw {
		pl := PrintLine{
			Position:  l.Position,
			Name:      "Producto " + l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			Subtotal:  l.Subtotal(),
		}
		if product, pErr := uc.products.GetByID(ctx, l.ProductID); pErr == nil && product != nil {
			pl.Name = product.Name
			pl.Reference = product.Reference
		}
		lines = append(lines, pl)
	}

	return &Printable{
		Document: doc,
		Customer: customer,
		Lines:    lines,
		Totals:   ComputeTotals(entity.SumSubtotals(raw), uc.vatRate),
	}, nil
}

// Filename nombre de descarga según el tipo.
func Filename(kind entity.DocumentKind, number string) string {
	switch kind {
	case entity.DocumentQuote:
		return "cotizacion_" + number + ".pdf"
	case entity.DocumentSale:
		return "factura_" + number + ".pdf"
	default:
		return "remision_" + number + ".pdf"
	}
}
