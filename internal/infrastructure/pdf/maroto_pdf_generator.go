// Package pdf genera cotizaciones, facturas y remisiones con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + contacto  │  Tipo + N° + Fecha           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + dirección + contacto                     │
//	│  DATOS: entrega / validez / modo de pago según el tipo      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ref | Descripción | Cant | P.Unit | Desc% | Importe │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Total HT / TVA / Total TTC                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/biomed-stock/internal/application/documents"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	appconfig "github.com/jhoicas/biomed-stock/pkg/config"
)

var _ documents.PDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 94, Blue: 110}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa documents.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	company appconfig.DocumentsConfig
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador con los datos de la empresa emisora.
func NewMarotoPDFGenerator(cfg appconfig.DocumentsConfig) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{company: cfg, printer: message.NewPrinter(language.Spanish)}
}

// Generate genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) Generate(_ context.Context, p documents.Printable) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(Title(p.Document.Kind)+" "+p.Document.Number, true).
		WithAuthor(g.company.CompanyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(p.Document))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(p.Customer))
	m.AddRows(g.detailsRow(p.Document))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range g.tableDetailRows(p.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(p.Totals))

	if p.Document.Notes != "" {
		m.AddRows(row.New(12).Add(col.New(12).Add(
			text.New("Observaciones: "+p.Document.Notes, props.Text{Size: 8, Top: 3, Color: colorGray}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// Title título impreso según el tipo de documento.
func Title(kind entity.DocumentKind) string {
	switch kind {
	case entity.DocumentQuote:
		return "COTIZACIÓN"
	case entity.DocumentSale:
		return "FACTURA"
	default:
		return "REMISIÓN"
	}
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa (izq) y tipo + número + fecha (der).
func (g *MarotoPDFGenerator) headerRow(doc *entity.Document) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.company.CompanyName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Tel: %s",
				nonEmpty(g.company.CompanyAddress, "-"),
				nonEmpty(g.company.CompanyPhone, "-"),
			), props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(Title(doc.Kind), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+doc.CreatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// customerRow: datos del cliente; venta de mostrador sin cliente.
func customerRow(c *entity.Customer) core.Row {
	name, contact := "Cliente de mostrador", ""
	if c != nil {
		name = c.DisplayName()
		contact = fmt.Sprintf("%s %s   |   Email: %s   |   Tel: %s",
			nonEmpty(c.Address, "-"), c.City,
			nonEmpty(c.Email, "-"),
			nonEmpty(c.Phone, "-"),
		)
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(contact, props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

// detailsRow: entrega para remisiones, validez para cotizaciones, pago para facturas.
func (g *MarotoPDFGenerator) detailsRow(doc *entity.Document) core.Row {
	var info string
	switch doc.Kind {
	case entity.DocumentOrder:
		info = "Entrega: " + formatDate(doc.DeliveryDate) + "   |   Dirección: " + nonEmpty(doc.DeliveryAddress, "-")
	case entity.DocumentQuote:
		info = "Válida hasta: " + formatDate(doc.ValidUntil)
	case entity.DocumentSale:
		info = "Modo de pago: " + nonEmpty(doc.PaymentMode, "-")
	}
	return row.New(8).Add(col.New(12).Add(
		text.New(info+"   |   Estado: "+doc.Status, props.Text{Size: 8, Top: 2}),
	))
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ref.", 2, align.Left),
		h("Descripción", 4, align.Left),
		h("Cant.", 1, align.Center),
		h("Precio Unit.", 2, align.Right),
		h("Desc.%", 1, align.Center),
		h("Importe", 2, align.Right),
	)
}

// tableDetailRows: una fila por línea.
func (g *MarotoPDFGenerator) tableDetailRows(lines []documents.PrintLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(l.Reference, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(fmt.Sprint(l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(g.money(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(l.Discount.StringFixed(0), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(g.money(l.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: HT, TVA y TTC alineados a la derecha.
func (g *MarotoPDFGenerator) totalsRow(t documents.Totals) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	rate := t.VATRate.Mul(decimal.NewFromInt(100)).StringFixed(0)
	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Total HT:", 1),
			label("TVA "+rate+"%:", 7),
			text.New("Total TTC:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 13}),
		),
		col.New(3).Add(
			value(g.money(t.HT), 1),
			value(g.money(t.VAT), 7),
			text.New(g.money(t.TTC), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 13}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money importe sin decimales con separador de miles local y la moneda configurada.
func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	return g.printer.Sprintf("%d", d.Round(0).IntPart()) + " " + g.company.Currency
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02/01/2006")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
