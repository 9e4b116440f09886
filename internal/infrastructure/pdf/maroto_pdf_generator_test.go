package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biomed-stock/internal/application/documents"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	appconfig "github.com/jhoicas/biomed-stock/pkg/config"
)

func TestMarotoPDFGenerator_Generate(t *testing.T) {
	g := NewMarotoPDFGenerator(appconfig.DocumentsConfig{
		CompanyName: "Biomed Equipos",
		Currency:    "F CFA",
		VATRate:     decimal.RequireFromString("0.18"),
	})
	delivery := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, kind := range []entity.DocumentKind{entity.DocumentOrder, entity.DocumentSale, entity.DocumentQuote} {
		t.Run(string(kind), func(t *testing.T) {
			p := documents.Printable{
				Document: &entity.Document{
					Kind: kind, Number: "N-1", Status: kind.DefaultStatus(),
					DeliveryDate: &delivery, CreatedAt: time.Now(),
				},
				Lines: []documents.PrintLine{
					{Reference: "TEN-01", Name: "Tensiómetro", Quantity: 2, UnitPrice: decimal.NewFromInt(12500), Subtotal: decimal.NewFromInt(25000)},
				},
				Totals: documents.ComputeTotals(decimal.NewFromInt(25000), decimal.RequireFromString("0.18")),
			}
			out, err := g.Generate(context.Background(), p)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
		})
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "COTIZACIÓN", Title(entity.DocumentQuote))
	assert.Equal(t, "FACTURA", Title(entity.DocumentSale))
	assert.Equal(t, "REMISIÓN", Title(entity.DocumentOrder))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", formatDate(nil))
	d := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "05/01/2026", formatDate(&d))
}
