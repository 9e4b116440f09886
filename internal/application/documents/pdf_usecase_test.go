package documents_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biomed-stock/internal/application/documents"
	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
)

type captureGenerator struct {
	got documents.Printable
}

func (g *captureGenerator) Generate(_ context.Context, doc documents.Printable) ([]byte, error) {
	g.got = doc
	return []byte("%PDF-1.3"), nil
}

func TestComputeTotals(t *testing.T) {
	tot := documents.ComputeTotals(decimal.NewFromInt(25000), decimal.RequireFromString("0.18"))
	assert.True(t, tot.VAT.Equal(decimal.NewFromInt(4500)))
	assert.True(t, tot.TTC.Equal(decimal.NewFromInt(29500)))
}

func TestPDFUseCase_Download(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.service.Create(ctx, entity.DocumentQuote, documents.Header{CustomerID: "c1"}, twoLines(), "u1")
	require.NoError(t, err)

	gen := &captureGenerator{}
	uc := documents.NewPDFUseCase(f.store.Documents(), f.store.Customers(), f.store.Products(), gen, decimal.RequireFromString("0.18"))

	body, name, err := uc.Download(ctx, entity.DocumentQuote, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(body))
	assert.Equal(t, "cotizacion_"+created.Number+".pdf", name)

	require.Len(t, gen.got.Lines, 2)
	assert.Equal(t, "TEN-01", gen.got.Lines[0].Reference)
	assert.True(t, gen.got.Totals.HT.Equal(decimal.NewFromInt(25)))
	assert.True(t, gen.got.Totals.TTC.Equal(decimal.RequireFromString("29.5")))
	assert.Equal(t, "Clínica Norte", gen.got.Customer.DisplayName())

	_, _, err = uc.Download(ctx, entity.DocumentSale, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "factura_VTE-1.pdf", documents.Filename(entity.DocumentSale, "VTE-1"))
	assert.Equal(t, "remision_CMD-1.pdf", documents.Filename(entity.DocumentOrder, "CMD-1"))
}
