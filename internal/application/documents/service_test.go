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
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

func repositoryFilter(kind entity.DocumentKind) repository.DocumentFilter {
	return repository.DocumentFilter{Kind: kind}
}

func TestService_CreateGetList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, entity.DocumentOrder, documents.Header{CustomerID: "c1", DeliveryAddress: "Av. Central 12"}, twoLines(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Clínica Norte", created.CustomerName)
	require.Len(t, created.Lines, 2)
	assert.Equal(t, "Tensiómetro", created.Lines[0].ProductName)
	assert.True(t, created.Lines[0].Subtotal.Equal(decimal.NewFromInt(20)))

	got, err := f.service.Get(ctx, entity.DocumentOrder, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Av. Central 12", got.DeliveryAddress)

	_, err = f.service.Get(ctx, entity.DocumentQuote, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.service.List(ctx, repositoryFilter(entity.DocumentOrder))
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestService_DeleteLineRecomputesTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.service.Create(ctx, entity.DocumentSale, documents.Header{}, twoLines(), "u1")
	require.NoError(t, err)
	require.Equal(t, 4, f.stock(t, "B"))

	var lineB string
	for _, l := range created.Lines {
		if l.ProductID == "B" {
			lineB = l.ID
		}
	}
	updated, err := f.service.DeleteLine(ctx, entity.DocumentSale, created.ID, lineB, "u1")
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	assert.True(t, updated.Total.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 5, f.stock(t, "B"))
	assert.Equal(t, 3, f.stock(t, "A"))

	_, err = f.service.DeleteLine(ctx, entity.DocumentSale, created.ID, updated.Lines[0].ID, "u1")
	assert.ErrorIs(t, err, domain.ErrNoLines)

	_, err = f.service.DeleteLine(ctx, entity.DocumentSale, created.ID, "no-such-line", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_DeleteSaleReturnsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.service.Create(ctx, entity.DocumentSale, documents.Header{}, twoLines(), "u1")
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, entity.DocumentSale, created.ID, "u1"))
	assert.Equal(t, 5, f.stock(t, "A"))
	assert.Equal(t, 5, f.stock(t, "B"))

	_, err = f.service.Get(ctx, entity.DocumentSale, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	movs, err := f.store.Movements().ListByReference(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 4)
}
