package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

func TestRun_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", Reference: "REF-1", Active: true}))

	boom := errors.New("boom")
	err := s.Run(ctx, func(r repository.Repos) error {
		require.NoError(t, r.Products.UpdateStock(ctx, "p1", 7))
		require.NoError(t, r.Movements.Create(ctx, &entity.StockMovement{ID: "m1", ProductID: "p1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	hist, err := s.Movements().History(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestRun_CommitKeepsWritesAndSeq(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", Reference: "REF-1"}))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Run(ctx, func(r repository.Repos) error {
			return r.Movements.Create(ctx, &entity.StockMovement{ID: "m", ProductID: "p1"})
		}))
	}
	hist, err := s.Movements().History(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{hist[0].Seq, hist[1].Seq, hist[2].Seq})

	newest, err := s.Movements().ListByProduct(ctx, "p1", 2, 0)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, int64(3), newest[0].Seq)
}

func TestProductRepo_UpdateNeverWritesStock(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.Products()
	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "p1", Reference: "REF-1", Name: "A"}))
	require.NoError(t, repo.UpdateStock(ctx, "p1", 4))

	require.NoError(t, repo.Update(ctx, &entity.Product{ID: "p1", Reference: "REF-1", Name: "B", Stock: 99}))
	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "B", p.Name)
	assert.Equal(t, 4, p.Stock)
}

func TestProductRepo_DuplicateReferenceAndDeleteConflict(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.Products()
	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "p1", Reference: "REF-1"}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.Product{ID: "p2", Reference: "ref-1"}), domain.ErrDuplicate)

	require.NoError(t, s.Movements().Create(ctx, &entity.StockMovement{ID: "m1", ProductID: "p1"}))
	assert.ErrorIs(t, repo.Delete(ctx, "p1"), domain.ErrConflict)
}

func TestProductRepo_ListFilters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.Products()
	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "a", Reference: "TEN-01", Name: "Tensiómetro", Stock: 2, LowStockThreshold: 5, Active: true}))
	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "b", Reference: "OXI-01", Name: "Oxímetro", Stock: 50, LowStockThreshold: 5, Active: true}))
	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "c", Reference: "OLD-01", Name: "Antiguo", Stock: 0, LowStockThreshold: 5, Active: false}))

	low, err := repo.List(ctx, repository.ProductFilter{OnlyActive: true, OnlyLowStock: true})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "a", low[0].ID)

	found, err := repo.List(ctx, repository.ProductFilter{Query: "oxi"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "b", found[0].ID)

	paged, err := repo.List(ctx, repository.ProductFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "b", paged[0].ID)
}

func TestDocumentRepo_LastNumberWithPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.Documents()
	for i, n := range []string{"DEV20260009", "DEV202610000", "DEV20250042", "CMD-1"} {
		require.NoError(t, repo.Create(ctx, &entity.Document{ID: string(rune('a' + i)), Number: n}))
	}
	last, err := repo.LastNumberWithPrefix(ctx, "DEV2026")
	require.NoError(t, err)
	assert.Equal(t, "DEV202610000", last)

	none, err := repo.LastNumberWithPrefix(ctx, "DEV2030")
	require.NoError(t, err)
	assert.Empty(t, none)
}
