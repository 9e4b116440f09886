package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biomed-stock/internal/application/dto"
	"github.com/jhoicas/biomed-stock/internal/application/usecase"
	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/infrastructure/memory"
)

func TestCustomerUseCase(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewCustomerUseCase(store.Customers())
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateCustomerRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := uc.Create(ctx, dto.CreateCustomerRequest{Company: " Hospital Central ", City: "Dakar"})
	require.NoError(t, err)
	assert.Equal(t, "Hospital Central", c.Company)
	assert.True(t, c.Active)

	_, err = uc.Create(ctx, dto.CreateCustomerRequest{FirstName: "Awa", LastName: "Diop"})
	require.NoError(t, err)

	got, err := uc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dakar", got.City)

	_, err = uc.GetByID(ctx, "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.List(ctx, "central", 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)
}

func TestUserUseCase_SetActive(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Users().Create(ctx, &entity.User{ID: "u1", Username: "tec", Email: "tec@biomed.test", Role: entity.RoleTechnician, Active: true}))
	uc := usecase.NewUserUseCase(store.Users())

	u, err := uc.SetActive(ctx, "u1", false)
	require.NoError(t, err)
	assert.False(t, u.Active)

	list, err := uc.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Active)

	_, err = uc.SetActive(ctx, "u9", true)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
