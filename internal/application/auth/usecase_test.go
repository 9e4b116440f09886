package auth_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biomed-stock/internal/application/auth"
	"github.com/jhoicas/biomed-stock/internal/application/dto"
	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/infrastructure/memory"
	"github.com/jhoicas/biomed-stock/pkg/jwt"
)

const secret = "test-secret"

func newAuth(t *testing.T) (*auth.AuthUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	uc := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "test"}, zerolog.Nop())
	return uc, store
}

func TestRegisterAndLogin(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{
		Username: "ana", Email: "Ana@Biomed.test", Password: "secreto123", Role: entity.RoleTechnician,
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@biomed.test", u.Email)
	assert.True(t, u.Active)

	resp, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@biomed.test", Password: "secreto123"})
	require.NoError(t, err)
	claims, err := jwt.Parse(secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, entity.RoleTechnician, claims.Role)
}

func TestRegister_DuplicateEmailAndBadRole(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()
	in := dto.RegisterRequest{Username: "ana", Email: "ana@biomed.test", Password: "secreto123", Role: entity.RoleManager}
	_, err := uc.RegisterUser(ctx, in)
	require.NoError(t, err)

	_, err = uc.RegisterUser(ctx, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	in.Email, in.Role = "otro@biomed.test", "ADMIN"
	_, err = uc.RegisterUser(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_Failures(t *testing.T) {
	uc, store := newAuth(t)
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "ana", Email: "ana@biomed.test", Password: "secreto123", Role: entity.RoleManager})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@biomed.test", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@biomed.test", Password: "mala"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	u, err := store.Users().GetByEmail(ctx, "ana@biomed.test")
	require.NoError(t, err)
	u.Active = false
	require.NoError(t, store.Users().Update(ctx, u))
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@biomed.test", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEnsureManager_OnlyOnEmptyBase(t *testing.T) {
	uc, store := newAuth(t)
	ctx := context.Background()

	require.NoError(t, uc.EnsureManager(ctx, "", ""))
	require.NoError(t, uc.EnsureManager(ctx, "jefe@biomed.test", "secreto123"))
	require.NoError(t, uc.EnsureManager(ctx, "otro@biomed.test", "secreto123"))

	users, err := store.Users().List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, entity.RoleManager, users[0].Role)
}
