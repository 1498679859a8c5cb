package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/personal-task-api/internal/auth"
	"github.com/yukikurage/personal-task-api/internal/repository"
	itestutil "github.com/yukikurage/personal-task-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-jwt-secret-0123456789abcdefghij"

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	db := itestutil.NewDB(t)
	hasher := auth.NewPasswordHasherWithCost(bcrypt.MinCost)
	userRepo := repository.NewUserRepository(db)
	users := NewUserService(userRepo, hasher)
	svc := NewAuthService(userRepo, hasher, auth.NewTokenService(testJWTSecret, time.Hour))
	ctx := context.Background()

	admin, _, err := users.EnsureAdmin(ctx, "root", "", "rootpassword")
	require.NoError(t, err)

	result, err := svc.Login(ctx, LoginInput{Username: "root", Password: "rootpassword"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, result.User.ID)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	principal, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.Principal{UserID: admin.ID, IsAdmin: true}, principal)

	_, err = svc.Login(ctx, LoginInput{Username: "root", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Username: "nobody", Password: "rootpassword"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_ResolveDeletedUser(t *testing.T) {
	db := itestutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	svc := NewAuthService(userRepo, auth.NewPasswordHasherWithCost(bcrypt.MinCost), auth.NewTokenService(testJWTSecret, time.Hour))
	ctx := context.Background()

	user := itestutil.CreateUser(t, db, "gone", false)
	require.NoError(t, userRepo.Delete(ctx, user.ID))

	_, err := svc.ResolvePrincipal(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
