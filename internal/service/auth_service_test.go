package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/presta-go-api/internal/dto"
	"github.com/noah-isme/presta-go-api/internal/models"
)

func newAuthService(users *fakeUserRepo) AuthService {
	return NewAuthService(users, validator.New(validator.WithRequiredStructEnabled()), "access-secret", "refresh-secret", testLogger())
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users)

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Alice Johnson",
		Email:    "Alice@Example.com",
		Password: "correct-horse",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleStudent, registered.Role)
	require.Equal(t, "alice@example.com", registered.Email, "emails are stored lowercased")

	tokens, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	require.Equal(t, registered.ID, tokens.User.ID)

	parsed, err := jwt.Parse(tokens.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("access-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, models.RoleStudent, claims["role"])
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users)

	payload := dto.RegisterRequest{
		Name:     "Alice Johnson",
		Email:    "alice@example.com",
		Password: "correct-horse",
		Role:     models.RoleStudent,
	}

	_, err := svc.Register(context.Background(), payload)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), payload)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthServiceRegisterRejectsUnknownRole(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Alice Johnson",
		Email:    "alice@example.com",
		Password: "correct-horse",
		Role:     "admin",
	})
	require.Error(t, err)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Alice Johnson",
		Email:    "alice@example.com",
		Password: "correct-horse",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-horse",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
