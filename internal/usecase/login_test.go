package usecase

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

const testSecret = "test-secret"

func newLoginFixture(t *testing.T, password string) *LoginUseCase {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewLoginUseCase("admin@contactship.com", string(hash), testSecret)
}

func TestLoginIssuesToken(t *testing.T) {
	uc := newLoginFixture(t, "s3cret")

	out, err := uc.Execute(context.Background(), LoginInput{
		Email:    "admin@contactship.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.AccessToken)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(out.AccessToken, claims, func(_ *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "admin@contactship.com", claims["email"])
	assert.Equal(t, "admin@contactship.com", claims["sub"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	uc := newLoginFixture(t, "s3cret")

	_, err := uc.Execute(context.Background(), LoginInput{
		Email:    "admin@contactship.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	uc := newLoginFixture(t, "s3cret")

	_, err := uc.Execute(context.Background(), LoginInput{
		Email:    "intruder@example.com",
		Password: "s3cret",
	})
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
}

func TestLoginRejectsWhenNoAdminConfigured(t *testing.T) {
	uc := NewLoginUseCase("admin@contactship.com", "", testSecret)

	_, err := uc.Execute(context.Background(), LoginInput{
		Email:    "admin@contactship.com",
		Password: "anything",
	})
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
}
