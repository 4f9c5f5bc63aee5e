package usecase

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

// LoginUseCase valida o único usuário admin (email + hash bcrypt vindos do
// ambiente) e emite um JWT HS256 de 24h.
type LoginUseCase struct {
	adminEmail string
	adminHash  string
	jwtSecret  []byte
	tokenTTL   time.Duration
}

func NewLoginUseCase(adminEmail, adminHash, jwtSecret string) *LoginUseCase {
	return &LoginUseCase{
		adminEmail: adminEmail,
		adminHash:  adminHash,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   24 * time.Hour,
	}
}

func (uc *LoginUseCase) Execute(_ context.Context, input LoginInput) (*LoginOutput, error) {
	if input.Email != uc.adminEmail || uc.adminHash == "" {
		return nil, entity.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(uc.adminHash), []byte(input.Password)); err != nil {
		return nil, entity.ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   input.Email,
		"email": input.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(uc.tokenTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{AccessToken: token}, nil
}
