package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"minisocial/internal/config"
	"minisocial/internal/model"
)

// AuthService issues signed access tokens.
type AuthService struct {
	config *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{config: cfg}
}

// GenerateAccessToken signs an HS256 token carrying the user id.
func (s *AuthService) GenerateAccessToken(userID int64) (*model.AccessToken, error) {
	issuedAt := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     issuedAt.Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":     issuedAt.Unix(),
		"jti":     uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &model.AccessToken{
		Token:     signed,
		ExpiresIn: s.config.AccessTokenMaxAge,
	}, nil
}
