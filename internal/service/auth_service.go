package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/finsight/fraudlens/internal/models"
	"github.com/finsight/fraudlens/pkg/config"
	appErrors "github.com/finsight/fraudlens/pkg/errors"
)

// AuthService validates bearer tokens issued by the external identity
// provider. Token issuance and user management live outside this service.
type AuthService struct {
	config config.JWTConfig
}

// NewAuthService constructs an AuthService.
func NewAuthService(cfg config.JWTConfig) *AuthService {
	return &AuthService{config: cfg}
}

// ValidateToken parses and verifies an access token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	options := []jwt.ParserOption{}
	if s.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(s.config.Issuer))
	}
	if len(s.config.Audience) > 0 {
		options = append(options, jwt.WithAudience(s.config.Audience[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, options...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}
