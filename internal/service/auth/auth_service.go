package auth

import (
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
	"time"
)

// Claims are carried by insight tokens.
type Claims struct {
	jwt.StandardClaims
	Scope string `json:"scope"`
}

const ScopeInsight = "insight"

type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// Enabled reports whether a secret is configured. Without one the insight
// endpoint is open.
func (svc *Service) Enabled() bool {
	return len(svc.secret) > 0
}

func (svc *Service) IssueToken(subject string, ttl time.Duration) (string, error) {
	if !svc.Enabled() {
		return "", fmt.Errorf("no secret configured: %w", constants.ErrUnauthorized)
	}

	now := time.Now()
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:  subject,
			IssuedAt: now.Unix(),
		},
		Scope: ScopeInsight,
	}
	if ttl > 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	if err != nil {
		return "", fmt.Errorf("jwt.SignedString: %w", err)
	}
	return token, nil
}

// ParseToken verifies an HS256 token and its scope. Every failure unwraps to
// ErrUnauthorized.
func (svc *Service) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return svc.secret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, fmt.Errorf("token expired: %w", constants.ErrUnauthorized)
		}
		return nil, fmt.Errorf("invalid token: %w", constants.ErrUnauthorized)
	}

	if claims.Scope != ScopeInsight {
		return nil, fmt.Errorf("token scope %q: %w", claims.Scope, constants.ErrUnauthorized)
	}
	return claims, nil
}
