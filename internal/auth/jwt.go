// Package auth issues and validates the service tokens the config API hands
// out to engine processes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"warden/internal/support"
)

const tokenLifetime = 24 * time.Hour

func secretKey() []byte {
	return []byte(support.GetEnv("JWT_SECRET", "warden-dev-secret"))
}

// GenerateServiceToken signs a token for an authenticated service identity.
func GenerateServiceToken(serviceID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"service_id": serviceID,
		"iat":        now.Unix(),
		"exp":        now.Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateJWT parses and verifies a token, returning its claims.
func ValidateJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secretKey(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
