package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried inside a signed bearer token.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for the given actor. Used by the login
// surface and by tests; the engine itself only validates.
func GenerateToken(secret string, actor Actor, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: actor.ID.String(),
		Name:   actor.Name,
		Email:  actor.Email,
		Role:   string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}

// ValidateToken parses and verifies a bearer token and returns the actor it
// represents.
func ValidateToken(secret, tokenString string) (Actor, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}

		return []byte(secret), nil
	})
	if err != nil {
		return Actor{}, fmt.Errorf("parsing token: %w", err)
	}

	if !token.Valid {
		return Actor{}, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Actor{}, fmt.Errorf("parsing user id claim: %w", err)
	}

	return Actor{
		ID:    id,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  Role(claims.Role),
	}, nil
}
