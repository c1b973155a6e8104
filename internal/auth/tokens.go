// Package auth issues and validates the bearer tokens that scope agent
// ownership, plus the password hashing behind them.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService signs and validates HS256 session tokens.
type TokenService struct {
	secretKey  string
	expiration time.Duration
}

// Claims are the JWT claims carried by a session token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// NewTokenService creates a token service. expiration defaults to 24h.
func NewTokenService(secretKey string, expiration time.Duration) *TokenService {
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &TokenService{secretKey: secretKey, expiration: expiration}
}

// Generate signs a session token for the given user.
func (s *TokenService) Generate(userID, email string) (string, time.Time, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   "session",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(s.secretKey))
	return tokenStr, claims.ExpiresAt.Time, err
}

// Validate parses and verifies a session token.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(s.secretKey), nil
		})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
