package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer mints and verifies the signed auth-token cookie set alongside
// the server-side session on login. The middleware falls back to it when the
// session store no longer has the session (e.g. after a restart).
type TokenIssuer struct {
	Issuer    string
	SecretKey string
	TTL       time.Duration
}

func NewTokenIssuer(issuer, secretKey string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{Issuer: issuer, SecretKey: secretKey, TTL: ttl}
}

// Mint signs a token whose subject is the user id.
func (t *TokenIssuer) Mint(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iss": t.Issuer,
		"iat": now.Unix(),
		"exp": now.Add(t.TTL).Unix(),
	})
	return token.SignedString([]byte(t.SecretKey))
}

// Verify parses a token string and returns the user id it was minted for.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(t.SecretKey), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims == nil {
		return "", fmt.Errorf("claims is not a map")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", fmt.Errorf("subject not found")
	}
	return sub, nil
}
