package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vitrinehub/vitrine-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintToken signs the shopper-session identifier into a JWT for the session
// cookie. The identifier travels as the subject claim.
func MintToken(cfg config.SessionConfig, now time.Time, sessionID string) (string, error) {
	if cfg.TokenSecret == "" {
		return "", fmt.Errorf("session token secret is required")
	}
	if cfg.TokenIssuer == "" {
		return "", fmt.Errorf("session token issuer is required")
	}
	if cfg.TokenTTL <= 0 {
		return "", fmt.Errorf("session token ttl must be positive")
	}
	if sessionID == "" {
		return "", fmt.Errorf("session id is required")
	}

	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		Issuer:    cfg.TokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL)),
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.TokenSecret))
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// ParseToken validates the cookie token and returns the session identifier.
func ParseToken(cfg config.SessionConfig, tokenString string) (string, error) {
	if cfg.TokenSecret == "" {
		return "", fmt.Errorf("session token secret is required")
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.TokenSecret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.TokenIssuer),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("session token has no subject")
	}
	return claims.Subject, nil
}
