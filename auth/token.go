package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every verification failure: bad
// signature, malformed structure, unexpected algorithm or expiry.
// Callers cannot distinguish the reason.
var ErrInvalidToken = errors.New("invalid token")

// Claims carried by a session token. UserID identifies the account the
// token was issued for.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// TokenIssuer creates and verifies the signed tokens carried in the
// session cookie. The signing secret and token lifetime are fixed at
// construction and shared process-wide.
type TokenIssuer struct {
	secret   []byte
	duration time.Duration
}

func NewTokenIssuer(secret []byte, duration time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:   secret,
		duration: duration,
	}
}

// Duration returns the validity window of issued tokens. The session
// cookie MaxAge is derived from it.
func (t *TokenIssuer) Duration() time.Duration {
	return t.duration
}

// Issue signs a new token for the given user ID with the configured
// expiry.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.duration)),
		},
		UserID: userID,
	})
	return token.SignedString(t.secret)
}

// Verify parses and validates a token and returns the embedded user ID.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
