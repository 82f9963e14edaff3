package session

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens signs and verifies the session cookie. The token names a session
// id and nothing else.
type Tokens struct {
	secret []byte
}

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewTokens uses secret when given, otherwise a random per-process key, in
// which case sessions do not survive a restart.
func NewTokens(secret string) (*Tokens, error) {
	if secret != "" {
		return &Tokens{secret: []byte(secret)}, nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	return &Tokens{secret: key}, nil
}

func (t *Tokens) Sign(sessionID string, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	return token.SignedString(t.secret)
}

// Verify returns the session id of a valid, unexpired token.
func (t *Tokens) Verify(raw string) (string, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || c.SessionID == "" {
		return "", ErrNoSession
	}
	return c.SessionID, nil
}
