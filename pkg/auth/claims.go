package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType separates access from refresh tokens so one cannot stand in for the other.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenPayload captures the data available when minting a JWT.
type TokenPayload struct {
	UserID    uuid.UUID
	SessionID string
}

// TokenClaims is the typed JWT body. The subject is the user id and the jti is
// the session id; nothing else about the user travels in the token.
type TokenClaims struct {
	Type TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *TokenClaims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject: %w", err)
	}
	return id, nil
}

// SessionID returns the jti claim.
func (c *TokenClaims) SessionID() string {
	return c.ID
}
