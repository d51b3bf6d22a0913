package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer   = "chat-server"
	tokenTTL = 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller as established by the chat server's
// token issuance.
type Identity struct {
	UserID int64
	WsID   int64
}

type claims struct {
	UserID int64 `json:"uid"`
	WsID   int64 `json:"ws_id"`
	jwt.RegisteredClaims
}

// TokenManager verifies bearer tokens issued by the chat server. Issue exists
// for the write path and for tests; this service only ever calls Verify.
type TokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// Verify parses and validates a bearer token, returning the identity it
// carries.
func (m *TokenManager) Verify(tokenString string) (*Identity, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || c.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: c.UserID, WsID: c.WsID}, nil
}

// Issue signs a token for the given identity.
func (m *TokenManager) Issue(identity *Identity) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: identity.UserID,
		WsID:   identity.WsID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	})

	return token.SignedString(m.secret)
}
