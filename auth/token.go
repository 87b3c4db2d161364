package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers malformed tokens, wrong signatures and
	// tampered payloads alike.
	ErrTokenInvalid = errors.New("token invalid")
)

const (
	useAccess  = "access"
	useRefresh = "refresh"
)

// claims adds a token_use discriminator to the registered set, so a
// long-lived refresh token cannot double as a Bearer credential.
type claims struct {
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates stateless HS256 session tokens. There is
// no revocation list: a token stays valid until its expiry, and logout is a
// client-side discard.
type TokenManager struct {
	secret []byte
	ttl    time.Duration

	// Now is the clock used for issuance and expiry checks. Tests swap it
	// out; everything else leaves it at time.Now.
	Now func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		Now:    time.Now,
	}
}

// Issue signs an access token carrying the user's ID and the default expiry.
func (m *TokenManager) Issue(userID uuid.UUID) (string, error) {
	return m.issue(userID, useAccess, m.ttl)
}

// IssueRefresh signs a refresh token. It carries a different token_use value,
// so Validate rejects it on protected routes.
func (m *TokenManager) IssueRefresh(userID uuid.UUID, ttl time.Duration) (string, error) {
	return m.issue(userID, useRefresh, ttl)
}

func (m *TokenManager) issue(userID uuid.UUID, use string, ttl time.Duration) (string, error) {
	c := claims{
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(m.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(m.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature and expiry on an access token and returns the
// user ID it asserts. No storage lookup is involved.
func (m *TokenManager) Validate(tokenString string) (uuid.UUID, error) {
	return m.validate(tokenString, useAccess)
}

// ValidateRefresh is Validate for refresh tokens.
func (m *TokenManager) ValidateRefresh(tokenString string) (uuid.UUID, error) {
	return m.validate(tokenString, useRefresh)
}

func (m *TokenManager) validate(tokenString, use string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithTimeFunc(func() time.Time { return m.Now() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrTokenExpired
		}
		return uuid.Nil, ErrTokenInvalid
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.TokenUse != use {
		return uuid.Nil, ErrTokenInvalid
	}
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return userID, nil
}
