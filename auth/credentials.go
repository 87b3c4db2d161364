package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"pbank/models"
	"pbank/store"
)

// ErrInvalidCredentials covers both an unknown username and a wrong
// password, so a caller probing /login cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials verifies login attempts against stored bcrypt hashes.
type Credentials struct {
	users store.Users
}

func NewCredentials(users store.Users) *Credentials {
	return &Credentials{users: users}
}

func (c *Credentials) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := c.users.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// HashPassword computes a bcrypt hash at the default cost. The result
// encodes algorithm, cost and salt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
