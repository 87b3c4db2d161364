package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"pbank/models"
)

// ErrNotFound is returned when a looked-up row does not exist. Any other
// error from a store is a storage failure and is surfaced as-is.
var ErrNotFound = errors.New("not found")

type Users interface {
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type Stocks interface {
	BySymbol(ctx context.Context, symbol string) (*models.Stock, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.Stock, error)
}

// TradeTx is the unit of work for one balance-checked mutation. It is scoped
// to a single user and holds that user's ledger exclusively until the
// enclosing Trade call returns, so a holding read through it cannot be
// invalidated by a concurrent append for the same user.
type TradeTx interface {
	Holding(stockID uuid.UUID) (int, error)
	Append(t *models.Transaction) error
}

type Transactions interface {
	// Trade runs fn inside a transaction that serializes all trades for the
	// given user. If fn returns an error nothing is persisted.
	Trade(ctx context.Context, userID uuid.UUID, fn func(tx TradeTx) error) error

	Holding(ctx context.Context, userID, stockID uuid.UUID) (int, error)

	// ListByUser returns the user's transactions ordered by creation time,
	// oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
}
