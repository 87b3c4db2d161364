// Package ledger enforces the one domain invariant of the service: a user's
// net holding of a stock, derived from the append-only transaction log, never
// goes negative.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pbank/models"
	"pbank/store"
)

var (
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrStockNotFound        = errors.New("stock not found")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)

// Ledger executes buy/sell as balance-checked mutations of the transaction
// log. The check-then-append runs inside a single store transaction so two
// concurrent sells cannot both pass the holding check.
type Ledger struct {
	stocks       store.Stocks
	transactions store.Transactions
}

func New(stocks store.Stocks, transactions store.Transactions) *Ledger {
	return &Ledger{stocks: stocks, transactions: transactions}
}

// Buy appends a buy transaction. There is no cash constraint: this is a
// share-count ledger, not a funded brokerage, so a buy only needs a positive
// quantity and an existing stock.
func (l *Ledger) Buy(ctx context.Context, userID, stockID uuid.UUID, quantity int) (*models.Transaction, error) {
	return l.trade(ctx, userID, stockID, quantity, models.TransactionTypeBuy)
}

// Sell appends a sell transaction after checking that the user's current net
// holding covers the quantity. On failure nothing is appended.
func (l *Ledger) Sell(ctx context.Context, userID, stockID uuid.UUID, quantity int) (*models.Transaction, error) {
	return l.trade(ctx, userID, stockID, quantity, models.TransactionTypeSell)
}

func (l *Ledger) trade(ctx context.Context, userID, stockID uuid.UUID, quantity int, typ models.TransactionType) (*models.Transaction, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if _, err := l.stocks.ByID(ctx, stockID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrStockNotFound
		}
		return nil, fmt.Errorf("look up stock: %w", err)
	}

	txn := &models.Transaction{
		UserID:   userID,
		StockID:  stockID,
		Quantity: quantity,
		Type:     typ,
	}
	err := l.transactions.Trade(ctx, userID, func(tx store.TradeTx) error {
		if typ == models.TransactionTypeSell {
			held, err := tx.Holding(stockID)
			if err != nil {
				return fmt.Errorf("compute holding: %w", err)
			}
			if quantity > held {
				return ErrInsufficientHoldings
			}
		}
		return tx.Append(txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Holding returns the user's current net quantity for a stock. Pure derived
// query, no side effect.
func (l *Ledger) Holding(ctx context.Context, userID, stockID uuid.UUID) (int, error) {
	return l.transactions.Holding(ctx, userID, stockID)
}

// Transactions returns the user's full history, oldest first.
func (l *Ledger) Transactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	return l.transactions.ListByUser(ctx, userID)
}
