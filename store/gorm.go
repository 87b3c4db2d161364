package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pbank/models"
)

// GormUsers is the PostgreSQL-backed user store.
type GormUsers struct {
	db *gorm.DB
}

func NewGormUsers(db *gorm.DB) *GormUsers {
	return &GormUsers{db: db}
}

func (g *GormUsers) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := g.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (g *GormUsers) ByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := g.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (g *GormUsers) Create(ctx context.Context, user *models.User) error {
	return g.db.WithContext(ctx).Create(user).Error
}

// GormStocks is the PostgreSQL-backed stock store.
type GormStocks struct {
	db *gorm.DB
}

func NewGormStocks(db *gorm.DB) *GormStocks {
	return &GormStocks{db: db}
}

// BySymbol is a case-sensitive exact match against the unique symbol index.
func (g *GormStocks) BySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	var stock models.Stock
	if err := g.db.WithContext(ctx).Where("symbol = ?", symbol).First(&stock).Error; err != nil {
		return nil, translate(err)
	}
	return &stock, nil
}

func (g *GormStocks) ByID(ctx context.Context, id uuid.UUID) (*models.Stock, error) {
	var stock models.Stock
	if err := g.db.WithContext(ctx).First(&stock, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &stock, nil
}

// GormTransactions is the PostgreSQL-backed transaction log.
type GormTransactions struct {
	db *gorm.DB
}

func NewGormTransactions(db *gorm.DB) *GormTransactions {
	return &GormTransactions{db: db}
}

// Trade locks the acting user's row FOR UPDATE for the duration of the
// transaction. That serializes every check-then-append for one user, which
// covers the per-(user, stock) requirement: two concurrent sells against the
// same holding cannot both read the pre-trade sum.
func (g *GormTransactions) Trade(ctx context.Context, userID uuid.UUID, fn func(tx TradeTx) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", userID).Error; err != nil {
			return translate(err)
		}
		return fn(&gormTradeTx{tx: tx, userID: userID})
	})
}

func (g *GormTransactions) Holding(ctx context.Context, userID, stockID uuid.UUID) (int, error) {
	return sumHolding(g.db.WithContext(ctx), userID, stockID)
}

func (g *GormTransactions) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("seq ASC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

type gormTradeTx struct {
	tx     *gorm.DB
	userID uuid.UUID
}

func (t *gormTradeTx) Holding(stockID uuid.UUID) (int, error) {
	return sumHolding(t.tx, t.userID, stockID)
}

func (t *gormTradeTx) Append(txn *models.Transaction) error {
	if err := t.tx.Create(txn).Error; err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func sumHolding(db *gorm.DB, userID, stockID uuid.UUID) (int, error) {
	var net int
	err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN transaction_type = 'buy' THEN quantity ELSE -quantity END), 0)").
		Where("user_id = ? AND stock_id = ?", userID, stockID).
		Scan(&net).Error
	if err != nil {
		return 0, err
	}
	return net, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
