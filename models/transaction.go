package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "buy"
	TransactionTypeSell TransactionType = "sell"
)

// Transaction is one buy or sell event. Rows are append-only: nothing in the
// service updates or deletes them, and a user's net holding of a stock is the
// sum of buys minus sells over this table.
type Transaction struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	// Seq is a database-assigned insertion counter. created_at alone cannot
	// break ties between appends landing in the same timestamp granularity.
	Seq int64 `gorm:"autoIncrement;uniqueIndex" json:"-"`

	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	StockID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"stock_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Type      TransactionType `gorm:"column:transaction_type;not null;check:transaction_type IN ('buy','sell')" json:"transaction_type"`
	CreatedAt time.Time       `json:"created_at"`

	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Stock Stock `gorm:"foreignKey:StockID" json:"-"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
