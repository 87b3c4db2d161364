package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. The stored password value is a bcrypt hash
// encoding algorithm, cost and salt; the plaintext never touches the database.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	HashedPassword string    `gorm:"not null" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
