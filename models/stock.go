package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stock is a tradable listing. Price is a static reference value; there is
// no update path for it in this service.
type Stock struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Symbol string    `gorm:"uniqueIndex;not null" json:"symbol"`
	Price  float64   `gorm:"not null" json:"price"`
}

func (s *Stock) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
