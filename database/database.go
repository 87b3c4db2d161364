package database

import (
	"fmt"
	"reflect"

	"gorm.io/gorm"

	"pbank/auth"
	"pbank/models"
)

var (
	ErrInvalidBatchSize = fmt.Errorf("batch size must be positive")
	ErrInvalidData      = fmt.Errorf("invalid data, expected slice")
)

// Migrate brings the schema up to date for the three entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Stock{},
		&models.Transaction{},
	)
}

// Seed inserts the demo user and a handful of reference stocks. It is
// idempotent: existing rows are left alone.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		hashed, err := auth.HashPassword("fake")
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		user := models.User{Username: "admin", HashedPassword: hashed}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
	}

	stocks := []models.Stock{
		{Symbol: "TEST", Price: 42.0},
		{Symbol: "AAPL", Price: 178.25},
		{Symbol: "GOOG", Price: 141.80},
		{Symbol: "MSFT", Price: 415.50},
	}
	var missing []models.Stock
	for _, s := range stocks {
		var n int64
		if err := db.Model(&models.Stock{}).Where("symbol = ?", s.Symbol).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			missing = append(missing, s)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return CreateInBatches(db, missing, 100)
}

// CreateInBatches inserts a slice in chunks inside one transaction.
func CreateInBatches(db *gorm.DB, data interface{}, batchSize int) error {
	if batchSize <= 0 {
		return ErrInvalidBatchSize
	}

	slice := reflect.ValueOf(data)
	if slice.Kind() != reflect.Slice {
		return ErrInvalidData
	}

	return db.Transaction(func(tx *gorm.DB) error {
		total := slice.Len()
		for i := 0; i < total; i += batchSize {
			end := i + batchSize
			if end > total {
				end = total
			}
			chunk := slice.Slice(i, end).Interface()
			if err := tx.Create(chunk).Error; err != nil {
				return fmt.Errorf("batch insert failed: %w", err)
			}
		}
		return nil
	})
}
