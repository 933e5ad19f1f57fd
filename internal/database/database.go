package database

import (
	"fmt"

	"github.com/ksred/mt5-portal-api/internal/database/migrations"
	"github.com/ksred/mt5-portal-api/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase initializes and returns a new GORM DB connection.
// TranslateError is enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey regardless of driver.
func NewDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&types.User{},
		&types.TradingAccount{},
		&types.WithdrawalRequest{},
	)
	if err != nil {
		return nil, err
	}

	if err := migrations.AddAccountIndexes(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
