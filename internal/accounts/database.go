package accounts

import (
	"errors"
	"time"

	"github.com/ksred/mt5-portal-api/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Database is the trading-account store, keyed by the MT5 login id.
type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) FindByLogin(login uint) (*types.TradingAccount, error) {
	var account types.TradingAccount
	if err := d.db.Where("login = ?", login).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (d *Database) FindActiveByUser(userID uint) ([]types.TradingAccount, error) {
	var accounts []types.TradingAccount
	err := d.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (d *Database) Create(account *types.TradingAccount) error {
	return d.db.Create(account).Error
}

// UpdateBalance overwrites the five monetary fields in a single row
// update and stamps the sync time. Last write wins; there is no ledger.
func (d *Database) UpdateBalance(login uint, balance, equity, margin, freeMargin, marginLevel decimal.Decimal) error {
	result := d.db.Model(&types.TradingAccount{}).
		Where("login = ?", login).
		Updates(map[string]interface{}{
			"balance":      balance,
			"equity":       equity,
			"margin":       margin,
			"free_margin":  freeMargin,
			"margin_level": marginLevel,
			"synced_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Deactivate clears the active flag. Monetary fields are untouched.
func (d *Database) Deactivate(login uint) error {
	result := d.db.Model(&types.TradingAccount{}).
		Where("login = ?", login).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *Database) ListAll() ([]types.TradingAccount, error) {
	var accounts []types.TradingAccount
	if err := d.db.Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}
