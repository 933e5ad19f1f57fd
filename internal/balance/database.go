package balance

import (
	"github.com/ksred/mt5-portal-api/internal/types"
	"gorm.io/gorm"
)

// Database stores withdrawal requests pending back-office action.
type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateWithdrawalRequest(req *types.WithdrawalRequest) error {
	return d.db.Create(req).Error
}

func (d *Database) ListWithdrawalsByUser(userID uint) ([]types.WithdrawalRequest, error) {
	var requests []types.WithdrawalRequest
	err := d.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}
