package migrations

import "gorm.io/gorm"

// AddAccountIndexes creates the composite and ordering indexes the account
// listing queries depend on: active accounts per owner, and newest-first
// listings for the admin panel.
func AddAccountIndexes(db *gorm.DB) error {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_trading_accounts_user_active ON trading_accounts(user_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_trading_accounts_created_desc ON trading_accounts(created_at DESC)",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
