package types

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User statuses
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// Trading account types
const (
	AccountTypeDemo = "demo"
	AccountTypeLive = "live"
)

// Leverage bounds for trading accounts
const (
	MinLeverage = 1
	MaxLeverage = 1000
)

// User is a registered portal user. Email is stored lowercased so the
// unique index doubles as the case-insensitive uniqueness guarantee.
// PasswordHash never leaves the process; client-facing representations
// go through UserView.
type User struct {
	gorm.Model   `json:"-"`
	Email        string     `gorm:"uniqueIndex" json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone,omitempty"`
	Role         string     `json:"role"` // user or admin
	MT5Login     uint       `json:"mt5_login,omitempty"`
	Status       string     `json:"status"` // active or disabled
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// TradingAccount is the persisted snapshot of an MT5 account. The login id
// is assigned by the manager gateway and is distinct from the owner's user
// id. Monetary fields are decimals internally; rounding to two places
// happens only at the point of serialization (see AccountView).
type TradingAccount struct {
	gorm.Model  `json:"-"`
	Login       uint            `gorm:"uniqueIndex" json:"login"`
	UserID      uint            `gorm:"index" json:"user_id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Server      string          `json:"server"`
	Group       string          `gorm:"column:account_group" json:"group"`
	Leverage    int             `json:"leverage"`
	AccountType string          `gorm:"index" json:"account_type"` // demo or live
	Balance     decimal.Decimal `gorm:"type:decimal(20,8)" json:"balance"`
	Equity      decimal.Decimal `gorm:"type:decimal(20,8)" json:"equity"`
	Margin      decimal.Decimal `gorm:"type:decimal(20,8)" json:"margin"`
	FreeMargin  decimal.Decimal `gorm:"type:decimal(20,8)" json:"free_margin"`
	MarginLevel decimal.Decimal `gorm:"type:decimal(20,8)" json:"margin_level"`
	Currency    string          `json:"currency"`
	IsActive    bool            `gorm:"index" json:"is_active"`
	SyncedAt    time.Time       `json:"synced_at"`
}

// WithdrawalRequest records a client withdrawal request. It is a request
// record waiting for back-office action, not a balance ledger entry.
type WithdrawalRequest struct {
	gorm.Model `json:"-"`
	RequestID  string          `gorm:"uniqueIndex" json:"request_id"`
	UserID     uint            `gorm:"index" json:"user_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,8)" json:"amount"`
	Method     string          `json:"method"` // bank_transfer, card or crypto
	Details    string          `json:"details,omitempty"`
	Status     string          `json:"status"` // PENDING, APPROVED, REJECTED
	CreatedAt  time.Time       `json:"created_at"`
}
