package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/ksred/mt5-portal-api/internal/mt5"
	"github.com/ksred/mt5-portal-api/internal/types"
	"github.com/ksred/mt5-portal-api/pkg/response"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrAccountNotFound = errors.New("trading account not found")

// CreateAccountInput carries the fields of an account-creation request.
type CreateAccountInput struct {
	Name        string
	Leverage    int
	AccountType string
	Currency    string
	Group       string
}

// CreatedAccount pairs the persisted record with the one-time credentials
// returned by the gateway. Passwords are shown once and never stored.
type CreatedAccount struct {
	Account     types.AccountView `json:"account"`
	Credentials *mt5.AccountInfo  `json:"credentials"`
}

// Service handles trading-account lifecycle and balance snapshots.
type Service struct {
	db      *Database
	gateway mt5.Gateway
}

// NewService creates a new accounts service backed by the given store and
// manager gateway.
func NewService(gormDB *gorm.DB, gateway mt5.Gateway) *Service {
	return &Service{
		db:      NewDatabase(gormDB),
		gateway: gateway,
	}
}

// CreateAccount validates the request, allocates a login through the
// gateway and persists the account record for the owning user.
func (s *Service) CreateAccount(ctx context.Context, user *types.User, input CreateAccountInput) (*CreatedAccount, error) {
	if err := validateCreateAccount(&input); err != nil {
		return nil, err
	}

	info, err := s.gateway.CreateAccount(ctx, mt5.CreateAccountRequest{
		Name:        input.Name,
		Email:       user.Email,
		Group:       input.Group,
		Leverage:    input.Leverage,
		AccountType: input.AccountType,
		Currency:    input.Currency,
	})
	if err != nil {
		return nil, err
	}

	account := &types.TradingAccount{
		Login:       info.Login,
		UserID:      user.ID,
		Name:        input.Name,
		Email:       user.Email,
		Server:      info.Server,
		Group:       info.Group,
		Leverage:    input.Leverage,
		AccountType: input.AccountType,
		Balance:     decimal.Zero,
		Equity:      decimal.Zero,
		Margin:      decimal.Zero,
		FreeMargin:  decimal.Zero,
		MarginLevel: decimal.Zero,
		Currency:    input.Currency,
		IsActive:    true,
		SyncedAt:    info.CreatedAt,
	}

	if err := s.db.Create(account); err != nil {
		return nil, err
	}

	return &CreatedAccount{
		Account:     account.View(),
		Credentials: info,
	}, nil
}

// GetByLogin returns a single account record.
func (s *Service) GetByLogin(login uint) (*types.TradingAccount, error) {
	account, err := s.db.FindByLogin(login)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// ListActiveByUser returns the caller's active accounts, newest first.
func (s *Service) ListActiveByUser(userID uint) ([]types.TradingAccount, error) {
	return s.db.FindActiveByUser(userID)
}

// ListAll returns every account. Admin use.
func (s *Service) ListAll() ([]types.TradingAccount, error) {
	return s.db.ListAll()
}

// UpdateBalance overwrites the monetary snapshot for a login and returns
// the refreshed record.
func (s *Service) UpdateBalance(login uint, balance, equity, margin, freeMargin, marginLevel decimal.Decimal) (*types.TradingAccount, error) {
	err := s.db.UpdateBalance(login, balance, equity, margin, freeMargin, marginLevel)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetByLogin(login)
}

// Sync pulls the gateway's balance snapshot into the stored record.
func (s *Service) Sync(ctx context.Context, login uint) (*types.TradingAccount, error) {
	if _, err := s.GetByLogin(login); err != nil {
		return nil, err
	}

	snapshot, err := s.gateway.AccountSummary(ctx, login)
	if err != nil {
		return nil, err
	}

	return s.UpdateBalance(login, snapshot.Balance, snapshot.Equity, snapshot.Margin, snapshot.FreeMargin, snapshot.MarginLevel)
}

// Deactivate clears the active flag on an account.
func (s *Service) Deactivate(login uint) (*types.TradingAccount, error) {
	err := s.db.Deactivate(login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetByLogin(login)
}

// OpenPositions returns gateway position data for an owned account.
func (s *Service) OpenPositions(ctx context.Context, login uint) ([]mt5.Position, error) {
	if _, err := s.GetByLogin(login); err != nil {
		return nil, err
	}
	return s.gateway.OpenPositions(ctx, login)
}

// TradeHistory returns gateway deal history for an owned account.
func (s *Service) TradeHistory(ctx context.Context, login uint, limit int) ([]mt5.Deal, error) {
	if _, err := s.GetByLogin(login); err != nil {
		return nil, err
	}
	return s.gateway.TradeHistory(ctx, login, limit)
}

// validateCreateAccount checks creation constraints, defaulting currency
// to USD, and reports every violation at once.
func validateCreateAccount(input *CreateAccountInput) error {
	verr := &response.ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		verr.Add("name", "is required")
	}
	if input.AccountType != types.AccountTypeDemo && input.AccountType != types.AccountTypeLive {
		verr.Add("account_type", "must be demo or live")
	}
	if input.Leverage < types.MinLeverage || input.Leverage > types.MaxLeverage {
		verr.Add("leverage", "must be between 1 and 1000")
	}
	if input.Currency == "" {
		input.Currency = "USD"
	} else {
		input.Currency = strings.ToUpper(input.Currency)
		if !validCurrency(input.Currency) {
			verr.Add("currency", "must be a 3-letter currency code")
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
