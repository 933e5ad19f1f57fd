package accounts

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ksred/mt5-portal-api/internal/database"
	"github.com/ksred/mt5-portal-api/internal/mt5"
	"github.com/ksred/mt5-portal-api/internal/types"
	"github.com/ksred/mt5-portal-api/pkg/response"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubGateway returns fixed data so tests stay deterministic.
type stubGateway struct {
	nextLogin uint
	snapshot  *mt5.BalanceSnapshot
}

func (s *stubGateway) CreateAccount(ctx context.Context, req mt5.CreateAccountRequest) (*mt5.AccountInfo, error) {
	s.nextLogin++
	return &mt5.AccountInfo{
		Login:     10000000 + s.nextLogin,
		Server:    "MT5-Test-01",
		Group:     req.AccountType + "\\standard",
		CreatedAt: time.Now(),
	}, nil
}

func (s *stubGateway) AccountSummary(ctx context.Context, login uint) (*mt5.BalanceSnapshot, error) {
	return s.snapshot, nil
}

func (s *stubGateway) OpenPositions(ctx context.Context, login uint) ([]mt5.Position, error) {
	return []mt5.Position{{Ticket: 1, Symbol: "EURUSD", Type: "buy", Volume: 0.1}}, nil
}

func (s *stubGateway) TradeHistory(ctx context.Context, login uint, limit int) ([]mt5.Deal, error) {
	return []mt5.Deal{{Ticket: 2, Symbol: "EURUSD", Type: "sell", Volume: 0.1}}, nil
}

func newTestService(t *testing.T) (*Service, *stubGateway) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	gw := &stubGateway{}
	return NewService(db, gw), gw
}

func createTestAccount(t *testing.T, s *Service, userID uint) *types.TradingAccount {
	t.Helper()
	created, err := s.CreateAccount(context.Background(), &types.User{
		Model: gorm.Model{ID: userID},
		Email: "owner@x.com",
	}, CreateAccountInput{
		Name:        "Test Account",
		Leverage:    100,
		AccountType: types.AccountTypeDemo,
	})
	require.NoError(t, err)

	account, err := s.GetByLogin(created.Account.Login)
	require.NoError(t, err)
	return account
}

func TestCreateAccount(t *testing.T) {
	s, _ := newTestService(t)
	account := createTestAccount(t, s, 1)

	assert.NotZero(t, account.Login)
	assert.Equal(t, uint(1), account.UserID)
	assert.Equal(t, "USD", account.Currency)
	assert.True(t, account.IsActive)
	assert.True(t, account.Balance.IsZero())
}

func TestCreateAccount_ValidationListsAllFields(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.CreateAccount(context.Background(), &types.User{Model: gorm.Model{ID: 1}}, CreateAccountInput{
		Name:        "",
		Leverage:    5000,
		AccountType: "paper",
		Currency:    "DOLLARS",
	})
	require.Error(t, err)

	verr, ok := err.(*response.ValidationError)
	require.True(t, ok, "expected validation error, got %T", err)

	fields := make(map[string]bool)
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["leverage"])
	assert.True(t, fields["account_type"])
	assert.True(t, fields["currency"])
}

func TestCreateAccount_LeverageBounds(t *testing.T) {
	s, _ := newTestService(t)
	owner := &types.User{Model: gorm.Model{ID: 1}, Email: "owner@x.com"}

	for _, leverage := range []int{1, 1000} {
		_, err := s.CreateAccount(context.Background(), owner, CreateAccountInput{
			Name:        "Edge",
			Leverage:    leverage,
			AccountType: types.AccountTypeLive,
		})
		assert.NoError(t, err, "leverage %d should be accepted", leverage)
	}

	for _, leverage := range []int{0, 1001, -5} {
		_, err := s.CreateAccount(context.Background(), owner, CreateAccountInput{
			Name:        "Edge",
			Leverage:    leverage,
			AccountType: types.AccountTypeLive,
		})
		assert.Error(t, err, "leverage %d should be rejected", leverage)
	}
}

func TestUpdateBalance_RoundsToTwoPlacesOnRead(t *testing.T) {
	s, _ := newTestService(t)
	account := createTestAccount(t, s, 1)

	// Half-away-from-zero at the two-decimal boundary.
	updated, err := s.UpdateBalance(account.Login,
		decimal.NewFromFloat(1000.005),
		decimal.NewFromFloat(1000.004),
		decimal.NewFromFloat(2.675),
		decimal.NewFromFloat(0.125),
		decimal.Zero,
	)
	require.NoError(t, err)

	view := updated.View()
	assert.Equal(t, 1000.01, view.Balance)
	assert.Equal(t, 1000.00, view.Equity)
	assert.Equal(t, 2.68, view.Margin)
	assert.Equal(t, 0.13, view.FreeMargin)
}

func TestUpdateBalance_KeepsInternalPrecision(t *testing.T) {
	s, _ := newTestService(t)
	account := createTestAccount(t, s, 1)

	// The stored value keeps full precision; only the view rounds.
	updated, err := s.UpdateBalance(account.Login,
		decimal.NewFromFloat(1000.005),
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
	)
	require.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.NewFromFloat(1000.005)),
		"stored balance %s should keep the unrounded value", updated.Balance)
}

func TestUpdateBalance_StampsSyncTime(t *testing.T) {
	s, _ := newTestService(t)
	account := createTestAccount(t, s, 1)

	before := account.SyncedAt
	time.Sleep(10 * time.Millisecond)

	updated, err := s.UpdateBalance(account.Login,
		decimal.NewFromInt(500), decimal.NewFromInt(500),
		decimal.Zero, decimal.NewFromInt(500), decimal.Zero,
	)
	require.NoError(t, err)
	assert.True(t, updated.SyncedAt.After(before))
}

func TestUpdateBalance_UnknownLogin(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.UpdateBalance(99999999,
		decimal.NewFromInt(1), decimal.NewFromInt(1),
		decimal.Zero, decimal.Zero, decimal.Zero,
	)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestDeactivate(t *testing.T) {
	s, _ := newTestService(t)
	account := createTestAccount(t, s, 7)

	_, err := s.UpdateBalance(account.Login,
		decimal.NewFromInt(1234), decimal.NewFromInt(1300),
		decimal.NewFromInt(100), decimal.NewFromInt(1200), decimal.NewFromInt(1300),
	)
	require.NoError(t, err)

	deactivated, err := s.Deactivate(account.Login)
	require.NoError(t, err)

	// Monetary fields are untouched by deactivation.
	assert.False(t, deactivated.IsActive)
	assert.True(t, deactivated.Balance.Equal(decimal.NewFromInt(1234)))
	assert.True(t, deactivated.Equity.Equal(decimal.NewFromInt(1300)))

	// Deactivated accounts drop out of the active listing.
	active, err := s.ListActiveByUser(7)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestListActiveByUser_OnlyOwnAccounts(t *testing.T) {
	s, _ := newTestService(t)
	createTestAccount(t, s, 1)
	createTestAccount(t, s, 1)
	createTestAccount(t, s, 2)

	active, err := s.ListActiveByUser(1)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestSync_PullsGatewaySnapshot(t *testing.T) {
	s, gw := newTestService(t)
	account := createTestAccount(t, s, 1)

	gw.snapshot = &mt5.BalanceSnapshot{
		Balance:     decimal.NewFromFloat(2500.555),
		Equity:      decimal.NewFromFloat(2600.01),
		Margin:      decimal.NewFromFloat(150),
		FreeMargin:  decimal.NewFromFloat(2450.01),
		MarginLevel: decimal.NewFromFloat(1733.34),
		At:          time.Now(),
	}

	synced, err := s.Sync(context.Background(), account.Login)
	require.NoError(t, err)

	view := synced.View()
	assert.Equal(t, 2500.56, view.Balance)
	assert.Equal(t, 2600.01, view.Equity)
}

func TestView_DerivedProfitLoss(t *testing.T) {
	account := &types.TradingAccount{
		Balance: decimal.NewFromInt(1000),
		Equity:  decimal.NewFromInt(1100),
	}
	view := account.View()
	assert.Equal(t, 100.0, view.ProfitLoss)
	assert.Equal(t, 10.0, view.ProfitLossPercent)

	// Zero balance pins the percentage at zero instead of dividing.
	empty := &types.TradingAccount{
		Balance: decimal.Zero,
		Equity:  decimal.NewFromInt(50),
	}
	view = empty.View()
	assert.Equal(t, 50.0, view.ProfitLoss)
	assert.Equal(t, 0.0, view.ProfitLossPercent)
}

func TestDuplicateLoginRejected(t *testing.T) {
	s, _ := newTestService(t)
	account := createTestAccount(t, s, 1)

	err := s.db.Create(&types.TradingAccount{
		Login:       account.Login,
		UserID:      2,
		Name:        "Clone",
		Leverage:    100,
		AccountType: types.AccountTypeDemo,
		Currency:    "USD",
		IsActive:    true,
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
