package mt5

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Gateway is the boundary to the MT5 manager API. The real integration is
// an external, separately operated system; everything behind this
// interface is replaceable without touching the portal core.
type Gateway interface {
	// CreateAccount allocates a new trading account on the trade server
	// and returns its login and generated passwords.
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*AccountInfo, error)
	// AccountSummary returns the server-side balance snapshot for a login.
	AccountSummary(ctx context.Context, login uint) (*BalanceSnapshot, error)
	// OpenPositions returns the currently open positions for a login.
	OpenPositions(ctx context.Context, login uint) ([]Position, error)
	// TradeHistory returns the most recent closed deals for a login.
	TradeHistory(ctx context.Context, login uint, limit int) ([]Deal, error)
}

// CreateAccountRequest carries the parameters for account allocation.
type CreateAccountRequest struct {
	Name        string
	Email       string
	Group       string
	Leverage    int
	AccountType string // demo or live
	Currency    string
}

// AccountInfo is the result of a successful account allocation.
type AccountInfo struct {
	Login            uint      `json:"login"`
	Server           string    `json:"server"`
	Group            string    `json:"group"`
	MasterPassword   string    `json:"master_password"`
	InvestorPassword string    `json:"investor_password"`
	CreatedAt        time.Time `json:"created_at"`
}

// BalanceSnapshot is a point-in-time view of an account's monetary state
// as reported by the trade server.
type BalanceSnapshot struct {
	Balance     decimal.Decimal
	Equity      decimal.Decimal
	Margin      decimal.Decimal
	FreeMargin  decimal.Decimal
	MarginLevel decimal.Decimal
	At          time.Time
}

// Position is an open position on the trade server.
type Position struct {
	Ticket       uint64    `json:"ticket"`
	Symbol       string    `json:"symbol"`
	Type         string    `json:"type"` // buy or sell
	Volume       float64   `json:"volume"`
	OpenPrice    float64   `json:"open_price"`
	CurrentPrice float64   `json:"current_price"`
	Profit       float64   `json:"profit"`
	OpenedAt     time.Time `json:"opened_at"`
}

// Deal is a closed trade from the server history.
type Deal struct {
	Ticket   uint64    `json:"ticket"`
	Symbol   string    `json:"symbol"`
	Type     string    `json:"type"`
	Volume   float64   `json:"volume"`
	Price    float64   `json:"price"`
	Profit   float64   `json:"profit"`
	ClosedAt time.Time `json:"closed_at"`
}
