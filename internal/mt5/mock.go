package mt5

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MockGateway simulates the MT5 manager API. Logins are allocated from a
// monotonic counter so they stay unique within a process; balance and
// position data is pseudo-random. It exists so the portal can be exercised
// end to end without a trade server.
type MockGateway struct {
	mu         sync.Mutex
	nextLogin  uint
	server     string
	minLatency int // in milliseconds
	maxLatency int
}

var symbols = []string{"EURUSD", "GBPUSD", "USDJPY", "XAUUSD", "BTCUSD"}

// NewMockGateway creates a mock gateway allocating logins from 10000000.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		nextLogin:  10000000 + uint(rand.Intn(1000)),
		server:     "MT5-Demo-01",
		minLatency: 5,
		maxLatency: 40,
	}
}

// CreateAccount allocates the next login and fabricates credentials.
func (g *MockGateway) CreateAccount(ctx context.Context, req CreateAccountRequest) (*AccountInfo, error) {
	logger := log.With().
		Str("component", "mt5_gateway").
		Str("name", req.Name).
		Str("account_type", req.AccountType).
		Int("leverage", req.Leverage).
		Logger()

	if err := g.simulateLatency(ctx); err != nil {
		return nil, err
	}

	g.mu.Lock()
	login := g.nextLogin
	g.nextLogin++
	g.mu.Unlock()

	group := req.Group
	if group == "" {
		group = fmt.Sprintf("%s\\standard", req.AccountType)
	}

	info := &AccountInfo{
		Login:            login,
		Server:           g.server,
		Group:            group,
		MasterPassword:   randomPassword(),
		InvestorPassword: randomPassword(),
		CreatedAt:        time.Now(),
	}

	logger.Info().Uint("login", login).Str("server", g.server).Msg("account allocated")
	return info, nil
}

// AccountSummary fabricates a balance snapshot: a base balance with a
// floating profit of up to ±5%, margin at a fraction of equity.
func (g *MockGateway) AccountSummary(ctx context.Context, login uint) (*BalanceSnapshot, error) {
	if err := g.simulateLatency(ctx); err != nil {
		return nil, err
	}

	balance := decimal.NewFromFloat(1000 + rand.Float64()*49000)
	floating := balance.Mul(decimal.NewFromFloat(rand.Float64()*0.1 - 0.05))
	equity := balance.Add(floating)
	margin := equity.Mul(decimal.NewFromFloat(rand.Float64() * 0.3))

	marginLevel := decimal.Zero
	if margin.IsPositive() {
		marginLevel = equity.Div(margin).Mul(decimal.NewFromInt(100))
	}

	snapshot := &BalanceSnapshot{
		Balance:     balance,
		Equity:      equity,
		Margin:      margin,
		FreeMargin:  equity.Sub(margin),
		MarginLevel: marginLevel,
		At:          time.Now(),
	}

	log.Debug().
		Str("component", "mt5_gateway").
		Uint("login", login).
		Str("balance", balance.String()).
		Str("equity", equity.String()).
		Msg("balance snapshot generated")

	return snapshot, nil
}

// OpenPositions fabricates up to five open positions.
func (g *MockGateway) OpenPositions(ctx context.Context, login uint) ([]Position, error) {
	if err := g.simulateLatency(ctx); err != nil {
		return nil, err
	}

	count := rand.Intn(6)
	positions := make([]Position, 0, count)
	for i := 0; i < count; i++ {
		open := 0.9 + rand.Float64()*0.4
		current := open * (1 + (rand.Float64()*0.02 - 0.01))
		volume := float64(rand.Intn(100)+1) / 100

		positions = append(positions, Position{
			Ticket:       uint64(rand.Int63n(1_000_000_000)),
			Symbol:       symbols[rand.Intn(len(symbols))],
			Type:         side(),
			Volume:       volume,
			OpenPrice:    open,
			CurrentPrice: current,
			Profit:       (current - open) * volume * 100000,
			OpenedAt:     time.Now().Add(-time.Duration(rand.Intn(72)) * time.Hour),
		})
	}
	return positions, nil
}

// TradeHistory fabricates up to limit closed deals, newest first.
func (g *MockGateway) TradeHistory(ctx context.Context, login uint, limit int) ([]Deal, error) {
	if err := g.simulateLatency(ctx); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 50 {
		limit = 20
	}
	count := rand.Intn(limit + 1)
	deals := make([]Deal, 0, count)
	for i := 0; i < count; i++ {
		volume := float64(rand.Intn(100)+1) / 100
		deals = append(deals, Deal{
			Ticket:   uint64(rand.Int63n(1_000_000_000)),
			Symbol:   symbols[rand.Intn(len(symbols))],
			Type:     side(),
			Volume:   volume,
			Price:    0.9 + rand.Float64()*0.4,
			Profit:   (rand.Float64()*200 - 100) * volume,
			ClosedAt: time.Now().Add(-time.Duration(i*6+rand.Intn(6)) * time.Hour),
		})
	}
	return deals, nil
}

// simulateLatency sleeps for a random interval within the gateway's
// latency band, honoring context cancellation.
func (g *MockGateway) simulateLatency(ctx context.Context) error {
	latency := rand.Intn(g.maxLatency-g.minLatency+1) + g.minLatency
	select {
	case <-time.After(time.Duration(latency) * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func side() string {
	if rand.Intn(2) == 0 {
		return "buy"
	}
	return "sell"
}

const passwordChars = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomPassword() string {
	b := make([]byte, 12)
	for i := range b {
		b[i] = passwordChars[rand.Intn(len(passwordChars))]
	}
	return string(b)
}
