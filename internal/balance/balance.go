// Package balance implements the deposit, withdrawal and history
// endpoints. Deposits and transaction history are simulated; no payment
// processor is attached. Withdrawal requests are the one real artifact:
// they are persisted as pending records for back-office review.
package balance

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/ksred/mt5-portal-api/internal/types"
	"github.com/ksred/mt5-portal-api/pkg/response"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Withdrawal methods accepted by the API
const (
	MethodBankTransfer = "bank_transfer"
	MethodCard         = "card"
	MethodCrypto       = "crypto"
)

// Transaction is the simulated result of a deposit.
type Transaction struct {
	TransactionID   string    `json:"transaction_id"`
	Type            string    `json:"type"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	PaymentMethodID string    `json:"payment_method_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Service handles balance operations.
type Service struct {
	db *Database
}

// NewService creates a new balance service.
func NewService(gormDB *gorm.DB) *Service {
	return &Service{db: NewDatabase(gormDB)}
}

// Deposit validates the amount and returns a simulated completed
// transaction. Nothing is persisted and no balance changes.
func (s *Service) Deposit(userID uint, amount decimal.Decimal, paymentMethodID string) (*Transaction, error) {
	verr := &response.ValidationError{}
	if amount.LessThanOrEqual(decimal.Zero) {
		verr.Add("amount", "must be greater than zero")
	}
	if paymentMethodID == "" {
		verr.Add("payment_method_id", "is required")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	txn := &Transaction{
		TransactionID:   uuid.New().String(),
		Type:            "deposit",
		Amount:          types.RoundMoney(amount),
		Currency:        "USD",
		Status:          "completed",
		PaymentMethodID: paymentMethodID,
		CreatedAt:       time.Now(),
	}

	log.Info().
		Uint("user_id", userID).
		Str("transaction_id", txn.TransactionID).
		Float64("amount", txn.Amount).
		Msg("simulated deposit")

	return txn, nil
}

// RequestWithdrawal validates and persists a pending withdrawal request.
func (s *Service) RequestWithdrawal(userID uint, amount decimal.Decimal, method, details string) (*types.WithdrawalRequest, error) {
	verr := &response.ValidationError{}
	if amount.LessThanOrEqual(decimal.Zero) {
		verr.Add("amount", "must be greater than zero")
	}
	if method != MethodBankTransfer && method != MethodCard && method != MethodCrypto {
		verr.Add("method", "must be bank_transfer, card or crypto")
	}
	if details == "" {
		verr.Add("details", "is required")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	request := &types.WithdrawalRequest{
		RequestID: uuid.New().String(),
		UserID:    userID,
		Amount:    amount,
		Method:    method,
		Details:   details,
		Status:    "PENDING",
	}

	if err := s.db.CreateWithdrawalRequest(request); err != nil {
		return nil, err
	}

	log.Info().
		Uint("user_id", userID).
		Str("request_id", request.RequestID).
		Str("method", method).
		Msg("withdrawal request recorded")

	return request, nil
}

// History returns the user's persisted withdrawal requests interleaved
// with simulated deposit entries.
func (s *Service) History(userID uint) ([]Transaction, error) {
	withdrawals, err := s.db.ListWithdrawalsByUser(userID)
	if err != nil {
		return nil, err
	}

	history := make([]Transaction, 0, len(withdrawals)+5)
	for _, w := range withdrawals {
		history = append(history, Transaction{
			TransactionID: w.RequestID,
			Type:          "withdrawal",
			Amount:        types.RoundMoney(w.Amount),
			Currency:      "USD",
			Status:        w.Status,
			CreatedAt:     w.CreatedAt,
		})
	}

	// Pad with simulated deposits so the history endpoint has data to
	// show before any real integration exists.
	for i := 0; i < 5; i++ {
		history = append(history, Transaction{
			TransactionID: uuid.New().String(),
			Type:          "deposit",
			Amount:        float64(rand.Intn(490000)+1000) / 100,
			Currency:      "USD",
			Status:        "completed",
			CreatedAt:     time.Now().Add(-time.Duration(i*24+rand.Intn(24)) * time.Hour),
		})
	}

	return history, nil
}
