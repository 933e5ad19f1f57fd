// Package payment simulates a card-processor integration. Intents carry
// the shape a frontend checkout expects but no processor is called.
package payment

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ksred/mt5-portal-api/pkg/response"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Intent is a simulated payment intent.
type Intent struct {
	ID           string    `json:"id"`
	ClientSecret string    `json:"client_secret"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// GinHandlers contains HTTP handlers for payment endpoints
type GinHandlers struct{}

// NewGinHandlers creates a new set of HTTP handlers for payment endpoints
func NewGinHandlers() *GinHandlers {
	return &GinHandlers{}
}

type createIntentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// CreateIntentHandler handles POST /api/payment/create-intent
func (h *GinHandlers) CreateIntentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		amount := decimal.NewFromFloat(req.Amount)
		if amount.LessThanOrEqual(decimal.Zero) {
			verr := &response.ValidationError{}
			verr.Add("amount", "must be greater than zero")
			response.ValidationFailed(c, verr)
			return
		}

		currency := req.Currency
		if currency == "" {
			currency = "usd"
		}

		id := "pi_" + randomHex(12)
		intent := &Intent{
			ID:           id,
			ClientSecret: id + "_secret_" + randomHex(16),
			Amount:       amount.Round(2).InexactFloat64(),
			Currency:     currency,
			Status:       "requires_payment_method",
			CreatedAt:    time.Now(),
		}

		log.Info().
			Uint("user_id", c.GetUint("userID")).
			Str("intent_id", intent.ID).
			Float64("amount", intent.Amount).
			Msg("simulated payment intent created")

		response.OK(c, gin.H{"intent": intent})
	}
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
