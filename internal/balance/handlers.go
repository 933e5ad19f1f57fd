package balance

import (
	"github.com/gin-gonic/gin"
	"github.com/ksred/mt5-portal-api/pkg/response"
	"github.com/shopspring/decimal"
)

// GinHandlers contains HTTP handlers for balance endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for balance endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{service: service}
}

type depositRequest struct {
	Amount          float64 `json:"amount"`
	PaymentMethodID string  `json:"payment_method_id"`
}

type withdrawRequest struct {
	Amount  float64 `json:"amount"`
	Method  string  `json:"method"`
	Details string  `json:"details"`
}

// DepositHandler handles POST /api/balance/deposit
func (h *GinHandlers) DepositHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req depositRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		txn, err := h.service.Deposit(c.GetUint("userID"), decimal.NewFromFloat(req.Amount), req.PaymentMethodID)
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.OK(c, gin.H{"transaction": txn})
	}
}

// WithdrawHandler handles POST /api/balance/withdraw
func (h *GinHandlers) WithdrawHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req withdrawRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		request, err := h.service.RequestWithdrawal(c.GetUint("userID"), decimal.NewFromFloat(req.Amount), req.Method, req.Details)
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.Success(c, gin.H{"request": request.View()})
	}
}

// HistoryHandler handles GET /api/balance/history
func (h *GinHandlers) HistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		history, err := h.service.History(c.GetUint("userID"))
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.OK(c, gin.H{"history": history})
	}
}
