package accounts

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ksred/mt5-portal-api/internal/types"
	"github.com/ksred/mt5-portal-api/pkg/response"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// LoginLinker records a user's primary MT5 login after their first
// account is created. Satisfied by auth.Service.
type LoginLinker interface {
	LinkMT5Login(userID, login uint) error
}

// GinHandlers contains HTTP handlers for trading-account endpoints
type GinHandlers struct {
	service *Service
	linker  LoginLinker
}

// NewGinHandlers creates a new set of HTTP handlers for account endpoints
func NewGinHandlers(service *Service, linker LoginLinker) *GinHandlers {
	return &GinHandlers{service: service, linker: linker}
}

type createAccountRequest struct {
	Name        string `json:"name"`
	Leverage    int    `json:"leverage"`
	AccountType string `json:"account_type"`
	Currency    string `json:"currency"`
	Group       string `json:"group"`
}

// CreateAccountHandler handles POST /api/accounts
func (h *GinHandlers) CreateAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		user := &types.User{
			Model: gorm.Model{ID: c.GetUint("userID")},
			Email: c.GetString("email"),
		}

		created, err := h.service.CreateAccount(c.Request.Context(), user, CreateAccountInput{
			Name:        req.Name,
			Leverage:    req.Leverage,
			AccountType: req.AccountType,
			Currency:    req.Currency,
			Group:       req.Group,
		})
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		if err := h.linker.LinkMT5Login(user.ID, created.Account.Login); err != nil {
			log.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to link mt5 login")
		}

		response.Success(c, created)
	}
}

// ListAccountsHandler handles GET /api/accounts
func (h *GinHandlers) ListAccountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := h.service.ListActiveByUser(c.GetUint("userID"))
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.OK(c, gin.H{"accounts": accountViews(accounts)})
	}
}

// GetAccountHandler handles GET /api/accounts/:login
func (h *GinHandlers) GetAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := h.ownedAccount(c)
		if !ok {
			return
		}
		response.OK(c, gin.H{"account": account.View()})
	}
}

// SyncHandler handles POST /api/accounts/:login/sync
func (h *GinHandlers) SyncHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := h.ownedAccount(c)
		if !ok {
			return
		}

		updated, err := h.service.Sync(c.Request.Context(), account.Login)
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.OK(c, gin.H{"account": updated.View()})
	}
}

// PositionsHandler handles GET /api/accounts/:login/positions
func (h *GinHandlers) PositionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := h.ownedAccount(c)
		if !ok {
			return
		}

		positions, err := h.service.OpenPositions(c.Request.Context(), account.Login)
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.OK(c, gin.H{"positions": positions})
	}
}

// TradesHandler handles GET /api/accounts/:login/trades
func (h *GinHandlers) TradesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := h.ownedAccount(c)
		if !ok {
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		deals, err := h.service.TradeHistory(c.Request.Context(), account.Login, limit)
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.OK(c, gin.H{"trades": deals})
	}
}

// ownedAccount resolves the :login path param and enforces that the
// caller owns the account or is an admin. On failure it writes the error
// response and returns ok = false.
func (h *GinHandlers) ownedAccount(c *gin.Context) (*types.TradingAccount, bool) {
	login, err := ParseLogin(c.Param("login"))
	if err != nil {
		response.BadRequest(c, "Invalid account login")
		return nil, false
	}

	account, err := h.service.GetByLogin(login)
	if errors.Is(err, ErrAccountNotFound) {
		response.NotFound(c, "Trading account not found")
		return nil, false
	}
	if err != nil {
		response.Handle(c, nil, err)
		return nil, false
	}

	if account.UserID != c.GetUint("userID") && c.GetString("role") != types.RoleAdmin {
		response.Forbidden(c, "Account belongs to another user")
		return nil, false
	}
	return account, true
}

// ParseLogin parses a numeric account login from a path parameter.
func ParseLogin(raw string) (uint, error) {
	login, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || login == 0 {
		return 0, errors.New("invalid login")
	}
	return uint(login), nil
}

func accountViews(accounts []types.TradingAccount) []types.AccountView {
	views := make([]types.AccountView, len(accounts))
	for i := range accounts {
		views[i] = accounts[i].View()
	}
	return views
}
