// Package admin exposes the back-office surface: user and account
// management for operators. Every route here sits behind both the JWT
// middleware and the admin-role check.
package admin

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ksred/mt5-portal-api/internal/accounts"
	"github.com/ksred/mt5-portal-api/internal/auth"
	"github.com/ksred/mt5-portal-api/internal/types"
	"github.com/ksred/mt5-portal-api/pkg/response"
	"github.com/shopspring/decimal"
)

// GinHandlers contains HTTP handlers for the admin endpoints
type GinHandlers struct {
	users    *auth.Service
	accounts *accounts.Service
}

// NewGinHandlers creates a new set of HTTP handlers for admin endpoints
func NewGinHandlers(users *auth.Service, accts *accounts.Service) *GinHandlers {
	return &GinHandlers{users: users, accounts: accts}
}

// ListUsersHandler handles GET /api/admin/users
func (h *GinHandlers) ListUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := h.users.ListUsers()
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		views := make([]types.UserView, len(users))
		for i := range users {
			views[i] = users[i].View()
		}
		response.OK(c, gin.H{"users": views})
	}
}

// DeactivateUserHandler handles POST /api/admin/users/:id/deactivate
func (h *GinHandlers) DeactivateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil || id == 0 {
			response.BadRequest(c, "Invalid user id")
			return
		}

		user, err := h.users.DeactivateUser(uint(id))
		if errors.Is(err, auth.ErrUserNotFound) {
			response.NotFound(c, "User not found")
			return
		}
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.OK(c, gin.H{"user": user.View()})
	}
}

// ListAccountsHandler handles GET /api/admin/accounts
func (h *GinHandlers) ListAccountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		accts, err := h.accounts.ListAll()
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		views := make([]types.AccountView, len(accts))
		for i := range accts {
			views[i] = accts[i].View()
		}
		response.OK(c, gin.H{"accounts": views})
	}
}

type updateBalanceRequest struct {
	Balance     float64 `json:"balance"`
	Equity      float64 `json:"equity"`
	Margin      float64 `json:"margin"`
	FreeMargin  float64 `json:"free_margin"`
	MarginLevel float64 `json:"margin_level"`
}

// UpdateBalanceHandler handles POST /api/admin/accounts/:login/balance.
// It overwrites the account's monetary snapshot in one write.
func (h *GinHandlers) UpdateBalanceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		login, err := accounts.ParseLogin(c.Param("login"))
		if err != nil {
			response.BadRequest(c, "Invalid account login")
			return
		}

		var req updateBalanceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		account, err := h.accounts.UpdateBalance(login,
			decimal.NewFromFloat(req.Balance),
			decimal.NewFromFloat(req.Equity),
			decimal.NewFromFloat(req.Margin),
			decimal.NewFromFloat(req.FreeMargin),
			decimal.NewFromFloat(req.MarginLevel),
		)
		if errors.Is(err, accounts.ErrAccountNotFound) {
			response.NotFound(c, "Trading account not found")
			return
		}
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.OK(c, gin.H{"account": account.View()})
	}
}

// DeactivateAccountHandler handles POST /api/admin/accounts/:login/deactivate
func (h *GinHandlers) DeactivateAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		login, err := accounts.ParseLogin(c.Param("login"))
		if err != nil {
			response.BadRequest(c, "Invalid account login")
			return
		}

		account, err := h.accounts.Deactivate(login)
		if errors.Is(err, accounts.ErrAccountNotFound) {
			response.NotFound(c, "Trading account not found")
			return
		}
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.OK(c, gin.H{"account": account.View()})
	}
}
