package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/ksred/mt5-portal-api/pkg/response"
)

// GinHandlers contains HTTP handlers for authentication endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for authentication endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{service: service}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// RegisterHandler handles POST /api/auth/register
func (h *GinHandlers) RegisterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		_, token, err := h.service.Register(RegisterInput{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		})
		if errors.Is(err, ErrDuplicateEmail) {
			response.Conflict(c, "Email already registered")
			return
		}
		response.Handle(c, token, err)
	}
}

// LoginHandler handles POST /api/auth/login
func (h *GinHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		_, token, err := h.service.Login(req.Email, req.Password)
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(c, "Invalid email or password")
		case errors.Is(err, ErrAccountDisabled):
			response.Forbidden(c, "Account is disabled")
		default:
			if err == nil {
				response.OK(c, token)
				return
			}
			response.Handle(c, nil, err)
		}
	}
}

// ProfileHandler handles GET /api/auth/profile
func (h *GinHandlers) ProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")

		user, err := h.service.Profile(userID)
		if errors.Is(err, ErrUserNotFound) {
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

// ChangePasswordHandler handles POST /api/auth/change-password
func (h *GinHandlers) ChangePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		userID := c.GetUint("userID")
		err := h.service.ChangePassword(userID, req.CurrentPassword, req.NewPassword)
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(c, "Current password is incorrect")
		case errors.Is(err, ErrUserNotFound):
			response.NotFound(c, "User not found")
		case err == nil:
			response.OK(c, gin.H{"message": "Password updated"})
		default:
			response.Handle(c, nil, err)
		}
	}
}
