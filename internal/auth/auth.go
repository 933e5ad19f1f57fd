package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ksred/mt5-portal-api/internal/types"
	"github.com/ksred/mt5-portal-api/pkg/response"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenGeneration    = errors.New("failed to generate token")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrUserNotFound       = errors.New("user not found")
)

const (
	bcryptCost        = 12
	tokenTTL          = 24 * time.Hour
	minPasswordLength = 6
)

// Claims represents the JWT claims structure. Tokens are self-contained:
// any holder of the signing secret can verify them without a store lookup,
// and there is no revocation before natural expiry.
type Claims struct {
	jwt.RegisteredClaims
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	MT5Login uint   `json:"mt5_login,omitempty"`
}

// TokenResponse is the payload returned by register and login.
type TokenResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      types.UserView `json:"user"`
}

// RegisterInput carries the registration fields.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Service handles credential verification, password hashing and bearer
// token issuance.
type Service struct {
	db        *Database
	jwtSecret []byte
}

// NewService creates a new authentication service with the given JWT secret
func NewService(gormDB *gorm.DB, jwtSecret string) *Service {
	return &Service{
		db:        NewDatabase(gormDB),
		jwtSecret: []byte(jwtSecret),
	}
}

// Register creates a new user with role "user" and issues a token.
// The password is stored only as a bcrypt hash.
func (s *Service) Register(input RegisterInput) (*types.User, *TokenResponse, error) {
	if err := validateRegistration(input); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &types.User{
		Email:        strings.ToLower(input.Email),
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Role:         types.RoleUser,
		Status:       types.StatusActive,
	}

	if err := s.db.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, ErrDuplicateEmail
		}
		return nil, nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// dummyPasswordHash is compared against when the email lookup misses, so
// both login failure paths cost one bcrypt verification and cannot be
// told apart by response time.
var dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("portal-dummy-credential"), bcryptCost)

// Login verifies credentials and issues a token. Unknown email and wrong
// password return the same error so responses cannot be used to enumerate
// registered users.
func (s *Service) Login(email, password string) (*types.User, *TokenResponse, error) {
	user, err := s.db.FindByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if user.Status != types.StatusActive {
		return nil, nil, ErrAccountDisabled
	}

	if err := s.db.UpdateLastLogin(user); err != nil {
		return nil, nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// Verify validates a bearer token and returns its claims.
// Verification is pure computation: signature check plus expiry check.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ChangePassword replaces the stored hash after verifying the current
// password against it.
func (s *Service) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.db.FindByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if len(newPassword) < minPasswordLength {
		verr := &response.ValidationError{}
		verr.Add("new_password", "must be at least 6 characters")
		return verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return s.db.Save(user)
}

// Profile returns the stored user for an authenticated identity.
func (s *Service) Profile(userID uint) (*types.User, error) {
	user, err := s.db.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers returns all users, newest first. Admin use.
func (s *Service) ListUsers() ([]types.User, error) {
	return s.db.ListUsers()
}

// DeactivateUser marks a user disabled. Users are never hard-deleted.
func (s *Service) DeactivateUser(userID uint) (*types.User, error) {
	user, err := s.db.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	user.Status = types.StatusDisabled
	if err := s.db.Save(user); err != nil {
		return nil, err
	}
	return user, nil
}

// LinkMT5Login records the user's primary trading-account login so it can
// be embedded in subsequently issued tokens.
func (s *Service) LinkMT5Login(userID, login uint) error {
	user, err := s.db.FindByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.MT5Login != 0 {
		return nil
	}
	user.MT5Login = login
	return s.db.Save(user)
}

// issueToken signs a 24-hour HS256 token embedding user id, email and
// role, plus the linked MT5 login when present.
func (s *Service) issueToken(user *types.User) (*TokenResponse, error) {
	expiration := time.Now().Add(tokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
		UserID:   user.ID,
		Email:    user.Email,
		Role:     user.Role,
		MT5Login: user.MT5Login,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, ErrTokenGeneration
	}

	return &TokenResponse{
		Token:     tokenString,
		ExpiresAt: expiration,
		User:      user.View(),
	}, nil
}

// validateRegistration reports every violated registration constraint at
// once.
func validateRegistration(input RegisterInput) error {
	verr := &response.ValidationError{}

	if !validEmail(input.Email) {
		verr.Add("email", "must be a valid email address")
	}
	if len(input.Password) < minPasswordLength {
		verr.Add("password", "must be at least 6 characters")
	}
	if strings.TrimSpace(input.FirstName) == "" {
		verr.Add("first_name", "is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		verr.Add("last_name", "is required")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t")
}
