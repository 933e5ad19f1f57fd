package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/ksred/mt5-portal-api/internal/types"
	"github.com/ksred/mt5-portal-api/pkg/response"
	"gorm.io/gorm"
)

const maxNameLength = 100

// Database is the credential store. Emails are normalized to lowercase on
// every write and lookup, so the unique index on the email column enforces
// case-insensitive uniqueness.
type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) FindByEmail(email string) (*types.User, error) {
	var user types.User
	if err := d.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindByID(id uint) (*types.User, error) {
	var user types.User
	if err := d.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create persists a new user. A duplicate email surfaces from the store as
// gorm.ErrDuplicatedKey; callers map it to ErrDuplicateEmail.
func (d *Database) Create(user *types.User) error {
	user.Email = strings.ToLower(user.Email)
	if err := validateUser(user); err != nil {
		return err
	}
	return d.db.Create(user).Error
}

// Save persists mutations to an existing user, re-validating field
// constraints before commit.
func (d *Database) Save(user *types.User) error {
	user.Email = strings.ToLower(user.Email)
	if err := validateUser(user); err != nil {
		return err
	}
	return d.db.Save(user).Error
}

// UpdateLastLogin stamps the user's last-login time. Side effect only.
func (d *Database) UpdateLastLogin(user *types.User) error {
	now := time.Now()
	user.LastLoginAt = &now
	return d.db.Model(user).Update("last_login_at", now).Error
}

func (d *Database) ListUsers() ([]types.User, error) {
	var users []types.User
	if err := d.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// validateUser checks field constraints and reports every violation at
// once rather than stopping at the first.
func validateUser(user *types.User) error {
	verr := &response.ValidationError{}

	if !validEmail(user.Email) {
		verr.Add("email", "must be a valid email address")
	}
	if strings.TrimSpace(user.FirstName) == "" {
		verr.Add("first_name", "is required")
	} else if len(user.FirstName) > maxNameLength {
		verr.Add("first_name", "must be at most 100 characters")
	}
	if strings.TrimSpace(user.LastName) == "" {
		verr.Add("last_name", "is required")
	} else if len(user.LastName) > maxNameLength {
		verr.Add("last_name", "must be at most 100 characters")
	}
	if user.Role != types.RoleUser && user.Role != types.RoleAdmin {
		verr.Add("role", "must be user or admin")
	}
	if user.Status != types.StatusActive && user.Status != types.StatusDisabled {
		verr.Add("status", "must be active or disabled")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
