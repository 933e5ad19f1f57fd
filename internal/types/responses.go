package types

import "time"

// UserView is the client-facing representation of a User. It is the only
// user shape handlers serialize, so the password hash can never leak into
// a response body.
type UserView struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	MT5Login    uint       `json:"mt5_login,omitempty"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// View converts a stored user into its serializable form.
func (u *User) View() UserView {
	return UserView{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		Role:        u.Role,
		MT5Login:    u.MT5Login,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// WithdrawalView is the client-facing representation of a
// WithdrawalRequest.
type WithdrawalView struct {
	RequestID string    `json:"request_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Details   string    `json:"details,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// View converts a stored withdrawal request into its serializable form.
func (w *WithdrawalRequest) View() WithdrawalView {
	return WithdrawalView{
		RequestID: w.RequestID,
		Amount:    RoundMoney(w.Amount),
		Method:    w.Method,
		Details:   w.Details,
		Status:    w.Status,
		CreatedAt: w.CreatedAt,
	}
}

// AccountView is the client-facing representation of a TradingAccount.
// All monetary fields are rounded to two decimal places, half away from
// zero. ProfitLoss and ProfitLossPercent are derived, never stored.
type AccountView struct {
	Login             uint      `json:"login"`
	UserID            uint      `json:"user_id"`
	Name              string    `json:"name"`
	Server            string    `json:"server"`
	Group             string    `json:"group"`
	Leverage          int       `json:"leverage"`
	AccountType       string    `json:"account_type"`
	Balance           float64   `json:"balance"`
	Equity            float64   `json:"equity"`
	Margin            float64   `json:"margin"`
	FreeMargin        float64   `json:"free_margin"`
	MarginLevel       float64   `json:"margin_level"`
	ProfitLoss        float64   `json:"profit_loss"`
	ProfitLossPercent float64   `json:"profit_loss_percent"`
	Currency          string    `json:"currency"`
	IsActive          bool      `json:"is_active"`
	SyncedAt          time.Time `json:"synced_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// View converts a stored account into its serializable form, applying the
// read-side rounding and derived profit calculations.
func (a *TradingAccount) View() AccountView {
	profitLoss := a.Equity.Sub(a.Balance)
	profitLossPct := decimalZero
	if !a.Balance.IsZero() {
		profitLossPct = profitLoss.Div(a.Balance).Mul(decimalHundred)
	}

	return AccountView{
		Login:             a.Login,
		UserID:            a.UserID,
		Name:              a.Name,
		Server:            a.Server,
		Group:             a.Group,
		Leverage:          a.Leverage,
		AccountType:       a.AccountType,
		Balance:           RoundMoney(a.Balance),
		Equity:            RoundMoney(a.Equity),
		Margin:            RoundMoney(a.Margin),
		FreeMargin:        RoundMoney(a.FreeMargin),
		MarginLevel:       RoundMoney(a.MarginLevel),
		ProfitLoss:        RoundMoney(profitLoss),
		ProfitLossPercent: RoundMoney(profitLossPct),
		Currency:          a.Currency,
		IsActive:          a.IsActive,
		SyncedAt:          a.SyncedAt,
		CreatedAt:         a.CreatedAt,
	}
}
