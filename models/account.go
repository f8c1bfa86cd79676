package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account is the ledger owner: spendable balance plus the earnings counters
// that drive daily caps and VIP resolution.
type Account struct {
	ID            string          `gorm:"primaryKey;type:uuid" json:"id"`
	Login         string          `gorm:"uniqueIndex;not null" json:"login"`
	PasswordHash  string          `gorm:"not null" json:"-"`
	Role          Role            `gorm:"type:varchar(16);not null" json:"role"`
	Balance       decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"balance"`
	DailyEarnings decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"daily_earnings"`
	TotalEarnings decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"total_earnings"`
	DepositAmount decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"deposit_amount"`
	VIPLevel      int             `gorm:"not null" json:"vip_level"`
	LastLogin     *time.Time      `json:"last_login,omitempty"`

	Timestamps
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
