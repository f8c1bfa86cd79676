package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderOffered   OrderStatus = "offered"
	OrderCompleted OrderStatus = "completed"
	OrderExpired   OrderStatus = "expired"
)

// Order is a cashback offer issued to one account. It becomes completed
// once accepted, or expired when superseded or past ExpiresAt.
type Order struct {
	ID           string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string          `gorm:"type:uuid;index;not null" json:"user_id"`
	ProductName  string          `gorm:"not null" json:"product_name"`
	ProductCode  string          `gorm:"type:varchar(16);not null" json:"product_code"`
	Category     string          `gorm:"not null" json:"category"`
	ProductPrice decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"product_price"`
	Cashback     decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"cashback"`
	QRPayload    string          `gorm:"type:text;not null" json:"qr_payload"`
	QRURL        string          `gorm:"type:text" json:"qr_url,omitempty"`
	Status       OrderStatus     `gorm:"type:varchar(16);not null;index" json:"status"`
	ExpiresAt    time.Time       `gorm:"index" json:"expires_at"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `gorm:"index" json:"completed_at,omitempty"`
}
