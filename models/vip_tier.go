package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type VIPTier struct {
	Level              int             `gorm:"primaryKey;autoIncrement:false" json:"level"`
	Name               string          `gorm:"not null" json:"name"`
	DepositRequired    decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"deposit_required"`
	MaxDailyEarnings   decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"max_daily_earnings"`
	OrdersPerDay       int             `gorm:"not null" json:"orders_per_day"`
	CommissionPerOrder decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"commission_per_order"`
	IsActive           bool            `gorm:"not null" json:"is_active"`
}

// DefaultVIPTiers is the catalogue seeded into an empty vip_tiers table.
func DefaultVIPTiers() []VIPTier {
	tier := func(level int, deposit, maxDaily int64, orders int) VIPTier {
		return VIPTier{
			Level:              level,
			Name:               fmt.Sprintf("VIP %d", level),
			DepositRequired:    decimal.NewFromInt(deposit),
			MaxDailyEarnings:   decimal.NewFromInt(maxDaily),
			OrdersPerDay:       orders,
			CommissionPerOrder: decimal.NewFromInt(5),
			IsActive:           true,
		}
	}
	return []VIPTier{
		tier(1, 1000, 50, 10),
		tier(2, 3000, 150, 30),
		tier(3, 8000, 500, 100),
		tier(4, 15000, 800, 160),
		tier(5, 30000, 1500, 300),
	}
}
