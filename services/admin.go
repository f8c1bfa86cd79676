package services

import (
	"context"

	"faberlic-mining/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const AdminUserListLimit = 1000

type AdminService struct {
	DB *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{DB: db}
}

type PlatformStats struct {
	TotalUsers           int64           `json:"total_users"`
	PendingWithdrawals   int64           `json:"pending_withdrawals"`
	PendingDeposits      int64           `json:"pending_deposits"`
	TotalPlatformBalance decimal.Decimal `json:"total_platform_balance"`
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	err := s.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(AdminUserListLimit).
		Find(&accounts).Error
	return accounts, err
}

func (s *AdminService) Stats(ctx context.Context) (*PlatformStats, error) {
	db := s.DB.WithContext(ctx)
	stats := &PlatformStats{}

	if err := db.Model(&models.Account{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).
		Where("type = ? AND status = ?", models.TransactionWithdraw, models.TransactionPending).
		Count(&stats.PendingWithdrawals).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).
		Where("type = ? AND status = ?", models.TransactionDeposit, models.TransactionPending).
		Count(&stats.PendingDeposits).Error; err != nil {
		return nil, err
	}

	var total decimal.NullDecimal
	if err := db.Model(&models.Account{}).Select("SUM(balance)").Row().Scan(&total); err != nil {
		return nil, err
	}
	stats.TotalPlatformBalance = decimal.Zero
	if total.Valid {
		stats.TotalPlatformBalance = total.Decimal
	}
	return stats, nil
}
