package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"faberlic-mining/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResolveTier returns the highest active level whose deposit requirement is
// covered by deposit, or 0 when none qualifies.
func ResolveTier(deposit decimal.Decimal, tiers []models.VIPTier) int {
	sorted := make([]models.VIPTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })

	level := 0
	for _, t := range sorted {
		if !t.IsActive {
			continue
		}
		if t.DepositRequired.LessThanOrEqual(deposit) {
			level = t.Level
		}
	}
	return level
}

type VIPService struct {
	DB     *gorm.DB
	ledger *Ledger
}

func NewVIPService(ledger *Ledger) *VIPService {
	return &VIPService{DB: ledger.DB, ledger: ledger}
}

// EnsureDefaultTiers seeds the default catalogue into an empty table.
func (s *VIPService) EnsureDefaultTiers(ctx context.Context) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.VIPTier{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	tiers := models.DefaultVIPTiers()
	if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tiers).Error; err != nil {
		return fmt.Errorf("seed VIP tiers: %w", err)
	}
	log.Infof("🏅 Seeded %d default VIP tiers", len(tiers))
	return nil
}

func (s *VIPService) ListTiers(ctx context.Context) ([]models.VIPTier, error) {
	if err := s.EnsureDefaultTiers(ctx); err != nil {
		return nil, err
	}
	var tiers []models.VIPTier
	if err := s.DB.WithContext(ctx).Order("level ASC").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

// Upgrade raises the caller's vip_level to the highest tier the deposit
// covers. It never lowers the level.
func (s *VIPService) Upgrade(ctx context.Context, userID string) (int, error) {
	if err := s.EnsureDefaultTiers(ctx); err != nil {
		return 0, err
	}

	var newLevel int
	err := s.ledger.WithAccount(ctx, userID, func(tx *gorm.DB, acct *models.Account) error {
		var tiers []models.VIPTier
		if err := tx.Order("level ASC").Find(&tiers).Error; err != nil {
			return err
		}
		resolved := ResolveTier(acct.DepositAmount, tiers)
		if resolved <= acct.VIPLevel {
			return ErrInsufficientDeposit
		}
		if err := tx.Model(acct).Update("vip_level", resolved).Error; err != nil {
			return err
		}
		log.WithFields(log.Fields{"user_id": acct.ID, "from": acct.VIPLevel, "to": resolved}).Info("VIP level upgraded")
		acct.VIPLevel = resolved
		newLevel = resolved
		return nil
	})
	return newLevel, err
}

func validateTier(t models.VIPTier) error {
	switch {
	case t.Level < 1:
		return ErrInvalidInput.WithMessage("level must be >= 1")
	case t.DepositRequired.IsNegative() || t.MaxDailyEarnings.IsNegative() || t.CommissionPerOrder.IsNegative():
		return ErrInvalidInput.WithMessage("tier amounts must not be negative")
	case t.OrdersPerDay < 0:
		return ErrInvalidInput.WithMessage("orders_per_day must not be negative")
	}
	return nil
}

// CreateTier adds a new tier; an existing level is a conflict.
func (s *VIPService) CreateTier(ctx context.Context, level int, patch TierPatch) (*models.VIPTier, error) {
	if !patch.complete() {
		return nil, ErrInvalidInput.WithMessage("deposit_required, max_daily_earnings, orders_per_day and commission_per_order are required")
	}
	tier := models.VIPTier{Level: level, IsActive: true}
	patch.apply(&tier)
	if err := validateTier(tier); err != nil {
		return nil, err
	}
	if tier.Name == "" {
		tier.Name = fmt.Sprintf("VIP %d", tier.Level)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.VIPTier
		err := tx.First(&existing, "level = ?", tier.Level).Error
		if err == nil {
			return ErrTierExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&tier).Error
	})
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// TierPatch carries the tier fields an administrator sent; nil fields are
// left as stored.
type TierPatch struct {
	Name               *string
	DepositRequired    *decimal.Decimal
	MaxDailyEarnings   *decimal.Decimal
	OrdersPerDay       *int
	CommissionPerOrder *decimal.Decimal
	IsActive           *bool
}

func (p TierPatch) complete() bool {
	return p.DepositRequired != nil && p.MaxDailyEarnings != nil && p.OrdersPerDay != nil && p.CommissionPerOrder != nil
}

func (p TierPatch) apply(t *models.VIPTier) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.DepositRequired != nil {
		t.DepositRequired = *p.DepositRequired
	}
	if p.MaxDailyEarnings != nil {
		t.MaxDailyEarnings = *p.MaxDailyEarnings
	}
	if p.OrdersPerDay != nil {
		t.OrdersPerDay = *p.OrdersPerDay
	}
	if p.CommissionPerOrder != nil {
		t.CommissionPerOrder = *p.CommissionPerOrder
	}
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
}

// UpdateTier overlays patch on the tier at level. A missing level is
// created, which needs every amount and the order quota.
func (s *VIPService) UpdateTier(ctx context.Context, level int, patch TierPatch) (*models.VIPTier, error) {
	if level < 1 {
		return nil, ErrInvalidInput.WithMessage("level must be >= 1")
	}

	var tier *models.VIPTier
	created := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := tierByLevel(forUpdate(tx), level)
		switch {
		case err == nil:
			tier = existing
		case errors.Is(err, ErrTierNotFound):
			if !patch.complete() {
				return ErrInvalidInput.WithMessage("a new tier needs deposit_required, max_daily_earnings, orders_per_day and commission_per_order")
			}
			tier = &models.VIPTier{Level: level, IsActive: true}
			created = true
		default:
			return err
		}

		patch.apply(tier)
		if tier.Name == "" {
			tier.Name = fmt.Sprintf("VIP %d", tier.Level)
		}
		if err := validateTier(*tier); err != nil {
			return err
		}
		if created {
			return tx.Create(tier).Error
		}
		return tx.Save(tier).Error
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"level": tier.Level, "active": tier.IsActive}).Info("VIP tier saved")
	return tier, nil
}

func tierByLevel(tx *gorm.DB, level int) (*models.VIPTier, error) {
	var tier models.VIPTier
	if err := tx.First(&tier, "level = ?", level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTierNotFound
		}
		return nil, err
	}
	return &tier, nil
}
