package services

import (
	"context"
	"errors"

	"faberlic-mining/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SpinRewards is sampled uniformly; duplicates make 1, 2 and 5 twice as likely.
var SpinRewards = []decimal.Decimal{
	decimal.RequireFromString("0.5"),
	decimal.NewFromInt(1),
	decimal.NewFromInt(1),
	decimal.NewFromInt(2),
	decimal.NewFromInt(2),
	decimal.NewFromInt(5),
	decimal.NewFromInt(5),
	decimal.NewFromInt(10),
}

type SpinService struct {
	DB     *gorm.DB
	ledger *Ledger
	rng    RandomSource
}

func NewSpinService(ledger *Ledger, rng RandomSource) *SpinService {
	if rng == nil {
		rng = NewRandomSource()
	}
	return &SpinService{DB: ledger.DB, ledger: ledger, rng: rng}
}

type SpinResult struct {
	Reward     decimal.Decimal `json:"reward"`
	NewBalance decimal.Decimal `json:"new_balance"`
	TotalSpins int64           `json:"total_spins"`
}

// Spin draws one reward per account per UTC day.
func (s *SpinService) Spin(ctx context.Context, userID string) (*SpinResult, error) {
	var result *SpinResult
	err := s.ledger.WithAccount(ctx, userID, func(tx *gorm.DB, acct *models.Account) error {
		var state models.SpinState
		err := tx.First(&state, "user_id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			state = models.SpinState{UserID: userID}
			err = tx.Create(&state).Error
		}
		if err != nil {
			return err
		}

		now := s.ledger.Now()
		if !SpinAvailable(state, now) {
			return ErrAlreadySpun
		}

		reward := SpinRewards[s.rng.Intn(len(SpinRewards))]
		state.LastSpinDate = CalendarDate(now)
		state.TotalSpins++
		if err := tx.Save(&state).Error; err != nil {
			return err
		}

		if _, err := s.ledger.Accrue(tx, acct, models.TransactionSpin, reward, false); err != nil {
			return err
		}
		result = &SpinResult{Reward: reward, NewBalance: acct.Balance, TotalSpins: state.TotalSpins}
		return nil
	})
	return result, err
}
