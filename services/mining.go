package services

import (
	"context"
	"errors"
	"time"

	"faberlic-mining/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var MiningReward = decimal.RequireFromString("0.01")

type MiningService struct {
	DB     *gorm.DB
	ledger *Ledger
}

func NewMiningService(ledger *Ledger) *MiningService {
	return &MiningService{DB: ledger.DB, ledger: ledger}
}

type MiningStatus struct {
	models.MiningState
	Remaining     int        `json:"remaining_taps"`
	WindowResetAt *time.Time `json:"window_reset_at,omitempty"`
}

type TapResult struct {
	TapCount   int             `json:"tap_count"`
	Reward     decimal.Decimal `json:"reward"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Remaining  int             `json:"remaining_taps"`
}

func loadMiningState(tx *gorm.DB, userID string) (models.MiningState, error) {
	var state models.MiningState
	err := tx.First(&state, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		state = models.MiningState{UserID: userID}
		err = tx.Create(&state).Error
	}
	return state, err
}

// Status returns the caller's mining window, persisting a due window reset.
func (s *MiningService) Status(ctx context.Context, userID string) (*MiningStatus, error) {
	var status *MiningStatus
	err := s.ledger.WithAccount(ctx, userID, func(tx *gorm.DB, acct *models.Account) error {
		state, err := loadMiningState(tx, userID)
		if err != nil {
			return err
		}
		state, reset := ResetMiningWindow(state, s.ledger.Now())
		if reset {
			if err := tx.Save(&state).Error; err != nil {
				return err
			}
		}

		status = &MiningStatus{MiningState: state, Remaining: MiningTapCap - state.TapCount}
		if state.LastTapTime != nil && state.TapCount > 0 {
			at := state.LastTapTime.Add(MiningWindow)
			status.WindowResetAt = &at
		}
		return nil
	})
	return status, err
}

// Tap records one tap and credits MiningReward, failing with
// ErrDailyCapReached once MiningTapCap taps fall inside the window.
func (s *MiningService) Tap(ctx context.Context, userID string) (*TapResult, error) {
	var result *TapResult
	err := s.ledger.WithAccount(ctx, userID, func(tx *gorm.DB, acct *models.Account) error {
		state, err := loadMiningState(tx, userID)
		if err != nil {
			return err
		}

		now := s.ledger.Now()
		state, _ = ResetMiningWindow(state, now)
		if state.TapCount >= MiningTapCap {
			return ErrDailyCapReached
		}

		state.TapCount++
		state.DailyTaps++
		state.LastTapTime = &now
		if err := tx.Save(&state).Error; err != nil {
			return err
		}

		if _, err := s.ledger.Accrue(tx, acct, models.TransactionMining, MiningReward, false); err != nil {
			return err
		}

		result = &TapResult{
			TapCount:   state.TapCount,
			Reward:     MiningReward,
			NewBalance: acct.Balance,
			Remaining:  MiningTapCap - state.TapCount,
		}
		return nil
	})
	return result, err
}
