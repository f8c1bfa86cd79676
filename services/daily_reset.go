package services

import (
	"context"

	"faberlic-mining/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ResetService struct {
	DB     *gorm.DB
	ledger *Ledger
}

func NewResetService(ledger *Ledger) *ResetService {
	return &ResetService{DB: ledger.DB, ledger: ledger}
}

// SweepDailyEarnings applies the daily-earnings reset to every account not
// yet reset today. Lazy resets during requests make this idempotent.
func (s *ResetService) SweepDailyEarnings(ctx context.Context) (int, error) {
	today := CalendarDate(s.ledger.Now())

	var ids []string
	if err := s.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id NOT IN (?)", s.DB.Model(&models.DailyResetMarker{}).Select("user_id").Where("date = ?", today)).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}

	reset := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return reset, ctx.Err()
		}
		err := s.ledger.WithAccount(ctx, id, func(tx *gorm.DB, acct *models.Account) error {
			done, err := applyDailyReset(tx, acct, s.ledger.Now())
			if done {
				reset++
			}
			return err
		})
		if err != nil {
			log.WithError(err).WithField("user_id", id).Warn("daily reset failed")
		}
	}
	return reset, nil
}
