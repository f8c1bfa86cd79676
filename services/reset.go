package services

import (
	"errors"
	"time"

	"faberlic-mining/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MiningWindow = 6 * time.Hour
	MiningTapCap = 500
)

// CalendarDate is the UTC day key used by spin and daily-earnings resets.
func CalendarDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// StartOfDay returns 00:00 UTC of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ResetMiningWindow zeroes TapCount once MiningWindow has elapsed since the
// last tap. It reports whether a reset happened.
func ResetMiningWindow(state models.MiningState, now time.Time) (models.MiningState, bool) {
	if state.LastTapTime == nil {
		return state, false
	}
	if now.Sub(*state.LastTapTime) < MiningWindow {
		return state, false
	}
	if state.TapCount == 0 {
		return state, false
	}
	state.TapCount = 0
	reset := now
	state.LastReset = &reset
	return state, true
}

// SpinAvailable reports whether the account has not spun yet on now's UTC date.
func SpinAvailable(state models.SpinState, now time.Time) bool {
	return state.LastSpinDate != CalendarDate(now)
}

// DailyResetDue reports whether daily_earnings must be zeroed; an empty
// lastResetDate means no reset was ever recorded.
func DailyResetDue(lastResetDate string, now time.Time) bool {
	return lastResetDate != CalendarDate(now)
}

// applyDailyReset zeroes acct.DailyEarnings at most once per UTC day and
// stamps the marker with an upsert. Must run inside the account's unit of work.
func applyDailyReset(tx *gorm.DB, acct *models.Account, now time.Time) (bool, error) {
	var marker models.DailyResetMarker
	err := tx.First(&marker, "user_id = ?", acct.ID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if !DailyResetDue(marker.Date, now) {
		return false, nil
	}

	acct.DailyEarnings = decimal.Zero
	if err := tx.Model(acct).Update("daily_earnings", acct.DailyEarnings).Error; err != nil {
		return false, err
	}

	stamp := models.DailyResetMarker{UserID: acct.ID, Date: CalendarDate(now)}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"date"}),
	}).Create(&stamp).Error; err != nil {
		return false, err
	}
	return true, nil
}
