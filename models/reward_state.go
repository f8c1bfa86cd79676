package models

import "time"

// MiningState tracks taps inside the current 6-hour window.
type MiningState struct {
	UserID      string     `gorm:"primaryKey;type:uuid" json:"user_id"`
	TapCount    int        `gorm:"not null" json:"tap_count"`
	LastTapTime *time.Time `json:"last_tap_time"`
	DailyTaps   int64      `gorm:"not null" json:"daily_taps"` // lifetime counter, informational
	LastReset   *time.Time `json:"last_reset"`
}

// SpinState holds the UTC date (YYYY-MM-DD) of the last spin, empty when never spun.
type SpinState struct {
	UserID       string `gorm:"primaryKey;type:uuid" json:"user_id"`
	LastSpinDate string `gorm:"type:varchar(10);not null" json:"last_spin_date"`
	TotalSpins   int64  `gorm:"not null" json:"total_spins"`
}

// DailyResetMarker records the UTC date on which daily_earnings was last zeroed.
type DailyResetMarker struct {
	UserID string `gorm:"primaryKey;type:uuid" json:"user_id"`
	Date   string `gorm:"type:varchar(10);not null;index" json:"date"`
}
