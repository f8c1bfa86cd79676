package models

import "time"

// Timestamps adds GORM auto-times. Rows are never deleted, so there is no DeletedAt.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// All lists every table for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Account{},
		&MiningState{},
		&SpinState{},
		&DailyResetMarker{},
		&VIPTier{},
		&Transaction{},
		&Order{},
		&Notification{},
	}
}
