package models

import "time"

type Notification struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsGlobal  bool      `gorm:"not null" json:"is_global"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
