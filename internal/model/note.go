package model

import "time"

// Note is the user's single notepad document.
type Note struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Content   string    `gorm:"type:mediumtext" json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}
