package model

import "time"

// Whiteboard holds the text extracted from the user's whiteboard canvas.
type Whiteboard struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Content   string    `gorm:"type:mediumtext" json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}
