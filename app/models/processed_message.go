package models

import "time"

// ProcessedMessage marks a Twitch message id as already dispatched.
type ProcessedMessage struct {
	MessageID string    `gorm:"primaryKey;type:varchar(191)" json:"message_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
