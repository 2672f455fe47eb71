package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventSubscription pairs an owner, a Discord destination and a Twitch
// event kind. RemoteID is the Twitch subscription id and is only written by
// the registration task.
type EventSubscription struct {
	UUID              string    `gorm:"primaryKey;type:char(36)" json:"uuid"`
	UserUUID          string    `gorm:"type:char(36);not null;index:idx_event_subscriptions_owner_event,priority:1" json:"user_uuid"`
	ServerDiscordID   string    `gorm:"type:varchar(64);not null" json:"server_discord_id"`
	ChannelDiscordID  string    `gorm:"type:varchar(64);not null" json:"channel_discord_id"`
	Event             string    `gorm:"type:varchar(100);not null;index:idx_event_subscriptions_owner_event,priority:2" json:"event"`
	TwitchID          *string   `gorm:"type:varchar(100);default:null" json:"twitch_id"`
	CustomTitle       *string   `gorm:"type:varchar(256);default:null" json:"custom_title"`
	CustomDescription *string   `gorm:"type:text" json:"custom_description"`
	Message           *string   `gorm:"type:text" json:"message"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *EventSubscription) BeforeCreate(tx *gorm.DB) error {
	if e.UUID == "" {
		e.UUID = uuid.New().String()
	}
	return nil
}

// IsRegistered reports whether Twitch has confirmed the subscription.
func (e *EventSubscription) IsRegistered() bool {
	return e.TwitchID != nil && *e.TwitchID != ""
}

// Customization columns.
const (
	ColumnCustomTitle       = "custom_title"
	ColumnCustomDescription = "custom_description"
	ColumnMessage           = "message"
)

// EventSubscriptionCustomization is the user-editable part of a subscription.
// Only the columns listed in Fields are written; a listed field that is nil
// clears the override.
type EventSubscriptionCustomization struct {
	CustomTitle       *string
	CustomDescription *string
	Message           *string
	Fields            []string
}

// Has reports whether column is part of the update.
func (c EventSubscriptionCustomization) Has(column string) bool {
	for _, f := range c.Fields {
		if f == column {
			return true
		}
	}
	return false
}
