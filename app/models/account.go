package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is the local user linked to a Twitch broadcaster. Accounts are
// created by the login flow; this service only reads them and refreshes
// the cached profile fields.
type Account struct {
	UUID            string    `gorm:"primaryKey;type:char(36)" json:"uuid"`
	TwitchID        string    `gorm:"type:varchar(64);uniqueIndex" json:"twitch_id"`
	DiscordID       *string   `gorm:"type:varchar(64);index" json:"discord_id"`
	Name            string    `gorm:"type:varchar(150)" json:"name"`
	LoginName       string    `gorm:"type:varchar(150)" json:"login_name"`
	IconURL         string    `gorm:"type:varchar(512)" json:"icon_url"`
	OfflineImageURL string    `gorm:"type:varchar(512)" json:"offline_image_url"`
	Description     string    `gorm:"type:text" json:"description"`
	IsSuperadmin    bool      `gorm:"default:false" json:"is_superadmin"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.New().String()
	}
	return nil
}

// AccountProfile holds the fields refreshed from the provider.
type AccountProfile struct {
	TwitchID        string
	Name            string
	LoginName       string
	IconURL         string
	OfflineImageURL string
	Description     string
}
