// Package databasetest opens throwaway in-memory databases for tests.
package databasetest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Natsku123/ttv-tools/app/models"
	"github.com/Natsku123/ttv-tools/internal/pkg/database"
)

// Open returns a migrated sqlite database private to the test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedAccount inserts an account with the given Twitch identity.
func SeedAccount(t *testing.T, db *gorm.DB, twitchID, login string) *models.Account {
	t.Helper()
	account := &models.Account{
		TwitchID:  twitchID,
		Name:      strings.ToUpper(login[:1]) + login[1:],
		LoginName: login,
		IconURL:   "https://static-cdn.example/" + login + ".png",
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

// SeedSubscription inserts a subscription for owner and kind.
func SeedSubscription(t *testing.T, db *gorm.DB, owner *models.Account, kind, channelID string) *models.EventSubscription {
	t.Helper()
	sub := &models.EventSubscription{
		UserUUID:         owner.UUID,
		ServerDiscordID:  "server-1",
		ChannelDiscordID: channelID,
		Event:            kind,
	}
	require.NoError(t, db.Create(sub).Error)
	return sub
}
