package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Natsku123/ttv-tools/app/models"
	"github.com/Natsku123/ttv-tools/app/repository"
	"github.com/Natsku123/ttv-tools/internal/pkg/database/databasetest"
)

func TestAccountRepository_GetByTwitchID(t *testing.T) {
	db := databasetest.Open(t)
	seeded := databasetest.SeedAccount(t, db, "1001", "streamer")
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	account, err := repo.GetByTwitchID(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, seeded.UUID, account.UUID)
	assert.Equal(t, "streamer", account.LoginName)

	_, err = repo.GetByTwitchID(ctx, "9999")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetByTwitchID(ctx, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAccountRepository_UpdateProfile(t *testing.T) {
	db := databasetest.Open(t)
	seeded := databasetest.SeedAccount(t, db, "1001", "streamer")
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	ok, err := repo.UpdateProfile(ctx, models.AccountProfile{
		TwitchID:        "1001",
		Name:            "StreamerRenamed",
		LoginName:       "streamerrenamed",
		IconURL:         "https://cdn.example/icon.png",
		OfflineImageURL: "https://cdn.example/offline.png",
		Description:     "variety",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	account, err := repo.GetByUUID(ctx, seeded.UUID)
	require.NoError(t, err)
	assert.Equal(t, "StreamerRenamed", account.Name)
	assert.Equal(t, "streamerrenamed", account.LoginName)
	assert.Equal(t, "variety", account.Description)

	ok, err = repo.UpdateProfile(ctx, models.AccountProfile{TwitchID: "nobody"})
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
