package accountsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Natsku123/ttv-tools/app/repository"
	"github.com/Natsku123/ttv-tools/internal/pkg/database/databasetest"
	"github.com/Natsku123/ttv-tools/internal/pkg/twitch"
)

type fakeUsers struct {
	users []twitch.User
	err   error
	asked []string
}

func (f *fakeUsers) GetUsers(_ context.Context, ids []string) ([]twitch.User, error) {
	f.asked = append(f.asked, ids...)
	return f.users, f.err
}

func TestRefreshAll_UpdatesKnownAccounts(t *testing.T) {
	db := databasetest.Open(t)
	alice := databasetest.SeedAccount(t, db, "1234", "alice")
	databasetest.SeedAccount(t, db, "5678", "bob")

	users := &fakeUsers{users: []twitch.User{
		{ID: "1234", Login: "alice_new", DisplayName: "Alice_New", Description: "chess", ProfileImageURL: "https://cdn.example/a.png", OfflineImageURL: "https://cdn.example/a-off.png"},
		{ID: "9999", Login: "stranger", DisplayName: "Stranger"},
	}}
	accounts := repository.NewAccountRepository(db)

	res, err := NewSyncer(accounts, users).RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Accounts: 2, Fetched: 2, Updated: 1}, res)
	assert.ElementsMatch(t, []string{"1234", "5678"}, users.asked)

	got, err := accounts.GetByUUID(context.Background(), alice.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Alice_New", got.Name)
	assert.Equal(t, "alice_new", got.LoginName)
	assert.Equal(t, "https://cdn.example/a.png", got.IconURL)
	assert.Equal(t, "https://cdn.example/a-off.png", got.OfflineImageURL)
	assert.Equal(t, "chess", got.Description)

	bob, err := accounts.GetByTwitchID(context.Background(), "5678")
	require.NoError(t, err)
	assert.Equal(t, "bob", bob.LoginName)
}

func TestRefreshAll_NoAccounts(t *testing.T) {
	users := &fakeUsers{}
	res, err := NewSyncer(repository.NewAccountRepository(databasetest.Open(t)), users).RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Accounts)
	assert.Empty(t, users.asked)
}

func TestRefreshAll_ProviderError(t *testing.T) {
	db := databasetest.Open(t)
	databasetest.SeedAccount(t, db, "1234", "alice")

	_, err := NewSyncer(repository.NewAccountRepository(db), &fakeUsers{err: errors.New("status=401")}).RefreshAll(context.Background())
	assert.ErrorContains(t, err, "status=401")
}
