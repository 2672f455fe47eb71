// Package accountsync refreshes the cached Twitch profile of every account.
package accountsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Natsku123/ttv-tools/app/models"
	"github.com/Natsku123/ttv-tools/app/repository"
	"github.com/Natsku123/ttv-tools/internal/pkg/twitch"
)

// UserSource resolves Twitch users by id.
type UserSource interface {
	GetUsers(ctx context.Context, ids []string) ([]twitch.User, error)
}

type Syncer struct {
	Accounts repository.AccountRepository
	Users    UserSource
}

func NewSyncer(accounts repository.AccountRepository, users UserSource) *Syncer {
	return &Syncer{Accounts: accounts, Users: users}
}

// Result counts what a refresh touched.
type Result struct {
	Accounts int
	Fetched  int
	Updated  int
}

// RefreshAll looks up every account's Twitch id and rewrites the cached
// name, login, images and description. Ids Twitch no longer knows are left
// untouched.
func (s *Syncer) RefreshAll(ctx context.Context) (Result, error) {
	accounts, err := s.Accounts.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list accounts: %w", err)
	}

	res := Result{Accounts: len(accounts)}
	ids := twitchIDs(accounts)
	if len(ids) == 0 {
		return res, nil
	}

	users, err := s.Users.GetUsers(ctx, ids)
	if err != nil {
		return res, fmt.Errorf("fetch twitch users: %w", err)
	}
	res.Fetched = len(users)

	var errs []error
	for _, u := range users {
		updated, err := s.Accounts.UpdateProfile(ctx, models.AccountProfile{
			TwitchID:        u.ID,
			Name:            u.DisplayName,
			LoginName:       u.Login,
			IconURL:         u.ProfileImageURL,
			OfflineImageURL: u.OfflineImageURL,
			Description:     u.Description,
		})
		if err != nil {
			log.Warnf("[AccountSync] Updating account for Twitch user %s failed: %v", u.ID, err)
			errs = append(errs, err)
			continue
		}
		if updated {
			res.Updated++
		}
	}

	log.Infof("[AccountSync] Refreshed %d of %d accounts", res.Updated, res.Accounts)
	return res, errors.Join(errs...)
}

func twitchIDs(accounts []models.Account) []string {
	seen := make(map[string]struct{}, len(accounts))
	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if a.TwitchID == "" {
			continue
		}
		if _, ok := seen[a.TwitchID]; ok {
			continue
		}
		seen[a.TwitchID] = struct{}{}
		ids = append(ids, a.TwitchID)
	}
	return ids
}
