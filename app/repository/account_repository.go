package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Natsku123/ttv-tools/app/models"
	"github.com/Natsku123/ttv-tools/internal/pkg/database"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository instance
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetByUUID(ctx context.Context, uuid string) (*models.Account, error) {
	var account models.Account
	if err := database.Scoped(ctx, r.db).Where("uuid = ?", uuid).First(&account).Error; err != nil {
		return nil, translateError(err)
	}
	return &account, nil
}

// GetByTwitchID resolves the owner of a broadcaster-scoped event.
func (r *accountRepository) GetByTwitchID(ctx context.Context, twitchID string) (*models.Account, error) {
	if twitchID == "" {
		return nil, ErrNotFound
	}
	var account models.Account
	if err := database.Scoped(ctx, r.db).Where("twitch_id = ?", twitchID).First(&account).Error; err != nil {
		return nil, translateError(err)
	}
	return &account, nil
}

func (r *accountRepository) List(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	err := database.Scoped(ctx, r.db).Order("created_at").Find(&accounts).Error
	return accounts, err
}

// UpdateProfile writes the provider profile onto the account with the
// matching Twitch id. It reports false when no account matched.
func (r *accountRepository) UpdateProfile(ctx context.Context, p models.AccountProfile) (bool, error) {
	tx := database.Scoped(ctx, r.db).
		Model(&models.Account{}).
		Where("twitch_id = ?", p.TwitchID).
		Updates(map[string]any{
			"name":              p.Name,
			"login_name":        p.LoginName,
			"icon_url":          p.IconURL,
			"offline_image_url": p.OfflineImageURL,
			"description":       p.Description,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
