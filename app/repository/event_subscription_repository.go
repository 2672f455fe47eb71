package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Natsku123/ttv-tools/app/models"
	"github.com/Natsku123/ttv-tools/internal/pkg/database"
)

type eventSubscriptionRepository struct {
	db *gorm.DB
}

// NewEventSubscriptionRepository creates a new event subscription repository instance
func NewEventSubscriptionRepository(db *gorm.DB) EventSubscriptionRepository {
	return &eventSubscriptionRepository{db: db}
}

// Create stores a new subscription. Any remote id on the input is dropped.
func (r *eventSubscriptionRepository) Create(ctx context.Context, sub *models.EventSubscription) error {
	sub.TwitchID = nil
	return database.Scoped(ctx, r.db).Create(sub).Error
}

func (r *eventSubscriptionRepository) GetByUUID(ctx context.Context, uuid string) (*models.EventSubscription, error) {
	var sub models.EventSubscription
	if err := database.Scoped(ctx, r.db).Where("uuid = ?", uuid).First(&sub).Error; err != nil {
		return nil, translateError(err)
	}
	return &sub, nil
}

func (r *eventSubscriptionRepository) ListByOwner(ctx context.Context, userUUID string) ([]models.EventSubscription, error) {
	var subs []models.EventSubscription
	err := database.Scoped(ctx, r.db).
		Where("user_uuid = ?", userUUID).
		Order("created_at").
		Find(&subs).Error
	return subs, err
}

// ListByOwnerAndEvent returns the fanout targets for one owner and event kind.
func (r *eventSubscriptionRepository) ListByOwnerAndEvent(ctx context.Context, userUUID, event string) ([]models.EventSubscription, error) {
	var subs []models.EventSubscription
	err := database.Scoped(ctx, r.db).
		Where("user_uuid = ? AND event = ?", userUUID, event).
		Order("created_at").
		Find(&subs).Error
	return subs, err
}

func (r *eventSubscriptionRepository) UpdateCustomization(ctx context.Context, uuid string, c models.EventSubscriptionCustomization) (*models.EventSubscription, error) {
	db := database.Scoped(ctx, r.db)
	var sub models.EventSubscription
	if err := db.Where("uuid = ?", uuid).First(&sub).Error; err != nil {
		return nil, translateError(err)
	}

	var columns []string
	if c.Has(models.ColumnCustomTitle) {
		sub.CustomTitle = c.CustomTitle
		columns = append(columns, models.ColumnCustomTitle)
	}
	if c.Has(models.ColumnCustomDescription) {
		sub.CustomDescription = c.CustomDescription
		columns = append(columns, models.ColumnCustomDescription)
	}
	if c.Has(models.ColumnMessage) {
		sub.Message = c.Message
		columns = append(columns, models.ColumnMessage)
	}
	if len(columns) == 0 {
		return &sub, nil
	}

	// Select forces nil pointers to be written, which clears the override.
	if err := db.Model(&sub).
		Select(append(columns, "updated_at")).
		Updates(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// SetRemoteID records the Twitch subscription id once. A second call for the
// same subscription fails with ErrRemoteIDAlreadySet.
func (r *eventSubscriptionRepository) SetRemoteID(ctx context.Context, uuid, remoteID string) error {
	db := database.Scoped(ctx, r.db)
	tx := db.Model(&models.EventSubscription{}).
		Where("uuid = ? AND twitch_id IS NULL", uuid).
		Update("twitch_id", remoteID)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.EventSubscription{}).Where("uuid = ?", uuid).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrRemoteIDAlreadySet
}

// Delete removes the subscription. Deleting a missing row is not an error.
func (r *eventSubscriptionRepository) Delete(ctx context.Context, uuid string) error {
	return database.Scoped(ctx, r.db).Where("uuid = ?", uuid).Delete(&models.EventSubscription{}).Error
}
