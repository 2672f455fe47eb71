package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Natsku123/ttv-tools/app/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrRemoteIDAlreadySet guards the write-once Twitch subscription id.
	ErrRemoteIDAlreadySet = errors.New("remote subscription id already set")
)

// AccountRepository defines the account lookups used by the pipeline
type AccountRepository interface {
	GetByUUID(ctx context.Context, uuid string) (*models.Account, error)
	GetByTwitchID(ctx context.Context, twitchID string) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	UpdateProfile(ctx context.Context, profile models.AccountProfile) (bool, error)
}

// EventSubscriptionRepository defines the event subscription operations
type EventSubscriptionRepository interface {
	Create(ctx context.Context, sub *models.EventSubscription) error
	GetByUUID(ctx context.Context, uuid string) (*models.EventSubscription, error)
	ListByOwner(ctx context.Context, userUUID string) ([]models.EventSubscription, error)
	ListByOwnerAndEvent(ctx context.Context, userUUID, event string) ([]models.EventSubscription, error)
	UpdateCustomization(ctx context.Context, uuid string, c models.EventSubscriptionCustomization) (*models.EventSubscription, error)
	SetRemoteID(ctx context.Context, uuid, remoteID string) error
	Delete(ctx context.Context, uuid string) error
}

// Repositories holds all repository instances
type Repositories struct {
	Account           AccountRepository
	EventSubscription EventSubscriptionRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Account:           NewAccountRepository(db),
		EventSubscription: NewEventSubscriptionRepository(db),
	}
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
