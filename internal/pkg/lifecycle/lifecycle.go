// Package lifecycle mirrors local event subscriptions to Twitch EventSub.
// Both operations run on the job queue.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Natsku123/ttv-tools/app/repository"
	"github.com/Natsku123/ttv-tools/internal/pkg/env"
	"github.com/Natsku123/ttv-tools/internal/pkg/eventsub"
	"github.com/Natsku123/ttv-tools/internal/pkg/twitch"
)

// CallbackPath is where the webhook handler is mounted.
const CallbackPath = "/twitch/event-sub/callback"

// SubscriptionAPI is the part of the Twitch client used here.
type SubscriptionAPI interface {
	CreateSubscription(ctx context.Context, req twitch.CreateSubscriptionRequest) (string, error)
	DeleteSubscription(ctx context.Context, id string) error
}

type Config struct {
	CallbackURL   string
	WebhookSecret string
	ClientID      string
}

func ConfigFromEnv() Config {
	host := strings.TrimRight(env.GetEnv("API_HOSTNAME", "http://localhost:8000"), "/")
	return Config{
		CallbackURL:   host + CallbackPath,
		WebhookSecret: env.GetEnv("TWITCH_WEBHOOK_SECRET", ""),
		ClientID:      strings.TrimSpace(env.GetEnv("TWITCH_CLIENT_ID", "")),
	}
}

type Manager struct {
	Accounts      repository.AccountRepository
	Subscriptions repository.EventSubscriptionRepository
	API           SubscriptionAPI
	Config        Config
}

func NewManager(repos *repository.Repositories, api SubscriptionAPI, cfg Config) *Manager {
	return &Manager{
		Accounts:      repos.Account,
		Subscriptions: repos.EventSubscription,
		API:           api,
		Config:        cfg,
	}
}

// Register creates the Twitch subscription for a local record and stores
// the id Twitch assigns. Provider errors are returned so the queue retries.
func (m *Manager) Register(ctx context.Context, subscriptionUUID string) error {
	sub, err := m.Subscriptions.GetByUUID(ctx, subscriptionUUID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Infof("[Lifecycle] Subscription %s was deleted before registration", subscriptionUUID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load subscription %s: %w", subscriptionUUID, err)
	}
	if sub.IsRegistered() {
		log.Infof("[Lifecycle] Subscription %s already registered as %s", sub.UUID, *sub.TwitchID)
		return nil
	}

	owner, err := m.Accounts.GetByUUID(ctx, sub.UserUUID)
	if err != nil {
		return fmt.Errorf("load owner %s of subscription %s: %w", sub.UserUUID, sub.UUID, err)
	}

	condition, version, err := eventsub.Resolve(eventsub.Kind(sub.Event), eventsub.ConditionInput{
		BroadcasterID: owner.TwitchID,
		ClientID:      m.Config.ClientID,
	})
	if err != nil {
		return fmt.Errorf("subscription %s: %w", sub.UUID, err)
	}

	remoteID, err := m.API.CreateSubscription(ctx, twitch.CreateSubscriptionRequest{
		Type:      sub.Event,
		Version:   version,
		Condition: condition,
		Transport: twitch.Transport{
			Method:   "webhook",
			Callback: m.Config.CallbackURL,
			Secret:   m.Config.WebhookSecret,
		},
	})
	if err != nil {
		log.Errorf("[Lifecycle] Registering %s for %s failed: %v", sub.Event, owner.LoginName, err)
		return err
	}

	err = m.Subscriptions.SetRemoteID(ctx, sub.UUID, remoteID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// Deleted while the request was in flight; drop the orphan.
		log.Warnf("[Lifecycle] Subscription %s vanished during registration, removing %s", sub.UUID, remoteID)
		if derr := m.API.DeleteSubscription(ctx, remoteID); derr != nil {
			log.Warnf("[Lifecycle] Removing orphaned Twitch subscription %s failed: %v", remoteID, derr)
		}
		return nil
	case errors.Is(err, repository.ErrRemoteIDAlreadySet):
		log.Warnf("[Lifecycle] Subscription %s was registered concurrently, keeping the stored id", sub.UUID)
		return nil
	case err != nil:
		return fmt.Errorf("store remote id for %s: %w", sub.UUID, err)
	}

	log.Infof("[Lifecycle] Registered %s for %s as %s", sub.Event, owner.LoginName, remoteID)
	return nil
}

// Deregister removes the Twitch subscription when one exists and then the
// local record. Twitch errors are logged and do not block the local delete.
func (m *Manager) Deregister(ctx context.Context, subscriptionUUID string) error {
	sub, err := m.Subscriptions.GetByUUID(ctx, subscriptionUUID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load subscription %s: %w", subscriptionUUID, err)
	}

	if sub.IsRegistered() {
		if err := m.API.DeleteSubscription(ctx, *sub.TwitchID); err != nil {
			log.Warnf("[Lifecycle] Deleting Twitch subscription %s failed, removing local record anyway: %v", *sub.TwitchID, err)
		}
	}

	if err := m.Subscriptions.Delete(ctx, sub.UUID); err != nil {
		return fmt.Errorf("delete subscription %s: %w", sub.UUID, err)
	}
	log.Infof("[Lifecycle] Deregistered subscription %s (%s)", sub.UUID, sub.Event)
	return nil
}
