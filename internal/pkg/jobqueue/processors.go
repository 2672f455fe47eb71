package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Natsku123/ttv-tools/internal/pkg/accountsync"
	"github.com/Natsku123/ttv-tools/internal/pkg/notify"
)

// NotificationProcessor handles process_notification jobs.
type NotificationProcessor interface {
	Process(ctx context.Context, messageID, subscriptionType string, raw json.RawMessage) (notify.Report, error)
}

// SubscriptionProcessor handles register and deregister jobs.
type SubscriptionProcessor interface {
	Register(ctx context.Context, subscriptionUUID string) error
	Deregister(ctx context.Context, subscriptionUUID string) error
}

// AccountRefresher handles refresh_accounts jobs.
type AccountRefresher interface {
	RefreshAll(ctx context.Context) (accountsync.Result, error)
}

// Processors are the job handlers. A process that only enqueues can leave
// them nil.
type Processors struct {
	Notifications NotificationProcessor
	Subscriptions SubscriptionProcessor
	Accounts      AccountRefresher
}

var errNoProcessor = errors.New("no processor configured")

func (q *Queue) runJob(ctx context.Context, job *Job) error {
	switch job.Type {
	case JobTypeProcessNotification:
		return q.processNotificationJob(ctx, job)
	case JobTypeRegisterSubscription:
		return q.processSubscriptionJob(ctx, job, true)
	case JobTypeDeregisterSubscription:
		return q.processSubscriptionJob(ctx, job, false)
	case JobTypeRefreshAccounts:
		return q.processRefreshAccountsJob(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (q *Queue) processNotificationJob(ctx context.Context, job *Job) error {
	if q.processors.Notifications == nil {
		return fmt.Errorf("%s: %w", job.Type, errNoProcessor)
	}
	payload, err := NotificationJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid notification payload: %w", err)
	}

	report, err := q.processors.Notifications.Process(ctx, payload.MessageID, payload.SubscriptionType, payload.Event)
	if err != nil {
		return err
	}
	log.Infof("[JobQueue] Notification %s (%s): %s, %d delivered, %d failed",
		report.MessageID, report.Kind, report.Outcome, report.Delivered(), report.Failed())
	return nil
}

func (q *Queue) processSubscriptionJob(ctx context.Context, job *Job, register bool) error {
	if q.processors.Subscriptions == nil {
		return fmt.Errorf("%s: %w", job.Type, errNoProcessor)
	}
	payload, err := SubscriptionJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid subscription payload: %w", err)
	}
	if payload.SubscriptionUUID == "" {
		return errors.New("subscription payload without subscription_uuid")
	}

	if register {
		return q.processors.Subscriptions.Register(ctx, payload.SubscriptionUUID)
	}
	return q.processors.Subscriptions.Deregister(ctx, payload.SubscriptionUUID)
}

func (q *Queue) processRefreshAccountsJob(ctx context.Context, job *Job) error {
	if q.processors.Accounts == nil {
		return fmt.Errorf("%s: %w", job.Type, errNoProcessor)
	}
	res, err := q.processors.Accounts.RefreshAll(ctx)
	if err != nil {
		return err
	}
	log.Infof("[JobQueue] Account refresh: %d accounts, %d fetched, %d updated", res.Accounts, res.Fetched, res.Updated)
	return nil
}

// EnqueueNotification queues a webhook notification for the workers.
func EnqueueNotification(ctx context.Context, e Enqueuer, messageID, subscriptionType string, event json.RawMessage) (*Job, error) {
	return e.EnqueueJob(ctx, JobTypeProcessNotification, NotificationJobPayload{
		MessageID:        messageID,
		SubscriptionType: subscriptionType,
		Event:            event,
	}.ToMap())
}

// EnqueueRegistration queues the Twitch registration of a subscription.
func EnqueueRegistration(ctx context.Context, e Enqueuer, subscriptionUUID string) (*Job, error) {
	return e.EnqueueJob(ctx, JobTypeRegisterSubscription, SubscriptionJobPayload{SubscriptionUUID: subscriptionUUID}.ToMap())
}

// EnqueueDeregistration queues the removal of a subscription.
func EnqueueDeregistration(ctx context.Context, e Enqueuer, subscriptionUUID string) (*Job, error) {
	return e.EnqueueJob(ctx, JobTypeDeregisterSubscription, SubscriptionJobPayload{SubscriptionUUID: subscriptionUUID}.ToMap())
}
