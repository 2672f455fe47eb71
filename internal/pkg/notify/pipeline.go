// Package notify turns EventSub notifications into bot deliveries, one per
// matching event subscription.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Natsku123/ttv-tools/app/models"
	"github.com/Natsku123/ttv-tools/app/repository"
	"github.com/Natsku123/ttv-tools/internal/pkg/dedup"
	"github.com/Natsku123/ttv-tools/internal/pkg/eventsub"
	"github.com/Natsku123/ttv-tools/internal/pkg/ipc"
	"github.com/Natsku123/ttv-tools/internal/pkg/metrics"
	"github.com/Natsku123/ttv-tools/internal/pkg/twitch"
)

// Deliverer hands a rendered notification to the bot.
type Deliverer interface {
	Deliver(ctx context.Context, route string, kwargs ipc.Kwargs) error
}

// StreamSource looks up the current live stream of a broadcaster.
type StreamSource interface {
	GetLiveStream(ctx context.Context, userID string) (*twitch.Stream, error)
}

// Pipeline processes one notification at a time; it holds no per-message
// state and is safe for concurrent use.
type Pipeline struct {
	Accounts      repository.AccountRepository
	Subscriptions repository.EventSubscriptionRepository
	Dedup         dedup.Store
	Streams       StreamSource
	Deliverer     Deliverer
	Metrics       *metrics.PipelineMetrics
}

func NewPipeline(repos *repository.Repositories, store dedup.Store, streams StreamSource, deliverer Deliverer) *Pipeline {
	return &Pipeline{
		Accounts:      repos.Account,
		Subscriptions: repos.EventSubscription,
		Dedup:         store,
		Streams:       streams,
		Deliverer:     deliverer,
		Metrics:       metrics.Pipeline(),
	}
}

// Delivery is the result of one bot call.
type Delivery struct {
	SubscriptionUUID string
	ChannelDiscordID string
	Route            string
	Err              error
}

// Report summarizes what Process did with a message.
type Report struct {
	MessageID  string
	Kind       eventsub.Kind
	Outcome    string
	Deliveries []Delivery
}

func (r Report) Delivered() int {
	n := 0
	for _, d := range r.Deliveries {
		if d.Err == nil {
			n++
		}
	}
	return n
}

func (r Report) Failed() int {
	return len(r.Deliveries) - r.Delivered()
}

// Process decodes the event, admits the message id and delivers the event
// to every subscription of the owning account for that kind. A repeated
// message id returns a duplicate report with no side effects. Failed
// deliveries are recorded in the report and do not produce an error.
func (p *Pipeline) Process(ctx context.Context, messageID, subscriptionType string, raw json.RawMessage) (Report, error) {
	ev := eventsub.Decode(subscriptionType, raw)
	report := Report{MessageID: messageID, Kind: eventsub.Kind(subscriptionType)}

	admitted, err := p.Dedup.Admit(ctx, messageID)
	if err != nil {
		return report, fmt.Errorf("admit message %s: %w", messageID, err)
	}
	if !admitted {
		log.Debugf("[Notify] Message %s already processed", messageID)
		return p.finish(report, metrics.OutcomeDuplicate), nil
	}

	scoped, ok := ev.(eventsub.BroadcasterScoped)
	if !ok || scoped.BroadcasterID() == "" {
		return p.finish(report, metrics.OutcomeUnscoped), nil
	}

	owner, err := p.Accounts.GetByTwitchID(ctx, scoped.BroadcasterID())
	if errors.Is(err, repository.ErrNotFound) {
		return p.finish(report, metrics.OutcomeNoOwner), nil
	}
	if err != nil {
		return report, fmt.Errorf("lookup owner of %s: %w", scoped.BroadcasterID(), err)
	}

	b, ok := builders[ev.Kind()]
	if !ok {
		log.Infof("[Notify] No notification for %s events of %s", ev.Kind(), owner.Name)
		return p.finish(report, metrics.OutcomeUnsupported), nil
	}

	subs, err := p.Subscriptions.ListByOwnerAndEvent(ctx, owner.UUID, string(ev.Kind()))
	if err != nil {
		return report, fmt.Errorf("list %s subscriptions of %s: %w", ev.Kind(), owner.UUID, err)
	}
	if len(subs) == 0 {
		return p.finish(report, metrics.OutcomeDispatched), nil
	}

	shared := b.shared(ctx, p, scoped, owner)
	for i := range subs {
		sub := &subs[i]
		kwargs := commonKwargs(scoped, owner, sub)
		for k, v := range shared {
			kwargs[k] = v
		}
		if b.personalize != nil {
			b.personalize(kwargs, sub)
		}

		err := p.Deliverer.Deliver(ctx, b.route, kwargs)
		if err != nil {
			log.Warnf("[Notify] %s to channel %s failed: %v", b.route, sub.ChannelDiscordID, err)
		} else {
			log.Infof("[Notify] %s =[%s]=> %s", owner.Name, ev.Kind(), sub.ChannelDiscordID)
		}
		report.Deliveries = append(report.Deliveries, Delivery{
			SubscriptionUUID: sub.UUID,
			ChannelDiscordID: sub.ChannelDiscordID,
			Route:            b.route,
			Err:              err,
		})
	}

	return p.finish(report, metrics.OutcomeDispatched), nil
}

func (p *Pipeline) finish(report Report, outcome string) Report {
	report.Outcome = outcome
	p.Metrics.ObserveNotification(string(report.Kind), outcome)
	return report
}

// commonKwargs are sent on every route.
func commonKwargs(ev eventsub.BroadcasterScoped, owner *models.Account, sub *models.EventSubscription) ipc.Kwargs {
	return ipc.Kwargs{
		"notification_content": optionalPtr(sub.Message),
		"channel_discord_id":   sub.ChannelDiscordID,
		"server_discord_id":    sub.ServerDiscordID,
		"broadcaster_name":     ev.BroadcasterName(),
		"twitch_icon":          owner.IconURL,
		// The event login is current; the stored one lags until the next refresh.
		"twitch_url": "https://twitch.tv/" + ev.BroadcasterLogin(),
	}
}
