package notify

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Natsku123/ttv-tools/app/models"
	"github.com/Natsku123/ttv-tools/internal/pkg/eventsub"
	"github.com/Natsku123/ttv-tools/internal/pkg/ipc"
)

const (
	defaultLiveTitle = "Hey I'm live!"

	thumbnailWidth  = 640
	thumbnailHeight = 360
)

// builder renders one event kind. shared runs once per event; personalize
// runs once per destination after the common fields are set.
type builder struct {
	route       string
	shared      func(ctx context.Context, p *Pipeline, ev eventsub.BroadcasterScoped, owner *models.Account) ipc.Kwargs
	personalize func(kwargs ipc.Kwargs, sub *models.EventSubscription)
}

var builders = map[eventsub.Kind]builder{
	eventsub.KindStreamOnline: {
		route:       ipc.RouteLiveNotification,
		shared:      liveKwargs,
		personalize: personalizeLive,
	},
	eventsub.KindChannelSubscribe: {
		route:  ipc.RouteNewSubscriptionNotification,
		shared: subscribeKwargs,
	},
	eventsub.KindChannelSubscriptionMessage: {
		route:  ipc.RouteResubscriptionNotification,
		shared: resubscribeKwargs,
	},
	eventsub.KindChannelSubscriptionGift: {
		route:  ipc.RouteGiftSubscriptionNotification,
		shared: giftKwargs,
	},
	eventsub.KindChannelCheer: {
		route:  ipc.RouteCheerNotification,
		shared: cheerKwargs,
	},
	eventsub.KindChannelRaid: {
		route:  ipc.RouteRaidNotification,
		shared: raidKwargs,
	},
	eventsub.KindHypeTrainEnd: {
		route:  ipc.RouteHypeTrainEndNotification,
		shared: hypeTrainEndKwargs,
	},
}

// Routes returns the kinds that produce a notification, keyed to their route.
func Routes() map[eventsub.Kind]string {
	out := make(map[eventsub.Kind]string, len(builders))
	for k, b := range builders {
		out[k] = b.route
	}
	return out
}

func liveKwargs(ctx context.Context, p *Pipeline, ev eventsub.BroadcasterScoped, _ *models.Account) ipc.Kwargs {
	kwargs := ipc.Kwargs{
		"broadcaster_title":       defaultLiveTitle,
		"broadcaster_description": "Hey " + ev.BroadcasterName() + " is now live!",
		"twitch_game":             nil,
		"twitch_tags":             nil,
		"twitch_viewers":          nil,
		"twitch_started":          nil,
		"twitch_thumbnail":        nil,
		"twitch_is_mature":        nil,
	}
	if p.Streams == nil {
		return kwargs
	}

	stream, err := p.Streams.GetLiveStream(ctx, ev.BroadcasterID())
	if err != nil {
		log.Warnf("[Notify] Stream lookup for %s failed, using defaults: %v", ev.BroadcasterLogin(), err)
		return kwargs
	}
	if stream == nil {
		return kwargs
	}

	if stream.Title != "" {
		kwargs["broadcaster_title"] = stream.Title
	}
	tags := stream.Tags
	if tags == nil {
		tags = []string{}
	}
	kwargs["twitch_game"] = stream.GameName
	kwargs["twitch_tags"] = tags
	kwargs["twitch_viewers"] = stream.ViewerCount
	kwargs["twitch_started"] = timestamp(stream.StartedAt)
	kwargs["twitch_thumbnail"] = stream.Thumbnail(thumbnailWidth, thumbnailHeight)
	kwargs["twitch_is_mature"] = stream.IsMature
	return kwargs
}

// personalizeLive applies the subscription's custom title and description.
func personalizeLive(kwargs ipc.Kwargs, sub *models.EventSubscription) {
	if sub.CustomTitle != nil && *sub.CustomTitle != "" {
		kwargs["broadcaster_title"] = *sub.CustomTitle
	}
	if sub.CustomDescription != nil && *sub.CustomDescription != "" {
		kwargs["broadcaster_description"] = *sub.CustomDescription
	}
}

func subscribeKwargs(_ context.Context, _ *Pipeline, ev eventsub.BroadcasterScoped, _ *models.Account) ipc.Kwargs {
	e := ev.(*eventsub.ChannelSubscribeEvent)
	return ipc.Kwargs{
		"twitch_user_name": e.UserName,
		"twitch_tier":      e.Tier,
		"twitch_is_gift":   e.IsGift,
	}
}

func resubscribeKwargs(_ context.Context, _ *Pipeline, ev eventsub.BroadcasterScoped, _ *models.Account) ipc.Kwargs {
	e := ev.(*eventsub.ChannelSubscriptionMessageEvent)
	emotes := make([]map[string]any, 0, len(e.Message.Emotes))
	for _, em := range e.Message.Emotes {
		emotes = append(emotes, map[string]any{"begin": em.Begin, "end": em.End, "id": em.ID})
	}
	return ipc.Kwargs{
		"twitch_user_name":         e.UserName,
		"twitch_tier":              e.Tier,
		"twitch_is_gift":           false,
		"twitch_message_text":      e.Message.Text,
		"twitch_message_emotes":    emotes,
		"twitch_cumulative_months": e.CumulativeMonths,
		"twitch_streak_months":     optionalInt(e.StreakMonths),
		"twitch_duration_months":   e.DurationMonths,
	}
}

func giftKwargs(_ context.Context, _ *Pipeline, ev eventsub.BroadcasterScoped, _ *models.Account) ipc.Kwargs {
	e := ev.(*eventsub.ChannelSubscriptionGiftEvent)
	return ipc.Kwargs{
		"twitch_user_name":        optional(e.UserName),
		"twitch_tier":             e.Tier,
		"twitch_total":            e.Total,
		"twitch_cumulative_total": optionalInt(e.CumulativeTotal),
		"twitch_is_anonymous":     e.IsAnonymous,
	}
}

func cheerKwargs(_ context.Context, _ *Pipeline, ev eventsub.BroadcasterScoped, _ *models.Account) ipc.Kwargs {
	e := ev.(*eventsub.ChannelCheerEvent)
	return ipc.Kwargs{
		"twitch_user_name": optional(e.UserName),
		"twitch_message":   e.Message,
		"twitch_bits":      e.Bits,
	}
}

// raidKwargs names the raider; the common fields already describe the
// raided channel.
func raidKwargs(_ context.Context, _ *Pipeline, ev eventsub.BroadcasterScoped, _ *models.Account) ipc.Kwargs {
	e := ev.(*eventsub.ChannelRaidEvent)
	return ipc.Kwargs{
		"twitch_user_name": e.FromBroadcasterUserName,
		"twitch_viewers":   e.Viewers,
	}
}

func hypeTrainEndKwargs(_ context.Context, _ *Pipeline, ev eventsub.BroadcasterScoped, _ *models.Account) ipc.Kwargs {
	e := ev.(*eventsub.HypeTrainEndEvent)
	contributions := make([]map[string]any, 0, len(e.TopContributions))
	for _, c := range e.TopContributions {
		contributions = append(contributions, map[string]any{
			"user_id":    c.UserID,
			"user_login": c.UserLogin,
			"user_name":  c.UserName,
			"type":       c.Type,
			"total":      c.Total,
		})
	}

	// The top contributor stands in for the person behind the train.
	var topUser any
	if len(e.TopContributions) > 0 {
		topUser = optional(e.TopContributions[0].UserName)
	}

	return ipc.Kwargs{
		"twitch_user_name":         topUser,
		"twitch_level":             e.Level,
		"twitch_total":             e.Total,
		"twitch_top_contributions": contributions,
		"twitch_started_at":        timestamp(e.StartedAt),
		"twitch_ended_at":          timestamp(e.EndedAt),
		"twitch_cooldown_ends_at":  timestamp(e.CooldownEndsAt),
		"twitch_golden_kappa":      e.IsGoldenKappaTrain,
	}
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func optionalPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optionalInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func timestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
