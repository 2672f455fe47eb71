package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Natsku123/ttv-tools/app/models"
	"github.com/Natsku123/ttv-tools/internal/pkg/eventsub"
	"github.com/Natsku123/ttv-tools/internal/pkg/ipc"
)

func render(t *testing.T, kind eventsub.Kind, body string) ipc.Kwargs {
	t.Helper()
	ev, ok := eventsub.Decode(string(kind), json.RawMessage(body)).(eventsub.BroadcasterScoped)
	require.True(t, ok)
	b, ok := builders[kind]
	require.True(t, ok)
	return b.shared(context.Background(), &Pipeline{}, ev, &models.Account{})
}

const broadcaster = `"broadcaster_user_id":"1234","broadcaster_user_login":"alice","broadcaster_user_name":"Alice"`

func TestSubscribeKwargs(t *testing.T) {
	kw := render(t, eventsub.KindChannelSubscribe, `{`+broadcaster+`,"user_name":"Carol","tier":"1000","is_gift":true}`)
	assert.Equal(t, ipc.Kwargs{
		"twitch_user_name": "Carol",
		"twitch_tier":      "1000",
		"twitch_is_gift":   true,
	}, kw)
}

func TestResubscribeKwargs(t *testing.T) {
	kw := render(t, eventsub.KindChannelSubscriptionMessage, `{`+broadcaster+`,"user_name":"Carol","tier":"2000",
		"message":{"text":"Love the stream! Kappa","emotes":[{"begin":17,"end":21,"id":"25"}]},
		"cumulative_months":15,"streak_months":null,"duration_months":6}`)

	assert.Equal(t, "Carol", kw["twitch_user_name"])
	assert.Equal(t, "2000", kw["twitch_tier"])
	assert.Equal(t, "Love the stream! Kappa", kw["twitch_message_text"])
	assert.Equal(t, []map[string]any{{"begin": 17, "end": 21, "id": "25"}}, kw["twitch_message_emotes"])
	assert.Equal(t, 15, kw["twitch_cumulative_months"])
	assert.Nil(t, kw["twitch_streak_months"])
	assert.Equal(t, 6, kw["twitch_duration_months"])
}

func TestGiftKwargs_Anonymous(t *testing.T) {
	kw := render(t, eventsub.KindChannelSubscriptionGift, `{`+broadcaster+`,"user_id":null,"user_login":null,"user_name":null,
		"total":5,"tier":"1000","cumulative_total":null,"is_anonymous":true}`)

	assert.Nil(t, kw["twitch_user_name"])
	assert.Equal(t, 5, kw["twitch_total"])
	assert.Nil(t, kw["twitch_cumulative_total"])
	assert.Equal(t, true, kw["twitch_is_anonymous"])
}

func TestGiftKwargs_Named(t *testing.T) {
	kw := render(t, eventsub.KindChannelSubscriptionGift, `{`+broadcaster+`,"user_name":"Carol",
		"total":2,"tier":"3000","cumulative_total":40,"is_anonymous":false}`)

	assert.Equal(t, "Carol", kw["twitch_user_name"])
	assert.Equal(t, "3000", kw["twitch_tier"])
	assert.Equal(t, 40, kw["twitch_cumulative_total"])
}

func TestHypeTrainEndKwargs(t *testing.T) {
	kw := render(t, eventsub.KindHypeTrainEnd, `{"id":"ht-1",`+broadcaster+`,"level":4,"total":1200,
		"top_contributions":[{"user_id":"1","user_login":"erin","user_name":"Erin","type":"bits","total":800},
			{"user_id":"2","user_login":"fred","user_name":"Fred","type":"subscription","total":400}],
		"started_at":"2024-03-01T18:00:00Z","ended_at":"2024-03-01T18:10:00Z","cooldown_ends_at":"2024-03-01T19:10:00Z",
		"is_golden_kappa_train":true}`)

	assert.Equal(t, "Erin", kw["twitch_user_name"])
	assert.Equal(t, 4, kw["twitch_level"])
	assert.Equal(t, 1200, kw["twitch_total"])
	assert.Equal(t, "2024-03-01T18:00:00Z", kw["twitch_started_at"])
	assert.Equal(t, "2024-03-01T18:10:00Z", kw["twitch_ended_at"])
	assert.Equal(t, "2024-03-01T19:10:00Z", kw["twitch_cooldown_ends_at"])
	assert.Equal(t, true, kw["twitch_golden_kappa"])

	contributions := kw["twitch_top_contributions"].([]map[string]any)
	require.Len(t, contributions, 2)
	assert.Equal(t, map[string]any{"user_id": "2", "user_login": "fred", "user_name": "Fred", "type": "subscription", "total": 400}, contributions[1])
}

func TestHypeTrainEndKwargs_NoContributors(t *testing.T) {
	kw := render(t, eventsub.KindHypeTrainEnd, `{`+broadcaster+`,"level":1,"total":10,"top_contributions":[]}`)
	assert.Nil(t, kw["twitch_user_name"])
	assert.Empty(t, kw["twitch_top_contributions"])
	assert.Nil(t, kw["twitch_started_at"])
}

func TestPersonalizeLive_EmptyCustomFieldsKeepDefaults(t *testing.T) {
	empty := ""
	kw := ipc.Kwargs{"broadcaster_title": "Hey I'm live!", "broadcaster_description": "Hey Alice is now live!"}
	personalizeLive(kw, &models.EventSubscription{CustomTitle: &empty})

	assert.Equal(t, "Hey I'm live!", kw["broadcaster_title"])
	assert.Equal(t, "Hey Alice is now live!", kw["broadcaster_description"])
}
