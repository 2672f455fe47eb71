package eventsub

import (
	"errors"
	"fmt"
	"sort"
)

// Kind is an EventSub subscription type such as "stream.online".
type Kind string

const (
	KindChannelUpdate                  Kind = "channel.update"
	KindChannelFollow                  Kind = "channel.follow"
	KindChannelSubscribe               Kind = "channel.subscribe"
	KindChannelSubscriptionEnd         Kind = "channel.subscription.end"
	KindChannelSubscriptionGift        Kind = "channel.subscription.gift"
	KindChannelSubscriptionMessage     Kind = "channel.subscription.message"
	KindChannelCheer                   Kind = "channel.cheer"
	KindChannelRaid                    Kind = "channel.raid"
	KindChannelBan                     Kind = "channel.ban"
	KindChannelUnban                   Kind = "channel.unban"
	KindChannelModeratorAdd            Kind = "channel.moderator.add"
	KindChannelModeratorRemove         Kind = "channel.moderator.remove"
	KindCustomRewardAdd                Kind = "channel.channel_points_custom_reward.add"
	KindCustomRewardUpdate             Kind = "channel.channel_points_custom_reward.update"
	KindCustomRewardRemove             Kind = "channel.channel_points_custom_reward.remove"
	KindRewardRedemptionAdd            Kind = "channel.channel_points_custom_reward_redemption.add"
	KindRewardRedemptionUpdate         Kind = "channel.channel_points_custom_reward_redemption.update"
	KindChannelPollBegin               Kind = "channel.poll.begin"
	KindChannelPollProgress            Kind = "channel.poll.progress"
	KindChannelPollEnd                 Kind = "channel.poll.end"
	KindChannelPredictionBegin         Kind = "channel.prediction.begin"
	KindChannelPredictionProgress      Kind = "channel.prediction.progress"
	KindChannelPredictionLock          Kind = "channel.prediction.lock"
	KindChannelPredictionEnd           Kind = "channel.prediction.end"
	KindCharityDonate                  Kind = "channel.charity_campaign.donate"
	KindCharityStart                   Kind = "channel.charity_campaign.start"
	KindCharityProgress                Kind = "channel.charity_campaign.progress"
	KindCharityStop                    Kind = "channel.charity_campaign.stop"
	KindDropEntitlementGrant           Kind = "drop.entitlement.grant"
	KindExtensionBitsTransactionCreate Kind = "extension.bits_transaction.create"
	KindChannelGoalBegin               Kind = "channel.goal.begin"
	KindChannelGoalProgress            Kind = "channel.goal.progress"
	KindChannelGoalEnd                 Kind = "channel.goal.end"
	KindHypeTrainBegin                 Kind = "channel.hype_train.begin"
	KindHypeTrainProgress              Kind = "channel.hype_train.progress"
	KindHypeTrainEnd                   Kind = "channel.hype_train.end"
	KindShieldModeBegin                Kind = "channel.shield_mode.begin"
	KindShieldModeEnd                  Kind = "channel.shield_mode.end"
	KindShoutoutCreate                 Kind = "channel.shoutout.create"
	KindShoutoutReceive                Kind = "channel.shoutout.receive"
	KindStreamOnline                   Kind = "stream.online"
	KindStreamOffline                  Kind = "stream.offline"
	KindUserAuthorizationGrant         Kind = "user.authorization.grant"
	KindUserAuthorizationRevoke        Kind = "user.authorization.revoke"
	KindUserUpdate                     Kind = "user.update"
)

var ErrUnknownKind = errors.New("unknown event kind")

// Condition is the EventSub condition object sent on registration.
type Condition map[string]string

// ConditionInput carries the identities a condition may need.
type ConditionInput struct {
	// BroadcasterID is the owner's Twitch user id.
	BroadcasterID string
	// ClientID is this application's Twitch client id.
	ClientID string
}

type conditionFunc func(ConditionInput) Condition

type kindSpec struct {
	version   string
	condition conditionFunc
	newEvent  func() Event
}

func broadcasterCondition(in ConditionInput) Condition {
	return Condition{"broadcaster_user_id": in.BroadcasterID}
}

func followCondition(in ConditionInput) Condition {
	return Condition{
		"broadcaster_user_id": in.BroadcasterID,
		"moderator_user_id":   in.BroadcasterID,
	}
}

func raidCondition(in ConditionInput) Condition {
	return Condition{"to_broadcaster_user_id": in.BroadcasterID}
}

func clientCondition(in ConditionInput) Condition {
	return Condition{"client_id": in.ClientID}
}

func userCondition(in ConditionInput) Condition {
	return Condition{"user_id": in.BroadcasterID}
}

// emptyCondition is used for kinds whose filter is not modeled yet.
func emptyCondition(ConditionInput) Condition {
	return Condition{}
}

func entry(version string, cond conditionFunc, newEvent func() Event) kindSpec {
	return kindSpec{version: version, condition: cond, newEvent: newEvent}
}

var kinds = map[Kind]kindSpec{
	KindChannelUpdate:                  entry("1", broadcasterCondition, func() Event { return &ChannelUpdateEvent{} }),
	KindChannelFollow:                  entry("2", followCondition, func() Event { return &ChannelFollowEvent{} }),
	KindChannelSubscribe:               entry("1", broadcasterCondition, func() Event { return &ChannelSubscribeEvent{} }),
	KindChannelSubscriptionEnd:         entry("1", broadcasterCondition, func() Event { return &ChannelSubscribeEvent{} }),
	KindChannelSubscriptionGift:        entry("1", broadcasterCondition, func() Event { return &ChannelSubscriptionGiftEvent{} }),
	KindChannelSubscriptionMessage:     entry("1", broadcasterCondition, func() Event { return &ChannelSubscriptionMessageEvent{} }),
	KindChannelCheer:                   entry("1", broadcasterCondition, func() Event { return &ChannelCheerEvent{} }),
	KindChannelRaid:                    entry("1", raidCondition, func() Event { return &ChannelRaidEvent{} }),
	KindChannelBan:                     entry("1", broadcasterCondition, func() Event { return &ChannelBanEvent{} }),
	KindChannelUnban:                   entry("1", broadcasterCondition, func() Event { return &ChannelUnbanEvent{} }),
	KindChannelModeratorAdd:            entry("1", broadcasterCondition, func() Event { return &ChannelModeratorEvent{} }),
	KindChannelModeratorRemove:         entry("1", broadcasterCondition, func() Event { return &ChannelModeratorEvent{} }),
	KindCustomRewardAdd:                entry("1", broadcasterCondition, func() Event { return &CustomRewardEvent{} }),
	KindCustomRewardUpdate:             entry("1", broadcasterCondition, func() Event { return &CustomRewardEvent{} }),
	KindCustomRewardRemove:             entry("1", broadcasterCondition, func() Event { return &CustomRewardEvent{} }),
	KindRewardRedemptionAdd:            entry("1", broadcasterCondition, func() Event { return &RewardRedemptionEvent{} }),
	KindRewardRedemptionUpdate:         entry("1", broadcasterCondition, func() Event { return &RewardRedemptionEvent{} }),
	KindChannelPollBegin:               entry("1", broadcasterCondition, func() Event { return &PollEvent{} }),
	KindChannelPollProgress:            entry("1", broadcasterCondition, func() Event { return &PollEvent{} }),
	KindChannelPollEnd:                 entry("1", broadcasterCondition, func() Event { return &PollEvent{} }),
	KindChannelPredictionBegin:         entry("1", broadcasterCondition, func() Event { return &PredictionEvent{} }),
	KindChannelPredictionProgress:      entry("1", broadcasterCondition, func() Event { return &PredictionEvent{} }),
	KindChannelPredictionLock:          entry("1", broadcasterCondition, func() Event { return &PredictionEvent{} }),
	KindChannelPredictionEnd:           entry("1", broadcasterCondition, func() Event { return &PredictionEvent{} }),
	KindCharityDonate:                  entry("1", emptyCondition, func() Event { return &CharityDonationEvent{} }),
	KindCharityStart:                   entry("1", emptyCondition, func() Event { return &CharityCampaignEvent{} }),
	KindCharityProgress:                entry("1", emptyCondition, func() Event { return &CharityCampaignEvent{} }),
	KindCharityStop:                    entry("1", emptyCondition, func() Event { return &CharityCampaignEvent{} }),
	KindDropEntitlementGrant:           entry("1", emptyCondition, func() Event { return &DropEntitlementGrantEvent{} }),
	KindExtensionBitsTransactionCreate: entry("1", emptyCondition, func() Event { return &ExtensionBitsTransactionEvent{} }),
	KindChannelGoalBegin:               entry("1", broadcasterCondition, func() Event { return &GoalEvent{} }),
	KindChannelGoalProgress:            entry("1", broadcasterCondition, func() Event { return &GoalEvent{} }),
	KindChannelGoalEnd:                 entry("1", broadcasterCondition, func() Event { return &GoalEvent{} }),
	KindHypeTrainBegin:                 entry("1", broadcasterCondition, func() Event { return &HypeTrainEvent{} }),
	KindHypeTrainProgress:              entry("1", broadcasterCondition, func() Event { return &HypeTrainEvent{} }),
	KindHypeTrainEnd:                   entry("1", broadcasterCondition, func() Event { return &HypeTrainEndEvent{} }),
	KindShieldModeBegin:                entry("1", emptyCondition, func() Event { return &ShieldModeEvent{} }),
	KindShieldModeEnd:                  entry("1", emptyCondition, func() Event { return &ShieldModeEvent{} }),
	KindShoutoutCreate:                 entry("1", emptyCondition, func() Event { return &ShoutoutCreateEvent{} }),
	KindShoutoutReceive:                entry("1", emptyCondition, func() Event { return &ShoutoutReceiveEvent{} }),
	KindStreamOnline:                   entry("1", broadcasterCondition, func() Event { return &StreamOnlineEvent{} }),
	KindStreamOffline:                  entry("1", broadcasterCondition, func() Event { return &StreamOfflineEvent{} }),
	KindUserAuthorizationGrant:         entry("1", clientCondition, func() Event { return &UserAuthorizationEvent{} }),
	KindUserAuthorizationRevoke:        entry("1", clientCondition, func() Event { return &UserAuthorizationEvent{} }),
	KindUserUpdate:                     entry("1", userCondition, func() Event { return &UserUpdateEvent{} }),
}

// Kinds returns every supported kind in lexical order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsKnown reports whether kind is in the supported set.
func IsKnown(kind string) bool {
	_, ok := kinds[Kind(kind)]
	return ok
}

// Resolve returns the registration condition and version for kind.
func Resolve(kind Kind, in ConditionInput) (Condition, string, error) {
	s, ok := kinds[kind]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s.condition(in), s.version, nil
}
