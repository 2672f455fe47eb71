package eventsub

import "time"

// Event is a decoded EventSub notification payload.
type Event interface {
	Kind() Kind
}

// BroadcasterScoped is implemented by events that belong to one broadcaster.
// The notification pipeline uses it to find the owning account.
type BroadcasterScoped interface {
	Event
	BroadcasterID() string
	BroadcasterLogin() string
	BroadcasterName() string
}

type meta struct {
	kind Kind
}

func (m meta) Kind() Kind { return m.kind }

func (m *meta) setKind(k Kind) { m.kind = k }

// Broadcaster is the identity block shared by most events.
type Broadcaster struct {
	BroadcasterUserID    string `json:"broadcaster_user_id"`
	BroadcasterUserLogin string `json:"broadcaster_user_login"`
	BroadcasterUserName  string `json:"broadcaster_user_name"`
}

func (b Broadcaster) BroadcasterID() string    { return b.BroadcasterUserID }
func (b Broadcaster) BroadcasterLogin() string { return b.BroadcasterUserLogin }
func (b Broadcaster) BroadcasterName() string  { return b.BroadcasterUserName }

// UserRef identifies the viewer an event is about.
type UserRef struct {
	UserID    string `json:"user_id"`
	UserLogin string `json:"user_login"`
	UserName  string `json:"user_name"`
}

type ModeratorRef struct {
	ModeratorUserID    string `json:"moderator_user_id"`
	ModeratorUserLogin string `json:"moderator_user_login"`
	ModeratorUserName  string `json:"moderator_user_name"`
}

// UnknownEvent is the result of decoding a kind this service does not model.
type UnknownEvent struct {
	meta
}

type ChannelUpdateEvent struct {
	meta
	Broadcaster
	Title        string `json:"title"`
	Language     string `json:"language"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	IsMature     bool   `json:"is_mature"`
}

type ChannelFollowEvent struct {
	meta
	Broadcaster
	UserRef
	FollowedAt time.Time `json:"followed_at"`
}

// ChannelSubscribeEvent covers channel.subscribe and channel.subscription.end.
type ChannelSubscribeEvent struct {
	meta
	Broadcaster
	UserRef
	Tier   string `json:"tier"`
	IsGift bool   `json:"is_gift"`
}

type ChannelSubscriptionGiftEvent struct {
	meta
	Broadcaster
	UserRef
	Total           int    `json:"total"`
	Tier            string `json:"tier"`
	CumulativeTotal *int   `json:"cumulative_total"`
	IsAnonymous     bool   `json:"is_anonymous"`
}

type Emote struct {
	Begin int    `json:"begin"`
	End   int    `json:"end"`
	ID    string `json:"id"`
}

type ChatMessage struct {
	Text   string  `json:"text"`
	Emotes []Emote `json:"emotes"`
}

type ChannelSubscriptionMessageEvent struct {
	meta
	Broadcaster
	UserRef
	Tier             string      `json:"tier"`
	Message          ChatMessage `json:"message"`
	CumulativeMonths int         `json:"cumulative_months"`
	StreakMonths     *int        `json:"streak_months"`
	DurationMonths   int         `json:"duration_months"`
}

// ChannelCheerEvent has empty user fields when the cheer is anonymous.
type ChannelCheerEvent struct {
	meta
	Broadcaster
	UserRef
	IsAnonymous bool   `json:"is_anonymous"`
	Message     string `json:"message"`
	Bits        int    `json:"bits"`
}

// ChannelRaidEvent is scoped to the broadcaster being raided.
type ChannelRaidEvent struct {
	meta
	FromBroadcasterUserID    string `json:"from_broadcaster_user_id"`
	FromBroadcasterUserLogin string `json:"from_broadcaster_user_login"`
	FromBroadcasterUserName  string `json:"from_broadcaster_user_name"`
	ToBroadcasterUserID      string `json:"to_broadcaster_user_id"`
	ToBroadcasterUserLogin   string `json:"to_broadcaster_user_login"`
	ToBroadcasterUserName    string `json:"to_broadcaster_user_name"`
	Viewers                  int    `json:"viewers"`
}

func (e *ChannelRaidEvent) BroadcasterID() string    { return e.ToBroadcasterUserID }
func (e *ChannelRaidEvent) BroadcasterLogin() string { return e.ToBroadcasterUserLogin }
func (e *ChannelRaidEvent) BroadcasterName() string  { return e.ToBroadcasterUserName }

type ChannelBanEvent struct {
	meta
	Broadcaster
	UserRef
	ModeratorRef
	Reason      string     `json:"reason"`
	BannedAt    time.Time  `json:"banned_at"`
	EndsAt      *time.Time `json:"ends_at"`
	IsPermanent bool       `json:"is_permanent"`
}

type ChannelUnbanEvent struct {
	meta
	Broadcaster
	UserRef
	ModeratorRef
}

// ChannelModeratorEvent covers channel.moderator.add and .remove.
type ChannelModeratorEvent struct {
	meta
	Broadcaster
	UserRef
}

type RewardLimit struct {
	IsEnabled bool `json:"is_enabled"`
	Value     int  `json:"value"`
}

type RewardImage struct {
	URL1x string `json:"url_1x"`
	URL2x string `json:"url_2x"`
	URL4x string `json:"url_4x"`
}

type RewardCooldown struct {
	IsEnabled bool `json:"is_enabled"`
	Seconds   int  `json:"seconds"`
}

// CustomRewardEvent covers the channel points custom reward add, update and remove kinds.
type CustomRewardEvent struct {
	meta
	Broadcaster
	ID                                string         `json:"id"`
	IsEnabled                         bool           `json:"is_enabled"`
	IsPaused                          bool           `json:"is_paused"`
	IsInStock                         bool           `json:"is_in_stock"`
	Title                             string         `json:"title"`
	Cost                              int            `json:"cost"`
	Prompt                            string         `json:"prompt"`
	IsUserInputRequired               bool           `json:"is_user_input_required"`
	ShouldRedemptionsSkipRequestQueue bool           `json:"should_redemptions_skip_request_queue"`
	MaxPerStream                      RewardLimit    `json:"max_per_stream"`
	MaxPerUserPerStream               RewardLimit    `json:"max_per_user_per_stream"`
	BackgroundColor                   string         `json:"background_color"`
	Image                             *RewardImage   `json:"image"`
	DefaultImage                      RewardImage    `json:"default_image"`
	GlobalCooldown                    RewardCooldown `json:"global_cooldown"`
	CooldownExpiresAt                 *time.Time     `json:"cooldown_expires_at"`
	RedemptionsRedeemedCurrentStream  *int           `json:"redemptions_redeemed_current_stream"`
}

type Reward struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Cost   int    `json:"cost"`
	Prompt string `json:"prompt"`
}

// RewardRedemptionEvent covers redemption add and update.
type RewardRedemptionEvent struct {
	meta
	Broadcaster
	UserRef
	ID         string    `json:"id"`
	UserInput  string    `json:"user_input"`
	Status     string    `json:"status"`
	Reward     Reward    `json:"reward"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

type PollChoice struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	BitsVotes          int    `json:"bits_votes"`
	ChannelPointsVotes int    `json:"channel_points_votes"`
	Votes              int    `json:"votes"`
}

type Voting struct {
	IsEnabled     bool `json:"is_enabled"`
	AmountPerVote int  `json:"amount_per_vote"`
}

// PollEvent covers poll begin, progress and end. Status and EndedAt are only set on end.
type PollEvent struct {
	meta
	Broadcaster
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	Choices             []PollChoice `json:"choices"`
	BitsVoting          Voting       `json:"bits_voting"`
	ChannelPointsVoting Voting       `json:"channel_points_voting"`
	Status              string       `json:"status"`
	StartedAt           time.Time    `json:"started_at"`
	EndsAt              *time.Time   `json:"ends_at"`
	EndedAt             *time.Time   `json:"ended_at"`
}

type Predictor struct {
	UserRef
	ChannelPointsWon  *int `json:"channel_points_won"`
	ChannelPointsUsed int  `json:"channel_points_used"`
}

type Outcome struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Color         string      `json:"color"`
	Users         int         `json:"users"`
	ChannelPoints int         `json:"channel_points"`
	TopPredictors []Predictor `json:"top_predictors"`
}

// PredictionEvent covers prediction begin, progress, lock and end.
type PredictionEvent struct {
	meta
	Broadcaster
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Outcomes         []Outcome  `json:"outcomes"`
	StartedAt        time.Time  `json:"started_at"`
	LocksAt          *time.Time `json:"locks_at"`
	LockedAt         *time.Time `json:"locked_at"`
	EndedAt          *time.Time `json:"ended_at"`
	WinningOutcomeID string     `json:"winning_outcome_id"`
	Status           string     `json:"status"`
}

type CharityAmount struct {
	Value         int    `json:"value"`
	DecimalPlaces int    `json:"decimal_places"`
	Currency      string `json:"currency"`
}

type Charity struct {
	CharityName        string `json:"charity_name"`
	CharityDescription string `json:"charity_description"`
	CharityLogo        string `json:"charity_logo"`
	CharityWebsite     string `json:"charity_website"`
}

type CharityDonationEvent struct {
	meta
	Broadcaster
	UserRef
	Charity
	ID         string        `json:"id"`
	CampaignID string        `json:"campaign_id"`
	Amount     CharityAmount `json:"amount"`
}

// CharityCampaignEvent covers campaign start, progress and stop.
type CharityCampaignEvent struct {
	meta
	Broadcaster
	Charity
	ID            string        `json:"id"`
	CurrentAmount CharityAmount `json:"current_amount"`
	TargetAmount  CharityAmount `json:"target_amount"`
	StartedAt     *time.Time    `json:"started_at"`
	StoppedAt     *time.Time    `json:"stopped_at"`
}

type Entitlement struct {
	OrganizationID string    `json:"organization_id"`
	CategoryID     string    `json:"category_id"`
	CategoryName   string    `json:"category_name"`
	CampaignID     string    `json:"campaign_id"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	UserLogin      string    `json:"user_login"`
	EntitlementID  string    `json:"entitlement_id"`
	BenefitID      string    `json:"benefit_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// DropEntitlementGrantEvent is not tied to a broadcaster.
type DropEntitlementGrantEvent struct {
	meta
	ID   string        `json:"id"`
	Data []Entitlement `json:"data"`
}

type Product struct {
	Name          string `json:"name"`
	Bits          int    `json:"bits"`
	Sku           string `json:"sku"`
	InDevelopment bool   `json:"in_development"`
}

type ExtensionBitsTransactionEvent struct {
	meta
	Broadcaster
	UserRef
	ExtensionClientID string  `json:"extension_client_id"`
	ID                string  `json:"id"`
	Product           Product `json:"product"`
}

// GoalEvent covers goal begin, progress and end.
type GoalEvent struct {
	meta
	Broadcaster
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	Description   string     `json:"description"`
	IsAchieved    bool       `json:"is_achieved"`
	CurrentAmount int        `json:"current_amount"`
	TargetAmount  int        `json:"target_amount"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at"`
}

type Contribution struct {
	UserRef
	Type  string `json:"type"`
	Total int    `json:"total"`
}

// HypeTrainEvent covers hype train begin and progress.
type HypeTrainEvent struct {
	meta
	Broadcaster
	ID               string         `json:"id"`
	Total            int            `json:"total"`
	Progress         int            `json:"progress"`
	Goal             int            `json:"goal"`
	TopContributions []Contribution `json:"top_contributions"`
	LastContribution Contribution   `json:"last_contribution"`
	Level            int            `json:"level"`
	StartedAt        time.Time      `json:"started_at"`
	ExpiresAt        time.Time      `json:"expires_at"`
}

type HypeTrainEndEvent struct {
	meta
	Broadcaster
	ID                 string         `json:"id"`
	Level              int            `json:"level"`
	Total              int            `json:"total"`
	TopContributions   []Contribution `json:"top_contributions"`
	StartedAt          time.Time      `json:"started_at"`
	EndedAt            time.Time      `json:"ended_at"`
	CooldownEndsAt     time.Time      `json:"cooldown_ends_at"`
	IsGoldenKappaTrain bool           `json:"is_golden_kappa_train"`
}

// ShieldModeEvent covers shield mode begin and end.
type ShieldModeEvent struct {
	meta
	Broadcaster
	ModeratorRef
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

type ShoutoutCreateEvent struct {
	meta
	Broadcaster
	ModeratorRef
	ToBroadcasterUserID    string    `json:"to_broadcaster_user_id"`
	ToBroadcasterUserLogin string    `json:"to_broadcaster_user_login"`
	ToBroadcasterUserName  string    `json:"to_broadcaster_user_name"`
	StartedAt              time.Time `json:"started_at"`
	ViewerCount            int       `json:"viewer_count"`
	CooldownEndsAt         time.Time `json:"cooldown_ends_at"`
	TargetCooldownEndsAt   time.Time `json:"target_cooldown_ends_at"`
}

type ShoutoutReceiveEvent struct {
	meta
	Broadcaster
	FromBroadcasterUserID    string    `json:"from_broadcaster_user_id"`
	FromBroadcasterUserLogin string    `json:"from_broadcaster_user_login"`
	FromBroadcasterUserName  string    `json:"from_broadcaster_user_name"`
	ViewerCount              int       `json:"viewer_count"`
	StartedAt                time.Time `json:"started_at"`
}

type StreamOnlineEvent struct {
	meta
	Broadcaster
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	StartedAt time.Time `json:"started_at"`
}

type StreamOfflineEvent struct {
	meta
	Broadcaster
}

// UserAuthorizationEvent covers authorization grant and revoke. It is scoped
// to the client application, not a broadcaster.
type UserAuthorizationEvent struct {
	meta
	UserRef
	ClientID string `json:"client_id"`
}

type UserUpdateEvent struct {
	meta
	UserRef
	Email         *string `json:"email"`
	EmailVerified *bool   `json:"email_verified"`
	Description   string  `json:"description"`
}
