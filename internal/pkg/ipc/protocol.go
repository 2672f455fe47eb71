// Package ipc is the request/reply channel between the backend and the chat
// bot. Every request opens a websocket, sends one JSON request, reads one
// JSON reply and closes.
package ipc

import (
	"errors"
	"fmt"
)

// Notification routes served by the bot.
const (
	RouteLiveNotification             = "send_live_notification"
	RouteNewSubscriptionNotification  = "send_new_subscription_notification"
	RouteResubscriptionNotification   = "send_resubscription_notification"
	RouteGiftSubscriptionNotification = "send_gift_subscription_notification"
	RouteCheerNotification            = "send_cheer_notification"
	RouteRaidNotification             = "send_raid_notification"
	RouteHypeTrainEndNotification     = "send_hype_train_end_notification"
)

// Read-only introspection routes.
const (
	RouteGetAllServers  = "get_all_servers"
	RouteGetUserServers = "get_user_servers"
)

const (
	codeUnauthorized  = 403
	codeRouteNotFound = 404
	codeHandlerFailed = 500

	authorizationHeader = "Authorization"
)

var (
	ErrUnauthorized  = errors.New("ipc: secret rejected")
	ErrRouteNotFound = errors.New("ipc: route not found")
)

// Kwargs are the keyword arguments of a route call.
type Kwargs map[string]any

// Request is the single message a client sends per connection.
type Request struct {
	Route   string            `json:"route"`
	Kwargs  Kwargs            `json:"kwargs"`
	Headers map[string]string `json:"headers"`
}

// Reply carries either a response or an error with a status-like code.
type Reply struct {
	Response any    `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
	Code     int    `json:"code,omitempty"`
}

// RemoteError is a handler failure reported by the peer.
type RemoteError struct {
	Route   string
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("ipc route %s failed (%d): %s", e.Route, e.Code, e.Message)
}

// DiscordChannel is a text channel of a server.
type DiscordChannel struct {
	DiscordID string `json:"discord_id"`
	Name      string `json:"name"`
	JumpURL   string `json:"jump_url"`
}

// DiscordUser is a server member.
type DiscordUser struct {
	DiscordID string  `json:"discord_id"`
	AvatarURL *string `json:"avatar_url"`
	Name      string  `json:"name"`
	Mention   string  `json:"mention"`
	IsAdmin   bool    `json:"is_admin"`
}

// DiscordServer is returned by the introspection routes.
type DiscordServer struct {
	DiscordID   string           `json:"discord_id"`
	Name        string           `json:"name"`
	IconURL     *string          `json:"icon_url"`
	Description *string          `json:"description"`
	Owner       DiscordUser      `json:"owner"`
	Channels    []DiscordChannel `json:"channels"`
}
