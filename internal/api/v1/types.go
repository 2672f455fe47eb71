package apiv1

import (
	"encoding/json"

	"github.com/Natsku123/ttv-tools/app/models"
)

// Pong is the ping response.
type Pong struct {
	Ping string `json:"ping"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CreateEventSubscriptionRequest creates a subscription. The remote Twitch
// id is assigned by the registration task and cannot be supplied.
type CreateEventSubscriptionRequest struct {
	UserUUID          string  `json:"user_uuid" validate:"required,uuid"`
	ServerDiscordID   string  `json:"server_discord_id" validate:"required,numeric,max=64"`
	ChannelDiscordID  string  `json:"channel_discord_id" validate:"required,numeric,max=64"`
	Event             string  `json:"event" validate:"required,eventkind"`
	CustomTitle       *string `json:"custom_title" validate:"omitempty,max=256"`
	CustomDescription *string `json:"custom_description" validate:"omitempty,max=4096"`
	Message           *string `json:"message" validate:"omitempty,max=2000"`
}

// UpdateEventSubscriptionRequest changes the customization of a subscription.
type UpdateEventSubscriptionRequest struct {
	CustomTitle       *string `json:"custom_title" validate:"omitempty,max=256"`
	CustomDescription *string `json:"custom_description" validate:"omitempty,max=4096"`
	Message           *string `json:"message" validate:"omitempty,max=2000"`
}

// customization keeps only the fields present in the raw body, so omitted
// fields stay untouched and an explicit null clears one.
func (r UpdateEventSubscriptionRequest) customization(present map[string]json.RawMessage) models.EventSubscriptionCustomization {
	c := models.EventSubscriptionCustomization{
		CustomTitle:       r.CustomTitle,
		CustomDescription: r.CustomDescription,
		Message:           r.Message,
	}
	for _, column := range []string{models.ColumnCustomTitle, models.ColumnCustomDescription, models.ColumnMessage} {
		if _, ok := present[column]; ok {
			c.Fields = append(c.Fields, column)
		}
	}
	return c
}

// EventSubscriptionResponse is a subscription as returned by the API.
type EventSubscriptionResponse struct {
	models.EventSubscription
	Registered bool `json:"registered"`
}

func toResponse(sub *models.EventSubscription) EventSubscriptionResponse {
	return EventSubscriptionResponse{EventSubscription: *sub, Registered: sub.IsRegistered()}
}

// AcceptedResponse reports a queued background task.
type AcceptedResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

// QueueStatsResponse summarizes the job queue.
type QueueStatsResponse struct {
	Pending    int64            `json:"pending"`
	Processing int64            `json:"processing"`
	Delayed    int64            `json:"delayed"`
	Totals     map[string]int64 `json:"totals"`
}
