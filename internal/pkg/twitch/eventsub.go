package twitch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Transport is the webhook delivery target of a subscription.
type Transport struct {
	Method   string `json:"method"`
	Callback string `json:"callback"`
	Secret   string `json:"secret,omitempty"`
}

// CreateSubscriptionRequest is the body of POST /eventsub/subscriptions.
type CreateSubscriptionRequest struct {
	Type      string            `json:"type"`
	Version   string            `json:"version"`
	Condition map[string]string `json:"condition"`
	Transport Transport         `json:"transport"`
}

// Subscription is one entry of the subscriptions response.
type Subscription struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Type      string            `json:"type"`
	Version   string            `json:"version"`
	Condition map[string]string `json:"condition"`
	CreatedAt string            `json:"created_at"`
	Cost      int               `json:"cost"`
}

type subscriptionsResponse struct {
	Data []Subscription `json:"data"`
}

// CreateSubscription registers a webhook subscription and returns the id
// Twitch assigned to it.
func (c *Client) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (string, error) {
	body, err := c.do(ctx, "create subscription", http.MethodPost, "/eventsub/subscriptions", nil, req)
	if err != nil {
		return "", err
	}
	var out subscriptionsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("twitch create subscription: decode response: %w", err)
	}
	if len(out.Data) == 0 || out.Data[0].ID == "" {
		return "", errors.New("twitch create subscription: response has no subscription id")
	}
	return out.Data[0].ID, nil
}

// DeleteSubscription removes a subscription by its Twitch id.
func (c *Client) DeleteSubscription(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete subscription", http.MethodDelete, "/eventsub/subscriptions", url.Values{"id": {id}}, nil)
	return err
}
