package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// User is a Helix user profile.
type User struct {
	ID              string `json:"id"`
	Login           string `json:"login"`
	DisplayName     string `json:"display_name"`
	Description     string `json:"description"`
	ProfileImageURL string `json:"profile_image_url"`
	OfflineImageURL string `json:"offline_image_url"`
}

type usersResponse struct {
	Data []User `json:"data"`
}

// GetUsers looks up users by id, splitting the ids into requests of at most
// 100. Ids Twitch does not know are absent from the result.
func (c *Client) GetUsers(ctx context.Context, ids []string) ([]User, error) {
	var users []User
	for start := 0; start < len(ids); start += maxUsersPerRequest {
		end := min(start+maxUsersPerRequest, len(ids))
		body, err := c.do(ctx, "get users", http.MethodGet, "/users", url.Values{"id": ids[start:end]}, nil)
		if err != nil {
			return nil, err
		}
		var out usersResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("twitch get users: decode response: %w", err)
		}
		users = append(users, out.Data...)
	}
	return users, nil
}
