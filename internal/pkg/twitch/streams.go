package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Stream is a live stream as returned by GET /streams.
type Stream struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	UserLogin    string    `json:"user_login"`
	UserName     string    `json:"user_name"`
	GameID       string    `json:"game_id"`
	GameName     string    `json:"game_name"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Tags         []string  `json:"tags"`
	ViewerCount  int       `json:"viewer_count"`
	StartedAt    time.Time `json:"started_at"`
	Language     string    `json:"language"`
	ThumbnailURL string    `json:"thumbnail_url"`
	IsMature     bool      `json:"is_mature"`
}

// Thumbnail fills the size placeholders of the thumbnail template.
func (s *Stream) Thumbnail(width, height int) string {
	return strings.NewReplacer(
		"{width}", strconv.Itoa(width),
		"{height}", strconv.Itoa(height),
	).Replace(s.ThumbnailURL)
}

type streamsResponse struct {
	Data []Stream `json:"data"`
}

// GetLiveStream returns the current live stream of a user, or nil when the
// user is not live.
func (c *Client) GetLiveStream(ctx context.Context, userID string) (*Stream, error) {
	body, err := c.do(ctx, "get streams", http.MethodGet, "/streams", url.Values{
		"user_id": {userID},
		"type":    {"live"},
	}, nil)
	if err != nil {
		return nil, err
	}
	var out streamsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("twitch get streams: decode response: %w", err)
	}
	if len(out.Data) == 0 {
		return nil, nil
	}
	return &out.Data[0], nil
}
