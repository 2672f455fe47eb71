package twitch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Natsku123/ttv-tools/internal/pkg/env"
	"github.com/Natsku123/ttv-tools/internal/pkg/metrics"
)

const (
	defaultAPIBaseURL = "https://api.twitch.tv/helix"
	defaultIDBaseURL  = "https://id.twitch.tv/oauth2"
	defaultMockURL    = "http://mock:8080"

	// maxUsersPerRequest is the Helix limit for repeated id parameters.
	maxUsersPerRequest = 100
)

// Client talks to the Helix API with an app access token. A new token is
// requested for every call.
type Client struct {
	ClientID     string
	ClientSecret string

	APIBaseURL string
	IDBaseURL  string

	HTTPClient *http.Client
}

// APIError is returned for non-2xx Helix responses.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twitch %s failed: status=%d body=%s", e.Op, e.StatusCode, e.Body)
}

// NewClientFromEnv builds a client from TWITCH_* settings. With TWITCH_MOCK
// enabled both base URLs point at the local mock server.
func NewClientFromEnv() *Client {
	apiURL := env.GetEnv("TWITCH_API_URL", defaultAPIBaseURL)
	idURL := env.GetEnv("TWITCH_ID_URL", defaultIDBaseURL)
	if env.GetEnvBool("TWITCH_MOCK", false) {
		mock := strings.TrimRight(env.GetEnv("TWITCH_MOCK_URL", defaultMockURL), "/")
		apiURL = mock + "/mock"
		idURL = mock + "/auth"
	}

	return &Client{
		ClientID:     strings.TrimSpace(env.GetEnv("TWITCH_CLIENT_ID", "")),
		ClientSecret: strings.TrimSpace(env.GetEnv("TWITCH_CLIENT_SECRET", "")),
		APIBaseURL:   strings.TrimRight(apiURL, "/"),
		IDBaseURL:    strings.TrimRight(idURL, "/"),
		HTTPClient: &http.Client{
			Timeout: env.GetEnvDuration("TWITCH_HTTP_TIMEOUT", 15*time.Second),
		},
	}
}

// AppToken performs the client-credentials grant.
func (c *Client) AppToken(ctx context.Context) (string, error) {
	if c.ClientID == "" || c.ClientSecret == "" {
		return "", errors.New("TWITCH_CLIENT_ID/TWITCH_CLIENT_SECRET are not configured")
	}
	cfg := clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.IDBaseURL + "/token",
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tok, err := cfg.Token(context.WithValue(ctx, oauth2.HTTPClient, c.HTTPClient))
	if err != nil {
		return "", fmt.Errorf("twitch app token: %w", err)
	}
	return tok.AccessToken, nil
}

// do sends an authenticated Helix request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload any) (_ []byte, err error) {
	defer func() { metrics.Pipeline().ObserveProviderCall(op, err) }()

	token, err := c.AppToken(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	u := c.APIBaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Client-Id", c.ClientID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitch %s: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}
