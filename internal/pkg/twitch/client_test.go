package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHelix struct {
	t          *testing.T
	tokenCalls int
	handler    http.HandlerFunc
}

func newFakeHelix(t *testing.T, handler http.HandlerFunc) (*fakeHelix, *Client) {
	t.Helper()
	f := &fakeHelix{t: t, handler: handler}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "cid", r.Form.Get("client_id"))
		assert.Equal(t, "csecret", r.Form.Get("client_secret"))
		f.tokenCalls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"bearer","expires_in":3600}`, f.tokenCalls)
	})
	mux.HandleFunc("/mock/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cid", r.Header.Get("Client-Id"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok-"))
		r.URL.Path = strings.TrimPrefix(r.URL.Path, "/mock")
		handler(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return f, &Client{
		ClientID:     "cid",
		ClientSecret: "csecret",
		APIBaseURL:   srv.URL + "/mock",
		IDBaseURL:    srv.URL + "/auth",
		HTTPClient:   &http.Client{Timeout: 5 * time.Second},
	}
}

func TestCreateSubscription(t *testing.T) {
	var got CreateSubscriptionRequest
	_, client := newFakeHelix(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/eventsub/subscriptions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
		io.WriteString(w, `{"data":[{"id":"sub-42","status":"webhook_callback_verification_pending","type":"stream.online","version":"1"}],"total":1}`)
	})

	id, err := client.CreateSubscription(context.Background(), CreateSubscriptionRequest{
		Type:      "stream.online",
		Version:   "1",
		Condition: map[string]string{"broadcaster_user_id": "1234"},
		Transport: Transport{Method: "webhook", Callback: "https://example.com/twitch/event-sub/callback", Secret: "s3cret"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sub-42", id)
	assert.Equal(t, "stream.online", got.Type)
	assert.Equal(t, "1234", got.Condition["broadcaster_user_id"])
	assert.Equal(t, "webhook", got.Transport.Method)
	assert.Equal(t, "s3cret", got.Transport.Secret)
}

func TestCreateSubscription_ErrorCarriesStatusAndBody(t *testing.T) {
	_, client := newFakeHelix(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"error":"Conflict","status":409,"message":"subscription already exists"}`)
	})

	_, err := client.CreateSubscription(context.Background(), CreateSubscriptionRequest{Type: "stream.online", Version: "1"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "subscription already exists")
}

func TestDeleteSubscription(t *testing.T) {
	var gotID string
	_, client := newFakeHelix(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotID = r.URL.Query().Get("id")
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteSubscription(context.Background(), "sub-42"))
	assert.Equal(t, "sub-42", gotID)
}

func TestGetLiveStream(t *testing.T) {
	_, client := newFakeHelix(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/streams", r.URL.Path)
		assert.Equal(t, "live", r.URL.Query().Get("type"))
		if r.URL.Query().Get("user_id") != "1234" {
			io.WriteString(w, `{"data":[],"pagination":{}}`)
			return
		}
		io.WriteString(w, `{"data":[{"id":"s1","user_id":"1234","user_login":"alice","user_name":"Alice",
			"game_name":"Chess","type":"live","title":"Opening prep","tags":["English"],"viewer_count":17,
			"started_at":"2024-03-01T18:00:00Z","thumbnail_url":"https://cdn.example/alice-{width}x{height}.jpg","is_mature":false}]}`)
	})

	stream, err := client.GetLiveStream(context.Background(), "1234")
	require.NoError(t, err)
	require.NotNil(t, stream)
	assert.Equal(t, "Opening prep", stream.Title)
	assert.Equal(t, 17, stream.ViewerCount)
	assert.Equal(t, []string{"English"}, stream.Tags)
	assert.Equal(t, "https://cdn.example/alice-640x360.jpg", stream.Thumbnail(640, 360))

	offline, err := client.GetLiveStream(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, offline)
}

func TestGetUsers_BatchesByHundred(t *testing.T) {
	var batches []int
	f, client := newFakeHelix(t, func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query()["id"]
		batches = append(batches, len(ids))
		users := make([]User, 0, len(ids))
		for _, id := range ids {
			users = append(users, User{ID: id, Login: "u" + id, DisplayName: "U" + id})
		}
		require.NoError(t, json.NewEncoder(w).Encode(usersResponse{Data: users}))
	})

	ids := make([]string, 0, 230)
	for i := range 230 {
		ids = append(ids, fmt.Sprint(i))
	}

	users, err := client.GetUsers(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, users, 230)
	assert.Equal(t, []int{100, 100, 30}, batches)
	assert.Equal(t, 3, f.tokenCalls)
}

func TestGetUsers_Empty(t *testing.T) {
	f, client := newFakeHelix(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	users, err := client.GetUsers(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Zero(t, f.tokenCalls)
}

func TestAppToken_MissingCredentials(t *testing.T) {
	c := &Client{HTTPClient: http.DefaultClient}
	_, err := c.AppToken(context.Background())
	assert.Error(t, err)
}

func TestNewClientFromEnv_Mock(t *testing.T) {
	t.Setenv("TWITCH_MOCK", "true")
	t.Setenv("TWITCH_MOCK_URL", "http://localhost:8080/")
	t.Setenv("TWITCH_CLIENT_ID", " cid ")

	c := NewClientFromEnv()
	assert.Equal(t, "http://localhost:8080/mock", c.APIBaseURL)
	assert.Equal(t, "http://localhost:8080/auth", c.IDBaseURL)
	assert.Equal(t, "cid", c.ClientID)
	assert.Equal(t, 15*time.Second, c.HTTPClient.Timeout)
}
