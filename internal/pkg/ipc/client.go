package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/Natsku123/ttv-tools/internal/pkg/env"
	"github.com/Natsku123/ttv-tools/internal/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// Client calls routes on the bot. It keeps no connection between calls.
type Client struct {
	Host    string
	Port    string
	Secret  string
	Timeout time.Duration
}

func NewClientFromEnv() *Client {
	return &Client{
		Host:    env.GetEnv("IPC_HOST", "bot"),
		Port:    env.GetEnv("IPC_PORT", "9999"),
		Secret:  env.GetEnv("IPC_SECRET", ""),
		Timeout: env.GetEnvDuration("IPC_TIMEOUT", defaultTimeout),
	}
}

func (c *Client) url() string {
	return "ws://" + net.JoinHostPort(c.Host, c.Port)
}

type rawReply struct {
	Response json.RawMessage `json:"response"`
	Error    string          `json:"error"`
	Code     int             `json:"code"`
}

// Request sends one route call and waits for its reply. The connection is
// closed on every return path.
func (c *Client) Request(ctx context.Context, route string, kwargs Kwargs) (json.RawMessage, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, c.url(), nil)
	if err != nil {
		return nil, fmt.Errorf("ipc dial %s: %w", c.url(), err)
	}
	defer conn.CloseNow()

	if kwargs == nil {
		kwargs = Kwargs{}
	}
	req := Request{
		Route:   route,
		Kwargs:  kwargs,
		Headers: map[string]string{authorizationHeader: c.Secret},
	}
	if err := wsjson.Write(ctx, conn, req); err != nil {
		return nil, fmt.Errorf("ipc write %s: %w", route, err)
	}

	var reply rawReply
	if err := wsjson.Read(ctx, conn, &reply); err != nil {
		return nil, fmt.Errorf("ipc read %s: %w", route, err)
	}
	conn.Close(websocket.StatusNormalClosure, "")

	switch {
	case reply.Code == codeUnauthorized:
		return nil, ErrUnauthorized
	case reply.Code == codeRouteNotFound:
		return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, route)
	case reply.Error != "" || reply.Code >= 400:
		return nil, &RemoteError{Route: route, Code: reply.Code, Message: reply.Error}
	}
	return reply.Response, nil
}

// Deliver sends a notification and discards the reply.
func (c *Client) Deliver(ctx context.Context, route string, kwargs Kwargs) error {
	_, err := c.Request(ctx, route, kwargs)
	metrics.Pipeline().ObserveDelivery(route, err)
	if errors.Is(err, ErrUnauthorized) {
		log.Errorf("[IPC] Bot rejected the shared secret on %s", route)
	}
	return err
}

// GetAllServers lists every server the bot is in.
func (c *Client) GetAllServers(ctx context.Context) ([]DiscordServer, error) {
	return c.servers(ctx, RouteGetAllServers, nil)
}

// GetUserServers lists the servers a Discord user administers.
func (c *Client) GetUserServers(ctx context.Context, discordUserID string) ([]DiscordServer, error) {
	return c.servers(ctx, RouteGetUserServers, Kwargs{"user_id": discordUserID})
}

func (c *Client) servers(ctx context.Context, route string, kwargs Kwargs) ([]DiscordServer, error) {
	raw, err := c.Request(ctx, route, kwargs)
	if err != nil {
		return nil, err
	}
	servers := []DiscordServer{}
	if len(raw) == 0 || string(raw) == "null" {
		return servers, nil
	}
	if err := json.Unmarshal(raw, &servers); err != nil {
		return nil, fmt.Errorf("ipc %s: decode response: %w", route, err)
	}
	return servers, nil
}
