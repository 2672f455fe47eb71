// Package ipctest runs an in-process bot peer that records the calls it
// receives.
package ipctest

import (
	"context"
	"net"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/Natsku123/ttv-tools/internal/pkg/ipc"
)

// Call is one request the peer served.
type Call struct {
	Route  string
	Kwargs ipc.Kwargs
}

// Peer records every call made to the routes it serves.
type Peer struct {
	*ipc.Server

	mu    sync.Mutex
	calls []Call
}

// NewPeer starts a peer serving every notification route and returns it
// with a client pointed at it.
func NewPeer(t *testing.T, secret string) (*Peer, *ipc.Client) {
	t.Helper()

	p := &Peer{Server: ipc.NewServer(secret)}
	for _, route := range []string{
		ipc.RouteLiveNotification,
		ipc.RouteNewSubscriptionNotification,
		ipc.RouteResubscriptionNotification,
		ipc.RouteGiftSubscriptionNotification,
		ipc.RouteCheerNotification,
		ipc.RouteRaidNotification,
		ipc.RouteHypeTrainEndNotification,
	} {
		p.Record(route, nil)
	}

	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse peer url: %v", err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split peer address: %v", err)
	}

	return p, &ipc.Client{Host: host, Port: port, Secret: secret, Timeout: 5 * time.Second}
}

// Record serves route by recording the call and returning (resp, nil).
func (p *Peer) Record(route string, resp any) {
	p.Handle(route, func(_ context.Context, kwargs ipc.Kwargs) (any, error) {
		p.mu.Lock()
		p.calls = append(p.calls, Call{Route: route, Kwargs: kwargs})
		p.mu.Unlock()
		return resp, nil
	})
}

// Calls returns a copy of the recorded calls in arrival order.
func (p *Peer) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}
