package ipc

import (
	"context"
	"crypto/subtle"
	"net/http"
	"sort"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// HandlerFunc serves one route. The returned value becomes the reply's
// response field.
type HandlerFunc func(ctx context.Context, kwargs Kwargs) (any, error)

// Server is the bot side of the channel. It is an http.Handler so it can be
// mounted on any net/http server.
type Server struct {
	secret string

	mu     sync.RWMutex
	routes map[string]HandlerFunc
}

func NewServer(secret string) *Server {
	return &Server{secret: secret, routes: make(map[string]HandlerFunc)}
}

// Handle registers h for route, replacing any earlier handler.
func (s *Server) Handle(route string, h HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[route] = h
}

// Routes returns the registered route names in order.
func (s *Server) Routes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.routes))
	for name := range s.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Warnf("[IPC] Failed to accept connection from %s: %v", r.RemoteAddr, err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	var req Request
	if err := wsjson.Read(ctx, conn, &req); err != nil {
		log.Warnf("[IPC] Failed to read request from %s: %v", r.RemoteAddr, err)
		return
	}

	reply := s.dispatch(ctx, req)
	if err := wsjson.Write(ctx, conn, reply); err != nil {
		log.Warnf("[IPC] Failed to write reply for %s: %v", req.Route, err)
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) dispatch(ctx context.Context, req Request) Reply {
	supplied := req.Headers[authorizationHeader]
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(s.secret)) != 1 {
		log.Warnf("[IPC] Rejected request for %s: bad secret", req.Route)
		return Reply{Error: "invalid or missing secret", Code: codeUnauthorized}
	}

	s.mu.RLock()
	h, ok := s.routes[req.Route]
	s.mu.RUnlock()
	if !ok {
		return Reply{Error: "no route named " + req.Route, Code: codeRouteNotFound}
	}

	if req.Kwargs == nil {
		req.Kwargs = Kwargs{}
	}
	resp, err := h(ctx, req.Kwargs)
	if err != nil {
		log.Errorf("[IPC] Route %s failed: %v", req.Route, err)
		return Reply{Error: err.Error(), Code: codeHandlerFailed}
	}
	return Reply{Response: resp}
}
