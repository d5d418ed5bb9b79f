// Package gateway owns the process-wide real-time gateway instance and its
// two initialization modes: attached to the host's router, or standalone on a
// dedicated port.
package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/chatgate/internal/auth"
	"github.com/chatgate/internal/config"
	"github.com/chatgate/internal/handler"
	"github.com/chatgate/internal/logger"
	"github.com/chatgate/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Gateway is the single running real-time instance. In standalone mode it owns
// its listener; in attach mode the host's server does.
type Gateway struct {
	Hub  *ws.Hub
	addr string
	srv  *http.Server
}

// Addr returns the standalone listen address, or "" in attach mode.
func (g *Gateway) Addr() string { return g.addr }

// Manager guarantees at most one gateway instance per process, no matter how
// many times or from which entry point initialization is attempted. There is
// no transition back to uninitialized within the process lifetime.
type Manager struct {
	mu          sync.Mutex
	initialized atomic.Bool
	gw          *Gateway

	validator      auth.Validator
	users          ws.UserStore
	rooms          ws.RoomStore
	msgs           ws.MessageStore
	cfg            config.GatewayConfig
	allowedOrigins string
}

func NewManager(validator auth.Validator, users ws.UserStore, rooms ws.RoomStore, msgs ws.MessageStore, cfg config.GatewayConfig, allowedOrigins string) *Manager {
	return &Manager{
		validator:      validator,
		users:          users,
		rooms:          rooms,
		msgs:           msgs,
		cfg:            cfg,
		allowedOrigins: allowedOrigins,
	}
}

// IsInitialized reports whether the gateway instance exists. Lock-free; safe
// from any goroutine.
func (m *Manager) IsInitialized() bool {
	return m.initialized.Load()
}

// newGateway builds the hub and starts its run loop. Callers hold m.mu.
func (m *Manager) newGateway(ctx context.Context) (*Gateway, *handler.WSHandler) {
	hub := ws.NewHub(m.users, m.rooms, m.msgs, m.cfg.MaxConnections, m.cfg.SendBufferSize)
	go hub.Run(ctx)
	return &Gateway{Hub: hub}, handler.NewWSHandler(hub, m.validator, m.allowedOrigins)
}

// Attach mounts the gateway onto the host's router. If the gateway is already
// initialized (by either entry point), the existing instance is returned
// unchanged and the router is left alone.
func (m *Manager) Attach(ctx context.Context, r chi.Router) *Gateway {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gw != nil {
		return m.gw
	}

	gw, wsH := m.newGateway(ctx)
	r.Get("/ws", wsH.ServeWS)
	m.gw = gw
	m.initialized.Store(true)
	logger.Info("gateway attached to host router")
	return gw
}

// Standalone claims the configured port and serves the gateway on its own
// listener. If the port is taken, initialization is skipped: the manager stays
// uninitialized, (nil, false) is returned and the process carries on without
// real-time capability. Claiming the listener directly doubles as the
// availability probe, so there is no check-then-bind window.
func (m *Manager) Standalone(ctx context.Context) (*Gateway, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gw != nil {
		return m.gw, true
	}

	addr := fmt.Sprintf(":%d", m.cfg.StandalonePort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Infof("gateway port %d unavailable, continuing without realtime: %v", m.cfg.StandalonePort, err)
		return nil, false
	}

	gw, wsH := m.newGateway(ctx)
	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{m.allowedOrigins},
		AllowedMethods:   []string{"GET"},
		AllowedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true,
	}))
	router.Get("/ws", wsH.ServeWS)

	gw.addr = ln.Addr().String()
	gw.srv = &http.Server{Handler: router}
	go func() {
		if err := gw.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Errorf("gateway standalone server: %v", err)
		}
	}()

	m.gw = gw
	m.initialized.Store(true)
	logger.Infof("standalone gateway listening on %s", gw.addr)
	return gw, true
}
