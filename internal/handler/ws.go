package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/chatgate/internal/auth"
	"github.com/chatgate/internal/logger"
	"github.com/chatgate/internal/ws"
	"github.com/gorilla/websocket"
)

// WSHandler authenticates and upgrades gateway connections. The session check
// runs once per connection, before the upgrade: a rejected handshake never
// becomes a websocket.
type WSHandler struct {
	hub            *ws.Hub
	validator      auth.Validator
	allowedOrigins string
}

// NewWSHandler creates the websocket endpoint. allowedOrigins is a
// comma-separated list, or "*".
func NewWSHandler(hub *ws.Hub, validator auth.Validator, allowedOrigins string) *WSHandler {
	return &WSHandler{hub: hub, validator: validator, allowedOrigins: strings.TrimSpace(allowedOrigins)}
}

func (h *WSHandler) checkOrigin(r *http.Request) bool {
	if h.allowedOrigins == "*" || h.allowedOrigins == "" {
		return true
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	for _, o := range strings.Split(h.allowedOrigins, ",") {
		if strings.TrimSpace(o) == origin {
			return true
		}
	}
	return false
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromRequest(r)
	if token == "" {
		http.Error(w, `{"error":"no credentials"}`, http.StatusUnauthorized)
		return
	}
	user, err := h.validator.ValidateSession(r.Context(), token)
	if err != nil {
		logger.Errorf("ws validate session: %v", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, `{"error":"invalid session"}`, http.StatusUnauthorized)
		return
	}
	if !h.checkOrigin(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return h.checkOrigin(r) },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("ws upgrade: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := ws.NewClient(h.hub, conn, *user)
	client.Start(ctx, cancel)
	h.hub.Register(client)
}
