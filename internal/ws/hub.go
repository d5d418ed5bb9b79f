package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chatgate/internal/logger"
	"github.com/chatgate/internal/model"
	"github.com/chatgate/internal/repository"
	"github.com/google/uuid"
)

// UserStore, RoomStore and MessageStore are the storage contracts the hub
// consumes. repository types satisfy them; tests supply in-memory fakes.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

type RoomStore interface {
	FindByPair(ctx context.Context, a, b int64) (*model.Room, error)
	GetByID(ctx context.Context, id string) (*model.Room, error)
	Create(ctx context.Context, rm *model.Room) error
	RecordMessage(ctx context.Context, roomID string, recipientID int64, at time.Time) error
}

type MessageStore interface {
	Create(ctx context.Context, m *model.Message) error
	ListByRoomAsc(ctx context.Context, roomID string) ([]model.Message, error)
}

// Hub routes events between live connections and storage. Room groups are
// connection-scoped: each connection of a user joins a room independently.
type Hub struct {
	mu       sync.RWMutex
	conns    map[*Client]struct{}
	rooms    map[string]map[*Client]struct{}
	total    int
	maxConns int
	sendBuf  int

	users    UserStore
	roomRepo RoomStore
	msgRepo  MessageStore

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(users UserStore, roomRepo RoomStore, msgRepo MessageStore, maxConns, sendBuf int) *Hub {
	if maxConns <= 0 {
		maxConns = 10000
	}
	if sendBuf <= 0 {
		sendBuf = 256
	}
	return &Hub{
		conns:      make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		maxConns:   maxConns,
		sendBuf:    sendBuf,
		users:      users,
		roomRepo:   roomRepo,
		msgRepo:    msgRepo,
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) shutdown() {
	// Collect all clients under the lock, do NOT perform I/O under mutex.
	h.mu.Lock()
	allClients := make([]*Client, 0, h.total)
	for c := range h.conns {
		allClients = append(allClients, c)
	}
	h.conns = make(map[*Client]struct{})
	h.rooms = make(map[string]map[*Client]struct{})
	h.total = 0
	h.mu.Unlock()

	// Close connections outside the lock (network I/O).
	for _, c := range allClients {
		c.Close()
	}
	for _, c := range allClients {
		c.Wait()
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	if h.total >= h.maxConns {
		h.mu.Unlock()
		logger.Errorf("ws connection limit reached (%d), rejecting user=%d", h.maxConns, c.userID)
		c.Close()
		return
	}
	h.conns[c] = struct{}{}
	h.total++
	h.mu.Unlock()
}

// removeClient drops the connection from the hub and from every room group it
// joined. Persisted room/message state is untouched.
func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.conns[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, c)
	h.total--
	for roomID := range c.joined {
		if group, ok := h.rooms[roomID]; ok {
			delete(group, c)
			if len(group) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	c.joined = make(map[string]struct{})
	h.mu.Unlock()

	// Network I/O outside the lock.
	c.Close()
}

// joinRoom adds the connection to the room's broadcast group.
func (h *Hub) joinRoom(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.rooms[roomID]
	if !ok {
		group = make(map[*Client]struct{})
		h.rooms[roomID] = group
	}
	group[c] = struct{}{}
	c.joined[roomID] = struct{}{}
}

// HandleEvent dispatches one incoming event. Called synchronously from the
// connection's read loop, so events of a single connection stay ordered.
func (h *Hub) HandleEvent(ctx context.Context, c *Client, ev IncomingEvent) {
	if err := ev.Validate(); err != nil {
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: err.Error()})
		return
	}
	switch ev.Type {
	case EventJoinRoom:
		h.handleJoinRoom(ctx, c, ev)
	case EventSendMessage:
		h.handleSendMessage(ctx, c, ev)
	}
}

// handleJoinRoom resolves the one-to-one room for {self, target}: find the
// existing room for the unordered pair or create it. The acknowledgement is
// unicast to the requesting connection only.
func (h *Hub) handleJoinRoom(ctx context.Context, c *Client, ev IncomingEvent) {
	defer logger.DeferLogDuration("ws.handleJoinRoom", time.Now())()
	if ev.TargetUserID == c.userID {
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: "cannot open a room with yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	room, err := h.roomRepo.FindByPair(ctx, c.userID, ev.TargetUserID)
	switch {
	case err == nil:
		h.joinExistingRoom(ctx, c, room)
	case errors.Is(err, repository.ErrNotFound):
		h.createAndJoinRoom(ctx, c, ev.TargetUserID)
	default:
		logger.Errorf("ws find room user=%d target=%d: %v", c.userID, ev.TargetUserID, err)
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: "failed to resolve room"})
	}
}

func (h *Hub) joinExistingRoom(ctx context.Context, c *Client, room *model.Room) {
	partner, err := h.users.GetByID(ctx, room.PartnerID(c.userID))
	if err != nil {
		logger.Errorf("ws get partner room=%s user=%d: %v", room.ID, c.userID, err)
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: "failed to resolve room"})
		return
	}

	messages, err := h.msgRepo.ListByRoomAsc(ctx, room.ID)
	if err != nil {
		logger.Errorf("ws list messages room=%s: %v", room.ID, err)
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: "failed to load history"})
		return
	}
	for i := range messages {
		messages[i].IsMyMessage = messages[i].SenderID == c.userID
	}

	h.joinRoom(c, room.ID)
	h.sendToClient(c, OutgoingEvent{Type: EventRoomJoined, Payload: RoomJoinedPayload{
		ID:        room.ID,
		CreatedAt: room.CreatedAt,
		Partner:   partner.ToPublic(),
		Messages:  messages,
	}})
}

func (h *Hub) createAndJoinRoom(ctx context.Context, c *Client, targetID int64) {
	target, err := h.users.GetByID(ctx, targetID)
	if errors.Is(err, repository.ErrNotFound) {
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: "user not found"})
		return
	}
	if err != nil {
		logger.Errorf("ws get target user=%d: %v", targetID, err)
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: "failed to resolve room"})
		return
	}

	now := time.Now().UTC()
	room := &model.Room{
		ID:        uuid.New().String(),
		User1ID:   c.userID,
		User2ID:   targetID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = h.roomRepo.Create(ctx, room)
	if errors.Is(err, repository.ErrDuplicatePair) {
		// The counterpart created the room between our lookup and insert.
		// Converge on theirs instead of failing.
		room, err = h.roomRepo.FindByPair(ctx, c.userID, targetID)
		if err != nil {
			logger.Errorf("ws refetch room user=%d target=%d: %v", c.userID, targetID, err)
			h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: "failed to resolve room"})
			return
		}
		h.joinExistingRoom(ctx, c, room)
		return
	}
	if err != nil {
		logger.Errorf("ws create room user=%d target=%d: %v", c.userID, targetID, err)
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: "failed to create room"})
		return
	}

	h.joinRoom(c, room.ID)
	h.sendToClient(c, OutgoingEvent{Type: EventRoomJoined, Payload: RoomJoinedPayload{
		ID:        room.ID,
		CreatedAt: room.CreatedAt,
		Partner:   target.ToPublic(),
		Messages:  nil,
	}})
}

// handleSendMessage persists the message, applies the room bookkeeping
// (recipient's unread counter, last_message_at) and broadcasts the stored
// message to the whole room group, sender's connections included.
func (h *Hub) handleSendMessage(ctx context.Context, c *Client, ev IncomingEvent) {
	defer logger.DeferLogDuration("ws.handleSendMessage", time.Now())()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	room, err := h.roomRepo.GetByID(ctx, ev.RoomID)
	if errors.Is(err, repository.ErrNotFound) {
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: "room not found"})
		return
	}
	if err != nil {
		logger.Errorf("ws get room=%s: %v", ev.RoomID, err)
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: "failed to send message"})
		return
	}
	if !room.HasParticipant(c.userID) {
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: "not a participant"})
		return
	}

	now := time.Now().UTC()
	m := &model.Message{
		ID:         uuid.New().String(),
		ChatRoomID: room.ID,
		SenderID:   c.userID,
		Content:    ev.Content,
		ReadStatus: model.ReadStatusSent,
		CreatedAt:  now,
	}
	if err := h.msgRepo.Create(ctx, m); err != nil {
		logger.Errorf("ws save message room=%s user=%d: %v", room.ID, c.userID, err)
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: "failed to save message"})
		return
	}

	recipientID := room.PartnerID(c.userID)
	if err := h.roomRepo.RecordMessage(ctx, room.ID, recipientID, now); err != nil {
		logger.Errorf("ws record message room=%s: %v", room.ID, err)
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: "failed to deliver message"})
		return
	}

	h.broadcastToRoom(room.ID, OutgoingEvent{Type: EventNewMessage, Payload: NewMessagePayload{
		ID:        m.ID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		SenderID:  m.SenderID,
		RoomID:    m.ChatRoomID,
	}})
}

// broadcastToRoom fans an event out to every connection in the room's group.
func (h *Hub) broadcastToRoom(roomID string, ev OutgoingEvent) {
	h.mu.RLock()
	group, ok := h.rooms[roomID]
	if !ok {
		h.mu.RUnlock()
		return
	}
	targets := make([]*Client, 0, len(group))
	for c := range group {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.sendToClient(c, ev)
	}
}

func (h *Hub) sendToClient(c *Client, ev OutgoingEvent) {
	select {
	case c.send <- ev:
	case <-c.done:
	default:
		// Backpressure: send buffer full, close slow client.
		logger.Errorf("ws send buffer full, closing slow client user=%d", c.userID)
		c.Close()
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
