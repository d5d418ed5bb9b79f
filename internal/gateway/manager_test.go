package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/chatgate/internal/config"
	"github.com/chatgate/internal/model"
	"github.com/chatgate/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Empty store fakes: lifecycle tests never reach storage.
type noUsers struct{}

func (noUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return nil, repository.ErrNotFound
}

type noRooms struct{}

func (noRooms) FindByPair(ctx context.Context, a, b int64) (*model.Room, error) {
	return nil, repository.ErrNotFound
}
func (noRooms) GetByID(ctx context.Context, id string) (*model.Room, error) {
	return nil, repository.ErrNotFound
}
func (noRooms) Create(ctx context.Context, rm *model.Room) error { return nil }
func (noRooms) RecordMessage(ctx context.Context, roomID string, recipientID int64, at time.Time) error {
	return nil
}

type noMessages struct{}

func (noMessages) Create(ctx context.Context, m *model.Message) error { return nil }
func (noMessages) ListByRoomAsc(ctx context.Context, roomID string) ([]model.Message, error) {
	return nil, nil
}

type rejectAll struct{}

func (rejectAll) ValidateSession(ctx context.Context, token string) (*model.UserPublic, error) {
	return nil, nil
}

func newTestManager(cfg config.GatewayConfig) *Manager {
	return NewManager(rejectAll{}, noUsers{}, noRooms{}, noMessages{}, cfg, "*")
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestManager_AttachIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := newTestManager(config.GatewayConfig{})

	assert.False(t, m.IsInitialized())

	first := m.Attach(ctx, chi.NewRouter())
	require.NotNil(t, first)
	assert.True(t, m.IsInitialized())
	assert.Empty(t, first.Addr())

	// A second attach, even on a different router, returns the existing
	// instance and registers nothing new.
	second := m.Attach(ctx, chi.NewRouter())
	assert.Same(t, first, second)
}

func TestManager_StandaloneAfterAttachReturnsExisting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := newTestManager(config.GatewayConfig{StandalonePort: freePort(t)})

	attached := m.Attach(ctx, chi.NewRouter())
	gw, ok := m.Standalone(ctx)
	assert.True(t, ok)
	assert.Same(t, attached, gw)
	assert.Empty(t, gw.Addr(), "attach-mode instance must not grow a listener")
}

func TestManager_AttachAfterStandaloneReturnsExisting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := newTestManager(config.GatewayConfig{StandalonePort: freePort(t)})

	standalone, ok := m.Standalone(ctx)
	require.True(t, ok)

	r := chi.NewRouter()
	attached := m.Attach(ctx, r)
	assert.Same(t, standalone, attached)
	assert.NotEmpty(t, attached.Addr(), "the standalone instance keeps its own listener")
	assert.Empty(t, r.Routes(), "a late attach must leave the host router untouched")
}

func TestManager_StandaloneServesAndIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	port := freePort(t)
	m := newTestManager(config.GatewayConfig{StandalonePort: port})

	gw, ok := m.Standalone(ctx)
	require.True(t, ok)
	require.NotNil(t, gw)
	assert.True(t, m.IsInitialized())
	assert.NotEmpty(t, gw.Addr())

	// The endpoint is live; without credentials the handshake is refused
	// before any upgrade.
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/ws", port))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	again, ok := m.Standalone(ctx)
	assert.True(t, ok)
	assert.Same(t, gw, again)
}

func TestManager_StandalonePortUnavailable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Occupy the configured port first.
	blocker, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer blocker.Close()
	port := blocker.Addr().(*net.TCPAddr).Port

	m := newTestManager(config.GatewayConfig{StandalonePort: port})
	gw, ok := m.Standalone(ctx)
	assert.False(t, ok)
	assert.Nil(t, gw)
	assert.False(t, m.IsInitialized(), "a failed claim must leave the manager uninitialized")

	// Once the port frees up, a later attempt succeeds.
	require.NoError(t, blocker.Close())
	gw, ok = m.Standalone(ctx)
	require.True(t, ok)
	assert.NotNil(t, gw)
	assert.True(t, m.IsInitialized())
}
