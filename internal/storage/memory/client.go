package memory

import (
	"context"
	"sync"
	"time"
)

const sessionTTL = 5 * time.Minute

type item struct {
	userID int64
	exp    time.Time
}

// Client is the in-process SessionCache used by -dev runs without Redis.
type Client struct {
	mu       sync.RWMutex
	sessions map[string]item
}

func New() *Client {
	return &Client{sessions: make(map[string]item)}
}

func (c *Client) Close() error { return nil }

func (c *Client) SetSession(ctx context.Context, token string, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[token] = item{userID: userID, exp: time.Now().Add(sessionTTL)}
	return nil
}

func (c *Client) GetSession(ctx context.Context, token string) (int64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.sessions[token]
	if !ok || time.Now().After(v.exp) {
		return 0, false, nil
	}
	return v.userID, true, nil
}

func (c *Client) DeleteSession(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, token)
	return nil
}
