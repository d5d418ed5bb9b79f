package storage

import "context"

// SessionCache caches session-token lookups in front of the user store, so
// the handshake does not hit Postgres on every reconnect.
// Implementations: redis.Client, memory.Client (for -dev without Redis).
type SessionCache interface {
	SetSession(ctx context.Context, token string, userID int64) error
	// GetSession returns (userID, true) on a cache hit, (0, false) on a miss.
	GetSession(ctx context.Context, token string) (int64, bool, error)
	DeleteSession(ctx context.Context, token string) error
	Close() error
}
