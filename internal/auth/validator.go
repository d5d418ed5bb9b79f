// Package auth bridges the gateway to the session store owned by the auth
// collaborator. The gateway validates tokens; it never issues or revokes them.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/chatgate/internal/logger"
	"github.com/chatgate/internal/model"
	"github.com/chatgate/internal/repository"
	"github.com/chatgate/internal/storage"
)

// TokenFromRequest extracts the session token from handshake metadata:
// the X-Session-Id header first, then the sessionId cookie as fallback.
func TokenFromRequest(r *http.Request) string {
	if tok := r.Header.Get("X-Session-Id"); tok != "" {
		return tok
	}
	if c, err := r.Cookie("sessionId"); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}

// UserSource is the narrow read contract the validator consumes from the
// user store.
type UserSource interface {
	GetBySession(ctx context.Context, token string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Validator maps an opaque session token to a user identity.
// (nil, nil) means the token is unknown or revoked.
type Validator interface {
	ValidateSession(ctx context.Context, token string) (*model.UserPublic, error)
}

// Service validates sessions against the user store, with a cache in front so
// reconnect storms do not hammer Postgres. cache may be nil.
type Service struct {
	users UserSource
	cache storage.SessionCache
}

func NewService(users UserSource, cache storage.SessionCache) *Service {
	return &Service{users: users, cache: cache}
}

func (s *Service) ValidateSession(ctx context.Context, token string) (*model.UserPublic, error) {
	defer logger.DeferLogDuration("auth.ValidateSession", time.Now())()
	if token == "" {
		return nil, nil
	}

	if s.cache != nil {
		id, ok, err := s.cache.GetSession(ctx, token)
		if err != nil {
			logger.Errorf("session cache get: %v", err)
		} else if ok {
			u, err := s.users.GetByID(ctx, id)
			if err == nil {
				pub := u.ToPublic()
				return &pub, nil
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			// The cached user is gone; evict the stale entry and fall through
			// to the authoritative token lookup.
			if delErr := s.cache.DeleteSession(ctx, token); delErr != nil {
				logger.Errorf("session cache delete: %v", delErr)
			}
		}
	}

	u, err := s.users.GetBySession(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetSession(ctx, token, u.ID); err != nil {
			logger.Errorf("session cache set: %v", err)
		}
	}
	pub := u.ToPublic()
	return &pub, nil
}
