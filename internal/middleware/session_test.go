package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chatgate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticValidator struct {
	sessions map[string]model.UserPublic
}

func (v *staticValidator) ValidateSession(ctx context.Context, token string) (*model.UserPublic, error) {
	u, ok := v.sessions[token]
	if !ok {
		return nil, nil
	}
	cp := u
	return &cp, nil
}

func TestSessionAuth(t *testing.T) {
	name := "mina"
	validator := &staticValidator{sessions: map[string]model.UserPublic{
		"tok-7": {ID: 7, Name: &name},
	}}

	var seen *model.UserPublic
	handler := SessionAuth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("no credentials", func(t *testing.T) {
		seen = nil
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"no credentials"}`, rec.Body.String())
		assert.Nil(t, seen)
	})

	t.Run("invalid session", func(t *testing.T) {
		seen = nil
		r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		r.Header.Set("X-Session-Id", "tok-stale")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"invalid session"}`, rec.Body.String())
		assert.Nil(t, seen)
	})

	t.Run("valid header token", func(t *testing.T) {
		seen = nil
		r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		r.Header.Set("X-Session-Id", "tok-7")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, int64(7), seen.ID)
	})

	t.Run("valid cookie token", func(t *testing.T) {
		seen = nil
		r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		r.AddCookie(&http.Cookie{Name: "sessionId", Value: "tok-7"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
	})
}
