package middleware

import (
	"context"

	"github.com/chatgate/internal/model"
)

type contextKey string

const userKey contextKey = "user"

// GetUser returns the authenticated user from the context (set by SessionAuth),
// or nil when the request is unauthenticated.
func GetUser(ctx context.Context) *model.UserPublic {
	v, _ := ctx.Value(userKey).(*model.UserPublic)
	return v
}

// WithUser attaches the authenticated user to the context.
func WithUser(ctx context.Context, u *model.UserPublic) context.Context {
	return context.WithValue(ctx, userKey, u)
}
