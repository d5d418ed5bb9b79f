package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	c := New()
	ctx := context.Background()

	_, ok, err := c.GetSession(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetSession(ctx, "tok", 42))
	id, ok, err := c.GetSession(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	// Overwrite rebinds the token.
	require.NoError(t, c.SetSession(ctx, "tok", 43))
	id, ok, err = c.GetSession(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(43), id)

	require.NoError(t, c.DeleteSession(ctx, "tok"))
	_, ok, err = c.GetSession(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteUnknownSession(t *testing.T) {
	c := New()
	assert.NoError(t, c.DeleteSession(context.Background(), "missing"))
}
