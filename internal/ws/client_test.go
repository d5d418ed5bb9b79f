package ws

import (
	"testing"

	"github.com/chatgate/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestClientSendBufferFollowsHubConfig(t *testing.T) {
	h := NewHub(nil, nil, nil, 0, 8)
	c := NewClient(h, nil, model.UserPublic{ID: 1})
	assert.Equal(t, 8, cap(c.send))

	h = NewHub(nil, nil, nil, 0, 0)
	c = NewClient(h, nil, model.UserPublic{ID: 1})
	assert.Equal(t, 256, cap(c.send), "non-positive config falls back to the default")
}
