package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomPairHelpers(t *testing.T) {
	rm := &Room{ID: "r1", User1ID: 7, User2ID: 11, User1UnreadCount: 2, User2UnreadCount: 5}

	assert.Equal(t, int64(11), rm.PartnerID(7))
	assert.Equal(t, int64(7), rm.PartnerID(11))

	assert.True(t, rm.HasParticipant(7))
	assert.True(t, rm.HasParticipant(11))
	assert.False(t, rm.HasParticipant(13))

	assert.Equal(t, 2, rm.UnreadCountFor(7))
	assert.Equal(t, 5, rm.UnreadCountFor(11))
}
