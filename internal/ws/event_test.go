package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomingEventValidate(t *testing.T) {
	cases := []struct {
		name    string
		ev      IncomingEvent
		wantErr string
	}{
		{"join ok", IncomingEvent{Type: EventJoinRoom, TargetUserID: 3}, ""},
		{"join missing target", IncomingEvent{Type: EventJoinRoom}, "targetUserId is required"},
		{"join negative target", IncomingEvent{Type: EventJoinRoom, TargetUserID: -1}, "targetUserId is required"},
		{"send ok", IncomingEvent{Type: EventSendMessage, RoomID: "r1", Content: "hi"}, ""},
		{"send missing room", IncomingEvent{Type: EventSendMessage, Content: "hi"}, "roomId is required"},
		{"send missing content", IncomingEvent{Type: EventSendMessage, RoomID: "r1"}, "content is required"},
		{"server-side type rejected", IncomingEvent{Type: EventNewMessage}, "unknown event type"},
		{"unknown type", IncomingEvent{Type: "typing"}, "unknown event type"},
		{"empty type", IncomingEvent{}, "unknown event type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ev.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.wantErr, err.Error())
		})
	}
}
