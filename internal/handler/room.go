package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/chatgate/internal/logger"
	"github.com/chatgate/internal/middleware"
	"github.com/chatgate/internal/model"
	"github.com/chatgate/internal/repository"
)

type RoomHandler struct {
	roomRepo *repository.RoomRepository
	userRepo *repository.UserRepository
	msgRepo  *repository.MessageRepository
}

func NewRoomHandler(roomRepo *repository.RoomRepository, userRepo *repository.UserRepository, msgRepo *repository.MessageRepository) *RoomHandler {
	return &RoomHandler{roomRepo: roomRepo, userRepo: userRepo, msgRepo: msgRepo}
}

// RoomSummary is one sidebar entry: the room from the caller's point of view.
type RoomSummary struct {
	ID            string           `json:"id"`
	CreatedAt     time.Time        `json:"createdAt"`
	LastMessageAt *time.Time       `json:"lastMessageAt"`
	Partner       model.UserPublic `json:"partner"`
	UnreadCount   int              `json:"unreadCount"`
	LastMessage   *model.Message   `json:"lastMessage,omitempty"`
}

// GetUserRooms returns the caller's rooms, most recently active first, each
// with the partner profile and the caller's own unread counter.
func (h *RoomHandler) GetUserRooms(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rooms, err := h.roomRepo.ListByUser(r.Context(), user.ID)
	if err != nil {
		logger.Errorf("list rooms user=%d: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to load rooms")
		return
	}

	summaries := make([]RoomSummary, 0, len(rooms))
	for i := range rooms {
		rm := &rooms[i]
		partner, err := h.userRepo.GetByID(r.Context(), rm.PartnerID(user.ID))
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			logger.Errorf("get partner room=%s: %v", rm.ID, err)
			writeError(w, http.StatusInternalServerError, "failed to load rooms")
			return
		}
		last, err := h.msgRepo.GetLastByRoom(r.Context(), rm.ID)
		if err != nil {
			logger.Errorf("get last message room=%s: %v", rm.ID, err)
			writeError(w, http.StatusInternalServerError, "failed to load rooms")
			return
		}
		if last != nil {
			last.IsMyMessage = last.SenderID == user.ID
		}
		summaries = append(summaries, RoomSummary{
			ID:            rm.ID,
			CreatedAt:     rm.CreatedAt,
			LastMessageAt: rm.LastMessageAt,
			Partner:       partner.ToPublic(),
			UnreadCount:   rm.UnreadCountFor(user.ID),
			LastMessage:   last,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}
