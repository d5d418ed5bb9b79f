package handler

import (
	"net/http"

	"github.com/chatgate/internal/logger"
	"github.com/chatgate/internal/middleware"
	"github.com/chatgate/internal/repository"
)

type UserHandler struct {
	userRepo *repository.UserRepository
}

func NewUserHandler(userRepo *repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// GetUsers returns the contact list: every user except the caller, ordered by
// name. This backs the chat page's "start a conversation" picker.
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	users, err := h.userRepo.ListExcept(r.Context(), user.ID)
	if err != nil {
		logger.Errorf("list users for user=%d: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}
