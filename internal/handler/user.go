package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dukerupert/shelfsense/internal/store"
)

type UserHandler struct {
	userStore *store.UserStore
}

func NewUserHandler(us *store.UserStore) *UserHandler {
	return &UserHandler{userStore: us}
}

// SetContact registers the email address expiration reminders go to.
// An empty address clears it, which opts the user out of the sweep.
func (h *UserHandler) SetContact(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
			return
		}
	}

	if err := h.userStore.SetEmail(r.Context(), userID, req.Email); err != nil {
		log.Printf("failed to set contact email: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set contact email"})
		return
	}

	user, err := h.userStore.Get(r.Context(), userID)
	if err != nil || user == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load user"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}
