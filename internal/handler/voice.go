package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/shelfsense/internal/model"
	"github.com/dukerupert/shelfsense/internal/store"
	"github.com/dukerupert/shelfsense/internal/voice"
	"github.com/dukerupert/shelfsense/internal/websocket"
)

type VoiceHandler struct {
	interpreter *voice.Interpreter
	pantryStore *store.PantryStore
	hub         *websocket.Hub
}

func NewVoiceHandler(interpreter *voice.Interpreter, ps *store.PantryStore, hub *websocket.Hub) *VoiceHandler {
	return &VoiceHandler{interpreter: interpreter, pantryStore: ps, hub: hub}
}

type interpretRequest struct {
	Transcript string `json:"transcript"`
	// Save persists the accepted items immediately instead of returning
	// them for client-side confirmation.
	Save bool `json:"save"`
}

// Interpret turns a voice transcript into pantry item candidates. The
// language model's output is never trusted as-is: every candidate passes
// through the same validation as manual entry, and rejects come back as
// warnings rather than failing the batch.
func (h *VoiceHandler) Interpret(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	if !h.interpreter.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "voice interpretation is not configured"})
		return
	}

	var req interpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "transcript is required"})
		return
	}

	payload, err := h.interpreter.Interpret(r.Context(), req.Transcript, time.Now())
	if err != nil {
		log.Printf("voice interpretation failed: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "voice interpretation failed"})
		return
	}

	items, warnings, err := voice.ValidateExtractedItems(payload)
	if err != nil {
		if errors.Is(err, voice.ErrMalformedExtraction) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "could not extract items from transcript"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to validate extracted items"})
		return
	}
	if items == nil {
		items = []model.PantryItem{}
	}
	if warnings == nil {
		warnings = []voice.Warning{}
	}

	if !req.Save {
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "warnings": warnings})
		return
	}

	outcomes, err := h.pantryStore.AddItems(r.Context(), userID, items)
	if err != nil {
		log.Printf("failed to save interpreted items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save items"})
		return
	}
	for _, outcome := range outcomes {
		if outcome.Err == nil && outcome.Item != nil {
			h.hub.Broadcast(websocket.NewMessage("pantry_item", "added", userID, outcome.Item.ID, nil))
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{"results": outcomes, "warnings": warnings})
}
