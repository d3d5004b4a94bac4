package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/dukerupert/shelfsense/internal/model"
	"github.com/dukerupert/shelfsense/internal/normalize"
	"github.com/dukerupert/shelfsense/internal/store"
	"github.com/dukerupert/shelfsense/internal/websocket"
)

type PantryHandler struct {
	pantryStore *store.PantryStore
	hub         *websocket.Hub
}

func NewPantryHandler(ps *store.PantryStore, hub *websocket.Hub) *PantryHandler {
	return &PantryHandler{pantryStore: ps, hub: hub}
}

// addItemsRequest is the POST body: a batch of raw item candidates.
type addItemsRequest struct {
	Items []model.RawItem `json:"items"`
}

type addItemResult struct {
	FoodItem string            `json:"foodItem"`
	Item     *model.PantryItem `json:"item,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func (h *PantryHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
		return
	}

	var req addItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	// Normalize up front so malformed candidates are reported without
	// touching the database.
	results := make([]addItemResult, len(req.Items))
	var toAdd []model.PantryItem
	var addIdx []int
	for i, raw := range req.Items {
		results[i].FoodItem = strings.TrimSpace(raw.FoodItem)
		item, err := normalize.Item(raw)
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		toAdd = append(toAdd, item)
		addIdx = append(addIdx, i)
	}

	outcomes, err := h.pantryStore.AddItems(r.Context(), userID, toAdd)
	if err != nil {
		log.Printf("failed to add pantry items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add items"})
		return
	}

	for i, outcome := range outcomes {
		idx := addIdx[i]
		if outcome.Err != nil || outcome.Item == nil {
			results[idx].Error = "failed to store item"
			if outcome.Err != nil {
				results[idx].Error = outcome.Err.Error()
			}
			continue
		}
		results[idx].Item = outcome.Item
		h.hub.Broadcast(websocket.NewMessage("pantry_item", "added", userID, outcome.Item.ID, nil))
	}

	writeJSON(w, http.StatusCreated, map[string]any{"results": results})
}

func (h *PantryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	items, err := h.pantryStore.ListPantry(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list pantry"})
		return
	}
	if items == nil {
		items = []model.PantryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *PantryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	name := r.PathValue("name")
	if strings.TrimSpace(name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item name is required"})
		return
	}

	removed, err := h.pantryStore.RemoveItem(r.Context(), userID, name)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		log.Printf("failed to remove pantry item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to remove item"})
		return
	}

	if removed > 0 {
		h.hub.Broadcast(websocket.NewMessage("pantry_item", "removed", userID, 0, map[string]any{"food_item": name, "removed": removed}))
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

type editItemRequest struct {
	Quantity       string `json:"quantity"`
	Unit           string `json:"unit"`
	ExpirationDate string `json:"expirationDate"`
}

func (h *PantryHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	name := r.PathValue("name")
	if strings.TrimSpace(name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item name is required"})
		return
	}

	var req editItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	quantity, err := normalize.Quantity(req.Quantity)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
		return
	}
	expirationDate, err := normalize.Date(req.ExpirationDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expiration date"})
		return
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = model.DefaultUnit
	}

	item, err := h.pantryStore.EditItem(r.Context(), userID, name, quantity, unit, expirationDate)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		case errors.Is(err, store.ErrItemNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		default:
			log.Printf("failed to edit pantry item: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to edit item"})
		}
		return
	}

	h.hub.Broadcast(websocket.NewMessage("pantry_item", "updated", userID, item.ID, nil))
	writeJSON(w, http.StatusOK, item)
}
