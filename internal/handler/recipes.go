package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/dukerupert/shelfsense/internal/recipes"
	"github.com/dukerupert/shelfsense/internal/store"
)

type RecipeHandler struct {
	recipeService *recipes.Service
	pantryStore   *store.PantryStore
}

func NewRecipeHandler(rs *recipes.Service, ps *store.PantryStore) *RecipeHandler {
	return &RecipeHandler{recipeService: rs, pantryStore: ps}
}

// Suggest returns recipe ideas based on what is currently in the user's pantry.
func (h *RecipeHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	if !h.recipeService.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "recipe suggestions are not configured"})
		return
	}

	items, err := h.pantryStore.ListPantry(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list pantry"})
		return
	}

	number := 5
	if n, err := strconv.Atoi(r.URL.Query().Get("number")); err == nil && n > 0 && n <= 20 {
		number = n
	}

	ingredients := make([]string, 0, len(items))
	for _, item := range items {
		ingredients = append(ingredients, item.FoodItem)
	}

	suggestions, err := h.recipeService.FindByIngredients(r.Context(), ingredients, number)
	if err != nil {
		log.Printf("failed to fetch recipe suggestions: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to fetch recipes"})
		return
	}
	if suggestions == nil {
		suggestions = []recipes.Recipe{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}
