// Package recipes looks up recipe suggestions for the current pantry
// contents through the Spoonacular findByIngredients API.
package recipes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const cacheTTL = 10 * time.Minute

// Config holds recipe service configuration.
type Config struct {
	APIKey  string
	BaseURL string
}

// Recipe is one suggestion returned by the API. Fields beyond these exist in
// the upstream response but nothing downstream reads them.
type Recipe struct {
	ID                int64        `json:"id"`
	Title             string       `json:"title"`
	Image             string       `json:"image"`
	UsedIngredients   []Ingredient `json:"usedIngredients"`
	MissedIngredients []Ingredient `json:"missedIngredients"`
	UsedCount         int          `json:"usedIngredientCount"`
	MissedCount       int          `json:"missedIngredientCount"`
	Likes             int          `json:"likes"`
}

type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

type cacheEntry struct {
	recipes   []Recipe
	fetchedAt time.Time
}

// Service fetches and caches recipe suggestions.
type Service struct {
	config Config
	client *http.Client
	mu     sync.Mutex
	cache  map[string]cacheEntry
}

// NewService creates a recipe service with the given configuration.
func NewService(cfg Config) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.spoonacular.com/recipes/findByIngredients"
	}
	return &Service{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		cache:  make(map[string]cacheEntry),
	}
}

// Configured returns true if the API key is set.
func (s *Service) Configured() bool {
	return s.config.APIKey != ""
}

// FindByIngredients returns up to number recipe suggestions for the given
// ingredient names. Identical queries within the cache window are served
// from memory to stay inside the API's request quota.
func (s *Service) FindByIngredients(ctx context.Context, ingredients []string, number int) ([]Recipe, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("recipe service not configured: missing API key")
	}
	if len(ingredients) == 0 {
		return []Recipe{}, nil
	}
	if number <= 0 {
		number = 5
	}

	key := strings.ToLower(strings.Join(ingredients, ",")) + "|" + strconv.Itoa(number)

	s.mu.Lock()
	entry, ok := s.cache[key]
	s.mu.Unlock()
	if ok && time.Since(entry.fetchedAt) < cacheTTL {
		return entry.recipes, nil
	}

	recipes, err := s.fetch(ctx, ingredients, number)
	if err != nil {
		// Serve a stale entry on upstream failure rather than nothing.
		if ok {
			return entry.recipes, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{recipes: recipes, fetchedAt: time.Now()}
	s.mu.Unlock()
	return recipes, nil
}

func (s *Service) fetch(ctx context.Context, ingredients []string, number int) ([]Recipe, error) {
	params := url.Values{}
	params.Set("ingredients", strings.Join(ingredients, ","))
	params.Set("number", strconv.Itoa(number))
	params.Set("ranking", "2")
	params.Set("apiKey", s.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("recipe API request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recipe API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recipe API returned status %d", resp.StatusCode)
	}

	var recipes []Recipe
	if err := json.NewDecoder(resp.Body).Decode(&recipes); err != nil {
		return nil, fmt.Errorf("decode recipe response: %w", err)
	}
	return recipes, nil
}
