package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/shelfsense/internal/email"
	"github.com/dukerupert/shelfsense/internal/handler"
	"github.com/dukerupert/shelfsense/internal/middleware"
	"github.com/dukerupert/shelfsense/internal/recipes"
	"github.com/dukerupert/shelfsense/internal/store"
	"github.com/dukerupert/shelfsense/internal/sweep"
	"github.com/dukerupert/shelfsense/internal/voice"
	ws "github.com/dukerupert/shelfsense/internal/websocket"
)

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	pantryH        *handler.PantryHandler
	voiceH         *handler.VoiceHandler
	recipeH        *handler.RecipeHandler
	userH          *handler.UserHandler
	rateLimiter    *middleware.RateLimiter
	sweepScheduler *sweep.Scheduler
	logger         *slog.Logger
}

func New(db *sql.DB, interpreter *voice.Interpreter, recipeSvc *recipes.Service, emailClient *email.Client, sweepInterval time.Duration, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	pantryStore := store.NewPantryStore(db)
	userStore := store.NewUserStore(db)

	sweepSched := sweep.NewScheduler(pantryStore, userStore, emailClient, sweepInterval, logger.With("component", "sweep"))

	return &Server{
		db:             db,
		hub:            hub,
		pantryH:        handler.NewPantryHandler(pantryStore, hub),
		voiceH:         handler.NewVoiceHandler(interpreter, pantryStore, hub),
		recipeH:        handler.NewRecipeHandler(recipeSvc, pantryStore),
		userH:          handler.NewUserHandler(userStore),
		rateLimiter:    middleware.NewRateLimiter(),
		sweepScheduler: sweepSched,
		logger:         logger,
	}
}

// SweepScheduler returns the expiration sweep scheduler so main can manage
// its lifecycle.
func (s *Server) SweepScheduler() *sweep.Scheduler {
	return s.sweepScheduler
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Pantry API routes
	mux.HandleFunc("POST /api/users/{user_id}/pantry", s.pantryH.AddItems)
	mux.HandleFunc("GET /api/users/{user_id}/pantry", s.pantryH.List)
	mux.HandleFunc("DELETE /api/users/{user_id}/pantry/{name}", s.pantryH.Remove)
	mux.HandleFunc("PUT /api/users/{user_id}/pantry/{name}", s.pantryH.Edit)

	// Voice interpretation — rate limited since each call costs an LLM request
	mux.HandleFunc("POST /api/users/{user_id}/voice", s.rateLimitedHandler(s.voiceH.Interpret))

	// Recipe suggestions
	mux.HandleFunc("GET /api/users/{user_id}/recipes", s.recipeH.Suggest)

	// User contact for expiration reminders
	mux.HandleFunc("PUT /api/users/{user_id}/contact", s.userH.SetContact)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.KeyByUser, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
