package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tapforge/clicker-server/internal/api/handler"
	apimiddleware "github.com/tapforge/clicker-server/internal/api/middleware"
	"github.com/tapforge/clicker-server/internal/middleware"
	"github.com/tapforge/clicker-server/internal/services/auth"
	"github.com/tapforge/clicker-server/internal/services/game"
	"github.com/tapforge/clicker-server/internal/services/generator"
	"github.com/tapforge/clicker-server/internal/services/leaderboard"
	"github.com/tapforge/clicker-server/internal/services/social"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.Service
	GameController     *game.Controller
	LeaderboardService *leaderboard.Service
	SocialService      *social.Service
	Generator          generator.Generator
	AdminKeyHash       string
	CORSAllowedOrigin  string
}

// NewRouter creates a new API router with all routes configured.
// Paths match the browser client's existing surface, so they sit at the
// root rather than under a versioned prefix.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.GameController)
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.Generator)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardService)
	socialHandler := handler.NewSocialHandler(cfg.SocialService)
	adminHandler := handler.NewAdminHandler(cfg.AuthService)

	authMiddleware := apimiddleware.Auth(cfg.AuthService)
	adminMiddleware := apimiddleware.Admin(cfg.AdminKeyHash)

	r.Use(middleware.CORS(cfg.CORSAllowedOrigin))
	r.Use(apimiddleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Public routes
	r.HandleFunc("/register", playerHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/player_data/{ref}", playerHandler.GetState).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/token_valid", playerHandler.TokenValid).Methods(http.MethodGet)
	r.HandleFunc("/generate_upgrade", gameHandler.GenerateUpgrade).Methods(http.MethodPost)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Routes requiring a bearer token
	gameRoutes := r.PathPrefix("/game").Subrouter()
	gameRoutes.Use(authMiddleware)
	gameRoutes.HandleFunc("/actions", gameHandler.SubmitActions).Methods(http.MethodPost)

	r.Handle("/upgrades", authMiddleware(http.HandlerFunc(gameHandler.Catalog))).Methods(http.MethodGet)

	friends := r.PathPrefix("/friends").Subrouter()
	friends.Use(authMiddleware)
	friends.HandleFunc("", socialHandler.ListFriends).Methods(http.MethodGet)
	friends.HandleFunc("/requests", socialHandler.ListRequests).Methods(http.MethodGet)
	friends.HandleFunc("/requests", socialHandler.SendRequest).Methods(http.MethodPost)
	friends.HandleFunc("/requests/{name}/accept", socialHandler.AcceptRequest).Methods(http.MethodPost)
	friends.HandleFunc("/requests/{name}/decline", socialHandler.DeclineRequest).Methods(http.MethodPost)

	// Admin routes gated on the shared key
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(adminMiddleware)
	admin.HandleFunc("/players/{id}", adminHandler.DeletePlayer).Methods(http.MethodDelete)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
