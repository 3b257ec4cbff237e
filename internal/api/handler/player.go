package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tapforge/clicker-server/internal/api/apierr"
	"github.com/tapforge/clicker-server/internal/api/middleware"
	"github.com/tapforge/clicker-server/internal/api/request"
	"github.com/tapforge/clicker-server/internal/api/response"
	"github.com/tapforge/clicker-server/internal/model"
	"github.com/tapforge/clicker-server/internal/services/auth"
	"github.com/tapforge/clicker-server/internal/services/game"
)

// PlayerHandler handles registration and player-state endpoints
type PlayerHandler struct {
	authService    *auth.Service
	gameController *game.Controller
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service, gameController *game.Controller) *PlayerHandler {
	return &PlayerHandler{
		authService:    authService,
		gameController: gameController,
	}
}

// Register handles POST /register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Name == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("name is required"))
		return
	}

	player, err := h.authService.Register(r.Context(), req.Name)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RegisterResponse{
		ID:    string(player.ID),
		Name:  player.Name,
		Token: player.Token,
	})
}

// GetState handles GET /player_data/{ref}
// The path segment may be either a token or a display name; scores include
// passive income projected to now without persisting it.
func (h *PlayerHandler) GetState(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["ref"]

	player, err := h.gameController.PlayerState(r.Context(), ref)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerStateFromModel(player))
}

// TokenValid handles GET /token_valid
// Returns a bare JSON boolean so the client can probe a stored token.
func (h *PlayerHandler) TokenValid(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)

	_, err := h.authService.ValidateToken(r.Context(), token)
	switch {
	case err == nil:
		response.JSON(w, http.StatusOK, true)
	case errors.Is(err, model.ErrInvalidToken):
		response.JSON(w, http.StatusOK, false)
	default:
		apierr.WriteError(w, err)
	}
}
