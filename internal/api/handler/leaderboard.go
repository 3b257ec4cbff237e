package handler

import (
	"net/http"

	"github.com/tapforge/clicker-server/internal/api/apierr"
	"github.com/tapforge/clicker-server/internal/api/response"
	"github.com/tapforge/clicker-server/internal/services/leaderboard"
)

// LeaderboardHandler handles the leaderboard endpoint
type LeaderboardHandler struct {
	service *leaderboard.Service
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(service *leaderboard.Service) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// Get handles GET /leaderboard
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Top(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(entries))
}
