package handler

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/tapforge/clicker-server/internal/api/apierr"
	"github.com/tapforge/clicker-server/internal/api/middleware"
	"github.com/tapforge/clicker-server/internal/api/request"
	"github.com/tapforge/clicker-server/internal/api/response"
	"github.com/tapforge/clicker-server/internal/model"
	"github.com/tapforge/clicker-server/internal/services/game"
	"github.com/tapforge/clicker-server/internal/services/generator"
)

// maxBatchSize bounds a single action batch
const maxBatchSize = 1000

// GameHandler handles the action-batch and catalog endpoints
type GameHandler struct {
	gameController *game.Controller
	generator      generator.Generator
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController *game.Controller, gen generator.Generator) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		generator:      gen,
	}
}

// SubmitActions handles POST /game/actions
func (h *GameHandler) SubmitActions(w http.ResponseWriter, r *http.Request) {
	var req request.ActionBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if len(req.Actions) > maxBatchSize {
		apierr.WriteError(w, apierr.NewInvalidRequestError("action batch too large"))
		return
	}

	batch := make([]model.Action, len(req.Actions))
	for i, a := range req.Actions {
		batch[i] = model.Action{
			Type: model.ActionType(a.Type),
			Data: model.ActionData{UpgradeID: a.Data.UpgradeID},
		}
	}

	token := middleware.ExtractToken(r)
	player, err := h.gameController.SubmitActions(r.Context(), token, batch)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerStateFromModel(player))
}

// Catalog handles GET /upgrades
// Prices are computed for the authenticated player's current levels.
func (h *GameHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	catalog := h.gameController.Catalog()

	upgrades := make([]response.UpgradeSpec, 0, len(catalog))
	for id, spec := range catalog {
		level := player.UpgradeLevel(id)
		upgrades = append(upgrades, response.UpgradeSpec{
			ID:             id,
			BaseCost:       spec.BaseCost,
			CostMultiplier: spec.CostMultiplier,
			PpcIncrease:    spec.PpcIncrease,
			PpsIncrease:    spec.PpsIncrease,
			Level:          level,
			NextCost:       spec.CostAtLevel(level),
		})
	}
	sort.Slice(upgrades, func(i, j int) bool {
		return upgrades[i].BaseCost < upgrades[j].BaseCost
	})

	response.JSON(w, http.StatusOK, response.CatalogResponse{Upgrades: upgrades})
}

// GenerateUpgrade handles POST /generate_upgrade
func (h *GameHandler) GenerateUpgrade(w http.ResponseWriter, r *http.Request) {
	var req request.GenerateUpgradeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
			return
		}
	}

	suggestion, err := h.generator.Generate(r.Context(), req.Theme)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SuggestionFromService(suggestion))
}
