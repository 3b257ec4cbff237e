package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tapforge/clicker-server/internal/api/apierr"
	"github.com/tapforge/clicker-server/internal/api/response"
	"github.com/tapforge/clicker-server/internal/model"
	"github.com/tapforge/clicker-server/internal/services/auth"
)

// AdminHandler handles administrative endpoints
type AdminHandler struct {
	authService *auth.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *auth.Service) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// DeletePlayer handles DELETE /admin/players/{id}
func (h *AdminHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	if err := h.authService.DeletePlayer(r.Context(), id); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}
