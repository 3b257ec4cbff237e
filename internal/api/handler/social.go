package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tapforge/clicker-server/internal/api/apierr"
	"github.com/tapforge/clicker-server/internal/api/middleware"
	"github.com/tapforge/clicker-server/internal/api/request"
	"github.com/tapforge/clicker-server/internal/api/response"
	"github.com/tapforge/clicker-server/internal/services/social"
)

// SocialHandler handles the friends endpoints
type SocialHandler struct {
	service *social.Service
}

// NewSocialHandler creates a new social handler
func NewSocialHandler(service *social.Service) *SocialHandler {
	return &SocialHandler{service: service}
}

// ListFriends handles GET /friends
func (h *SocialHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	friends, err := h.service.Friends(r.Context(), player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FriendsFromService(friends))
}

// ListRequests handles GET /friends/requests
func (h *SocialHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	reqs, err := h.service.PendingRequests(r.Context(), player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FriendRequestsFromService(reqs))
}

// SendRequest handles POST /friends/requests
func (h *SocialHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.FriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Name == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("name is required"))
		return
	}

	if err := h.service.SendRequest(r.Context(), player, req.Name); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// AcceptRequest handles POST /friends/requests/{name}/accept
func (h *SocialHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	name := mux.Vars(r)["name"]

	if err := h.service.Accept(r.Context(), player, name); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// DeclineRequest handles POST /friends/requests/{name}/decline
func (h *SocialHandler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	name := mux.Vars(r)["name"]

	if err := h.service.Decline(r.Context(), player, name); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}
