package corehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"depuente/internal/domain/core"
	"depuente/internal/platform/requestctx"
	"depuente/internal/transport/http/api"
	"depuente/internal/transport/http/middleware"
)

type Handler struct {
	Core *core.Store
}

func NewHandler(coreStore *core.Store) *Handler {
	return &Handler{Core: coreStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", h.HandleMe)
		r.Get("/teams", h.HandleTeams)
	})
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	profile, err := h.Core.ProfileByID(r.Context(), user.ProfileID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "profile not found", requestctx.GetRequestID(r.Context()))
		return
	}

	teams, err := h.Core.TeamsForProfile(r.Context(), user.ProfileID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to list teams", requestctx.GetRequestID(r.Context()))
		return
	}

	memberships, err := h.Core.MembershipsForProfile(r.Context(), user.ProfileID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to list memberships", requestctx.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"profile":     profile,
		"teams":       teams,
		"memberships": memberships,
	}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var teams []core.Team
	var err error
	if user.IsAdmin() {
		teams, err = h.Core.ListTeams(r.Context())
	} else {
		teams, err = h.Core.TeamsForProfile(r.Context(), user.ProfileID)
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to list teams", requestctx.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{"teams": teams}, requestctx.GetRequestID(r.Context()))
}
