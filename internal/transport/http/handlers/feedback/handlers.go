package feedbackhandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"depuente/internal/domain/feedback"
	"depuente/internal/platform/requestctx"
	"depuente/internal/transport/http/api"
	"depuente/internal/transport/http/middleware"
	"depuente/internal/transport/http/shared"
)

type Handler struct {
	Feedback *feedback.Store
}

func NewHandler(store *feedback.Store) *Handler {
	return &Handler{Feedback: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		// Bug reports take free text, so they get a tighter window than the
		// global limiter.
		r.With(middleware.RateLimit(5, time.Minute)).Post("/bug-reports", h.HandleCreate)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireAdmin)
		r.Get("/admin/bug-reports", h.HandleList)
	})
}

type bugReportPayload struct {
	Description string `json:"description"`
	Page        string `json:"page"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload bugReportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	description := shared.Sanitize(payload.Description, 2000)
	if description == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_description", "description is required", requestctx.GetRequestID(r.Context()))
		return
	}

	page := shared.Sanitize(payload.Page, 300)
	userAgent := shared.Sanitize(r.UserAgent(), 300)
	id, err := h.Feedback.Create(r.Context(), user.ProfileID, description, page, userAgent)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to store bug report", requestctx.GetRequestID(r.Context()))
		return
	}

	api.Created(w, map[string]string{"id": id}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	reports, err := h.Feedback.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to list bug reports", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"reports": reports, "limit": page.Limit, "offset": page.Offset}, requestctx.GetRequestID(r.Context()))
}
