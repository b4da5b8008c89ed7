package absencehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"depuente/internal/domain/absence"
	"depuente/internal/domain/audit"
	"depuente/internal/domain/auth"
	"depuente/internal/domain/core"
	"depuente/internal/platform/requestctx"
	"depuente/internal/transport/http/api"
	"depuente/internal/transport/http/middleware"
	"depuente/internal/transport/http/shared"
)

type Handler struct {
	Absences *absence.Service
	Core     *core.Store
	Audit    *audit.Service
}

func NewHandler(absences *absence.Service, coreStore *core.Store, auditSvc *audit.Service) *Handler {
	return &Handler{Absences: absences, Core: coreStore, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/absences", h.HandleList)
		r.Post("/absences", h.HandleCreate)
		r.Put("/absences/{absenceID}", h.HandleUpdate)
		r.Delete("/absences/{absenceID}", h.HandleDelete)
		r.Post("/absences/{absenceID}/adjust", h.HandleAdjust)
		r.Get("/calendar", h.HandleCalendar)
		r.Get("/summary", h.HandleSummary)
	})
}

type absencePayload struct {
	TeamID    string `json:"teamId"`
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Note      string `json:"note"`
}

type adjustPayload struct {
	Days int `json:"days"`
}

// scopedTeams resolves which teams the caller may see. Admins see every
// team; members see only teams they actively belong to. An explicit
// teamId query param narrows the scope when the caller has access to it.
func (h *Handler) scopedTeams(r *http.Request, user auth.UserContext) ([]string, error) {
	var teams []core.Team
	var err error
	if user.IsAdmin() {
		teams, err = h.Core.ListTeams(r.Context())
	} else {
		teams, err = h.Core.TeamsForProfile(r.Context(), user.ProfileID)
	}
	if err != nil {
		return nil, err
	}

	requested := r.URL.Query().Get("teamId")
	ids := make([]string, 0, len(teams))
	for _, team := range teams {
		if requested != "" && team.ID != requested {
			continue
		}
		ids = append(ids, team.ID)
	}
	return ids, nil
}

func windowFromQuery(r *http.Request) (absence.Date, absence.Date, *shared.Validator) {
	v := shared.NewValidator()
	from, okFrom := v.Date("from", r.URL.Query().Get("from"))
	to, okTo := v.Date("to", r.URL.Query().Get("to"))
	if okFrom && okTo {
		v.DateOrder("from", from, "to", to)
	}
	return from, to, v
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	from, to, v := windowFromQuery(r)
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	teamIDs, err := h.scopedTeams(r, user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to resolve teams", requestctx.GetRequestID(r.Context()))
		return
	}

	records, err := h.Absences.ListWindow(r.Context(), teamIDs, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to list absences", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"absences": records, "count": len(records)}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	from, to, v := windowFromQuery(r)
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	teamIDs, err := h.scopedTeams(r, user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to resolve teams", requestctx.GetRequestID(r.Context()))
		return
	}

	events, err := h.Absences.Calendar(r.Context(), teamIDs, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to build calendar", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"events": events}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 2100 {
			api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be a four digit number", requestctx.GetRequestID(r.Context()))
			return
		}
		year = parsed
	}

	teamIDs, err := h.scopedTeams(r, user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to resolve teams", requestctx.GetRequestID(r.Context()))
		return
	}

	stats, err := h.Absences.YearlySummary(r.Context(), teamIDs, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to compute summary", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"year": year, "stats": stats}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) validateAbsence(payload absencePayload) (absence.Date, absence.Date, *shared.Validator) {
	v := shared.NewValidator()
	v.Required("teamId", payload.TeamID, "team is required")
	v.Enum("type", payload.Type, absence.KnownTypes(), "unknown absence type")
	start, okStart := v.Date("startDate", payload.StartDate)
	end, okEnd := v.Date("endDate", payload.EndDate)
	if okStart && okEnd {
		v.DateOrder("startDate", start, "endDate", end)
		v.DateRangeCap("startDate", start, "endDate", end)
	}
	return start, end, v
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload absencePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	start, end, v := h.validateAbsence(payload)
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	actor := absence.Actor{ProfileID: user.ProfileID, Admin: user.IsAdmin()}
	note := shared.Sanitize(payload.Note, 500)
	id, err := h.Absences.Create(r.Context(), actor, payload.TeamID, payload.Type, start, end, note)
	if err != nil {
		h.failServiceError(w, r, err)
		return
	}

	h.recordAudit(r, user.ProfileID, "absence.create", id, map[string]any{
		"teamId": payload.TeamID, "type": payload.Type,
		"startDate": start.String(), "endDate": end.String(),
	})
	api.Created(w, map[string]string{"id": id}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	absenceID := chi.URLParam(r, "absenceID")

	var payload absencePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	start, end, v := h.validateAbsence(payload)
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	actor := absence.Actor{ProfileID: user.ProfileID, Admin: user.IsAdmin()}
	note := shared.Sanitize(payload.Note, 500)
	if err := h.Absences.Update(r.Context(), actor, absenceID, payload.TeamID, payload.Type, start, end, note); err != nil {
		h.failServiceError(w, r, err)
		return
	}

	h.recordAudit(r, user.ProfileID, "absence.update", absenceID, map[string]any{
		"teamId": payload.TeamID, "type": payload.Type,
		"startDate": start.String(), "endDate": end.String(),
	})
	api.Success(w, map[string]string{"id": absenceID}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleAdjust(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	absenceID := chi.URLParam(r, "absenceID")

	var payload adjustPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}
	if payload.Days == 0 || payload.Days < -30 || payload.Days > 30 {
		api.Fail(w, http.StatusBadRequest, "invalid_shift", "days must be between -30 and 30 and non-zero", requestctx.GetRequestID(r.Context()))
		return
	}

	actor := absence.Actor{ProfileID: user.ProfileID, Admin: user.IsAdmin()}
	record, err := h.Absences.AdjustDates(r.Context(), actor, absenceID, payload.Days)
	if err != nil {
		h.failServiceError(w, r, err)
		return
	}

	h.recordAudit(r, user.ProfileID, "absence.adjust", absenceID, map[string]any{
		"days": payload.Days, "startDate": record.StartDate.String(), "endDate": record.EndDate.String(),
	})
	api.Success(w, map[string]any{"absence": record}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	absenceID := chi.URLParam(r, "absenceID")

	actor := absence.Actor{ProfileID: user.ProfileID, Admin: user.IsAdmin()}
	if err := h.Absences.Delete(r.Context(), actor, absenceID); err != nil {
		h.failServiceError(w, r, err)
		return
	}

	h.recordAudit(r, user.ProfileID, "absence.delete", absenceID, nil)
	api.Success(w, map[string]string{"id": absenceID, "status": "deleted"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) failServiceError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestctx.GetRequestID(r.Context())
	switch {
	case errors.Is(err, absence.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "absence not found", requestID)
	case errors.Is(err, absence.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to modify this absence", requestID)
	case errors.Is(err, absence.ErrNotMember):
		api.Fail(w, http.StatusForbidden, "not_member", "not an active member of this team", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "query_error", "operation failed", requestID)
	}
}

func (h *Handler) recordAudit(r *http.Request, actorID, action, entityID string, details map[string]any) {
	requestID := requestctx.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), actorID, action, "absence", entityID, requestID, shared.ClientIP(r), details); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
