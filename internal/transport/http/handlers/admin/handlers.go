package adminhandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"depuente/internal/domain/absence"
	"depuente/internal/domain/audit"
	"depuente/internal/domain/auth"
	"depuente/internal/domain/core"
	"depuente/internal/domain/notifications"
	"depuente/internal/platform/jobs"
	"depuente/internal/platform/requestctx"
	"depuente/internal/transport/http/api"
	"depuente/internal/transport/http/middleware"
	"depuente/internal/transport/http/shared"
)

type Handler struct {
	Core          *core.Store
	Absences      *absence.Service
	Auth          *auth.Store
	Audit         *audit.Service
	Notifications *notifications.Service
	Jobs          *jobs.Service
}

func NewHandler(coreStore *core.Store, absences *absence.Service, authStore *auth.Store, auditSvc *audit.Service, digest *notifications.Service, jobSvc *jobs.Service) *Handler {
	return &Handler{
		Core:          coreStore,
		Absences:      absences,
		Auth:          authStore,
		Audit:         auditSvc,
		Notifications: digest,
		Jobs:          jobSvc,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/holidays", h.HandleListHolidays)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireAdmin)

		r.Get("/admin/people", h.HandleListPeople)
		r.Post("/admin/people/invite", h.HandleInvite)
		r.Put("/admin/people/{profileID}/role", h.HandleUpdateRole)
		r.Put("/admin/people/{profileID}/active", h.HandleSetActive)

		r.Get("/admin/teams", h.HandleListTeams)
		r.Post("/admin/teams", h.HandleCreateTeam)
		r.Put("/admin/teams/{teamID}", h.HandleRenameTeam)
		r.Delete("/admin/teams/{teamID}", h.HandleDeleteTeam)
		r.Post("/admin/teams/{teamID}/members", h.HandleAddMembership)
		r.Put("/admin/memberships/{membershipID}/status", h.HandleSetMembershipStatus)

		r.Post("/holidays", h.HandleCreateHoliday)
		r.Delete("/holidays/{holidayID}", h.HandleDeleteHoliday)

		r.Post("/admin/daily-summary/run", h.HandleRunDailySummary)
		r.Get("/admin/audit", h.HandleListAudit)
	})
}

func (h *Handler) recordAudit(r *http.Request, action, entityType, entityID string, details map[string]any) {
	user, _ := middleware.GetUser(r.Context())
	requestID := requestctx.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), user.ProfileID, action, entityType, entityID, requestID, shared.ClientIP(r), details); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

// --- people ---

type invitePayload struct {
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	Role         string `json:"role"`
	TempPassword string `json:"tempPassword"`
}

type rolePayload struct {
	Role string `json:"role"`
}

func (h *Handler) HandleListPeople(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Core.ListProfiles(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to list people", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"people": profiles, "count": len(profiles)}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	var payload invitePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if !shared.ValidEmail(payload.Email) {
		v.Add("email", "valid email required")
	}
	v.Required("fullName", payload.FullName, "full name is required")
	v.Enum("role", payload.Role, []string{core.RoleAdmin, core.RoleMember}, "role must be admin or member")
	if len(payload.TempPassword) < 8 {
		v.Add("tempPassword", "temp password must be at least 8 characters")
	}
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	hash, err := auth.HashPassword(payload.TempPassword)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to hash password", requestctx.GetRequestID(r.Context()))
		return
	}

	fullName := shared.Sanitize(payload.FullName, 120)
	profileID, err := h.Core.CreateProfile(r.Context(), payload.Email, fullName, hash, payload.Role)
	if err != nil {
		api.Fail(w, http.StatusConflict, "create_failed", "could not create profile, email may already exist", requestctx.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "people.invite", "profile", profileID, map[string]any{"email": payload.Email, "role": payload.Role})
	api.Created(w, map[string]string{"id": profileID}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileID")

	var payload rolePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}
	if payload.Role != core.RoleAdmin && payload.Role != core.RoleMember {
		api.Fail(w, http.StatusBadRequest, "invalid_role", "role must be admin or member", requestctx.GetRequestID(r.Context()))
		return
	}

	if err := h.Core.UpdateRole(r.Context(), profileID, payload.Role); err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to update role", requestctx.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "people.role", "profile", profileID, map[string]any{"role": payload.Role})
	api.Success(w, map[string]string{"id": profileID, "role": payload.Role}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileID")

	var payload struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	if err := h.Core.SetProfileActive(r.Context(), profileID, payload.Active); err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to update profile", requestctx.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "people.active", "profile", profileID, map[string]any{"active": payload.Active})
	api.Success(w, map[string]any{"id": profileID, "active": payload.Active}, requestctx.GetRequestID(r.Context()))
}

// --- teams ---

type teamPayload struct {
	Name string `json:"name"`
}

func (h *Handler) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.Core.ListTeams(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to list teams", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"teams": teams}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var payload teamPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	name := shared.Sanitize(payload.Name, 80)
	if name == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_name", "team name is required", requestctx.GetRequestID(r.Context()))
		return
	}

	teamID, err := h.Core.CreateTeam(r.Context(), name)
	if err != nil {
		api.Fail(w, http.StatusConflict, "create_failed", "could not create team", requestctx.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "team.create", "team", teamID, map[string]any{"name": name})
	api.Created(w, map[string]string{"id": teamID, "name": name}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleRenameTeam(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	var payload teamPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	name := shared.Sanitize(payload.Name, 80)
	if name == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_name", "team name is required", requestctx.GetRequestID(r.Context()))
		return
	}

	if err := h.Core.RenameTeam(r.Context(), teamID, name); err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to rename team", requestctx.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "team.rename", "team", teamID, map[string]any{"name": name})
	api.Success(w, map[string]string{"id": teamID, "name": name}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	if err := h.Core.DeleteTeam(r.Context(), teamID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to delete team", requestctx.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "team.delete", "team", teamID, nil)
	api.Success(w, map[string]string{"id": teamID, "status": "deleted"}, requestctx.GetRequestID(r.Context()))
}

// --- memberships ---

type membershipPayload struct {
	ProfileID string `json:"profileId"`
}

type membershipStatusPayload struct {
	Status string `json:"status"`
}

func (h *Handler) HandleAddMembership(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	var payload membershipPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}
	if payload.ProfileID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_profile", "profileId is required", requestctx.GetRequestID(r.Context()))
		return
	}

	membershipID, err := h.Core.AddMembership(r.Context(), payload.ProfileID, teamID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to add membership", requestctx.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "membership.add", "membership", membershipID, map[string]any{"profileId": payload.ProfileID, "teamId": teamID})
	api.Created(w, map[string]string{"id": membershipID}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleSetMembershipStatus(w http.ResponseWriter, r *http.Request) {
	membershipID := chi.URLParam(r, "membershipID")

	var payload membershipStatusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}
	if payload.Status != core.MembershipActive && payload.Status != core.MembershipInactive {
		api.Fail(w, http.StatusBadRequest, "invalid_status", "status must be active or inactive", requestctx.GetRequestID(r.Context()))
		return
	}

	if err := h.Core.SetMembershipStatus(r.Context(), membershipID, payload.Status); err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to update membership", requestctx.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "membership.status", "membership", membershipID, map[string]any{"status": payload.Status})
	api.Success(w, map[string]string{"id": membershipID, "status": payload.Status}, requestctx.GetRequestID(r.Context()))
}

// --- holidays ---

type holidayPayload struct {
	Title     string `json:"title"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (h *Handler) HandleListHolidays(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	from, okFrom := v.Date("from", r.URL.Query().Get("from"))
	to, okTo := v.Date("to", r.URL.Query().Get("to"))
	if okFrom && okTo {
		v.DateOrder("from", from, "to", to)
	}
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	holidays, err := h.Absences.Store.ListHolidays(r.Context(), from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to list holidays", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"holidays": holidays}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload holidayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	start, okStart := v.Date("startDate", payload.StartDate)
	end, okEnd := v.Date("endDate", payload.EndDate)
	if okStart && okEnd {
		v.DateOrder("startDate", start, "endDate", end)
		v.DateRangeCap("startDate", start, "endDate", end)
	}
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	title := shared.Sanitize(payload.Title, 120)
	holidayID, err := h.Absences.Store.CreateHoliday(r.Context(), title, start, end, user.ProfileID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to create holiday", requestctx.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "holiday.create", "holiday", holidayID, map[string]any{
		"title": title, "startDate": start.String(), "endDate": end.String(),
	})
	api.Created(w, map[string]string{"id": holidayID}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	holidayID := chi.URLParam(r, "holidayID")

	if err := h.Absences.Store.DeleteHoliday(r.Context(), holidayID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to delete holiday", requestctx.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "holiday.delete", "holiday", holidayID, nil)
	api.Success(w, map[string]string{"id": holidayID, "status": "deleted"}, requestctx.GetRequestID(r.Context()))
}

// --- operations ---

func (h *Handler) HandleRunDailySummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.Jobs.RunNow(r.Context(), jobs.JobDailySummary, func(ctx context.Context) (any, error) {
		return h.Notifications.SendDailySummary(ctx, absence.DateOf(time.Now()))
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "digest_error", "failed to send daily summary", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	filter := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
		ActorID:    r.URL.Query().Get("actorId"),
	}

	total, err := h.Audit.Count(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to count audit events", requestctx.GetRequestID(r.Context()))
		return
	}
	events, err := h.Audit.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to list audit events", requestctx.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"events": events,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, requestctx.GetRequestID(r.Context()))
}
