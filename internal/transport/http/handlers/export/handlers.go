package exporthandler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"depuente/internal/domain/absence"
	"depuente/internal/domain/core"
	"depuente/internal/domain/export"
	"depuente/internal/platform/requestctx"
	"depuente/internal/transport/http/api"
	"depuente/internal/transport/http/middleware"
	"depuente/internal/transport/http/shared"
)

type Handler struct {
	Absences *absence.Service
	Core     *core.Store
}

func NewHandler(absences *absence.Service, coreStore *core.Store) *Handler {
	return &Handler{Absences: absences, Core: coreStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/export/absences", h.HandleAbsencesExcel)
		r.Get("/export/summary", h.HandleSummaryPDF)
	})
}

func (h *Handler) scopedTeams(r *http.Request) ([]string, error) {
	user, _ := middleware.GetUser(r.Context())
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
	ids := make([]string, 0, len(teams))
	for _, team := range teams {
		ids = append(ids, team.ID)
	}
	return ids, nil
}

func (h *Handler) HandleAbsencesExcel(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	from, okFrom := v.Date("from", r.URL.Query().Get("from"))
	to, okTo := v.Date("to", r.URL.Query().Get("to"))
	if okFrom && okTo {
		v.DateOrder("from", from, "to", to)
	}
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	teamIDs, err := h.scopedTeams(r)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to resolve teams", requestctx.GetRequestID(r.Context()))
		return
	}

	records, err := h.Absences.ListWindow(r.Context(), teamIDs, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to list absences", requestctx.GetRequestID(r.Context()))
		return
	}

	workbook, err := export.AbsencesWorkbook(records)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_error", "failed to build workbook", requestctx.GetRequestID(r.Context()))
		return
	}

	filename := fmt.Sprintf("ausencias_%s_%s.xlsx", from, to)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}

func (h *Handler) HandleSummaryPDF(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 2100 {
			api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be a four digit number", requestctx.GetRequestID(r.Context()))
			return
		}
		year = parsed
	}

	teamIDs, err := h.scopedTeams(r)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to resolve teams", requestctx.GetRequestID(r.Context()))
		return
	}

	stats, err := h.Absences.YearlySummary(r.Context(), teamIDs, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_error", "failed to compute summary", requestctx.GetRequestID(r.Context()))
		return
	}

	doc, err := export.SummaryPDF(year, stats)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_error", "failed to build report", requestctx.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("resumen_%d.pdf", year)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
