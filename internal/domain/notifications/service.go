package notifications

import (
	"context"
	"log/slog"
	"time"

	"depuente/internal/domain/absence"
	"depuente/internal/domain/core"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	Absences *absence.Service
	Core     *core.Store
	Mailer   Mailer
	From     string
	AppURL   string
}

func NewService(absences *absence.Service, coreStore *core.Store, mailer Mailer, from, appURL string) *Service {
	return &Service{Absences: absences, Core: coreStore, Mailer: mailer, From: from, AppURL: appURL}
}

type DailySummaryResult struct {
	Skipped        bool   `json:"skipped"`
	Reason         string `json:"reason,omitempty"`
	Date           string `json:"date"`
	AbsentCount    int    `json:"absentCount"`
	AvailableCount int    `json:"availableCount"`
	EmailsSent     int    `json:"emailsSent"`
}

// SendDailySummary sends the company-wide digest for today. Weekends are
// skipped, matching the cron behavior the digest replaces.
func (s *Service) SendDailySummary(ctx context.Context, today absence.Date) (DailySummaryResult, error) {
	result := DailySummaryResult{Date: today.String()}

	weekday := today.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		result.Skipped = true
		result.Reason = "weekend"
		return result, nil
	}

	teams, err := s.Core.ListTeams(ctx)
	if err != nil {
		return result, err
	}
	teamIDs := make([]string, 0, len(teams))
	for _, team := range teams {
		teamIDs = append(teamIDs, team.ID)
	}

	records, err := s.Absences.ListWindow(ctx, teamIDs, today, today)
	if err != nil {
		return result, err
	}

	recipients, err := s.Core.DailyRecipients(ctx)
	if err != nil {
		return result, err
	}

	digest := BuildDailyDigest(today, records, recipients)
	result.AbsentCount = len(digest.Absent)
	result.AvailableCount = len(digest.Available)

	body := digest.HTML(s.AppURL)
	subject := digest.Subject()
	for _, recipient := range recipients {
		if err := s.Mailer.Send(ctx, s.From, recipient.Email, subject, body); err != nil {
			slog.Warn("daily summary send failed", "to", recipient.Email, "err", err)
			continue
		}
		result.EmailsSent++
	}

	return result, nil
}
