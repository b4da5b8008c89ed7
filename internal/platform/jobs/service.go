package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"depuente/internal/domain/absence"
	"depuente/internal/domain/notifications"
	"depuente/internal/platform/config"
)

const JobDailySummary = "daily_summary"

// Service runs background work off the request path and records every run in
// job_runs so admins can see whether the morning digest actually went out.
type Service struct {
	DB     *pgxpool.Pool
	Cfg    config.Config
	Notify *notifications.Service
	queue  chan job

	mu       sync.Mutex
	lastSent absence.Date
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, notify *notifications.Service) *Service {
	return &Service{
		DB:     db,
		Cfg:    cfg,
		Notify: notify,
		queue:  make(chan job, 32),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.DailySummaryEvery > 0 {
		go s.scheduleDailySummary(ctx, s.Cfg.DailySummaryEvery)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

// scheduleDailySummary checks once per interval whether the digest for today
// is due (configured hour reached, not already sent) and enqueues it.
func (s *Service) scheduleDailySummary(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			today := absence.DateOf(now)
			if now.Hour() < s.Cfg.DailySummaryHour {
				continue
			}
			if !s.markSent(today) {
				continue
			}
			queued := s.Enqueue(JobDailySummary, func(ctx context.Context) (any, error) {
				details, err := s.Notify.SendDailySummary(ctx, today)
				if err != nil {
					// Let the next tick retry today's digest.
					s.clearSent(today)
				}
				return details, err
			})
			if !queued {
				s.clearSent(today)
			}
		}
	}
}

// markSent claims today's digest slot so concurrent ticks cannot enqueue it
// twice. clearSent releases the claim when the digest did not actually go out.
func (s *Service) markSent(today absence.Date) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSent.Equal(today) {
		return false
	}
	s.lastSent = today
	return true
}

func (s *Service) clearSent(today absence.Date) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSent.Equal(today) {
		s.lastSent = absence.Date{}
	}
}
