package feedback

import (
	"context"
	"time"

	"depuente/internal/platform/querier"
)

// BugReport is a user-submitted problem report with the page context it was
// filed from.
type BugReport struct {
	ID          string    `json:"id"`
	ReporterID  string    `json:"reporterId"`
	Description string    `json:"description"`
	Page        string    `json:"page,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, reporterID, description, page, userAgent string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO bug_reports (reporter_id, description, page, user_agent)
    VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''))
    RETURNING id
  `, reporterID, description, page, userAgent).Scan(&id)
	return id, err
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]BugReport, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, reporter_id, description, COALESCE(page, ''), COALESCE(user_agent, ''), created_at
    FROM bug_reports
    ORDER BY created_at DESC
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []BugReport
	for rows.Next() {
		var report BugReport
		if err := rows.Scan(&report.ID, &report.ReporterID, &report.Description, &report.Page, &report.UserAgent, &report.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
