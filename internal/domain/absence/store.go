package absence

import (
	"context"
	"time"

	"depuente/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

// ListWindow returns absence rows overlapping [from, to] for the given teams.
// The join against active team memberships intentionally yields one row per
// membership of the owner, mirroring the reporting view this service grew out
// of; callers run Deduplicate before aggregating or rendering. BusinessDays
// is filled in with the same business-day count the rest of the service uses.
func (s *Store) ListWindow(ctx context.Context, teamIDs []string, from, to Date) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.profile_id, p.full_name, p.email, m.team_id, t.name,
           a.type, a.start_date, a.end_date, COALESCE(a.note, '')
    FROM absences a
    JOIN profiles p ON p.id = a.profile_id
    JOIN team_memberships m ON m.profile_id = a.profile_id AND m.status = 'active'
    JOIN teams t ON t.id = m.team_id
    WHERE m.team_id = ANY($1)
      AND a.start_date <= $3
      AND a.end_date >= $2
    ORDER BY a.start_date, a.id
  `, teamIDs, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var record Record
	var start, end time.Time
	if err := row.Scan(&record.ID, &record.PersonID, &record.PersonName, &record.Email,
		&record.TeamID, &record.TeamName, &record.Type, &start, &end, &record.Note); err != nil {
		return Record{}, err
	}
	record.StartDate = DateOf(start)
	record.EndDate = DateOf(end)
	record.BusinessDays = CountBusinessDays(record.StartDate, record.EndDate)
	return record, nil
}

// GetByID fetches one absence with its owning team context.
func (s *Store) GetByID(ctx context.Context, absenceID string) (Record, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT a.id, a.profile_id, p.full_name, p.email, a.team_id, t.name,
           a.type, a.start_date, a.end_date, COALESCE(a.note, '')
    FROM absences a
    JOIN profiles p ON p.id = a.profile_id
    JOIN teams t ON t.id = a.team_id
    WHERE a.id = $1
  `, absenceID)
	return scanRecord(row)
}

func (s *Store) Create(ctx context.Context, profileID, teamID, absenceType string, start, end Date, note string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO absences (profile_id, team_id, type, start_date, end_date, note)
    VALUES ($1,$2,$3,$4,$5,NULLIF($6,''))
    RETURNING id
  `, profileID, teamID, absenceType, start.String(), end.String(), note).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, absenceID, teamID, absenceType string, start, end Date, note string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE absences
    SET team_id = $2, type = $3, start_date = $4, end_date = $5, note = NULLIF($6,''), updated_at = now()
    WHERE id = $1
  `, absenceID, teamID, absenceType, start.String(), end.String(), note)
	return err
}

func (s *Store) UpdateDates(ctx context.Context, absenceID string, start, end Date) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE absences
    SET start_date = $2, end_date = $3, updated_at = now()
    WHERE id = $1
  `, absenceID, start.String(), end.String())
	return err
}

func (s *Store) Delete(ctx context.Context, absenceID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM absences WHERE id = $1", absenceID)
	return err
}

// ListHolidays returns global holidays overlapping [from, to].
func (s *Store) ListHolidays(ctx context.Context, from, to Date) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, title, start_date, end_date
    FROM holidays
    WHERE start_date <= $2 AND end_date >= $1
    ORDER BY start_date, id
  `, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var holiday Holiday
		var start, end time.Time
		if err := rows.Scan(&holiday.ID, &holiday.Title, &start, &end); err != nil {
			return nil, err
		}
		holiday.StartDate = DateOf(start)
		holiday.EndDate = DateOf(end)
		holidays = append(holidays, holiday)
	}
	return holidays, rows.Err()
}

func (s *Store) CreateHoliday(ctx context.Context, title string, start, end Date, createdBy string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO holidays (title, start_date, end_date, created_by)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, title, start.String(), end.String(), createdBy).Scan(&id)
	return id, err
}

func (s *Store) DeleteHoliday(ctx context.Context, holidayID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM holidays WHERE id = $1", holidayID)
	return err
}
