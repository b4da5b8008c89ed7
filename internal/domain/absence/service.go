package absence

import (
	"context"
	"errors"

	"depuente/internal/domain/core"
)

var (
	ErrNotFound  = errors.New("absence not found")
	ErrForbidden = errors.New("forbidden")
	ErrNotMember = errors.New("not an active member of team")
)

// Actor is the authenticated user performing an operation. Members may only
// touch their own absences; admins may touch anyone's.
type Actor struct {
	ProfileID string
	Admin     bool
}

type Service struct {
	Store *Store
	Core  *core.Store
}

func NewService(store *Store, coreStore *core.Store) *Service {
	return &Service{Store: store, Core: coreStore}
}

// ListWindow returns the deduplicated absences overlapping [from, to] for the
// given teams.
func (s *Service) ListWindow(ctx context.Context, teamIDs []string, from, to Date) ([]Record, error) {
	records, err := s.Store.ListWindow(ctx, teamIDs, from, to)
	if err != nil {
		return nil, err
	}
	return Deduplicate(records), nil
}

// Calendar builds the renderable event list for a date window: deduplicated
// absences for the teams plus global holidays.
func (s *Service) Calendar(ctx context.Context, teamIDs []string, from, to Date) ([]Event, error) {
	records, err := s.ListWindow(ctx, teamIDs, from, to)
	if err != nil {
		return nil, err
	}
	holidays, err := s.Store.ListHolidays(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return ProjectEvents(records, holidays), nil
}

// YearlySummary computes the stats for one calendar year.
func (s *Service) YearlySummary(ctx context.Context, teamIDs []string, year int) (YearlyStats, error) {
	from := NewDate(year, 1, 1)
	to := NewDate(year, 12, 31)
	records, err := s.ListWindow(ctx, teamIDs, from, to)
	if err != nil {
		return YearlyStats{}, err
	}
	return ComputeYearlyStats(records), nil
}

func (s *Service) Create(ctx context.Context, actor Actor, teamID, absenceType string, start, end Date, note string) (string, error) {
	member, err := s.Core.IsActiveMember(ctx, actor.ProfileID, teamID)
	if err != nil {
		return "", err
	}
	if !member && !actor.Admin {
		return "", ErrNotMember
	}
	return s.Store.Create(ctx, actor.ProfileID, teamID, absenceType, start, end, note)
}

func (s *Service) Update(ctx context.Context, actor Actor, absenceID, teamID, absenceType string, start, end Date, note string) error {
	if err := s.authorize(ctx, actor, absenceID); err != nil {
		return err
	}
	return s.Store.Update(ctx, absenceID, teamID, absenceType, start, end, note)
}

func (s *Service) Delete(ctx context.Context, actor Actor, absenceID string) error {
	if err := s.authorize(ctx, actor, absenceID); err != nil {
		return err
	}
	return s.Store.Delete(ctx, absenceID)
}

// AdjustDates shifts both ends of an absence by days (may be negative), the
// quick "+/- n days" action in the detail view.
func (s *Service) AdjustDates(ctx context.Context, actor Actor, absenceID string, days int) (Record, error) {
	record, err := s.Store.GetByID(ctx, absenceID)
	if err != nil {
		return Record{}, ErrNotFound
	}
	if record.PersonID != actor.ProfileID && !actor.Admin {
		return Record{}, ErrForbidden
	}
	start := record.StartDate.Shift(days)
	end := record.EndDate.Shift(days)
	if err := s.Store.UpdateDates(ctx, absenceID, start, end); err != nil {
		return Record{}, err
	}
	record.StartDate = start
	record.EndDate = end
	record.BusinessDays = CountBusinessDays(start, end)
	return record, nil
}

func (s *Service) authorize(ctx context.Context, actor Actor, absenceID string) error {
	record, err := s.Store.GetByID(ctx, absenceID)
	if err != nil {
		return ErrNotFound
	}
	if record.PersonID != actor.ProfileID && !actor.Admin {
		return ErrForbidden
	}
	return nil
}
