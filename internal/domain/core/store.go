package core

import (
	"context"
	"time"

	"depuente/internal/platform/querier"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"

	MembershipActive   = "active"
	MembershipInactive = "inactive"
)

type Profile struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Role       string    `json:"role"`
	Active     bool      `json:"active"`
	DailyEmail bool      `json:"dailyEmail"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Membership struct {
	ID        string     `json:"id"`
	ProfileID string     `json:"profileId"`
	TeamID    string     `json:"teamId"`
	TeamName  string     `json:"teamName"`
	Status    string     `json:"status"`
	JoinedAt  time.Time  `json:"joinedAt"`
	LeftAt    *time.Time `json:"leftAt,omitempty"`
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const profileColumns = "id, email, full_name, role, active, daily_email, created_at, updated_at"

func scanProfile(row interface{ Scan(dest ...any) error }) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.Active, &p.DailyEmail, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) ProfileByID(ctx context.Context, profileID string) (*Profile, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+profileColumns+" FROM profiles WHERE id = $1", profileID)
	p, err := scanProfile(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+profileColumns+" FROM profiles WHERE lower(email) = lower($1)", email)
	p, err := scanProfile(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+profileColumns+" FROM profiles ORDER BY full_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Store) CreateProfile(ctx context.Context, email, fullName, passwordHash, role string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO profiles (email, full_name, password_hash, role)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, email, fullName, passwordHash, role).Scan(&id)
	return id, err
}

func (s *Store) UpdateRole(ctx context.Context, profileID, role string) error {
	_, err := s.DB.Exec(ctx, "UPDATE profiles SET role = $2, updated_at = now() WHERE id = $1", profileID, role)
	return err
}

func (s *Store) SetProfileActive(ctx context.Context, profileID string, active bool) error {
	_, err := s.DB.Exec(ctx, "UPDATE profiles SET active = $2, updated_at = now() WHERE id = $1", profileID, active)
	return err
}

// DailyRecipients lists active profiles subscribed to the daily digest.
func (s *Store) DailyRecipients(ctx context.Context) ([]Profile, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+profileColumns+" FROM profiles WHERE active AND daily_email ORDER BY full_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Store) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, created_at FROM teams ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// TeamsForProfile returns the teams where the profile has an active
// membership.
func (s *Store) TeamsForProfile(ctx context.Context, profileID string) ([]Team, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT t.id, t.name, t.created_at
    FROM teams t
    JOIN team_memberships m ON m.team_id = t.id
    WHERE m.profile_id = $1 AND m.status = 'active'
    ORDER BY t.name
  `, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *Store) IsActiveMember(ctx context.Context, profileID, teamID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM team_memberships
    WHERE profile_id = $1 AND team_id = $2 AND status = 'active'
  `, profileID, teamID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreateTeam(ctx context.Context, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "INSERT INTO teams (name) VALUES ($1) RETURNING id", name).Scan(&id)
	return id, err
}

func (s *Store) RenameTeam(ctx context.Context, teamID, name string) error {
	_, err := s.DB.Exec(ctx, "UPDATE teams SET name = $2 WHERE id = $1", teamID, name)
	return err
}

func (s *Store) DeleteTeam(ctx context.Context, teamID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM teams WHERE id = $1", teamID)
	return err
}

func (s *Store) AddMembership(ctx context.Context, profileID, teamID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO team_memberships (profile_id, team_id, status)
    VALUES ($1,$2,'active')
    ON CONFLICT (profile_id, team_id)
      DO UPDATE SET status = 'active', left_at = NULL
    RETURNING id
  `, profileID, teamID).Scan(&id)
	return id, err
}

// SetMembershipStatus activates or deactivates a membership; deactivation
// stamps left_at.
func (s *Store) SetMembershipStatus(ctx context.Context, membershipID, status string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE team_memberships
    SET status = $2,
        left_at = CASE WHEN $2 = 'inactive' THEN now() ELSE NULL END
    WHERE id = $1
  `, membershipID, status)
	return err
}

func (s *Store) MembershipsForProfile(ctx context.Context, profileID string) ([]Membership, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT m.id, m.profile_id, m.team_id, t.name, m.status, m.joined_at, m.left_at
    FROM team_memberships m
    JOIN teams t ON t.id = m.team_id
    WHERE m.profile_id = $1
    ORDER BY m.joined_at
  `, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.ID, &m.ProfileID, &m.TeamID, &m.TeamName, &m.Status, &m.JoinedAt, &m.LeftAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}
