package auth

import (
	"context"
	"time"

	"depuente/internal/platform/querier"
)

// UserContext is what the auth middleware puts on the request context after
// validating a bearer token.
type UserContext struct {
	ProfileID string
	Role      string
	SessionID string
}

func (u UserContext) IsAdmin() bool { return u.Role == "admin" }

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateSession(ctx context.Context, profileID, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (profile_id, token_hash, expires_at)
    VALUES ($1,$2,$3)
  `, profileID, tokenHash, expires)
	return err
}

func (s *Store) SessionValid(ctx context.Context, profileID, tokenHash string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM sessions
    WHERE profile_id = $1 AND token_hash = $2 AND expires_at > now() AND revoked_at IS NULL
  `, profileID, tokenHash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) RevokeSession(ctx context.Context, profileID, tokenHash string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE sessions SET revoked_at = now()
    WHERE profile_id = $1 AND token_hash = $2
  `, profileID, tokenHash)
	return err
}

func (s *Store) UpdateLastLogin(ctx context.Context, profileID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE profiles SET last_login = now() WHERE id = $1", profileID)
	return err
}

func (s *Store) CreatePasswordReset(ctx context.Context, profileID, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO password_resets (profile_id, token_hash, expires_at)
    VALUES ($1,$2,$3)
  `, profileID, tokenHash, expires)
	return err
}

func (s *Store) PasswordResetProfileID(ctx context.Context, tokenHash string) (string, error) {
	var profileID string
	err := s.DB.QueryRow(ctx, `
    SELECT profile_id
    FROM password_resets
    WHERE token_hash = $1 AND expires_at > now() AND used_at IS NULL
  `, tokenHash).Scan(&profileID)
	return profileID, err
}

func (s *Store) MarkPasswordResetUsed(ctx context.Context, tokenHash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE password_resets SET used_at = now() WHERE token_hash = $1", tokenHash)
	return err
}

func (s *Store) UpdatePassword(ctx context.Context, profileID, hash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE profiles SET password_hash = $2, updated_at = now() WHERE id = $1", profileID, hash)
	return err
}

func (s *Store) PasswordHash(ctx context.Context, profileID string) (string, error) {
	var hash string
	err := s.DB.QueryRow(ctx, "SELECT password_hash FROM profiles WHERE id = $1", profileID).Scan(&hash)
	return hash, err
}
