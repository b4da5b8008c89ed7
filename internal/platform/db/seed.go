package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"depuente/internal/domain/auth"
	"depuente/internal/domain/core"
	"depuente/internal/platform/config"
)

// Seed makes sure a first admin profile exists so a fresh deployment can be
// logged into. Everything else (teams, memberships, holidays) is created
// through the API.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	return ensureAdminProfile(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminName, cfg.SeedAdminPassword)
}

func ensureAdminProfile(ctx context.Context, pool *pgxpool.Pool, email, fullName, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM profiles WHERE lower(email) = lower($1)", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return pool.QueryRow(ctx, `
    INSERT INTO profiles (email, full_name, password_hash, role)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, email, fullName, hash, core.RoleAdmin).Scan(&id)
}
