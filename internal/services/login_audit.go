package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/AnshRaj112/clima-backend/internal/models"
)

// Fail reasons recorded in the audit log.
const (
	LoginFailMissingFields = "missing_fields"
	LoginFailInvalid       = "invalid_credentials"
)

// LoginAuditor records admin login attempts.
type LoginAuditor interface {
	Record(ctx context.Context, attempt models.AdminLoginAttempt) error
	Recent(ctx context.Context, limit int) ([]models.AdminLoginAttempt, error)
}

var (
	_ LoginAuditor = NoopLoginAuditor{}
	_ LoginAuditor = (*PostgresLoginAuditor)(nil)
)

// NoopLoginAuditor drops every attempt. Used when PostgreSQL is not configured.
type NoopLoginAuditor struct{}

func (NoopLoginAuditor) Record(context.Context, models.AdminLoginAttempt) error { return nil }

func (NoopLoginAuditor) Recent(context.Context, int) ([]models.AdminLoginAttempt, error) {
	return []models.AdminLoginAttempt{}, nil
}

// PostgresLoginAuditor appends attempts to the admin_login_log table.
type PostgresLoginAuditor struct {
	db *sql.DB
}

// NewPostgresLoginAuditor wraps an open *sql.DB.
func NewPostgresLoginAuditor(db *sql.DB) *PostgresLoginAuditor {
	return &PostgresLoginAuditor{db: db}
}

// EnsureSchema creates the audit table if it doesn't exist.
func (a *PostgresLoginAuditor) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS admin_login_log (
			id UUID PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			ip_address VARCHAR(255),
			user_agent TEXT,
			success BOOLEAN NOT NULL,
			fail_reason VARCHAR(50),
			attempted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_admin_login_log_attempted_at ON admin_login_log(attempted_at DESC)`,
	}

	for _, q := range queries {
		if _, err := a.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create admin_login_log: %w", err)
		}
	}
	return nil
}

func (a *PostgresLoginAuditor) Record(ctx context.Context, attempt models.AdminLoginAttempt) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}

	_, err := a.db.ExecContext(ctx,
		`INSERT INTO admin_login_log (id, username, ip_address, user_agent, success, fail_reason, attempted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		attempt.ID, attempt.Username, attempt.IPAddress, nullIfEmpty(attempt.UserAgent),
		attempt.Success, nullIfEmpty(attempt.FailReason), attempt.AttemptedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert admin login attempt: %w", err)
	}
	return nil
}

// Recent returns the latest attempts, newest first.
func (a *PostgresLoginAuditor) Recent(ctx context.Context, limit int) ([]models.AdminLoginAttempt, error) {
	if limit <= 0 || limit > MaxPageLimit {
		limit = DefaultPageLimit
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT id, username, COALESCE(ip_address, ''), COALESCE(user_agent, ''), success, COALESCE(fail_reason, ''), attempted_at
		 FROM admin_login_log ORDER BY attempted_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query admin login attempts: %w", err)
	}
	defer rows.Close()

	attempts := []models.AdminLoginAttempt{}
	for rows.Next() {
		var at models.AdminLoginAttempt
		if err := rows.Scan(&at.ID, &at.Username, &at.IPAddress, &at.UserAgent, &at.Success, &at.FailReason, &at.AttemptedAt); err != nil {
			return nil, fmt.Errorf("scan admin login attempt: %w", err)
		}
		attempts = append(attempts, at)
	}
	return attempts, rows.Err()
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
