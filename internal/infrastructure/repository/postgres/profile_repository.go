package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

// ProfileRepository persists per-user profile entries as key/value rows.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, key)
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetProfile(ctx context.Context, userID, key string) (domain.ProfileEntry, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT user_id, key, value, updated_at
FROM profiles
WHERE user_id = $1 AND key = $2
`, userID, key)

	var entry domain.ProfileEntry
	err := row.Scan(&entry.UserID, &entry.Key, &entry.Value, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ProfileEntry{}, domain.WrapError(domain.ErrNotFound, "get profile", fmt.Errorf("profile key %q", key))
		}
		return domain.ProfileEntry{}, domain.WrapError(domain.ErrStoreUnavailable, "get profile", err)
	}
	return entry, nil
}

func (r *ProfileRepository) PutProfile(ctx context.Context, entry domain.ProfileEntry) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO profiles (user_id, key, value, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`, entry.UserID, entry.Key, entry.Value, time.Now().UTC())
	if err != nil {
		return domain.WrapError(domain.ErrStoreUnavailable, "put profile", err)
	}
	return nil
}

func (r *ProfileRepository) ListProfile(ctx context.Context, userID string) ([]domain.ProfileEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT user_id, key, value, updated_at
FROM profiles
WHERE user_id = $1
ORDER BY key
`, userID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStoreUnavailable, "list profile", err)
	}
	defer rows.Close()

	var entries []domain.ProfileEntry
	for rows.Next() {
		var entry domain.ProfileEntry
		if err := rows.Scan(&entry.UserID, &entry.Key, &entry.Value, &entry.UpdatedAt); err != nil {
			return nil, domain.WrapError(domain.ErrStoreUnavailable, "scan profile", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrStoreUnavailable, "list profile", err)
	}
	return entries, nil
}
