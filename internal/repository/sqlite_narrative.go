package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteNarrativeRepo implements NarrativeRepo using a SQLite database.
type SQLiteNarrativeRepo struct {
	db *sql.DB
}

// NewSQLiteNarrativeRepo creates a new SQLiteNarrativeRepo.
func NewSQLiteNarrativeRepo(db *sql.DB) *SQLiteNarrativeRepo {
	return &SQLiteNarrativeRepo{db: db}
}

func (r *SQLiteNarrativeRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var text string
	err := r.db.QueryRowContext(ctx, `SELECT text FROM narratives WHERE key = ?`, key).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading narrative: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE narratives SET hits = hits + 1, last_used_at = ? WHERE key = ?`, nowUTC(), key); err != nil {
		return "", false, fmt.Errorf("touching narrative: %w", err)
	}
	return text, true, nil
}

func (r *SQLiteNarrativeRepo) Put(ctx context.Context, key, model, text string) error {
	query := `INSERT INTO narratives (key, model, text, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET model = excluded.model, text = excluded.text, created_at = excluded.created_at`
	if _, err := r.db.ExecContext(ctx, query, key, model, text, nowUTC()); err != nil {
		return fmt.Errorf("inserting narrative: %w", err)
	}
	return nil
}

// Prune deletes narratives created more than olderThan ago.
func (r *SQLiteNarrativeRepo) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	res, err := r.db.ExecContext(ctx, `DELETE FROM narratives WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning narratives: %w", err)
	}
	return res.RowsAffected()
}

// NarrativeStats summarizes one cached narrative.
type NarrativeStats struct {
	Key        string
	Model      string
	Hits       int
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// Stats returns a cached narrative's bookkeeping, or ErrNotFound.
func (r *SQLiteNarrativeRepo) Stats(ctx context.Context, key string) (*NarrativeStats, error) {
	var (
		s          NarrativeStats
		createdAt  string
		lastUsedAt sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT key, model, hits, created_at, last_used_at FROM narratives WHERE key = ?`, key,
	).Scan(&s.Key, &s.Model, &s.Hits, &createdAt, &lastUsedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("narrative %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning narrative: %w", err)
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	s.LastUsedAt = parseNullableTime(lastUsedAt, time.RFC3339)
	return &s, nil
}

var _ NarrativeRepo = (*SQLiteNarrativeRepo)(nil)
