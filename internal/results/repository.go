// Package results persists finished match outcomes. The live session store
// forgets a session at teardown; this is the durable record that survives.
package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// ErrDuplicateResult reports a second insert for the same session.
var ErrDuplicateResult = errors.New("match result already recorded")

// MatchResult is one finished match.
type MatchResult struct {
	ID         int64
	SessionID  string
	WinnerSlot int
	Reason     string
	Turns      int
	StartedAt  time.Time
	EndedAt    time.Time
}

// Duration is derived, not stored independently.
func (r *MatchResult) Duration() time.Duration { return r.EndedAt.Sub(r.StartedAt) }

type Repository interface {
	SaveResult(ctx context.Context, res *MatchResult) error
	RecentResults(ctx context.Context, limit int) ([]*MatchResult, error)
}

type repository struct {
	db *sql.DB
}

// NewRepository opens a Postgres-backed repository, or a memory fallback
// when no DSN is configured.
func NewRepository(databaseURL string) (Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewMemoryRepository(), nil
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping results db: %w", err)
	}
	return &repository{db: db}, nil
}

func (r *repository) SaveResult(ctx context.Context, res *MatchResult) error {
	if res == nil {
		return fmt.Errorf("nil match result payload")
	}

	const query = `
		INSERT INTO match_results (
			session_id,
			winner_slot,
			reason,
			turns,
			started_at,
			ended_at,
			duration_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO NOTHING
		RETURNING id`

	var id sql.NullInt64
	err := r.db.QueryRowContext(
		ctx,
		query,
		res.SessionID,
		res.WinnerSlot,
		res.Reason,
		res.Turns,
		res.StartedAt,
		res.EndedAt,
		res.Duration().Milliseconds(),
	).Scan(&id)
	if err == sql.ErrNoRows || (err == nil && !id.Valid) {
		return ErrDuplicateResult
	}
	if err != nil {
		return fmt.Errorf("insert match result: %w", err)
	}
	res.ID = id.Int64
	return nil
}

func (r *repository) RecentResults(ctx context.Context, limit int) ([]*MatchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT
			id,
			session_id,
			winner_slot,
			reason,
			turns,
			started_at,
			ended_at
		FROM match_results
		ORDER BY ended_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select match results: %w", err)
	}
	defer rows.Close()

	out := make([]*MatchResult, 0, limit)
	for rows.Next() {
		var res MatchResult
		if err := rows.Scan(
			&res.ID,
			&res.SessionID,
			&res.WinnerSlot,
			&res.Reason,
			&res.Turns,
			&res.StartedAt,
			&res.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}
