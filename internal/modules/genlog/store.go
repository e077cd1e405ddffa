package genlog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store writes generation events to Postgres.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Record inserts ev. An event id that already exists is silently skipped.
func (s *Store) Record(ctx context.Context, ev Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO generation_events
			(id, request_id, model, prompt_style, outcome, upstream_status, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, ev.ID, ev.RequestID, ev.Model, ev.PromptStyle, ev.Outcome, ev.UpstreamStatus, ev.LatencyMs, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert generation event: %w", err)
	}
	return nil
}

// CountByOutcome returns how many events were recorded per outcome.
func (s *Store) CountByOutcome(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.Query(ctx, `SELECT outcome, COUNT(*) FROM generation_events GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		out[outcome] = n
	}
	return out, rows.Err()
}
