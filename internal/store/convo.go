package store

import (
	"context"
	"database/sql"
	"fmt"

	"ultracoach/internal/model"
)

// AppendTurn inserts a conversation turn and returns its assigned sequence
// ID. Turns are append-only; they are never mutated after insert.
func (s *SQLiteStore) AppendTurn(ctx context.Context, speaker, text string) (int64, error) {
	if speaker != "user" && speaker != "agent" {
		return 0, fmt.Errorf("speaker must be user or agent, got %q: %w", speaker, ErrValidation)
	}
	if text == "" {
		return 0, fmt.Errorf("turn text is required: %w", ErrValidation)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO convo_turns (speaker, text, timestamp) VALUES (?, ?, ?)`,
		speaker, text, fmtTime(s.now()))
	if err != nil {
		return 0, fmt.Errorf("insert turn: %w", err)
	}
	return res.LastInsertId()
}

// Tail returns the last n turns in chronological (oldest-first) order.
func (s *SQLiteStore) Tail(ctx context.Context, n int) ([]model.Turn, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT turn_id, speaker, text, timestamp FROM (
			SELECT turn_id, speaker, text, timestamp
			FROM convo_turns ORDER BY turn_id DESC LIMIT ?
		) ORDER BY turn_id ASC`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTurns(rows)
}

// SearchTurns finds past turns whose text matches the FTS query, newest
// first. Used by the agent to recall earlier conversations.
func (s *SQLiteStore) SearchTurns(ctx context.Context, query string, limit int) ([]model.Turn, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.turn_id, t.speaker, t.text, t.timestamp
		FROM convo_fts f
		JOIN convo_turns t ON t.turn_id = f.rowid
		WHERE convo_fts MATCH ?
		ORDER BY t.turn_id DESC LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search turns: %w", err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

// PruneTurns deletes turns older than the retention window and returns the
// count removed. Retention is driven by the caller; the store schedules
// nothing itself.
func (s *SQLiteStore) PruneTurns(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -retentionDays)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM convo_turns WHERE timestamp < ?`, fmtTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune turns: %w", err)
	}
	return res.RowsAffected()
}

func scanTurns(rows *sql.Rows) ([]model.Turn, error) {
	var turns []model.Turn
	for rows.Next() {
		var t model.Turn
		var ts string
		if err := rows.Scan(&t.TurnID, &t.Speaker, &t.Text, &ts); err != nil {
			return nil, err
		}
		t.Timestamp = parseTime(ts)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
