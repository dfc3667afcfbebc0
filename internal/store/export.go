package store

import (
	"context"
	"errors"
	"fmt"

	"ultracoach/internal/model"
)

// ExportAll returns the full store contents for backup or inspection:
// profile (nil if never created), all goals, all episodes, all turns.
func (s *SQLiteStore) ExportAll(ctx context.Context) (*model.Export, error) {
	out := &model.Export{}

	profile, err := s.GetProfile(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	out.Profile = profile

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_name, distance_km, event_datetime, context_text,
		       target_time_seconds, fitness_level, created_at, updated_at
		FROM goals ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("export goals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out.Goals = append(out.Goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out.Episodes, err = s.queryEpisodes(ctx, `
		SELECT id, topic, severity, narrative, start_date, end_date, created_at
		FROM episodes ORDER BY start_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("export episodes: %w", err)
	}

	turnRows, err := s.db.QueryContext(ctx,
		`SELECT turn_id, speaker, text, timestamp FROM convo_turns ORDER BY turn_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("export turns: %w", err)
	}
	defer turnRows.Close()
	out.Turns, err = scanTurns(turnRows)
	if err != nil {
		return nil, err
	}

	return out, nil
}
