package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ultracoach/internal/model"
)

// LogEpisode records a new episode. Narrative is mandatory; topic is matched
// case-insensitively against the closed set and falls back to "other", which
// is surfaced in the returned episode and logged as a warning rather than
// silently swallowed. A zero Start defaults to now.
func (s *SQLiteStore) LogEpisode(ctx context.Context, p EpisodeParams) (*model.Episode, error) {
	if strings.TrimSpace(p.Narrative) == "" {
		return nil, fmt.Errorf("narrative is required: %w", ErrValidation)
	}
	if p.Severity != 0 && (p.Severity < 1 || p.Severity > 10) {
		return nil, fmt.Errorf("severity must be 1-10: %w", ErrValidation)
	}

	topic, known := model.NormalizeTopic(p.Topic)
	if !known {
		slog.Warn("unrecognized episode topic normalized", "raw", p.Topic, "topic", topic)
	}

	now := s.now()
	start := p.Start
	if start.IsZero() {
		start = now
	}

	ep := &model.Episode{
		ID:        s.newID(),
		Topic:     topic,
		Severity:  p.Severity,
		Narrative: p.Narrative,
		StartDate: start.UTC(),
		CreatedAt: now.UTC(),
	}

	var severity interface{}
	if p.Severity != 0 {
		severity = p.Severity
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO episodes (id, topic, severity, narrative, start_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ep.ID, string(topic), severity, p.Narrative, fmtTime(start), fmtTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert episode: %w", err)
	}

	return ep, nil
}

// CurrentEpisodes returns open episodes (end date unset), newest start first.
// A topic filter that does not match the closed set returns no rows.
func (s *SQLiteStore) CurrentEpisodes(ctx context.Context, topic string) ([]model.Episode, error) {
	where := []string{"end_date IS NULL"}
	args := []interface{}{}

	if topic != "" {
		t, known := model.NormalizeTopic(topic)
		if !known {
			return nil, nil
		}
		where = append(where, "topic = ?")
		args = append(args, string(t))
	}

	query := fmt.Sprintf(`
		SELECT id, topic, severity, narrative, start_date, end_date, created_at
		FROM episodes WHERE %s
		ORDER BY start_date DESC`, strings.Join(where, " AND "))

	return s.queryEpisodes(ctx, query, args...)
}

// EndEpisode sets the end date of an episode, defaulting to now. Ending an
// unknown or already-closed episode is a benign no-op reported as false.
func (s *SQLiteStore) EndEpisode(ctx context.Context, id string, end time.Time) (bool, error) {
	if end.IsZero() {
		end = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE episodes SET end_date = ? WHERE id = ? AND end_date IS NULL`,
		fmtTime(end), id)
	if err != nil {
		return false, fmt.Errorf("end episode: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecentEpisodes returns episodes whose start date falls within the trailing
// window of days, open or closed, newest first.
func (s *SQLiteStore) RecentEpisodes(ctx context.Context, days int, topic string) ([]model.Episode, error) {
	cutoff := s.now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)

	where := []string{"start_date >= ?"}
	args := []interface{}{fmtTime(cutoff)}

	if topic != "" {
		t, known := model.NormalizeTopic(topic)
		if !known {
			return nil, nil
		}
		where = append(where, "topic = ?")
		args = append(args, string(t))
	}

	query := fmt.Sprintf(`
		SELECT id, topic, severity, narrative, start_date, end_date, created_at
		FROM episodes WHERE %s
		ORDER BY start_date DESC`, strings.Join(where, " AND "))

	return s.queryEpisodes(ctx, query, args...)
}

func (s *SQLiteStore) queryEpisodes(ctx context.Context, query string, args ...interface{}) ([]model.Episode, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var episodes []model.Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

func scanEpisode(row scanner) (model.Episode, error) {
	var e model.Episode
	var severity sql.NullInt64
	var endDate sql.NullString
	var topic, startDate, createdAt string

	err := row.Scan(&e.ID, &topic, &severity, &e.Narrative, &startDate, &endDate, &createdAt)
	if err != nil {
		return e, err
	}

	e.Topic = model.Topic(topic)
	e.Severity = int(severity.Int64)
	e.StartDate = parseTime(startDate)
	e.EndDate = parseTimePtr(endDate)
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}
