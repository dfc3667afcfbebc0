package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ultracoach/internal/model"
)

// PutGoal creates a new goal or updates an existing one. When p.ID is set the
// row must already exist; when it is empty a new goal is created and
// EventName is required. Past events are never deleted here, only excluded
// from the active view.
func (s *SQLiteStore) PutGoal(ctx context.Context, p GoalParams) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	now := fmtTime(s.now())
	id := p.ID

	if id == "" {
		if strings.TrimSpace(p.EventName) == "" {
			return "", fmt.Errorf("event name is required: %w", ErrValidation)
		}
		id = s.newID()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO goals (id, event_name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			id, p.EventName, now, now); err != nil {
			return "", fmt.Errorf("insert goal: %w", err)
		}
	} else {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM goals WHERE id = ?`, id).Scan(&exists); err != nil {
			return "", fmt.Errorf("check goal: %w", err)
		}
		if exists == 0 {
			return "", fmt.Errorf("goal %s: %w", id, ErrNotFound)
		}
	}

	set := []string{"updated_at = ?"}
	args := []interface{}{now}

	if p.ID != "" && strings.TrimSpace(p.EventName) != "" {
		set = append(set, "event_name = ?")
		args = append(args, p.EventName)
	}
	if p.DistanceKm != nil {
		set = append(set, "distance_km = ?")
		args = append(args, *p.DistanceKm)
	}
	if p.EventDatetime != nil {
		set = append(set, "event_datetime = ?")
		args = append(args, fmtTime(*p.EventDatetime))
	}
	if p.ContextText != nil {
		set = append(set, "context_text = ?")
		args = append(args, *p.ContextText)
	}
	if p.TargetTimeSeconds != nil {
		set = append(set, "target_time_seconds = ?")
		args = append(args, *p.TargetTimeSeconds)
	}
	if p.FitnessLevel != nil {
		if *p.FitnessLevel < 1 || *p.FitnessLevel > 10 {
			return "", fmt.Errorf("fitness level must be 1-10: %w", ErrValidation)
		}
		set = append(set, "fitness_level = ?")
		args = append(args, *p.FitnessLevel)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE goals SET %s WHERE id = ?`, strings.Join(set, ", "))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("update goal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ActiveGoals returns goals whose event date is unset or strictly in the
// future, ordered ascending by event date. Undated goals sort first: a goal
// with no date yet is always upcoming.
func (s *SQLiteStore) ActiveGoals(ctx context.Context) ([]model.Goal, error) {
	now := fmtTime(s.now())
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_name, distance_km, event_datetime, context_text,
		       target_time_seconds, fitness_level, created_at, updated_at
		FROM goals
		WHERE event_datetime IS NULL OR event_datetime > ?
		ORDER BY event_datetime ASC`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// RemoveGoal deletes a goal by ID when given, otherwise by exact event name.
// When both are supplied the ID wins and the name is ignored. Reports whether
// a row was deleted.
func (s *SQLiteStore) RemoveGoal(ctx context.Context, id, name string) (bool, error) {
	var res sql.Result
	var err error
	switch {
	case id != "":
		res, err = s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	case name != "":
		res, err = s.db.ExecContext(ctx, `DELETE FROM goals WHERE event_name = ?`, name)
	default:
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanGoal(row scanner) (model.Goal, error) {
	var g model.Goal
	var distanceKm sql.NullFloat64
	var eventDT, contextText sql.NullString
	var targetSecs, fitness sql.NullInt64
	var createdAt, updatedAt string

	err := row.Scan(&g.ID, &g.EventName, &distanceKm, &eventDT, &contextText,
		&targetSecs, &fitness, &createdAt, &updatedAt)
	if err != nil {
		return g, err
	}

	g.DistanceKm = distanceKm.Float64
	g.EventDatetime = parseTimePtr(eventDT)
	g.ContextText = contextText.String
	g.TargetTimeSeconds = int(targetSecs.Int64)
	g.FitnessLevel = int(fitness.Int64)
	g.CreatedAt = parseTime(createdAt)
	g.UpdatedAt = parseTime(updatedAt)
	return g, nil
}
