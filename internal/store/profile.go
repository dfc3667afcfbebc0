package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ultracoach/internal/model"
)

// UpsertProfile merges the supplied fields into the singleton profile row,
// creating it on first write. Fields left nil are preserved unchanged, so a
// read issued after this call observes the field-wise union of all writes.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, p ProfileParams) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := fmtTime(s.now())

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM athlete_profile WHERE athlete_id = 1`).Scan(&exists); err != nil {
		return fmt.Errorf("check profile: %w", err)
	}
	if exists == 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO athlete_profile (athlete_id, updated_at) VALUES (1, ?)`, now); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
	}

	set := []string{"updated_at = ?"}
	args := []interface{}{now}

	if p.BirthYear != nil {
		set = append(set, "birth_year = ?")
		args = append(args, *p.BirthYear)
	}
	if p.Gender != nil {
		set = append(set, "gender = ?")
		args = append(args, *p.Gender)
	}
	if p.History != nil {
		set = append(set, "history = ?")
		args = append(args, *p.History)
	}
	if p.WeightKg != nil {
		set = append(set, "weight_kg = ?")
		args = append(args, *p.WeightKg)
	}
	if p.RunningYears != nil {
		set = append(set, "running_years = ?")
		args = append(args, *p.RunningYears)
	}
	if p.PreferredTerrain != nil {
		set = append(set, "preferred_terrain = ?")
		args = append(args, *p.PreferredTerrain)
	}
	if p.WeeklyMileageKm != nil {
		set = append(set, "weekly_mileage_km = ?")
		args = append(args, *p.WeeklyMileageKm)
	}
	if p.UltraExperience != nil {
		set = append(set, "ultra_experience = ?")
		args = append(args, *p.UltraExperience)
	}

	query := fmt.Sprintf(`UPDATE athlete_profile SET %s WHERE athlete_id = 1`,
		strings.Join(set, ", "))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	return tx.Commit()
}

// GetProfile returns the singleton profile, or ErrNotFound if it was never
// created.
func (s *SQLiteStore) GetProfile(ctx context.Context) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT birth_year, gender, history, weight_kg, running_years,
		       preferred_terrain, weekly_mileage_km, ultra_experience, updated_at
		FROM athlete_profile WHERE athlete_id = 1`)

	var (
		birthYear, runningYears, ultraExp sql.NullInt64
		gender, history, terrain          sql.NullString
		weightKg, weeklyKm                sql.NullFloat64
		updatedAt                         string
	)
	err := row.Scan(&birthYear, &gender, &history, &weightKg, &runningYears,
		&terrain, &weeklyKm, &ultraExp, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &model.Profile{
		BirthYear:        int(birthYear.Int64),
		Gender:           gender.String,
		History:          history.String,
		WeightKg:         weightKg.Float64,
		RunningYears:     int(runningYears.Int64),
		PreferredTerrain: terrain.String,
		WeeklyMileageKm:  weeklyKm.Float64,
		UltraExperience:  int(ultraExp.Int64),
		UpdatedAt:        parseTime(updatedAt),
	}, nil
}
