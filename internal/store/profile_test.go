package store

import (
	"context"
	"errors"
	"testing"
)

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestGetProfileAbsent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetProfile(ctx)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertProfileCreatesOnFirstWrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.UpsertProfile(ctx, ProfileParams{BirthYear: intPtr(1988)}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	p, err := s.GetProfile(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.BirthYear != 1988 {
		t.Errorf("expected birth year 1988, got %d", p.BirthYear)
	}
	if p.UpdatedAt.IsZero() {
		t.Error("expected updated_at to be set")
	}
}

func TestUpsertProfileMergesDisjointFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.UpsertProfile(ctx, ProfileParams{BirthYear: intPtr(1990), Gender: strPtr("f")})
	s.UpsertProfile(ctx, ProfileParams{WeightKg: floatPtr(61.5)})
	s.UpsertProfile(ctx, ProfileParams{
		PreferredTerrain: strPtr("trail"),
		WeeklyMileageKm:  floatPtr(80),
		UltraExperience:  intPtr(3),
	})

	p, err := s.GetProfile(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.BirthYear != 1990 || p.Gender != "f" {
		t.Errorf("first write lost: %+v", p)
	}
	if p.WeightKg != 61.5 {
		t.Errorf("expected weight 61.5, got %v", p.WeightKg)
	}
	if p.PreferredTerrain != "trail" || p.WeeklyMileageKm != 80 || p.UltraExperience != 3 {
		t.Errorf("third write lost: %+v", p)
	}
}

func TestUpsertProfileOverwritesSuppliedFieldOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.UpsertProfile(ctx, ProfileParams{RunningYears: intPtr(5), History: strPtr("two marathons")})
	s.UpsertProfile(ctx, ProfileParams{RunningYears: intPtr(6)})

	p, _ := s.GetProfile(ctx)
	if p.RunningYears != 6 {
		t.Errorf("expected running years replaced with 6, got %d", p.RunningYears)
	}
	if p.History != "two marathons" {
		t.Errorf("expected history preserved, got %q", p.History)
	}
}
