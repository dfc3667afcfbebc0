package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestExportAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.UpsertProfile(ctx, ProfileParams{Gender: strPtr("m")})
	s.PutGoal(ctx, GoalParams{EventName: "CCC"})
	s.LogEpisode(ctx, EpisodeParams{Topic: "sleep", Narrative: "slept badly"})
	s.AppendTurn(ctx, "user", "hello")

	out, err := s.ExportAll(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out.Profile == nil || out.Profile.Gender != "m" {
		t.Error("profile missing from export")
	}
	if len(out.Goals) != 1 || len(out.Episodes) != 1 || len(out.Turns) != 1 {
		t.Errorf("unexpected export counts: %d goals, %d episodes, %d turns",
			len(out.Goals), len(out.Episodes), len(out.Turns))
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "coach.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer s.Close()

	s.PutGoal(ctx, GoalParams{EventName: "Diagonale des Fous"})
	ep, _ := s.LogEpisode(ctx, EpisodeParams{Topic: "stress", Narrative: "work deadline"})
	s.LogEpisode(ctx, EpisodeParams{Topic: "recovery", Narrative: "easy week"})
	s.EndEpisode(ctx, ep.ID, s.now())

	st, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Goals != 1 || st.ActiveGoals != 1 {
		t.Errorf("unexpected goal counts: %+v", st)
	}
	if st.Episodes != 2 || st.OpenEpisodes != 1 {
		t.Errorf("unexpected episode counts: %+v", st)
	}
	if st.HasProfile {
		t.Error("expected no profile")
	}
	if st.DBSizeBytes == 0 {
		t.Error("expected non-zero db size")
	}
}
