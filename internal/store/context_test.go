package store

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestContextSummaryEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	snap, err := s.ContextSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if snap.Profile != nil {
		t.Error("expected nil profile on empty store")
	}
	if len(snap.ActiveGoals) != 0 || len(snap.OpenEpisodes) != 0 || len(snap.RecentTurns) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestContextSummaryComposesAllFour(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.UpsertProfile(ctx, ProfileParams{BirthYear: intPtr(1985), PreferredTerrain: strPtr("mountain")})

	event := time.Now().UTC().AddDate(0, 0, 30)
	goalID, _ := s.PutGoal(ctx, GoalParams{EventName: "100K Trail", EventDatetime: &event})

	ep, _ := s.LogEpisode(ctx, EpisodeParams{Topic: "injury", Narrative: "tight hamstring", Severity: 4})

	for i := 0; i < 5; i++ {
		speaker := "user"
		if i%2 == 1 {
			speaker = "agent"
		}
		s.AppendTurn(ctx, speaker, fmt.Sprintf("turn %d", i))
	}

	snap, err := s.ContextSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if snap.Profile == nil || snap.Profile.BirthYear != 1985 {
		t.Errorf("profile missing from snapshot: %+v", snap.Profile)
	}
	if len(snap.ActiveGoals) != 1 || snap.ActiveGoals[0].ID != goalID {
		t.Errorf("goal missing from snapshot: %+v", snap.ActiveGoals)
	}
	if len(snap.OpenEpisodes) != 1 || snap.OpenEpisodes[0].ID != ep.ID {
		t.Errorf("episode missing from snapshot: %+v", snap.OpenEpisodes)
	}
	if len(snap.RecentTurns) != 5 {
		t.Fatalf("expected 5 turns, got %d", len(snap.RecentTurns))
	}

	// Each section matches the corresponding direct query at the same instant.
	profile, _ := s.GetProfile(ctx)
	if *snap.Profile != *profile {
		t.Error("snapshot profile diverges from direct query")
	}
	turns, _ := s.Tail(ctx, recentTurnCount)
	if len(turns) != len(snap.RecentTurns) || turns[0].Text != snap.RecentTurns[0].Text {
		t.Error("snapshot turns diverge from direct query")
	}
}

func TestContextSummaryReflectsCommittedState(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ep, _ := s.LogEpisode(ctx, EpisodeParams{Topic: "fatigue", Narrative: "worn out"})

	snap, _ := s.ContextSummary(ctx)
	if len(snap.OpenEpisodes) != 1 {
		t.Fatalf("expected open episode in snapshot, got %d", len(snap.OpenEpisodes))
	}

	// No caching: the next snapshot sees the close immediately.
	s.EndEpisode(ctx, ep.ID, time.Time{})
	snap, _ = s.ContextSummary(ctx)
	if len(snap.OpenEpisodes) != 0 {
		t.Errorf("expected closed episode excluded, got %d", len(snap.OpenEpisodes))
	}
}
