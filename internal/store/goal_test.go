package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPutGoalCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.PutGoal(ctx, GoalParams{EventName: "100K Trail", DistanceKm: floatPtr(100)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty goal id")
	}

	// Update by ID leaves omitted fields unchanged.
	id2, err := s.PutGoal(ctx, GoalParams{ID: id, FitnessLevel: intPtr(7)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if id2 != id {
		t.Errorf("expected same id back, got %s", id2)
	}

	goals, _ := s.ActiveGoals(ctx)
	if len(goals) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(goals))
	}
	if goals[0].DistanceKm != 100 || goals[0].FitnessLevel != 7 {
		t.Errorf("merge lost fields: %+v", goals[0])
	}
}

func TestPutGoalUnknownID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.PutGoal(ctx, GoalParams{ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", EventName: "UTMB"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutGoalRequiresEventName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.PutGoal(ctx, GoalParams{DistanceKm: floatPtr(50)})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestActiveGoalsExcludesPastEvents(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	future := time.Now().UTC().AddDate(0, 0, 30)
	past := time.Now().UTC().AddDate(0, 0, -1)

	s.PutGoal(ctx, GoalParams{EventName: "Upcoming 100K", EventDatetime: &future})
	s.PutGoal(ctx, GoalParams{EventName: "Finished 50K", EventDatetime: &past})
	s.PutGoal(ctx, GoalParams{EventName: "Someday Hardrock"})

	goals, err := s.ActiveGoals(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("expected 2 active goals, got %d", len(goals))
	}
	for _, g := range goals {
		if g.EventName == "Finished 50K" {
			t.Error("past event should be excluded")
		}
	}
}

func TestActiveGoalsExcludesEventAfterClockAdvances(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	event := time.Now().UTC().AddDate(0, 0, 30)
	s.PutGoal(ctx, GoalParams{EventName: "100K Trail", EventDatetime: &event})

	goals, _ := s.ActiveGoals(ctx)
	if len(goals) != 1 {
		t.Fatalf("expected goal active before event, got %d", len(goals))
	}

	// Advance the store clock past the event.
	s.now = func() time.Time { return event.AddDate(0, 0, 1) }

	goals, _ = s.ActiveGoals(ctx)
	if len(goals) != 0 {
		t.Fatalf("expected goal inactive after event, got %d", len(goals))
	}
}

func TestActiveGoalsUndatedSortFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	near := time.Now().UTC().AddDate(0, 0, 10)
	far := time.Now().UTC().AddDate(0, 0, 60)

	s.PutGoal(ctx, GoalParams{EventName: "Far Race", EventDatetime: &far})
	s.PutGoal(ctx, GoalParams{EventName: "Undated Race"})
	s.PutGoal(ctx, GoalParams{EventName: "Near Race", EventDatetime: &near})

	goals, err := s.ActiveGoals(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(goals) != 3 {
		t.Fatalf("expected 3 goals, got %d", len(goals))
	}
	want := []string{"Undated Race", "Near Race", "Far Race"}
	for i, name := range want {
		if goals[i].EventName != name {
			t.Errorf("position %d: expected %q, got %q", i, name, goals[i].EventName)
		}
	}
}

func TestRemoveGoalByIDAndName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.PutGoal(ctx, GoalParams{EventName: "Western States"})
	s.PutGoal(ctx, GoalParams{EventName: "Leadville"})

	removed, err := s.RemoveGoal(ctx, id, "")
	if err != nil || !removed {
		t.Fatalf("remove by id: removed=%v err=%v", removed, err)
	}

	removed, err = s.RemoveGoal(ctx, "", "Leadville")
	if err != nil || !removed {
		t.Fatalf("remove by name: removed=%v err=%v", removed, err)
	}

	removed, _ = s.RemoveGoal(ctx, "", "Leadville")
	if removed {
		t.Error("expected false for already-removed goal")
	}
}

func TestRemoveGoalIDWinsOverName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	idA, _ := s.PutGoal(ctx, GoalParams{EventName: "Race A"})
	s.PutGoal(ctx, GoalParams{EventName: "Race B"})

	// Both supplied: the ID is authoritative, the name is ignored.
	removed, err := s.RemoveGoal(ctx, idA, "Race B")
	if err != nil || !removed {
		t.Fatalf("remove: removed=%v err=%v", removed, err)
	}

	goals, _ := s.ActiveGoals(ctx)
	if len(goals) != 1 || goals[0].EventName != "Race B" {
		t.Errorf("expected Race B to survive, got %+v", goals)
	}
}
