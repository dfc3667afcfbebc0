package store

import (
	"context"
	"errors"

	"ultracoach/internal/model"
)

// recentTurnCount is how many conversation turns a snapshot carries.
const recentTurnCount = 10

// ContextSummary composes the four repositories' current state into one
// snapshot for prompt grounding. The composition is all-or-nothing: the first
// sub-query failure aborts the whole call; a missing profile is not a failure,
// it appears as nil.
func (s *SQLiteStore) ContextSummary(ctx context.Context) (*model.ContextSnapshot, error) {
	profile, err := s.GetProfile(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	goals, err := s.ActiveGoals(ctx)
	if err != nil {
		return nil, err
	}

	episodes, err := s.CurrentEpisodes(ctx, "")
	if err != nil {
		return nil, err
	}

	turns, err := s.Tail(ctx, recentTurnCount)
	if err != nil {
		return nil, err
	}

	return &model.ContextSnapshot{
		Profile:      profile,
		ActiveGoals:  goals,
		OpenEpisodes: episodes,
		RecentTurns:  turns,
		GeneratedAt:  s.now().UTC(),
	}, nil
}
