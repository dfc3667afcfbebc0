// Package store provides the persistent athlete-context store and its SQLite
// implementation. Every call is its own transactional unit; no transaction
// spans repositories.
package store

import (
	"context"
	"errors"
	"time"

	"ultracoach/internal/model"
)

// ErrNotFound is returned when an update-only path references a missing row.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a required field is missing or out of range.
var ErrValidation = errors.New("validation failed")

// ProfileParams holds a partial profile update. Nil fields are left
// unchanged; there is no way to clear a previously set field, only to replace
// it with a new value.
type ProfileParams struct {
	BirthYear        *int
	Gender           *string
	History          *string
	WeightKg         *float64
	RunningYears     *int
	PreferredTerrain *string
	WeeklyMileageKm  *float64
	UltraExperience  *int
}

// GoalParams holds fields for creating or updating a goal. A non-empty ID
// selects an existing row (which must exist); otherwise a new goal is created
// and EventName is required. Nil optional fields are left unchanged.
type GoalParams struct {
	ID                string
	EventName         string
	DistanceKm        *float64
	EventDatetime     *time.Time
	ContextText       *string
	TargetTimeSeconds *int
	FitnessLevel      *int
}

// EpisodeParams holds fields for logging a new episode. Narrative is
// required. Topic is normalized against the closed set. A zero Start
// defaults to the current time.
type EpisodeParams struct {
	Topic     string
	Narrative string
	Severity  int // 0 = unset, otherwise 1-10
	Start     time.Time
}

// Store is the in-process call surface consumed by the agent's tool layer and
// the CLI/web front ends.
type Store interface {
	// UpsertProfile merges the supplied fields into the singleton profile,
	// creating it on first write.
	UpsertProfile(ctx context.Context, p ProfileParams) error

	// GetProfile returns the profile, or ErrNotFound if never created.
	GetProfile(ctx context.Context) (*model.Profile, error)

	// PutGoal creates a goal or updates an existing one by ID. Returns the
	// goal ID.
	PutGoal(ctx context.Context, p GoalParams) (string, error)

	// ActiveGoals returns goals whose event date is unset or strictly in the
	// future, ascending by event date with undated goals first.
	ActiveGoals(ctx context.Context) ([]model.Goal, error)

	// RemoveGoal deletes a goal by ID, or by exact event name when no ID is
	// given. Reports whether a row was deleted.
	RemoveGoal(ctx context.Context, id, name string) (bool, error)

	// LogEpisode records a new episode and returns it. The returned episode
	// carries the normalized topic.
	LogEpisode(ctx context.Context, p EpisodeParams) (*model.Episode, error)

	// CurrentEpisodes returns open episodes, newest start first, optionally
	// filtered by topic.
	CurrentEpisodes(ctx context.Context, topic string) ([]model.Episode, error)

	// EndEpisode closes an open episode. A zero end defaults to now. An
	// unknown ID is a benign no-op reported as false.
	EndEpisode(ctx context.Context, id string, end time.Time) (bool, error)

	// RecentEpisodes returns episodes whose start date falls within the
	// trailing window, open or closed, newest first.
	RecentEpisodes(ctx context.Context, days int, topic string) ([]model.Episode, error)

	// AppendTurn records a conversation turn and returns its sequence ID.
	AppendTurn(ctx context.Context, speaker, text string) (int64, error)

	// Tail returns the last n turns in chronological order.
	Tail(ctx context.Context, n int) ([]model.Turn, error)

	// SearchTurns finds past turns matching the query, newest first.
	SearchTurns(ctx context.Context, query string, limit int) ([]model.Turn, error)

	// PruneTurns deletes turns older than the retention window and returns
	// the count removed.
	PruneTurns(ctx context.Context, retentionDays int) (int64, error)

	// ContextSummary composes profile, active goals, open episodes and
	// recent turns into one snapshot. All-or-nothing: the first sub-query
	// failure aborts the call.
	ContextSummary(ctx context.Context) (*model.ContextSnapshot, error)

	// Close closes the store.
	Close() error
}
