// Package model defines the core athlete-context data types.
package model

import (
	"strings"
	"time"
)

// Topic classifies an episode. Unrecognized input normalizes to TopicOther.
type Topic string

const (
	TopicInjury     Topic = "injury"
	TopicFatigue    Topic = "fatigue"
	TopicEffort     Topic = "effort"
	TopicMotivation Topic = "motivation"
	TopicSleep      Topic = "sleep"
	TopicNutrition  Topic = "nutrition"
	TopicStress     Topic = "stress"
	TopicRecovery   Topic = "recovery"
	TopicOther      Topic = "other"
)

// Topics is the closed set of valid episode topics.
var Topics = map[Topic]bool{
	TopicInjury:     true,
	TopicFatigue:    true,
	TopicEffort:     true,
	TopicMotivation: true,
	TopicSleep:      true,
	TopicNutrition:  true,
	TopicStress:     true,
	TopicRecovery:   true,
	TopicOther:      true,
}

// NormalizeTopic matches raw input case-insensitively against the closed set.
// The second return reports whether the input was recognized as-is; callers
// that care about the lossy fallback can surface it.
func NormalizeTopic(raw string) (Topic, bool) {
	t := Topic(strings.ToLower(strings.TrimSpace(raw)))
	if Topics[t] {
		return t, true
	}
	return TopicOther, false
}

// Profile is the singleton athlete record. All attribute fields are optional;
// a zero value means the athlete never supplied it.
type Profile struct {
	BirthYear        int       `json:"birth_year,omitempty"`
	Gender           string    `json:"gender,omitempty"`
	History          string    `json:"history,omitempty"`
	WeightKg         float64   `json:"weight_kg,omitempty"`
	RunningYears     int       `json:"running_years,omitempty"`
	PreferredTerrain string    `json:"preferred_terrain,omitempty"`
	WeeklyMileageKm  float64   `json:"weekly_mileage_km,omitempty"`
	UltraExperience  int       `json:"ultra_experience,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Goal is a target event. EventDatetime nil means the date is not fixed yet;
// such goals are always considered active.
type Goal struct {
	ID                string     `json:"id"`
	EventName         string     `json:"event_name"`
	DistanceKm        float64    `json:"distance_km,omitempty"`
	EventDatetime     *time.Time `json:"event_datetime,omitempty"`
	ContextText       string     `json:"context_text,omitempty"`
	TargetTimeSeconds int        `json:"target_time_seconds,omitempty"`
	FitnessLevel      int        `json:"fitness_level,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Episode is a time-bounded narrative record of athlete state. EndDate nil
// means the episode is still open; closing it is terminal.
type Episode struct {
	ID        string     `json:"id"`
	Topic     Topic      `json:"topic"`
	Severity  int        `json:"severity,omitempty"` // 1-10 where applicable
	Narrative string     `json:"narrative"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Open reports whether the episode is still ongoing.
func (e Episode) Open() bool { return e.EndDate == nil }

// Turn is one conversation turn. Append-only; TurnID is a monotonically
// increasing sequence assigned at insert.
type Turn struct {
	TurnID    int64     `json:"turn_id"`
	Speaker   string    `json:"speaker"` // "user" or "agent"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ContextSnapshot is the read-time composition handed to the prompt builder.
// It is rebuilt on every request and never persisted.
type ContextSnapshot struct {
	Profile      *Profile  `json:"profile"`
	ActiveGoals  []Goal    `json:"active_goals"`
	OpenEpisodes []Episode `json:"open_episodes"`
	RecentTurns  []Turn    `json:"recent_turns"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Export is a full-store JSON dump.
type Export struct {
	Profile  *Profile  `json:"profile"`
	Goals    []Goal    `json:"goals"`
	Episodes []Episode `json:"episodes"`
	Turns    []Turn    `json:"turns"`
}
