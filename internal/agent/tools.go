package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ultracoach/internal/store"
	"ultracoach/internal/strava"
)

// Tool pairs a function definition with its executor. Executors return a
// string fed back to the model as the tool message; errors are also returned
// to the model as text so it can recover, never as a hard agent failure.
type Tool struct {
	Def ToolDef
	Run func(ctx context.Context, args json.RawMessage) (string, error)
}

// ActivitySource is the slice of the Strava client the tools use.
type ActivitySource interface {
	Activities(ctx context.Context, limit int) ([]strava.Activity, error)
	ActivitiesBetween(ctx context.Context, start, end time.Time, limit int) ([]strava.Activity, error)
	RecentActivities(ctx context.Context, days, limit int) ([]strava.Activity, error)
	ActivityByID(ctx context.Context, id int64) (*strava.Activity, error)
}

func obj(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func num(desc string) map[string]any { return map[string]any{"type": "number", "description": desc} }
func str(desc string) map[string]any { return map[string]any{"type": "string", "description": desc} }
func intp(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func toJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("marshal error: %v", err)
	}
	return string(b)
}

// StoreTools returns the persistent-memory tools backed by the context store.
func StoreTools(s store.Store) []Tool {
	return []Tool{
		{
			Def: ToolDef{
				Name: "profile",
				Description: "Update or query the athlete profile. With no arguments returns " +
					"the current profile. Supply only the fields to change; others are preserved.",
				Parameters: obj(map[string]any{
					"birth_year":        intp("Athlete's birth year"),
					"gender":            str("Athlete's gender"),
					"history":           str("Free-text athletic history"),
					"weight_kg":         num("Weight in kilograms"),
					"running_years":     intp("Years of running experience"),
					"preferred_terrain": str("Preferred terrain, e.g. trail, road, mountain"),
					"weekly_mileage_km": num("Typical weekly mileage in km"),
					"ultra_experience":  intp("Number of ultras completed"),
				}),
			},
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				var in struct {
					BirthYear        *int     `json:"birth_year"`
					Gender           *string  `json:"gender"`
					History          *string  `json:"history"`
					WeightKg         *float64 `json:"weight_kg"`
					RunningYears     *int     `json:"running_years"`
					PreferredTerrain *string  `json:"preferred_terrain"`
					WeeklyMileageKm  *float64 `json:"weekly_mileage_km"`
					UltraExperience  *int     `json:"ultra_experience"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", err
				}
				if in.BirthYear != nil || in.Gender != nil || in.History != nil ||
					in.WeightKg != nil || in.RunningYears != nil || in.PreferredTerrain != nil ||
					in.WeeklyMileageKm != nil || in.UltraExperience != nil {
					err := s.UpsertProfile(ctx, store.ProfileParams{
						BirthYear:        in.BirthYear,
						Gender:           in.Gender,
						History:          in.History,
						WeightKg:         in.WeightKg,
						RunningYears:     in.RunningYears,
						PreferredTerrain: in.PreferredTerrain,
						WeeklyMileageKm:  in.WeeklyMileageKm,
						UltraExperience:  in.UltraExperience,
					})
					if err != nil {
						return "", err
					}
					return "Profile updated.", nil
				}
				p, err := s.GetProfile(ctx)
				if err != nil {
					return "No profile stored yet. Provide fields like birth_year or weight_kg to create one.", nil
				}
				return toJSON(p), nil
			},
		},
		{
			Def: ToolDef{
				Name: "goals",
				Description: "Add, update, remove or list training goals. With no arguments " +
					"returns the active goals. Use event_date as ISO date (YYYY-MM-DD). " +
					"To remove, set remove_goal_id or remove_goal_name.",
				Parameters: obj(map[string]any{
					"goal_id":             str("ID of an existing goal to update"),
					"event_name":          str("Name of the target event"),
					"distance_km":         num("Event distance in km"),
					"event_date":          str("Event date, ISO format YYYY-MM-DD"),
					"context_text":        str("Extra context about the goal"),
					"target_time_seconds": intp("Target finish time in seconds"),
					"fitness_level":       intp("Current fitness 1-10"),
					"remove_goal_id":      str("ID of a goal to remove"),
					"remove_goal_name":    str("Exact event name of a goal to remove"),
				}),
			},
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				var in struct {
					GoalID            string   `json:"goal_id"`
					EventName         string   `json:"event_name"`
					DistanceKm        *float64 `json:"distance_km"`
					EventDate         string   `json:"event_date"`
					ContextText       *string  `json:"context_text"`
					TargetTimeSeconds *int     `json:"target_time_seconds"`
					FitnessLevel      *int     `json:"fitness_level"`
					RemoveGoalID      string   `json:"remove_goal_id"`
					RemoveGoalName    string   `json:"remove_goal_name"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", err
				}

				if in.RemoveGoalID != "" || in.RemoveGoalName != "" {
					removed, err := s.RemoveGoal(ctx, in.RemoveGoalID, in.RemoveGoalName)
					if err != nil {
						return "", err
					}
					if !removed {
						return "No matching goal found to remove.", nil
					}
					return "Goal removed.", nil
				}

				if in.EventName != "" || in.GoalID != "" {
					var eventDT *time.Time
					if in.EventDate != "" {
						t, err := time.Parse("2006-01-02", in.EventDate)
						if err != nil {
							return fmt.Sprintf("Invalid event_date %q, use YYYY-MM-DD.", in.EventDate), nil
						}
						eventDT = &t
					}
					id, err := s.PutGoal(ctx, store.GoalParams{
						ID:                in.GoalID,
						EventName:         in.EventName,
						DistanceKm:        in.DistanceKm,
						EventDatetime:     eventDT,
						ContextText:       in.ContextText,
						TargetTimeSeconds: in.TargetTimeSeconds,
						FitnessLevel:      in.FitnessLevel,
					})
					if err != nil {
						return "", err
					}
					return fmt.Sprintf("Goal saved (ID: %s).", id), nil
				}

				goals, err := s.ActiveGoals(ctx)
				if err != nil {
					return "", err
				}
				if len(goals) == 0 {
					return "No active goals. Add one by providing event_name.", nil
				}
				return toJSON(goals), nil
			},
		},
		{
			Def: ToolDef{
				Name: "log_episode",
				Description: "Log an athlete state episode such as an injury, fatigue, effort, " +
					"sleep, nutrition, stress or recovery note. Narrative is required.",
				Parameters: obj(map[string]any{
					"topic":     str("One of: injury, fatigue, effort, motivation, sleep, nutrition, stress, recovery, other"),
					"narrative": str("Description of the episode"),
					"severity":  intp("Severity 1-10 where applicable"),
				}, "topic", "narrative"),
			},
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				var in struct {
					Topic     string `json:"topic"`
					Narrative string `json:"narrative"`
					Severity  int    `json:"severity"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", err
				}
				ep, err := s.LogEpisode(ctx, store.EpisodeParams{
					Topic:     in.Topic,
					Narrative: in.Narrative,
					Severity:  in.Severity,
				})
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Episode logged (ID: %s, topic: %s).", ep.ID, ep.Topic), nil
			},
		},
		{
			Def: ToolDef{
				Name:        "end_episode",
				Description: "Mark an open episode as resolved.",
				Parameters: obj(map[string]any{
					"episode_id": str("ID of the episode to close"),
				}, "episode_id"),
			},
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				var in struct {
					EpisodeID string `json:"episode_id"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", err
				}
				found, err := s.EndEpisode(ctx, in.EpisodeID, time.Time{})
				if err != nil {
					return "", err
				}
				if !found {
					return "No open episode with that ID.", nil
				}
				return "Episode marked as resolved.", nil
			},
		},
		{
			Def: ToolDef{
				Name:        "current_episodes",
				Description: "List open (ongoing) episodes, optionally filtered by topic.",
				Parameters: obj(map[string]any{
					"topic": str("Optional topic filter"),
				}),
			},
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				var in struct {
					Topic string `json:"topic"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", err
				}
				eps, err := s.CurrentEpisodes(ctx, in.Topic)
				if err != nil {
					return "", err
				}
				if len(eps) == 0 {
					return "No open episodes.", nil
				}
				return toJSON(eps), nil
			},
		},
		{
			Def: ToolDef{
				Name:        "episode_history",
				Description: "List episodes from the last N days, open or closed, optionally filtered by topic.",
				Parameters: obj(map[string]any{
					"days":  intp("Days to look back (default 30)"),
					"topic": str("Optional topic filter"),
				}),
			},
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				var in struct {
					Days  int    `json:"days"`
					Topic string `json:"topic"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", err
				}
				if in.Days <= 0 {
					in.Days = 30
				}
				eps, err := s.RecentEpisodes(ctx, in.Days, in.Topic)
				if err != nil {
					return "", err
				}
				if len(eps) == 0 {
					return fmt.Sprintf("No episodes in the last %d days.", in.Days), nil
				}
				return toJSON(eps), nil
			},
		},
		{
			Def: ToolDef{
				Name: "conversation_context",
				Description: "Get the stored athlete context: profile, active goals, open episodes " +
					"and recent conversation turns. Check this at the start of a conversation.",
				Parameters: obj(map[string]any{}),
			},
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				snap, err := s.ContextSummary(ctx)
				if err != nil {
					return "", err
				}
				return toJSON(snap), nil
			},
		},
		{
			Def: ToolDef{
				Name:        "recall_conversation",
				Description: "Full-text search earlier conversation turns for a keyword or phrase.",
				Parameters: obj(map[string]any{
					"query": str("Search query"),
				}, "query"),
			},
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				var in struct {
					Query string `json:"query"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", err
				}
				turns, err := s.SearchTurns(ctx, in.Query, 20)
				if err != nil {
					return "", err
				}
				if len(turns) == 0 {
					return "No past conversation matched.", nil
				}
				return toJSON(turns), nil
			},
		},
	}
}

// StravaTools returns the activity-feed tools. Nil when no client is
// configured; the agent then runs memory-only.
func StravaTools(c ActivitySource) []Tool {
	if c == nil {
		return nil
	}
	return []Tool{
		{
			Def: ToolDef{
				Name:        "get_strava_activities",
				Description: "Get the athlete's most recent activities from Strava.",
				Parameters: obj(map[string]any{
					"limit": intp("Maximum number of activities (default 10)"),
				}),
			},
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				var in struct {
					Limit int `json:"limit"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", err
				}
				acts, err := c.Activities(ctx, in.Limit)
				if err != nil {
					return "", err
				}
				return toJSON(acts), nil
			},
		},
		{
			Def: ToolDef{
				Name:        "get_strava_activities_by_date_range",
				Description: "Get activities within a date range. Dates are ISO format YYYY-MM-DD.",
				Parameters: obj(map[string]any{
					"start_date": str("Start date, YYYY-MM-DD"),
					"end_date":   str("End date, YYYY-MM-DD"),
					"limit":      intp("Maximum number of activities (default 30)"),
				}, "start_date", "end_date"),
			},
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				var in struct {
					StartDate string `json:"start_date"`
					EndDate   string `json:"end_date"`
					Limit     int    `json:"limit"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", err
				}
				start, err := time.Parse("2006-01-02", in.StartDate)
				if err != nil {
					return fmt.Sprintf("Invalid start_date %q, use YYYY-MM-DD.", in.StartDate), nil
				}
				end, err := time.Parse("2006-01-02", in.EndDate)
				if err != nil {
					return fmt.Sprintf("Invalid end_date %q, use YYYY-MM-DD.", in.EndDate), nil
				}
				acts, err := c.ActivitiesBetween(ctx, start, end.AddDate(0, 0, 1), in.Limit)
				if err != nil {
					return "", err
				}
				return toJSON(acts), nil
			},
		},
		{
			Def: ToolDef{
				Name:        "get_strava_activity_by_id",
				Description: "Get detailed information about one activity.",
				Parameters: obj(map[string]any{
					"activity_id": intp("ID of the activity"),
				}, "activity_id"),
			},
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				var in struct {
					ActivityID int64 `json:"activity_id"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", err
				}
				act, err := c.ActivityByID(ctx, in.ActivityID)
				if err != nil {
					return "", err
				}
				return toJSON(act), nil
			},
		},
		{
			Def: ToolDef{
				Name:        "get_strava_recent_activities",
				Description: "Get activities from the past N days.",
				Parameters: obj(map[string]any{
					"days":  intp("Days to look back (default 7)"),
					"limit": intp("Maximum number of activities (default 10)"),
				}),
			},
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				var in struct {
					Days  int `json:"days"`
					Limit int `json:"limit"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", err
				}
				acts, err := c.RecentActivities(ctx, in.Days, in.Limit)
				if err != nil {
					return "", err
				}
				return toJSON(acts), nil
			},
		},
	}
}
