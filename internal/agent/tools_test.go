package agent

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ultracoach/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func findTool(t *testing.T, tools []Tool, name string) Tool {
	t.Helper()
	for _, tool := range tools {
		if tool.Def.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %q not found", name)
	return Tool{}
}

func TestProfileToolUpdateThenQuery(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tool := findTool(t, StoreTools(s), "profile")

	out, err := tool.Run(ctx, json.RawMessage(`{"birth_year": 1990, "preferred_terrain": "trail"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "updated")

	out, err = tool.Run(ctx, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, out, "1990")
	assert.Contains(t, out, "trail")
}

func TestGoalsToolRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tool := findTool(t, StoreTools(s), "goals")

	out, err := tool.Run(ctx, json.RawMessage(`{"event_name": "100K Trail", "event_date": "2027-06-15", "distance_km": 100}`))
	require.NoError(t, err)
	assert.Contains(t, out, "Goal saved")

	out, err = tool.Run(ctx, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, out, "100K Trail")

	out, err = tool.Run(ctx, json.RawMessage(`{"remove_goal_name": "100K Trail"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "removed")

	goals, err := s.ActiveGoals(ctx)
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestGoalsToolRejectsBadDate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tool := findTool(t, StoreTools(s), "goals")

	out, err := tool.Run(ctx, json.RawMessage(`{"event_name": "UTMB", "event_date": "June 15"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "Invalid event_date")
}

func TestEpisodeToolsLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tools := StoreTools(s)

	out, err := findTool(t, tools, "log_episode").Run(ctx,
		json.RawMessage(`{"topic": "injury", "narrative": "Knee pain", "severity": 6}`))
	require.NoError(t, err)
	assert.Contains(t, out, "Episode logged")

	eps, err := s.CurrentEpisodes(ctx, "injury")
	require.NoError(t, err)
	require.Len(t, eps, 1)

	out, err = findTool(t, tools, "end_episode").Run(ctx,
		json.RawMessage(`{"episode_id": "`+eps[0].ID+`"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "resolved")

	out, err = findTool(t, tools, "current_episodes").Run(ctx, json.RawMessage(`{"topic": "injury"}`))
	require.NoError(t, err)
	assert.Equal(t, "No open episodes.", out)
}

func TestConversationContextTool(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.AppendTurn(ctx, "user", "I want to run a 100 miler")

	out, err := findTool(t, StoreTools(s), "conversation_context").Run(ctx, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, out, "100 miler")
}
