package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider returns canned messages in order, recording what it saw.
type scriptedProvider struct {
	script []Message
	calls  int
	seen   [][]Message
}

func (p *scriptedProvider) Chat(ctx context.Context, msgs []Message, tools []ToolDef) (*Message, error) {
	p.seen = append(p.seen, append([]Message(nil), msgs...))
	m := p.script[p.calls]
	p.calls++
	return &m, nil
}

func TestReplyPlainAnswer(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := &scriptedProvider{script: []Message{
		{Role: RoleAssistant, Content: "Ease back on mileage this week."},
	}}

	a, err := New(ctx, p, s, nil)
	require.NoError(t, err)

	out, err := a.Reply(ctx, "My legs feel heavy, what should I do?")
	require.NoError(t, err)
	assert.Equal(t, "Ease back on mileage this week.", out)

	// Both turns persisted in order.
	turns, err := s.Tail(ctx, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Speaker)
	assert.Equal(t, "agent", turns[1].Speaker)
}

func TestReplyDispatchesToolCalls(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := &scriptedProvider{script: []Message{
		{Role: RoleAssistant, ToolCalls: []ToolCall{{
			ID:   "call-1",
			Name: "log_episode",
			Args: `{"topic": "fatigue", "narrative": "slept 4 hours", "severity": 7}`,
		}}},
		{Role: RoleAssistant, Content: "Logged it. Take today easy."},
	}}

	a, err := New(ctx, p, s, nil)
	require.NoError(t, err)

	out, err := a.Reply(ctx, "I barely slept last night")
	require.NoError(t, err)
	assert.Equal(t, "Logged it. Take today easy.", out)

	// The tool actually hit the store.
	eps, err := s.CurrentEpisodes(ctx, "fatigue")
	require.NoError(t, err)
	require.Len(t, eps, 1)
	assert.Equal(t, 7, eps[0].Severity)

	// Second model call saw the tool result message.
	require.Equal(t, 2, p.calls)
	last := p.seen[1][len(p.seen[1])-1]
	assert.Equal(t, RoleTool, last.Role)
	assert.Equal(t, "call-1", last.ToolCallID)
	assert.Contains(t, last.Content, "Episode logged")
}

func TestReplyUnknownToolSurfacesError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := &scriptedProvider{script: []Message{
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "x", Name: "no_such_tool", Args: "{}"}}},
		{Role: RoleAssistant, Content: "Sorry, let me try differently."},
	}}

	a, err := New(ctx, p, s, nil)
	require.NoError(t, err)

	_, err = a.Reply(ctx, "hello")
	require.NoError(t, err)

	last := p.seen[1][len(p.seen[1])-1]
	assert.Contains(t, last.Content, "unknown tool")
}

func TestNewSeedsTranscriptFromTail(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.AppendTurn(ctx, "user", "remember: goal race is in June")
	s.AppendTurn(ctx, "agent", "Noted, June goal race.")

	p := &scriptedProvider{script: []Message{
		{Role: RoleAssistant, Content: "ok"},
	}}
	a, err := New(ctx, p, s, nil)
	require.NoError(t, err)

	_, err = a.Reply(ctx, "when is my race again?")
	require.NoError(t, err)

	// system + 2 seeded + new user message, in order.
	seen := p.seen[0]
	require.GreaterOrEqual(t, len(seen), 4)
	assert.Equal(t, RoleSystem, seen[0].Role)
	assert.Contains(t, seen[1].Content, "June")
	assert.Equal(t, RoleAssistant, seen[2].Role)
}
