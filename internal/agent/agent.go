// Package agent implements the conversational coaching agent: a
// chat-completion loop wired to callable tools over the context store and
// the Strava activity feed.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"ultracoach/internal/store"
)

// maxIterations bounds the tool-dispatch loop for one user message.
const maxIterations = 15

// historyTurns is how many stored turns seed a fresh transcript.
const historyTurns = 6

// Agent runs multi-turn coaching conversations. Every user message and agent
// reply is persisted to the conversation log, so context survives restarts.
type Agent struct {
	provider Provider
	tools    []Tool
	byName   map[string]Tool
	store    store.Store
	msgs     []Message
}

// New builds an agent from a provider, a context store and an optional
// activity source. The transcript is seeded from the stored conversation
// tail so the agent picks up where the last session ended.
func New(ctx context.Context, p Provider, s store.Store, acts ActivitySource) (*Agent, error) {
	tools := append(StoreTools(s), StravaTools(acts)...)

	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Def.Name] = t
	}

	a := &Agent{
		provider: p,
		tools:    tools,
		byName:   byName,
		store:    s,
		msgs:     []Message{{Role: RoleSystem, Content: systemPrompt}},
	}

	tail, err := s.Tail(ctx, historyTurns)
	if err != nil {
		return nil, fmt.Errorf("load conversation tail: %w", err)
	}
	for _, turn := range tail {
		role := RoleUser
		if turn.Speaker == "agent" {
			role = RoleAssistant
		}
		a.msgs = append(a.msgs, Message{Role: role, Content: turn.Text})
	}

	return a, nil
}

// Reply sends one user message through the tool-dispatch loop and returns
// the agent's final answer. Both turns are appended to the conversation log.
func (a *Agent) Reply(ctx context.Context, input string) (string, error) {
	if _, err := a.store.AppendTurn(ctx, "user", input); err != nil {
		return "", fmt.Errorf("log user turn: %w", err)
	}
	a.msgs = append(a.msgs, Message{Role: RoleUser, Content: input})

	defs := make([]ToolDef, len(a.tools))
	for i, t := range a.tools {
		defs[i] = t.Def
	}

	for i := 0; i < maxIterations; i++ {
		msg, err := a.provider.Chat(ctx, a.msgs, defs)
		if err != nil {
			return "", err
		}
		a.msgs = append(a.msgs, *msg)

		if len(msg.ToolCalls) == 0 {
			if _, err := a.store.AppendTurn(ctx, "agent", msg.Content); err != nil {
				return "", fmt.Errorf("log agent turn: %w", err)
			}
			return msg.Content, nil
		}

		for _, call := range msg.ToolCalls {
			a.msgs = append(a.msgs, a.dispatch(ctx, call))
		}
	}

	return "", fmt.Errorf("no final answer after %d tool iterations", maxIterations)
}

// dispatch runs one tool call and wraps the result (or the failure) as a
// tool message, so the model can react instead of the turn hard-failing.
func (a *Agent) dispatch(ctx context.Context, call ToolCall) Message {
	result := Message{Role: RoleTool, ToolCallID: call.ID}

	tool, ok := a.byName[call.Name]
	if !ok {
		result.Content = fmt.Sprintf("error: unknown tool %q", call.Name)
		return result
	}

	args := call.Args
	if args == "" {
		args = "{}"
	}
	out, err := tool.Run(ctx, []byte(args))
	if err != nil {
		slog.Warn("tool call failed", "tool", call.Name, "error", err)
		result.Content = fmt.Sprintf("error: %v", err)
		return result
	}
	result.Content = out
	return result
}
