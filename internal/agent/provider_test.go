package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIChatParsesToolCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req["model"])
		assert.NotEmpty(t, req["tools"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{{
				"message": map[string]interface{}{
					"role": "assistant",
					"tool_calls": []map[string]interface{}{{
						"id":   "call-9",
						"type": "function",
						"function": map[string]interface{}{
							"name":      "profile",
							"arguments": `{"birth_year": 1990}`,
						},
					}},
				},
			}},
		})
	}))
	defer srv.Close()

	p := NewOpenAI(srv.URL, "sk-test", "gpt-4o")
	msg, err := p.Chat(context.Background(),
		[]Message{{Role: RoleUser, Content: "I was born in 1990"}},
		[]ToolDef{{Name: "profile", Description: "d", Parameters: obj(map[string]any{})}})
	require.NoError(t, err)

	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call-9", msg.ToolCalls[0].ID)
	assert.Equal(t, "profile", msg.ToolCalls[0].Name)
	assert.JSONEq(t, `{"birth_year": 1990}`, msg.ToolCalls[0].Args)
}

func TestOpenAIChatSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "invalid api key"},
		})
	}))
	defer srv.Close()

	p := NewOpenAI(srv.URL, "bad-key", "gpt-4o")
	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}
