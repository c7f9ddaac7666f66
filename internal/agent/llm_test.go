package agent_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/signalnine/retrievalbench/internal/agent"
)

// chatStub serves the chat completions endpoint with a fixed reply.
func chatStub(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/chat/completions")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": reply}},
			},
		})
	}))
}

func TestLLMAgentRetrieve(t *testing.T) {
	srv := chatStub(t, `["src/auth.go", "src/auth_test.go"]`)
	defer srv.Close()

	repo := makeRepo(t, map[string]string{"src/auth.go": "package auth"})
	a := agent.NewLLMAgent("llm", "gpt-4o-mini", srv.URL+"/v1", "test-key", zap.NewNop())
	require.NoError(t, a.Initialize(context.Background(), repo))

	res, err := a.Retrieve(context.Background(), "where is the auth handler")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/auth.go", "src/auth_test.go"}, res.Files)
}

func TestLLMAgentFencedReply(t *testing.T) {
	srv := chatStub(t, "```json\n[\"main.go\"]\n```")
	defer srv.Close()

	repo := makeRepo(t, map[string]string{"main.go": "package main"})
	a := agent.NewLLMAgent("llm", "gpt-4o-mini", srv.URL+"/v1", "test-key", zap.NewNop())
	require.NoError(t, a.Initialize(context.Background(), repo))

	res, err := a.Retrieve(context.Background(), "entry point")
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, res.Files)
}

func TestLLMAgentGarbageReplyContained(t *testing.T) {
	srv := chatStub(t, "I think the relevant file is probably main.go")
	defer srv.Close()

	repo := makeRepo(t, map[string]string{"main.go": "package main"})
	a := agent.NewLLMAgent("llm", "gpt-4o-mini", srv.URL+"/v1", "test-key", zap.NewNop())
	require.NoError(t, a.Initialize(context.Background(), repo))

	res, err := a.Retrieve(context.Background(), "entry point")
	require.NoError(t, err, "unparseable replies must not escape the contract")
	assert.Empty(t, res.Files)
	assert.NotEmpty(t, res.Metadata["error"])
}

func TestLLMAgentUnreachableContained(t *testing.T) {
	repo := makeRepo(t, map[string]string{"main.go": "package main"})
	a := agent.NewLLMAgent("llm", "gpt-4o-mini", "http://127.0.0.1:1/v1", "test-key", zap.NewNop())
	require.NoError(t, a.Initialize(context.Background(), repo))

	res, err := a.Retrieve(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	assert.NotEmpty(t, res.Metadata["error"])
}
