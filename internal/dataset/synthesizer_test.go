package dataset_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/signalnine/retrievalbench/internal/config"
	"github.com/signalnine/retrievalbench/internal/dataset"
)

func TestRuleBasedQuery(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"conventional prefix", "fix: handle null in a", "handle null in a"},
		{"scoped prefix", "feat(auth): add token refresh", "add token refresh"},
		{"bracket prefix", "[chore] bump dependency pins", "bump dependency pins"},
		{"issue ref", "fix: handle null in a (#123)", "handle null in a"},
		{"ticket ref", "resolve race in worker [JIRA-456]", "resolve race in worker"},
		{"bare issue ref", "fix crash when parsing #99 payloads", "fix crash when parsing payloads"},
		{"snake case split", "fix: update user_profile handling", "update user profile handling"},
		{"subject line only", "feat: add cache\n\nlong body text here", "add cache"},
		{"whitespace collapse", "fix:   too    many   spaces", "too many spaces"},
		{"revert prefix", "revert: remove flaky retry", "remove flaky retry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dataset.RuleBasedQuery(tt.message))
		})
	}
}

func TestRuleBasedQueryFallsBackToOriginal(t *testing.T) {
	// A message that strips to nothing returns the trimmed original.
	assert.Equal(t, "fix: (#12)", dataset.RuleBasedQuery("  fix: (#12)  "))
}

func TestQueryWithoutLLMUsesRules(t *testing.T) {
	s := dataset.NewSynthesizer(config.Synthesizer{}, zap.NewNop())
	got := s.Query(context.Background(), "fix: handle null in a")
	assert.Equal(t, "handle null in a", got)
}

func TestQueryLLMFailureDegrades(t *testing.T) {
	// Enabled LLM with an unreachable endpoint must fall back to the
	// rule-based result, never error out.
	s := dataset.NewSynthesizer(config.Synthesizer{
		UseLLM:  true,
		Model:   "gpt-4o-mini",
		BaseURL: "http://127.0.0.1:1/v1",
		APIKey:  "test-key",
	}, zap.NewNop())

	got := s.Query(context.Background(), "fix: handle null in a")
	assert.Equal(t, "handle null in a", got)
}
