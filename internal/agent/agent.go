package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/signalnine/retrievalbench/internal/config"
)

// RetrievalResult is one agent response: a ranked file-path list,
// optional parallel confidence scores, and free-form metadata.
// Produced fresh per query, never retained across queries.
type RetrievalResult struct {
	Files    []string          `json:"files"`
	Scores   []float64         `json:"scores,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Agent is the capability contract every retrieval system under test
// must satisfy. Retrieve must be a pure function of the current index
// state and the query; state changes only through Initialize and
// Reset.
type Agent interface {
	Name() string

	// Initialize performs one-time setup such as building an index.
	// Failure is fatal to the agent's whole run.
	Initialize(ctx context.Context, repoPath string) error

	// Retrieve executes one query. Variants are expected to contain
	// internal failures and surface them as an empty result with a
	// diagnostic in Metadata; a returned error marks the attempt
	// failed.
	Retrieve(ctx context.Context, query string) (RetrievalResult, error)

	// Reset clears per-query state. Called before every test case so
	// nothing leaks between cases.
	Reset()
}

// FromConfig constructs the agent variant named by cfg.Kind.
func FromConfig(cfg config.Agent, logger *zap.Logger) (Agent, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Kind {
	case "keyword":
		return NewKeywordAgent(cfg.Name, cfg.CaseSensitive), nil
	case "http":
		return NewHTTPAgent(cfg.Name, cfg.URL, cfg.APIKey), nil
	case "cli":
		return NewCLIAgent(cfg.Name, cfg.Command), nil
	case "llm":
		return NewLLMAgent(cfg.Name, cfg.Model, cfg.BaseURL, cfg.APIKey, logger), nil
	default:
		return nil, fmt.Errorf("unknown agent kind %q", cfg.Kind)
	}
}
