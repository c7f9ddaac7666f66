package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPAgent drives a remote search service over a small JSON API:
// POST {query, repository} → {files, scores}. Transport and decode
// failures are contained and surfaced as an empty result with the
// diagnostic in metadata.
type HTTPAgent struct {
	name     string
	url      string
	apiKey   string
	client   *http.Client
	repoPath string
}

func NewHTTPAgent(name, url, apiKey string) *HTTPAgent {
	if name == "" {
		name = "http-api"
	}
	return &HTTPAgent{
		name:   name,
		url:    url,
		apiKey: apiKey,
		client: &http.Client{},
	}
}

func (a *HTTPAgent) Name() string { return a.name }

func (a *HTTPAgent) Initialize(_ context.Context, repoPath string) error {
	if a.url == "" {
		return fmt.Errorf("http agent %s: no url configured", a.name)
	}
	a.repoPath = repoPath
	return nil
}

func (a *HTTPAgent) Retrieve(ctx context.Context, query string) (RetrievalResult, error) {
	payload, _ := json.Marshal(map[string]string{
		"query":      query,
		"repository": a.repoPath,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return errorResult(err), nil
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return errorResult(err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorResult(fmt.Errorf("API returned %d", resp.StatusCode)), nil
	}

	var body struct {
		Files  []string  `json:"files"`
		Scores []float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return errorResult(fmt.Errorf("decoding response: %w", err)), nil
	}

	return RetrievalResult{Files: body.Files, Scores: body.Scores}, nil
}

func (a *HTTPAgent) Reset() {}

func errorResult(err error) RetrievalResult {
	return RetrievalResult{Metadata: map[string]string{"error": err.Error()}}
}
