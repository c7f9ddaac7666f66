package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const llmPrompt = `You are a code search engine. Given a repository file listing and a search query, return the files most relevant to the query.

Query: %s

Files:
%s

Respond with ONLY a JSON array of file paths, most relevant first, e.g.:
["src/auth.go", "src/auth_test.go"]`

// Capping the listing keeps the prompt inside the model context
// window on large repositories.
const maxListedFiles = 2000

// LLMAgent asks a chat model to pick relevant files from the
// repository listing. Model failures are contained per query.
type LLMAgent struct {
	name   string
	model  string
	client *openai.Client
	files  []string
	logger *zap.Logger
}

func NewLLMAgent(name, model, baseURL, apiKey string, logger *zap.Logger) *LLMAgent {
	if name == "" {
		name = "llm-search"
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	return &LLMAgent{
		name:   name,
		model:  model,
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger,
	}
}

func (a *LLMAgent) Name() string { return a.name }

// Initialize collects the repository file listing used as model
// context for every query.
func (a *LLMAgent) Initialize(_ context.Context, repoPath string) error {
	a.files = nil
	err := filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(repoPath, path)
		if err != nil {
			return err
		}
		a.files = append(a.files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return fmt.Errorf("listing %s: %w", repoPath, err)
	}
	sort.Strings(a.files)
	if len(a.files) > maxListedFiles {
		a.files = a.files[:maxListedFiles]
	}
	return nil
}

func (a *LLMAgent) Retrieve(ctx context.Context, query string) (RetrievalResult, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(llmPrompt, query, strings.Join(a.files, "\n")),
			},
		},
	})
	if err != nil {
		a.logger.Warn("llm retrieval failed", zap.String("agent", a.name), zap.Error(err))
		return errorResult(err), nil
	}
	if len(resp.Choices) == 0 {
		return errorResult(fmt.Errorf("no choices in response")), nil
	}

	files, err := parseFileList(resp.Choices[0].Message.Content)
	if err != nil {
		return errorResult(err), nil
	}
	return RetrievalResult{Files: files}, nil
}

func (a *LLMAgent) Reset() {}

func parseFileList(content string) ([]string, error) {
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var files []string
	if err := json.Unmarshal([]byte(content), &files); err != nil {
		return nil, fmt.Errorf("parsing model response: %w", err)
	}
	return files, nil
}
