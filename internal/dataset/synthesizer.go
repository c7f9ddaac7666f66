package dataset

import (
	"context"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/signalnine/retrievalbench/internal/config"
)

var (
	conventionalPrefix = regexp.MustCompile(`(?i)^(fix|feat|feature|chore|docs|style|refactor|test|build|ci|perf|revert|refs)(\([^)]*\))?!?:\s*`)
	bracketPrefix      = regexp.MustCompile(`(?i)^\[(fix|feat|feature|chore|docs|style|refactor|test|build|ci|perf|revert)\]\s*`)
	issueRef           = regexp.MustCompile(`\(#\d+\)`)
	ticketRef          = regexp.MustCompile(`\[[A-Za-z]+-\d+\]`)
	bareIssueRef       = regexp.MustCompile(`#\d+`)
	snakeCase          = regexp.MustCompile(`([a-z])_([a-z])`)
	punctuation        = regexp.MustCompile(`[^\w\s.-]`)
	spaces             = regexp.MustCompile(`\s+`)
)

const paraphrasePrompt = `Convert this commit message into a natural language search query that a developer might use to find the relevant code files.

Commit message: %MESSAGE%

Return only the search query, nothing else. Make it concise and focused on what code changed.`

// Synthesizer turns commit messages into natural-language queries.
// The rule-based pass always succeeds; the optional LLM paraphrase
// only ever improves on it, falling back on any failure.
type Synthesizer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewSynthesizer(cfg config.Synthesizer, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Synthesizer{model: cfg.Model, logger: logger}
	if cfg.UseLLM && cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		s.client = openai.NewClientWithConfig(clientCfg)
	}
	return s
}

// Query synthesizes a search query from a raw commit message.
func (s *Synthesizer) Query(ctx context.Context, message string) string {
	if s.client != nil {
		if q, err := s.paraphrase(ctx, message); err == nil && q != "" {
			return q
		} else if err != nil {
			s.logger.Debug("llm paraphrase failed, using rule-based query", zap.Error(err))
		}
	}
	return RuleBasedQuery(message)
}

func (s *Synthesizer) paraphrase(ctx context.Context, message string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   100,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You convert commit messages to code search queries."},
			{Role: openai.ChatMessageRoleUser, Content: strings.Replace(paraphrasePrompt, "%MESSAGE%", message, 1)},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// RuleBasedQuery strips conventional-commit prefixes, ticket
// references, and markup from the subject line.
func RuleBasedQuery(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	query := strings.TrimSpace(line)

	query = conventionalPrefix.ReplaceAllString(query, "")
	query = bracketPrefix.ReplaceAllString(query, "")
	query = issueRef.ReplaceAllString(query, "")
	query = ticketRef.ReplaceAllString(query, "")
	query = bareIssueRef.ReplaceAllString(query, "")
	query = snakeCase.ReplaceAllString(query, "$1 $2")
	query = punctuation.ReplaceAllString(query, " ")
	query = strings.TrimSpace(spaces.ReplaceAllString(query, " "))

	if query == "" {
		return strings.TrimSpace(message)
	}
	return query
}
