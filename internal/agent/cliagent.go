package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// CLIAgent wraps an external command-line search tool. The command
// template may contain {query} and {repo} placeholders; output is
// parsed as a JSON array when it looks like one, otherwise as
// newline-separated paths.
type CLIAgent struct {
	name     string
	template string
	repoPath string
}

func NewCLIAgent(name, template string) *CLIAgent {
	if name == "" {
		name = "cli-tool"
	}
	return &CLIAgent{name: name, template: template}
}

func (a *CLIAgent) Name() string { return a.name }

func (a *CLIAgent) Initialize(_ context.Context, repoPath string) error {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return fmt.Errorf("resolving repo path: %w", err)
	}
	a.repoPath = abs
	return nil
}

func (a *CLIAgent) Retrieve(ctx context.Context, query string) (RetrievalResult, error) {
	command := strings.ReplaceAll(a.template, "{query}", shellQuote(query))
	command = strings.ReplaceAll(command, "{repo}", a.repoPath)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = a.repoPath
	out, err := cmd.Output()
	if err != nil {
		return errorResult(fmt.Errorf("running %s: %w", a.name, err)), nil
	}

	return RetrievalResult{Files: parseOutput(string(out))}, nil
}

func (a *CLIAgent) Reset() {}

func parseOutput(out string) []string {
	out = strings.TrimSpace(out)
	if out == "" {
		return nil
	}
	if strings.HasPrefix(out, "[") {
		var files []string
		if err := json.Unmarshal([]byte(out), &files); err == nil {
			return files
		}
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
