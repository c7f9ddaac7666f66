package gitlog

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Commit is one version-control commit as seen by the dataset
// pipeline. Immutable once read.
type Commit struct {
	Hash        string
	Message     string
	Timestamp   time.Time
	ParentCount int
	Files       []string
}

// CommitReader yields commits most-recent-first, bounded by limit.
// The dataset builder depends on this interface so it can be driven
// from synthetic in-memory sequences in tests.
type CommitReader interface {
	Commits(ctx context.Context, limit int) ([]Commit, error)
}

// Field and record separators for the git pretty format. Control
// bytes cannot appear in commit messages or paths, so parsing stays
// unambiguous even for multi-line messages.
const (
	recordSep = "\x01"
	fieldSep  = "\x02"
	headerEnd = "\x03"
)

// GitReader reads commit history by shelling out to the git binary.
type GitReader struct {
	RepoPath string
	Logger   *zap.Logger
}

func NewGitReader(repoPath string, logger *zap.Logger) *GitReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitReader{RepoPath: repoPath, Logger: logger}
}

// Commits runs git log and parses the output. An unreadable
// repository is fatal; a malformed record is skipped and logged.
func (r *GitReader) Commits(ctx context.Context, limit int) ([]Commit, error) {
	format := recordSep + "%H" + fieldSep + "%P" + fieldSep + "%ct" + fieldSep + "%B" + headerEnd
	args := []string{"log", "--name-only", "--pretty=format:" + format}
	if limit > 0 {
		args = append(args, "-n", strconv.Itoa(limit))
	}

	out, err := runGit(ctx, r.RepoPath, args...)
	if err != nil {
		return nil, fmt.Errorf("reading history of %s: %w", r.RepoPath, err)
	}
	return r.parse(out), nil
}

func (r *GitReader) parse(out string) []Commit {
	var commits []Commit
	for _, record := range strings.Split(out, recordSep) {
		if strings.TrimSpace(record) == "" {
			continue
		}
		commit, err := parseRecord(record)
		if err != nil {
			r.Logger.Warn("skipping malformed commit record", zap.Error(err))
			continue
		}
		commits = append(commits, commit)
	}
	return commits
}

func parseRecord(record string) (Commit, error) {
	header, rest, found := strings.Cut(record, headerEnd)
	if !found {
		return Commit{}, fmt.Errorf("record has no header terminator")
	}
	fields := strings.SplitN(header, fieldSep, 4)
	if len(fields) != 4 {
		return Commit{}, fmt.Errorf("header has %d fields, want 4", len(fields))
	}
	hash := strings.TrimSpace(fields[0])
	if hash == "" {
		return Commit{}, fmt.Errorf("record has empty hash")
	}
	epoch, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
	if err != nil {
		return Commit{}, fmt.Errorf("commit %s: bad timestamp %q", hash, fields[2])
	}

	parents := 0
	if p := strings.TrimSpace(fields[1]); p != "" {
		parents = len(strings.Fields(p))
	}

	var files []string
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}

	return Commit{
		Hash:        hash,
		Message:     fields[3],
		Timestamp:   time.Unix(epoch, 0).UTC(),
		ParentCount: parents,
		Files:       files,
	}, nil
}

func runGit(ctx context.Context, repoPath string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(ee.Stderr)), err)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// StaticReader serves a fixed commit sequence. Used by tests and by
// any caller that already holds the history in memory.
type StaticReader struct {
	List []Commit
}

func (s *StaticReader) Commits(_ context.Context, limit int) ([]Commit, error) {
	if limit <= 0 || limit >= len(s.List) {
		return s.List, nil
	}
	return s.List[:limit], nil
}
