package dataset

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/signalnine/retrievalbench/internal/gitlog"
	"github.com/signalnine/retrievalbench/internal/goldset"
)

// Builder assembles a gold set from a commit stream. Output is
// deterministic for a fixed history and configuration: no randomness
// in filtering or id assignment.
type Builder struct {
	Reader      gitlog.CommitReader
	Classifier  *Classifier
	Synthesizer *Synthesizer
	Logger      *zap.Logger
}

// Build enumerates up to limit commits, most-recent-first, and emits a
// test case for each eligible one.
func (b *Builder) Build(ctx context.Context, repoID string, limit int) (*goldset.GoldSet, error) {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	commits, err := b.Reader.Commits(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("enumerating commits: %w", err)
	}

	var cases []goldset.TestCase
	for _, commit := range commits {
		cls, ok := b.Classifier.Classify(commit)
		if !ok {
			continue
		}
		cases = append(cases, goldset.TestCase{
			ID:               CaseID(commit.Hash),
			CommitHash:       commit.Hash,
			Query:            b.Synthesizer.Query(ctx, commit.Message),
			GroundTruthFiles: cls.Files,
			Complexity:       cls.Tier,
			Timestamp:        commit.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	logger.Info("gold set built",
		zap.String("repository", repoID),
		zap.Int("commits_analyzed", len(commits)),
		zap.Int("cases_emitted", len(cases)),
	)

	return &goldset.GoldSet{
		TestCases: cases,
		Metadata: goldset.Metadata{
			Repository:      repoID,
			GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
			CommitsAnalyzed: len(commits),
			CasesEmitted:    len(cases),
		},
	}, nil
}

// CaseID derives a stable test case id from the commit hash.
func CaseID(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
