package dataset_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/signalnine/retrievalbench/internal/config"
	"github.com/signalnine/retrievalbench/internal/dataset"
	"github.com/signalnine/retrievalbench/internal/gitlog"
	"github.com/signalnine/retrievalbench/internal/goldset"
)

func newBuilder(reader gitlog.CommitReader) *dataset.Builder {
	return &dataset.Builder{
		Reader:      reader,
		Classifier:  dataset.NewClassifier(datasetConfig(), zap.NewNop()),
		Synthesizer: dataset.NewSynthesizer(config.Synthesizer{}, zap.NewNop()),
		Logger:      zap.NewNop(),
	}
}

func TestBuildFromSyntheticHistory(t *testing.T) {
	reader := &gitlog.StaticReader{List: []gitlog.Commit{
		{
			Hash:        "abc1234567890def",
			Message:     "fix: handle null in a",
			Timestamp:   time.Unix(1714500000, 0),
			ParentCount: 1,
			Files:       []string{"a.py", "b.py"},
		},
		{
			Hash:        "def4567890123abc",
			Message:     "Merge branch 'feature'",
			Timestamp:   time.Unix(1714400000, 0),
			ParentCount: 2,
			Files:       []string{"x.py"},
		},
		{
			Hash:        "0123456789abcdef",
			Message:     "docs: refresh the contributor documentation layout",
			Timestamp:   time.Unix(1714300000, 0),
			ParentCount: 1,
			Files:       []string{"README.md"},
		},
	}}

	gs, err := newBuilder(reader).Build(context.Background(), "demo", 0)
	require.NoError(t, err)

	require.Len(t, gs.TestCases, 1)
	tc := gs.TestCases[0]
	assert.Equal(t, "abc12345", tc.ID)
	assert.Equal(t, "abc1234567890def", tc.CommitHash)
	assert.Equal(t, "handle null in a", tc.Query)
	assert.Equal(t, []string{"a.py", "b.py"}, tc.GroundTruthFiles)
	assert.Equal(t, goldset.ComplexityMedium, tc.Complexity)

	assert.Equal(t, "demo", gs.Metadata.Repository)
	assert.Equal(t, 3, gs.Metadata.CommitsAnalyzed)
	assert.Equal(t, 1, gs.Metadata.CasesEmitted)
}

func TestBuildIsDeterministic(t *testing.T) {
	reader := &gitlog.StaticReader{List: []gitlog.Commit{
		{Hash: "abc1234567890def", Message: "fix: a and b", Timestamp: time.Unix(1714500000, 0), ParentCount: 1, Files: []string{"a.py", "b.py"}},
		{Hash: "def4567890123abc", Message: "feat: add c", Timestamp: time.Unix(1714400000, 0), ParentCount: 1, Files: []string{"c.py", "d.py"}},
	}}
	b := newBuilder(reader)

	first, err := b.Build(context.Background(), "demo", 0)
	require.NoError(t, err)
	second, err := b.Build(context.Background(), "demo", 0)
	require.NoError(t, err)

	assert.Equal(t, first.TestCases, second.TestCases)
}

func TestBuildPropagatesReaderError(t *testing.T) {
	b := newBuilder(failingReader{})
	_, err := b.Build(context.Background(), "demo", 0)
	assert.Error(t, err)
}

type failingReader struct{}

func (failingReader) Commits(context.Context, int) ([]gitlog.Commit, error) {
	return nil, assert.AnError
}

func TestCaseID(t *testing.T) {
	assert.Equal(t, "abcdef01", dataset.CaseID("abcdef0123456789"))
	assert.Equal(t, "abc", dataset.CaseID("abc"))
}
