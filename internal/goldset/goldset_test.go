package goldset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/retrievalbench/internal/goldset"
)

func sample() *goldset.GoldSet {
	return &goldset.GoldSet{
		TestCases: []goldset.TestCase{
			{
				ID:               "abc12345",
				CommitHash:       "abc1234567890def",
				Query:            "handle null in a",
				GroundTruthFiles: []string{"a.py", "b.py"},
				Complexity:       goldset.ComplexityMedium,
				Timestamp:        "2024-05-01T12:00:00Z",
			},
		},
		Metadata: goldset.Metadata{
			Repository:      "demo",
			GeneratedAt:     "2024-05-02T08:00:00Z",
			CommitsAnalyzed: 40,
			CasesEmitted:    1,
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gold_set.json")
	want := sample()

	require.NoError(t, goldset.Save(want, path))

	got, err := goldset.Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMissing(t *testing.T) {
	_, err := goldset.Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadRejectsEmptyGroundTruth(t *testing.T) {
	gs := sample()
	gs.TestCases[0].GroundTruthFiles = nil
	path := filepath.Join(t.TempDir(), "gold_set.json")
	require.NoError(t, goldset.Save(gs, path))

	_, err := goldset.Load(path)
	assert.ErrorContains(t, err, "empty ground truth")
}

func TestLoadRejectsMissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gold_set.json")
	data := `{"test_cases":[{"id":"","ground_truth_files":["a.py"]}],"metadata":{}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := goldset.Load(path)
	assert.ErrorContains(t, err, "no id")
}
