package goldset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Complexity buckets a test case by the size of its ground-truth set.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// TestCase is one benchmark query with verified ground truth. Created
// once by the dataset builder and immutable afterwards.
type TestCase struct {
	ID               string     `json:"id"`
	CommitHash       string     `json:"commit_hash"`
	Query            string     `json:"query"`
	GroundTruthFiles []string   `json:"ground_truth_files"`
	Complexity       Complexity `json:"complexity"`
	Timestamp        string     `json:"timestamp"`
}

// Metadata records how a gold set was produced.
type Metadata struct {
	Repository      string `json:"repository"`
	GeneratedAt     string `json:"generated_at"`
	CommitsAnalyzed int    `json:"commits_analyzed"`
	CasesEmitted    int    `json:"cases_emitted"`
}

// GoldSet is an ordered collection of test cases plus generation
// metadata. Loaded read-only for evaluation.
type GoldSet struct {
	TestCases []TestCase `json:"test_cases"`
	Metadata  Metadata   `json:"metadata"`
}

// Save writes the gold set as indented JSON, creating parent
// directories as needed.
func Save(gs *GoldSet, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	data, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling gold set: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a gold set from disk. Every case must carry non-empty
// ground truth; a case without it cannot be scored and makes the file
// invalid.
func Load(path string) (*GoldSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading gold set %s: %w", path, err)
	}
	var gs GoldSet
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("parsing gold set %s: %w", path, err)
	}
	for i, tc := range gs.TestCases {
		if tc.ID == "" {
			return nil, fmt.Errorf("gold set %s: test case %d has no id", path, i)
		}
		if len(tc.GroundTruthFiles) == 0 {
			return nil, fmt.Errorf("gold set %s: test case %q has empty ground truth", path, tc.ID)
		}
	}
	return &gs, nil
}
