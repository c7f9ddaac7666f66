package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CreateRunDir makes a timestamped directory under baseDir/runs and
// repoints the baseDir/latest symlink at it.
func CreateRunDir(baseDir string) (string, error) {
	runsDir := filepath.Join(baseDir, "runs")
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	runDir := filepath.Join(runsDir, stamp)
	runDir, err := filepath.Abs(runDir)
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

// RunPath is where an agent's run document lives inside a run dir.
func RunPath(runDir, agent string) string {
	return filepath.Join(runDir, "agents", agent, "run.json")
}

func WriteRun(runDir string, run *EvaluationRun) error {
	path := RunPath(runDir, run.Agent)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating agent dir: %w", err)
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func ReadRun(path string) (*EvaluationRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run: %w", err)
	}
	var run EvaluationRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parsing run %s: %w", path, err)
	}
	return &run, nil
}

// CollectRuns gathers every run document under runDir. Unparseable
// files are skipped; the rest of the batch still reports.
func CollectRuns(runDir string) ([]*EvaluationRun, error) {
	var runs []*EvaluationRun
	err := filepath.Walk(runDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Name() == "run.json" {
			run, err := ReadRun(path)
			if err != nil {
				return nil
			}
			runs = append(runs, run)
		}
		return nil
	})
	return runs, err
}
