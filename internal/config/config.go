package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Repository  string      `yaml:"repository"`
	Dataset     Dataset     `yaml:"dataset"`
	Evaluation  Evaluation  `yaml:"evaluation"`
	Synthesizer Synthesizer `yaml:"synthesizer"`
	Agents      []Agent     `yaml:"agents"`
	Output      Output      `yaml:"output"`
	Logging     Logging     `yaml:"logging"`
}

// Dataset controls which commits become test cases.
type Dataset struct {
	ExcludePatterns []string `yaml:"exclude_patterns"`
	MinFiles        int      `yaml:"min_files"`
	MaxFiles        int      `yaml:"max_files"`
	IncludeMerges   bool     `yaml:"include_merges"`
	MaxCommits      int      `yaml:"max_commits"`
	// Complexity tier boundaries: below LowThreshold is low, above
	// HighThreshold is high, medium between.
	LowThreshold  int `yaml:"low_threshold"`
	HighThreshold int `yaml:"high_threshold"`
}

type Evaluation struct {
	Trials         int   `yaml:"trials"`
	TimeoutSeconds int   `yaml:"timeout_seconds"`
	Randomize      *bool `yaml:"randomize"`
	Seed           int64 `yaml:"seed"`
	Parallel       int   `yaml:"parallel"`
}

// Synthesizer controls the optional LLM paraphrase step. When
// disabled or failing, query synthesis falls back to rule-based.
type Synthesizer struct {
	UseLLM  bool   `yaml:"use_llm"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Agent configures one retrieval agent under test. Kind selects the
// variant; the remaining fields apply per kind.
type Agent struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"` // keyword, http, cli, llm

	// keyword
	CaseSensitive bool `yaml:"case_sensitive"`

	// http
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`

	// cli: template with {query} and {repo} placeholders
	Command string `yaml:"command"`

	// llm
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type Output struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
}

type Logging struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Dataset.MinFiles == 0 {
		cfg.Dataset.MinFiles = 2
	}
	if cfg.Dataset.MaxFiles == 0 {
		cfg.Dataset.MaxFiles = 20
	}
	if cfg.Dataset.MinFiles > cfg.Dataset.MaxFiles {
		return fmt.Errorf("dataset: min_files %d exceeds max_files %d", cfg.Dataset.MinFiles, cfg.Dataset.MaxFiles)
	}
	if cfg.Dataset.LowThreshold == 0 {
		cfg.Dataset.LowThreshold = 2
	}
	if cfg.Dataset.HighThreshold == 0 {
		cfg.Dataset.HighThreshold = 20
	}
	if cfg.Dataset.LowThreshold > cfg.Dataset.HighThreshold {
		return fmt.Errorf("dataset: low_threshold %d exceeds high_threshold %d", cfg.Dataset.LowThreshold, cfg.Dataset.HighThreshold)
	}
	if len(cfg.Dataset.ExcludePatterns) == 0 {
		cfg.Dataset.ExcludePatterns = DefaultExcludePatterns()
	}

	if cfg.Evaluation.Trials == 0 {
		cfg.Evaluation.Trials = 3
	}
	if cfg.Evaluation.Trials < 1 {
		return fmt.Errorf("evaluation: trials must be at least 1")
	}
	if cfg.Evaluation.TimeoutSeconds == 0 {
		cfg.Evaluation.TimeoutSeconds = 30
	}
	if cfg.Evaluation.TimeoutSeconds < 1 {
		return fmt.Errorf("evaluation: timeout_seconds must be at least 1")
	}
	if cfg.Evaluation.Parallel < 1 {
		cfg.Evaluation.Parallel = 1
	}

	for i, a := range cfg.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent %d: name is required", i)
		}
		switch a.Kind {
		case "keyword":
		case "http":
			if a.URL == "" {
				return fmt.Errorf("agent %q: url is required for kind http", a.Name)
			}
		case "cli":
			if a.Command == "" {
				return fmt.Errorf("agent %q: command is required for kind cli", a.Name)
			}
		case "llm":
			if a.Model == "" {
				return fmt.Errorf("agent %q: model is required for kind llm", a.Name)
			}
		default:
			return fmt.Errorf("agent %q: unknown kind %q", a.Name, a.Kind)
		}
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./results"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "table"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	return nil
}

func DefaultExcludePatterns() []string {
	return []string{"*.md", "*.json", "test_*", "docs/**"}
}

// Default returns the configuration written by init-config.
func Default() *Config {
	randomize := true
	cfg := &Config{
		Repository: "/path/to/repo",
		Dataset: Dataset{
			ExcludePatterns: DefaultExcludePatterns(),
			MinFiles:        2,
			MaxFiles:        20,
			MaxCommits:      500,
			LowThreshold:    2,
			HighThreshold:   20,
		},
		Evaluation: Evaluation{
			Trials:         3,
			TimeoutSeconds: 30,
			Randomize:      &randomize,
			Parallel:       1,
		},
		Agents: []Agent{
			{Name: "keyword-search", Kind: "keyword"},
		},
		Output:  Output{Dir: "./results", Format: "table"},
		Logging: Logging{Level: "info"},
	}
	return cfg
}

// WriteDefault writes the default configuration template to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// RandomizeOrder reports whether evaluation order should be shuffled.
// Unset means yes.
func (e Evaluation) RandomizeOrder() bool {
	return e.Randomize == nil || *e.Randomize
}
