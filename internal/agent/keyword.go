package agent

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"dist":         true,
	"build":        true,
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "was": true,
	"are": true, "were": true, "be": true, "been": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "should": true, "could": true, "can": true,
	"this": true, "that": true, "these": true, "those": true, "it": true,
}

var wordToken = regexp.MustCompile(`\w+`)

// KeywordAgent is the baseline variant: an in-memory content index
// scored by keyword occurrence counts. Ranking is deterministic
// (score descending, then path ascending).
type KeywordAgent struct {
	name          string
	caseSensitive bool
	repoPath      string
	index         map[string]string
	lastScores    map[string]int
}

func NewKeywordAgent(name string, caseSensitive bool) *KeywordAgent {
	if name == "" {
		name = "keyword-search"
	}
	return &KeywordAgent{name: name, caseSensitive: caseSensitive}
}

func (a *KeywordAgent) Name() string { return a.name }

// Initialize walks the repository and indexes every readable text
// file by its root-relative forward-slash path.
func (a *KeywordAgent) Initialize(_ context.Context, repoPath string) error {
	a.repoPath = repoPath
	a.index = make(map[string]string)

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
		data, err := os.ReadFile(path)
		if err != nil || bytes.IndexByte(data, 0) >= 0 {
			// Unreadable or binary, leave it out of the index.
			return nil
		}
		a.index[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("indexing %s: %w", repoPath, err)
	}
	if len(a.index) == 0 {
		return fmt.Errorf("indexing %s: no readable files", repoPath)
	}
	return nil
}

func (a *KeywordAgent) Retrieve(_ context.Context, query string) (RetrievalResult, error) {
	keywords := a.extractKeywords(query)
	if len(a.index) == 0 || len(keywords) == 0 {
		return RetrievalResult{Metadata: map[string]string{"total_matches": "0"}}, nil
	}

	scores := make(map[string]int)
	for path, content := range a.index {
		if s := a.matchScore(content, keywords); s > 0 {
			scores[path] = s
		}
	}

	ranked := make([]string, 0, len(scores))
	for path := range scores {
		ranked = append(ranked, path)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	confidences := make([]float64, len(ranked))
	for i, path := range ranked {
		confidences[i] = float64(scores[path])
	}

	a.lastScores = scores

	return RetrievalResult{
		Files:  ranked,
		Scores: confidences,
		Metadata: map[string]string{
			"total_matches": strconv.Itoa(len(ranked)),
			"keywords":      strings.Join(keywords, " "),
		},
	}, nil
}

// Reset drops per-query state. The content index survives; it is
// query-independent by construction.
func (a *KeywordAgent) Reset() {
	a.lastScores = nil
}

func (a *KeywordAgent) extractKeywords(query string) []string {
	if !a.caseSensitive {
		query = strings.ToLower(query)
	}
	var keywords []string
	for _, tok := range wordToken.FindAllString(query, -1) {
		if len(tok) > 2 && !stopWords[strings.ToLower(tok)] {
			keywords = append(keywords, tok)
		}
	}
	return keywords
}

func (a *KeywordAgent) matchScore(content string, keywords []string) int {
	if !a.caseSensitive {
		content = strings.ToLower(content)
	}
	score := 0
	for _, kw := range keywords {
		score += strings.Count(content, kw)
	}
	return score
}
