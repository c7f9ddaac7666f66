package dataset

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/signalnine/retrievalbench/internal/config"
	"github.com/signalnine/retrievalbench/internal/gitlog"
	"github.com/signalnine/retrievalbench/internal/goldset"
)

// Classification is the classifier's verdict on an eligible commit:
// the normalized ground-truth file set and its complexity tier.
type Classification struct {
	Files []string
	Tier  goldset.Complexity
}

// Words that mark a short commit message as formatting-only noise.
var formattingWords = regexp.MustCompile(`\b(format|formatting|whitespace|indent|style|typo|typos|spelling|comment|comments)\b`)

// Words that suggest a documentation-only commit.
var docWords = regexp.MustCompile(`\b(doc|docs|documentation|readme|changelog)\b`)

var docDirs = []string{"docs/", "doc/", "documentation/"}
var docExtensions = []string{".md", ".txt", ".rst", ".adoc"}

// Classifier judges a single commit's eligibility as a test case.
// Pure: classification has no side effects beyond logging skips.
type Classifier struct {
	cfg      config.Dataset
	excludes []exclusion
	logger   *zap.Logger
}

type exclusion struct {
	raw string
	re  *regexp.Regexp
}

func NewClassifier(cfg config.Dataset, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	excludes := make([]exclusion, 0, len(cfg.ExcludePatterns))
	for _, p := range cfg.ExcludePatterns {
		p = strings.ReplaceAll(p, "\\", "/")
		excludes = append(excludes, exclusion{raw: p, re: globToRegexp(p)})
	}
	return &Classifier{cfg: cfg, excludes: excludes, logger: logger}
}

// Classify reports whether commit is eligible and, if so, its
// normalized changed-file set and complexity tier.
func (c *Classifier) Classify(commit gitlog.Commit) (Classification, bool) {
	if commit.Hash == "" || commit.Timestamp.IsZero() {
		c.logger.Warn("skipping commit with malformed metadata", zap.String("hash", commit.Hash))
		return Classification{}, false
	}
	if commit.ParentCount > 1 && !c.cfg.IncludeMerges {
		return Classification{}, false
	}
	if c.isTrivial(commit) {
		return Classification{}, false
	}

	var files []string
	for _, f := range commit.Files {
		f = NormalizePath(f)
		if f == "" || c.excluded(f) {
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return Classification{}, false
	}
	if len(files) < c.cfg.MinFiles || len(files) > c.cfg.MaxFiles {
		return Classification{}, false
	}

	return Classification{Files: files, Tier: c.tier(len(files))}, true
}

func (c *Classifier) tier(fileCount int) goldset.Complexity {
	switch {
	case fileCount < c.cfg.LowThreshold:
		return goldset.ComplexityLow
	case fileCount <= c.cfg.HighThreshold:
		return goldset.ComplexityMedium
	default:
		return goldset.ComplexityHigh
	}
}

// isTrivial rejects commits unlikely to represent functional change:
// short formatting/typo messages, and doc-sounding commits whose
// changed files are all documentation.
func (c *Classifier) isTrivial(commit gitlog.Commit) bool {
	message := strings.ToLower(strings.TrimSpace(commit.Message))

	if formattingWords.MatchString(message) && len(strings.Fields(message)) < 10 {
		return true
	}

	if docWords.MatchString(message) && len(commit.Files) > 0 {
		allDocs := true
		for _, f := range commit.Files {
			if !isDocFile(NormalizePath(f)) {
				allDocs = false
				break
			}
		}
		if allDocs {
			return true
		}
	}
	return false
}

func isDocFile(path string) bool {
	for _, ext := range docExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	for _, dir := range docDirs {
		if strings.HasPrefix(path, dir) {
			return true
		}
	}
	return false
}

func (c *Classifier) excluded(path string) bool {
	base := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		base = path[i+1:]
	}
	for _, ex := range c.excludes {
		// Patterns ending in / exclude a whole directory subtree.
		if strings.HasSuffix(ex.raw, "/") {
			if strings.HasPrefix(path, ex.raw) {
				return true
			}
			continue
		}
		if ex.re.MatchString(path) || ex.re.MatchString(base) {
			return true
		}
	}
	return false
}

// NormalizePath makes a path root-relative with forward slashes.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(strings.TrimSpace(path), "\\", "/")
	return strings.TrimLeft(path, "/")
}

// globToRegexp compiles a glob where ** crosses path separators and
// * / ? stay within one segment.
func globToRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		switch {
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(".*")
			i++
		case pattern[i] == '*':
			b.WriteString("[^/]*")
		case pattern[i] == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(pattern[i])))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}
