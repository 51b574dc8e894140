// Package relevance ranks changed files so budget-constrained prompt
// construction can decide what to keep first.
package relevance

import (
	"path/filepath"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"gitscribe/internal/git"
)

// Weights holds the tunable constants behind file scoring. Callers
// start from DefaultWeights and override individual fields through
// configuration rather than building one from scratch.
type Weights struct {
	// Change kind contributions.
	Added    float64 `toml:"added" mapstructure:"added"`
	Modified float64 `toml:"modified" mapstructure:"modified"`
	Deleted  float64 `toml:"deleted" mapstructure:"deleted"`
	Renamed  float64 `toml:"renamed" mapstructure:"renamed"`

	// FileTypes maps a file extension (without dot) to its weight.
	// Extensions not listed fall back to DefaultFileType.
	FileTypes       map[string]float64 `toml:"file_types" mapstructure:"file_types"`
	DefaultFileType float64            `toml:"default_file_type" mapstructure:"default_file_type"`

	// PerAnnotation is added per analyzer annotation, bounded by
	// AnnotationCap so chatty analyzers cannot dominate.
	PerAnnotation float64 `toml:"per_annotation" mapstructure:"per_annotation"`
	AnnotationCap float64 `toml:"annotation_cap" mapstructure:"annotation_cap"`

	// RecencyBoost is added when the file was touched by a recent commit.
	RecencyBoost float64 `toml:"recency_boost" mapstructure:"recency_boost"`

	// GeneratedWeight multiplies lock files, vendored trees, and other
	// machine-written paths. TestWeight multiplies test paths.
	GeneratedWeight float64 `toml:"generated_weight" mapstructure:"generated_weight"`
	TestWeight      float64 `toml:"test_weight" mapstructure:"test_weight"`

	// LargeChangeLines is the changed-line count past which
	// LargeChangeWeight is applied. Zero disables the damping.
	LargeChangeLines  int     `toml:"large_change_lines" mapstructure:"large_change_lines"`
	LargeChangeWeight float64 `toml:"large_change_weight" mapstructure:"large_change_weight"`
}

// DefaultWeights returns the scoring defaults. None of these are load
// bearing for correctness; they only steer which diffs survive tight
// token budgets.
func DefaultWeights() Weights {
	return Weights{
		Added:    0.9,
		Modified: 1.0,
		Deleted:  0.7,
		Renamed:  0.6,
		FileTypes: map[string]float64{
			"go":  1.0,
			"rs":  1.0,
			"js":  0.9,
			"jsx": 0.9,
			"ts":  0.9,
			"tsx": 0.9,
			"py":  0.8,
		},
		DefaultFileType:   0.5,
		PerAnnotation:     0.1,
		AnnotationCap:     0.5,
		RecencyBoost:      0.3,
		GeneratedWeight:   0.3,
		TestWeight:        0.8,
		LargeChangeLines:  800,
		LargeChangeWeight: 0.8,
	}
}

func (w Weights) changeKind(change git.ChangeType) float64 {
	switch change {
	case git.ChangeAdded:
		return w.Added
	case git.ChangeDeleted:
		return w.Deleted
	case git.ChangeRenamed:
		return w.Renamed
	default:
		return w.Modified
	}
}

func (w Weights) fileType(path string) float64 {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if weight, ok := w.FileTypes[ext]; ok {
		return weight
	}
	return w.DefaultFileType
}

// Scorer assigns a deterministic priority to each staged file.
type Scorer struct {
	weights Weights
}

func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score computes a priority per staged file path. The same snapshot and
// annotations always produce the same scores.
func (s *Scorer) Score(snap *git.Snapshot, annotations map[string][]string) map[string]float64 {
	recent := make(map[string]bool, len(snap.RecentPaths))
	for _, path := range snap.RecentPaths {
		recent[path] = true
	}

	scores := make(map[string]float64, len(snap.Staged))
	for _, file := range snap.Staged {
		scores[file.Path] = s.scoreFile(file, annotations[file.Path], recent[file.Path])
	}
	return scores
}

func (s *Scorer) scoreFile(file git.StagedFile, annotations []string, recent bool) float64 {
	w := s.weights
	score := w.changeKind(file.Change) + w.fileType(file.Path)

	bonus := w.PerAnnotation * float64(len(annotations))
	if bonus > w.AnnotationCap {
		bonus = w.AnnotationCap
	}
	score += bonus

	if recent {
		score += w.RecencyBoost
	}

	switch {
	case isGenerated(file.Path):
		score *= w.GeneratedWeight
	case isTestPath(file.Path):
		score *= w.TestWeight
	}

	if w.LargeChangeLines > 0 && changedLines(file.Diff) > w.LargeChangeLines {
		score *= w.LargeChangeWeight
	}
	return score
}

// Before reports whether a file scored a at path pathA is included ahead
// of one scored b at pathB. Higher scores come first; equal scores fall
// back to lexical path order so ranking is a total order.
func Before(a float64, pathA string, b float64, pathB string) bool {
	if a != b {
		return a > b
	}
	return pathA < pathB
}

var lockFiles = map[string]bool{
	"Cargo.lock":        true,
	"Gemfile.lock":      true,
	"composer.lock":     true,
	"go.sum":            true,
	"package-lock.json": true,
	"pnpm-lock.yaml":    true,
	"poetry.lock":       true,
	"yarn.lock":         true,
}

func isGenerated(path string) bool {
	base := filepath.Base(path)
	if lockFiles[base] || strings.HasSuffix(base, ".lock") {
		return true
	}
	if strings.HasSuffix(base, ".pb.go") ||
		strings.HasSuffix(base, ".min.js") ||
		strings.HasSuffix(base, ".min.css") {
		return true
	}
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == "vendor" || segment == "node_modules" {
			return true
		}
	}
	return false
}

func isTestPath(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, "_test.go") ||
		strings.HasPrefix(base, "test_") ||
		strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") {
		return true
	}
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == "test" || segment == "tests" || segment == "__tests__" {
			return true
		}
	}
	return false
}

// changedLines counts the physical lines a diff touches. Unparseable
// input falls back to counting raw +/- lines so scoring never fails.
func changedLines(diffText string) int {
	if diffText == "" {
		return 0
	}
	fileDiff, err := diff.ParseFileDiff([]byte(diffText))
	if err != nil {
		return rawChangedLines(diffText)
	}
	stat := fileDiff.Stat()
	return int(stat.Added + stat.Changed*2 + stat.Deleted)
}

func rawChangedLines(diffText string) int {
	count := 0
	for _, line := range strings.Split(diffText, "\n") {
		if line == "" || strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") {
			continue
		}
		if line[0] == '+' || line[0] == '-' {
			count++
		}
	}
	return count
}
