package changes

import (
	"regexp"
	"strings"

	"gitscribe/internal/git"
)

var (
	issuePattern       = regexp.MustCompile(`#(\d+)`)
	pullRequestPattern = regexp.MustCompile(`(?i)pull request #?(\d+)`)
)

// FileChange records how one file changed within a commit.
type FileChange struct {
	Path        string
	OldPath     string
	Change      git.ChangeType
	Binary      bool
	Annotations []string
}

// AnalyzedChange is one commit enriched with classification, issue and
// pull request references, and an impact score.
type AnalyzedChange struct {
	CommitHash  string
	Message     string
	Author      string
	FileChanges []FileChange
	Metrics     Metrics
	ImpactScore float64
	Category    Category
	Breaking    bool
	Issues      []string
	PullRequest string
}

// AnalyzeCommits converts raw range commits into analyzed changes,
// preserving commit order.
func AnalyzeCommits(commits []git.RangeCommit) []AnalyzedChange {
	analyzed := make([]AnalyzedChange, 0, len(commits))
	for _, commit := range commits {
		analyzed = append(analyzed, analyzeCommit(commit))
	}
	return analyzed
}

func analyzeCommit(commit git.RangeCommit) AnalyzedChange {
	message := commit.Subject
	if commit.Body != "" {
		message += "\n\n" + commit.Body
	}

	fileChanges := make([]FileChange, 0, len(commit.FileStats))
	for _, stat := range commit.FileStats {
		fileChanges = append(fileChanges, FileChange{
			Path:    stat.Path,
			OldPath: stat.OldPath,
			Change:  stat.Change,
			Binary:  stat.Binary,
		})
	}

	metrics := Metrics{
		TotalCommits:      1,
		FilesChanged:      len(commit.FileStats),
		Insertions:        commit.Insertions,
		Deletions:         commit.Deletions,
		TotalLinesChanged: commit.Insertions + commit.Deletions,
	}
	breaking := detectBreaking(message, fileChanges)

	return AnalyzedChange{
		CommitHash:  commit.Hash,
		Message:     message,
		Author:      commit.Author,
		FileChanges: fileChanges,
		Metrics:     metrics,
		ImpactScore: impactScore(metrics, len(fileChanges), breaking),
		Category:    classify(message, fileChanges),
		Breaking:    breaking,
		Issues:      extractIssues(message),
		PullRequest: extractPullRequest(message),
	}
}

// classify picks the changelog category from message keywords first,
// falling back to the add/delete shape of the file set.
func classify(message string, files []FileChange) Category {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "add") || strings.Contains(lower, "new"):
		return Added
	case strings.Contains(lower, "deprecat"):
		return Deprecated
	case strings.Contains(lower, "remov") || strings.Contains(lower, "delet"):
		return Removed
	case strings.Contains(lower, "fix") || strings.Contains(lower, "bug"):
		return Fixed
	case strings.Contains(lower, "secur") || strings.Contains(lower, "vulnerab"):
		return Security
	}

	var hasAdditions, hasDeletions bool
	for _, fc := range files {
		switch fc.Change {
		case git.ChangeAdded:
			hasAdditions = true
		case git.ChangeDeleted:
			hasDeletions = true
		}
	}
	switch {
	case hasAdditions && !hasDeletions:
		return Added
	case hasDeletions && !hasAdditions:
		return Removed
	default:
		return Changed
	}
}

func detectBreaking(message string, files []FileChange) bool {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "breaking change") ||
		strings.Contains(lower, "breaking-change") ||
		strings.Contains(lower, "major version") {
		return true
	}

	for _, fc := range files {
		for _, note := range fc.Annotations {
			noteLower := strings.ToLower(note)
			if strings.Contains(noteLower, "breaking change") ||
				strings.Contains(noteLower, "api change") ||
				strings.Contains(noteLower, "incompatible") {
				return true
			}
		}
	}
	return false
}

func extractIssues(message string) []string {
	matches := issuePattern.FindAllStringSubmatch(message, -1)
	issues := make([]string, 0, len(matches))
	for _, m := range matches {
		issues = append(issues, m[1])
	}
	return issues
}

func extractPullRequest(message string) string {
	if m := pullRequestPattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return ""
}

// impactScore weighs a change by its size, spread, and compatibility
// consequences.
func impactScore(metrics Metrics, fileCount int, breaking bool) float64 {
	score := float64(metrics.TotalLinesChanged)/100 + float64(fileCount)/10
	if breaking {
		score += 5
	}
	return score
}

// TotalMetrics sums per-commit metrics across a range.
func TotalMetrics(analyzed []AnalyzedChange) Metrics {
	total := Metrics{TotalCommits: len(analyzed)}
	for _, change := range analyzed {
		total.FilesChanged += change.Metrics.FilesChanged
		total.Insertions += change.Metrics.Insertions
		total.Deletions += change.Metrics.Deletions
		total.TotalLinesChanged += change.Metrics.TotalLinesChanged
	}
	return total
}
