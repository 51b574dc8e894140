// Package assembly merges the repository snapshot with analyzer output,
// relevance scores, and project metadata into the single immutable value
// that budget optimization consumes.
package assembly

import (
	"sort"

	"gitscribe/internal/analysis"
	"gitscribe/internal/git"
	"gitscribe/internal/metadata"
	"gitscribe/internal/relevance"
)

// ChangedFile is one staged file as prompt construction sees it.
type ChangedFile struct {
	Path        string
	OldPath     string
	Change      git.ChangeType
	Binary      bool
	Diff        string
	Annotations []string
	FileType    string
	Score       float64
}

// Context is the assembled input to optimization. It is built once per
// invocation and never mutated; optimization returns a new value.
type Context struct {
	Branch        string
	RecentCommits []git.RecentCommit
	Files         []ChangedFile
	Metadata      metadata.Project
	// OmittedFileCount counts staged files beyond the processing
	// ceiling. They appear only in the aggregate trailer.
	OmittedFileCount int
}

// OptimizedFile is a ChangedFile after budget decisions. Diff may be
// truncated; ContentExcluded means only the summary line is rendered.
type OptimizedFile struct {
	ChangedFile
	ContentExcluded bool
	// Tokens is the measured cost of this file's rendered section.
	Tokens int
}

// Optimized is the budget-fitted context handed to prompt rendering.
// Dropped sections are zero-valued; Files keeps snapshot order.
type Optimized struct {
	Branch string
	// InstructionsIncluded reports whether the instruction block fit the
	// budget. The remaining sections are present when non-zero.
	InstructionsIncluded bool
	Metadata             metadata.Project
	RecentCommits        []git.RecentCommit
	Files                []OptimizedFile
	// OmittedFiles counts staged files represented only by the trailer,
	// including everything beyond the assembly ceiling.
	OmittedFiles int
	// TotalTokens is the measured size of the rendered prompt.
	TotalTokens int
}

// Limits bounds assembly work on oversized change sets.
type Limits struct {
	// MaxFiles caps how many staged files are carried forward; the rest
	// are only counted. Zero means no ceiling.
	MaxFiles int
}

// Assemble performs the pure merge. It never re-reads the repository:
// two calls with the same inputs return identical values.
func Assemble(snap *git.Snapshot, annotations map[string][]string, scores map[string]float64, meta metadata.Project, limits Limits) *Context {
	files := make([]ChangedFile, 0, len(snap.Staged))
	for _, staged := range snap.Staged {
		files = append(files, ChangedFile{
			Path:        staged.Path,
			OldPath:     staged.OldPath,
			Change:      staged.Change,
			Binary:      staged.Binary,
			Diff:        staged.Diff,
			Annotations: annotations[staged.Path],
			FileType:    analysis.ForPath(staged.Path).FileType(),
			Score:       scores[staged.Path],
		})
	}

	files, omitted := applyCeiling(files, limits.MaxFiles)

	return &Context{
		Branch:           snap.Branch,
		RecentCommits:    snap.RecentCommits,
		Files:            files,
		Metadata:         meta,
		OmittedFileCount: omitted,
	}
}

// applyCeiling keeps the maxFiles highest-scored files, preserving
// snapshot order among the survivors.
func applyCeiling(files []ChangedFile, maxFiles int) ([]ChangedFile, int) {
	if maxFiles <= 0 || len(files) <= maxFiles {
		return files, 0
	}

	type ranked struct {
		file  ChangedFile
		index int
	}
	byScore := make([]ranked, len(files))
	for i, file := range files {
		byScore[i] = ranked{file: file, index: i}
	}
	sort.SliceStable(byScore, func(i, j int) bool {
		return relevance.Before(byScore[i].file.Score, byScore[i].file.Path, byScore[j].file.Score, byScore[j].file.Path)
	})

	kept := byScore[:maxFiles]
	sort.Slice(kept, func(i, j int) bool { return kept[i].index < kept[j].index })

	result := make([]ChangedFile, maxFiles)
	for i, entry := range kept {
		result[i] = entry.file
	}
	return result, len(files) - maxFiles
}

// TopAnnotation returns the first annotation, or the file-type label
// when the analyzers produced nothing. Summary lines use it.
func (f ChangedFile) TopAnnotation() string {
	if len(f.Annotations) > 0 {
		return f.Annotations[0]
	}
	return f.FileType
}

// ChangeLabel is the change kind as rendered in prompts.
func (f ChangedFile) ChangeLabel() string {
	return f.Change.Label(f.Binary)
}
