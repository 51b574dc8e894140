// Package optimize fits assembled change context into a provider token
// budget. Files are admitted in relevance order: whole when they fit,
// truncated to a head and tail window when they do not, and reduced to a
// one-line summary when even the smallest window is over budget. The
// result renders to a prompt no larger than the budget, measured with
// the same counter used while packing.
package optimize

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"gitscribe/internal/assembly"
	"gitscribe/internal/prompt"
	"gitscribe/internal/relevance"
	"gitscribe/internal/tokens"
)

// DefaultFloor is the smallest token count a truncated diff may shrink
// to. Fragments below the floor carry too little signal to be worth
// their cost, so the file is demoted to a summary line instead.
const DefaultFloor = 64

// keepWindow bounds a truncated diff to its first head and last tail
// lines. Diff hunks front-load context, so the head is kept larger.
type keepWindow struct {
	head int
	tail int
}

// truncationLadder lists the windows tried in order when a diff does
// not fit whole. Each rung keeps fewer lines than the one before it.
var truncationLadder = []keepWindow{
	{head: 50, tail: 20},
	{head: 20, tail: 10},
	{head: 10, tail: 5},
	{head: 5, tail: 3},
}

// Options tunes optimization.
type Options struct {
	// Floor is the minimum token count a truncated diff may shrink to
	// before the file is demoted to a summary line. Zero selects
	// DefaultFloor.
	Floor int
}

// Optimizer reduces an assembled context until its rendered prompt fits
// a token budget, keeping the highest-relevance content.
type Optimizer struct {
	counter tokens.Counter
	floor   int
}

// New returns an Optimizer that measures every section with counter.
func New(counter tokens.Counter, opts Options) *Optimizer {
	floor := opts.Floor
	if floor <= 0 {
		floor = DefaultFloor
	}
	return &Optimizer{counter: counter, floor: floor}
}

// Optimize fits the assembled context and the system instructions into
// budget tokens.
//
// The branch header and the omitted-files trailer are rendered
// unconditionally; their cost is reserved up front, with the trailer
// reserved at its largest possible size. Every other section is
// admitted only when its measured cost fits the remaining budget:
// first the instructions, then project metadata, then commit history,
// then the changed files in descending relevance order. Identical
// inputs always produce identical output.
func (o *Optimizer) Optimize(assembled *assembly.Context, system string, budget int) (*assembly.Optimized, error) {
	header, err := prompt.RenderHeader(assembled.Branch)
	if err != nil {
		return nil, fmt.Errorf("failed to render branch header: %w", err)
	}
	headerCost := o.counter.Count(header)

	reserve := headerCost
	if worst := assembled.OmittedFileCount + len(assembled.Files); worst > 0 {
		trailer, err := prompt.RenderTrailer(worst)
		if err != nil {
			return nil, fmt.Errorf("failed to render file trailer: %w", err)
		}
		reserve += o.counter.Count(trailer)
	}

	remaining := budget - reserve
	total := headerCost

	opt := &assembly.Optimized{Branch: assembled.Branch}

	if system != "" {
		if cost := o.counter.Count(system); cost <= remaining {
			opt.InstructionsIncluded = true
			remaining -= cost
			total += cost
		}
	}

	if !assembled.Metadata.IsEmpty() {
		section, err := prompt.RenderMetadata(assembled.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to render metadata section: %w", err)
		}
		if cost := o.counter.Count(section); cost <= remaining {
			opt.Metadata = assembled.Metadata
			remaining -= cost
			total += cost
		}
	}

	if len(assembled.RecentCommits) > 0 {
		section, err := prompt.RenderCommits(assembled.RecentCommits)
		if err != nil {
			return nil, fmt.Errorf("failed to render commit history: %w", err)
		}
		if cost := o.counter.Count(section); cost <= remaining {
			opt.RecentCommits = assembled.RecentCommits
			remaining -= cost
			total += cost
		}
	}

	order := make([]int, len(assembled.Files))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		fa, fb := &assembled.Files[order[a]], &assembled.Files[order[b]]
		return relevance.Before(fa.Score, fa.Path, fb.Score, fb.Path)
	})

	type placedFile struct {
		file  assembly.OptimizedFile
		index int
	}
	placed := make([]placedFile, 0, len(assembled.Files))
	omitted := assembled.OmittedFileCount
	truncatedCount := 0
	summarizedCount := 0

	for _, idx := range order {
		file := assembly.OptimizedFile{ChangedFile: assembled.Files[idx]}
		chosen, cost, ok, err := o.fit(file, remaining)
		if err != nil {
			return nil, err
		}
		if !ok {
			omitted++
			continue
		}
		if chosen.ContentExcluded {
			summarizedCount++
		} else if chosen.Diff != file.Diff {
			truncatedCount++
		}
		remaining -= cost
		total += cost
		placed = append(placed, placedFile{file: chosen, index: idx})
	}

	// Restore snapshot order for rendering.
	sort.Slice(placed, func(a, b int) bool { return placed[a].index < placed[b].index })
	opt.Files = make([]assembly.OptimizedFile, len(placed))
	for i, p := range placed {
		opt.Files[i] = p.file
	}

	opt.OmittedFiles = omitted
	if omitted > 0 {
		trailer, err := prompt.RenderTrailer(omitted)
		if err != nil {
			return nil, fmt.Errorf("failed to render file trailer: %w", err)
		}
		total += o.counter.Count(trailer)
	}
	opt.TotalTokens = total

	slog.Debug("Optimized context",
		"budget", budget,
		"tokens", total,
		"files_included", len(opt.Files),
		"files_truncated", truncatedCount,
		"files_summarized", summarizedCount,
		"files_omitted", omitted)

	return opt, nil
}

// fit chooses the largest representation of file affordable within
// remaining tokens: the whole diff, a truncated window, or the summary
// line. ok is false when not even the summary fits and the file must be
// left to the trailer. Binary files are annotation-only and are never
// truncated or summarized.
func (o *Optimizer) fit(file assembly.OptimizedFile, remaining int) (assembly.OptimizedFile, int, bool, error) {
	if remaining <= 0 {
		return file, 0, false, nil
	}

	cost, err := o.sectionCost(file)
	if err != nil {
		return file, 0, false, err
	}
	if cost <= remaining {
		file.Tokens = cost
		return file, cost, true, nil
	}
	if file.Binary {
		return file, 0, false, nil
	}

	lines := strings.Split(strings.TrimSuffix(file.Diff, "\n"), "\n")
	for _, window := range truncationLadder {
		if window.head+window.tail >= len(lines) {
			continue
		}
		candidate := file
		candidate.Diff = headTail(lines, window)
		cost, err := o.sectionCost(candidate)
		if err != nil {
			return file, 0, false, err
		}
		if cost <= remaining {
			candidate.Tokens = cost
			return candidate, cost, true, nil
		}
		if o.counter.Count(candidate.Diff) <= o.floor {
			break
		}
	}

	summary := file
	summary.ContentExcluded = true
	summary.Diff = ""
	cost, err = o.sectionCost(summary)
	if err != nil {
		return file, 0, false, err
	}
	if cost > remaining {
		return file, 0, false, nil
	}
	summary.Tokens = cost
	return summary, cost, true, nil
}

// sectionCost measures the rendered section for file.
func (o *Optimizer) sectionCost(file assembly.OptimizedFile) (int, error) {
	section, err := prompt.RenderFile(file)
	if err != nil {
		return 0, fmt.Errorf("failed to render file section for %s: %w", file.Path, err)
	}
	return o.counter.Count(section), nil
}

// headTail keeps the first window.head and last window.tail lines of
// the diff, replacing the middle with a count of what was dropped. The
// caller guarantees the window is smaller than the diff.
func headTail(lines []string, window keepWindow) string {
	omitted := len(lines) - window.head - window.tail
	var b strings.Builder
	for _, line := range lines[:window.head] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "… %d lines omitted …", omitted)
	for _, line := range lines[len(lines)-window.tail:] {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}
