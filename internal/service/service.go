// Package service orchestrates the generation pipeline: repository
// snapshot, per-file analysis, relevance scoring, assembly, budget
// optimization, prompt rendering, and the provider call. Data flows one
// way; the only repository mutation is the final commit.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"gitscribe/internal/analysis"
	"gitscribe/internal/assembly"
	"gitscribe/internal/changes"
	"gitscribe/internal/config"
	"gitscribe/internal/git"
	llmerrors "gitscribe/internal/llm/errors"
	"gitscribe/internal/llm/providers"
	"gitscribe/internal/metadata"
	"gitscribe/internal/optimize"
	"gitscribe/internal/prompt"
	"gitscribe/internal/relevance"
	"gitscribe/internal/tokens"
)

const (
	// maxDiffBytes caps the cached diff fetched per staged file. Larger
	// diffs are cut before analysis; the optimizer trims further.
	maxDiffBytes = 256 * 1024

	// maxAnalyzerWorkers bounds the per-file analysis fan-out.
	maxAnalyzerWorkers = 8

	// maxReadmeBytes caps how much README text is sent for
	// summarization.
	maxReadmeBytes = 64 * 1024

	defaultTemperature = 0.7
)

// budgetLadder lists the fractions of the configured budget tried in
// order when the backend rejects the prompt as too large. The assembled
// context is reused; only optimization reruns.
var budgetLadder = []float64{1.0, 0.75, 0.5, 0.25}

// Invoker is the slice of the invocation layer the service uses.
// *llm.Runner satisfies it.
type Invoker interface {
	Generate(ctx context.Context, req providers.Request) (string, error)
}

// Candidate is one generated commit message, with the context facts a
// reviewer needs to judge it.
type Candidate struct {
	Message *prompt.GeneratedMessage
	// Text is the formatted commit message: title, blank line, wrapped
	// body.
	Text string
	// TokensUsed is the measured size of the prompt that produced the
	// message.
	TokensUsed int
	// Budget is the optimizer budget actually applied, after any
	// context-window reductions.
	Budget int
	// ExcludedFiles lists staged files whose content did not fit the
	// budget; they were represented by a summary line only.
	ExcludedFiles []string
	// OmittedFiles counts staged files represented only by the
	// aggregate trailer.
	OmittedFiles int
}

// Service wires the pipeline together for one invocation.
type Service struct {
	cfg     *config.Config
	repo    *git.Repo
	invoker Invoker
	counter tokens.Counter

	// assembled is built on first use and shared by regenerations; the
	// working tree is snapshotted exactly once per invocation.
	assembled *assembly.Context
}

// New builds a Service over an opened repository and a ready invoker.
func New(cfg *config.Config, repo *git.Repo, invoker Invoker) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		invoker: invoker,
		counter: tokens.NewCounter(""),
	}
}

// GenerateMessage produces a commit message candidate for the staged
// changes. A non-empty instructions string replaces the configured
// custom instructions for this call, which is how regeneration applies
// reviewer edits. The snapshot and assembled context are built once and
// reused across regenerations.
func (s *Service) GenerateMessage(ctx context.Context, instructions string) (*Candidate, error) {
	if s.assembled == nil {
		assembled, err := s.assemble(ctx)
		if err != nil {
			return nil, err
		}
		s.assembled = assembled
	}

	instr := s.cfg.PromptInstructions()
	if instructions != "" {
		instr.Custom = instructions
	}
	system, err := prompt.BuildSystemPrompt(instr)
	if err != nil {
		return nil, err
	}

	return s.generateWithinBudget(ctx, system)
}

// Commit applies the message to the index. With verify enabled the
// repository hooks run around the commit.
func (s *Service) Commit(ctx context.Context, message string, verify bool) (*git.CommitResult, error) {
	return s.repo.Commit(ctx, message, verify)
}

// Changelog generates a changelog for the from..to commit range.
func (s *Service) Changelog(ctx context.Context, from, to string, detail changes.DetailLevel) (string, error) {
	analyzed, generator, summary, err := s.prepareRange(ctx, from, to)
	if err != nil {
		return "", err
	}
	return generator.Changelog(ctx, analyzed, changes.Range{From: from, To: to}, detail, summary)
}

// ReleaseNotes generates release notes for the from..to commit range.
func (s *Service) ReleaseNotes(ctx context.Context, from, to string, detail changes.DetailLevel) (string, error) {
	analyzed, generator, summary, err := s.prepareRange(ctx, from, to)
	if err != nil {
		return "", err
	}
	return generator.ReleaseNotes(ctx, analyzed, changes.Range{From: from, To: to}, detail, summary)
}

// assemble snapshots the repository and merges analysis, scoring, and
// metadata into the immutable context the optimizer consumes.
func (s *Service) assemble(ctx context.Context) (*assembly.Context, error) {
	snap, err := s.repo.Snapshot(ctx, git.SnapshotOptions{
		RecentCommitCount: s.cfg.RecentCommitCount,
		MaxDiffBytes:      maxDiffBytes,
	})
	if err != nil {
		return nil, err
	}

	annotations, err := s.analyze(ctx, snap)
	if err != nil {
		return nil, err
	}

	scores := relevance.NewScorer(s.cfg.Scoring).Score(snap, annotations)

	meta := metadata.Scan(snap.Root)
	paths := make([]string, 0, len(snap.Staged))
	for _, file := range snap.Staged {
		paths = append(paths, file.Path)
	}
	meta.Merge(metadata.FromPaths(paths))

	assembled := assembly.Assemble(snap, annotations, scores, meta, assembly.Limits{
		MaxFiles: s.cfg.MaxProcessedFiles,
	})
	slog.Debug("Assembled change context",
		"branch", assembled.Branch,
		"files", len(assembled.Files),
		"omitted", assembled.OmittedFileCount)
	return assembled, nil
}

// analyze fans the per-file analyzers out across a bounded worker pool.
// Results are stored by index, so completion order never influences
// assembly.
func (s *Service) analyze(ctx context.Context, snap *git.Snapshot) (map[string][]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxAnalyzerWorkers)

	results := make([][]string, len(snap.Staged))
	for i, file := range snap.Staged {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = analysis.ForPath(file.Path).Analyze(file.Path, file.Diff)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	annotations := make(map[string][]string, len(snap.Staged))
	for i, file := range snap.Staged {
		if len(results[i]) > 0 {
			annotations[file.Path] = results[i]
		}
	}
	return annotations, nil
}

// generateWithinBudget invokes the backend, stepping the optimizer
// budget down a fixed ladder when the rendered prompt still exceeds the
// backend's context window. Any other failure surfaces immediately.
func (s *Service) generateWithinBudget(ctx context.Context, system string) (*Candidate, error) {
	_, pc := s.cfg.ActiveProvider()
	budget := s.cfg.Budget()
	optimizer := optimize.New(s.counter, optimize.Options{Floor: s.cfg.TruncationFloor})

	var lastErr error
	for i, fraction := range budgetLadder {
		applied := int(float64(budget) * fraction)

		opt, err := optimizer.Optimize(s.assembled, system, applied)
		if err != nil {
			return nil, err
		}
		user, err := prompt.BuildUserPrompt(opt)
		if err != nil {
			return nil, err
		}

		msg, err := s.completeParsed(ctx, system, user, pc.Model)
		if err == nil {
			return s.candidate(msg, opt, applied), nil
		}

		var cwerr *llmerrors.ContextWindowError
		if !errors.As(err, &cwerr) {
			return nil, err
		}
		lastErr = err
		if i+1 < len(budgetLadder) {
			slog.Warn("Prompt exceeded the provider context window, retrying at a smaller budget",
				"provider", cwerr.Provider,
				"applied_budget", applied,
				"next_budget", int(float64(budget)*budgetLadder[i+1]))
		}
	}
	return nil, fmt.Errorf("prompt exceeds the provider context window at every budget: %w", lastErr)
}

// completeParsed sends the prompt and parses the reply, regenerating
// once when the reply is empty or fails to parse. Transport and backend
// failures already exhausted their handling in the runner.
func (s *Service) completeParsed(ctx context.Context, system, user, model string) (*prompt.GeneratedMessage, error) {
	req := providers.Request{
		System:      system,
		User:        user,
		Model:       model,
		MaxTokens:   s.cfg.MaxResponseTokens,
		Temperature: defaultTemperature,
	}

	raw, err := s.invoker.Generate(ctx, req)
	if err == nil {
		var msg *prompt.GeneratedMessage
		msg, err = prompt.ParseGeneratedMessage(raw)
		if err == nil {
			return msg, nil
		}
	}
	if !validationFailure(err) {
		return nil, err
	}

	slog.Warn("Generated message failed validation, regenerating once", "error", err)
	raw, err = s.invoker.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return prompt.ParseGeneratedMessage(raw)
}

// validationFailure reports whether the failure lies in the reply's
// shape rather than the transport or the backend.
func validationFailure(err error) bool {
	var perr *llmerrors.ProviderError
	if errors.As(err, &perr) {
		return perr.Class == llmerrors.ResponseValidation
	}
	var cwerr *llmerrors.ContextWindowError
	if errors.As(err, &cwerr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func (s *Service) candidate(msg *prompt.GeneratedMessage, opt *assembly.Optimized, applied int) *Candidate {
	if s.cfg.UseGitmoji && msg.Emoji == "" {
		msg.Title = prompt.ApplyGitmoji(msg.Title)
	}

	var excluded []string
	for _, file := range opt.Files {
		if file.ContentExcluded {
			excluded = append(excluded, file.Path)
		}
	}

	slog.Info("Generated commit message",
		"tokens_used", opt.TotalTokens,
		"budget", applied,
		"excluded_files", len(excluded),
		"omitted_files", opt.OmittedFiles)

	return &Candidate{
		Message:       msg,
		Text:          msg.Format(),
		TokensUsed:    opt.TotalTokens,
		Budget:        applied,
		ExcludedFiles: excluded,
		OmittedFiles:  opt.OmittedFiles,
	}
}

// prepareRange reads and analyzes the commit range, builds the content
// generator, and summarizes the README when one exists.
func (s *Service) prepareRange(ctx context.Context, from, to string) ([]changes.AnalyzedChange, *changes.Generator, string, error) {
	commits, err := s.repo.CommitsBetween(ctx, from, to)
	if err != nil {
		return nil, nil, "", err
	}
	if len(commits) == 0 {
		return nil, nil, "", fmt.Errorf("no commits between %s and %s", from, to)
	}
	analyzed := changes.AnalyzeCommits(commits)

	_, pc := s.cfg.ActiveProvider()
	generator := changes.NewGenerator(s.invoker, changes.GeneratorOptions{
		Model:        pc.Model,
		MaxTokens:    s.cfg.MaxResponseTokens,
		Instructions: s.cfg.PromptInstructions(),
	})

	summary, err := s.readmeSummary(ctx, generator)
	if err != nil {
		return nil, nil, "", err
	}
	return analyzed, generator, summary, nil
}

// readmeSummary summarizes the repository README when one exists. A
// repository without a README yields an empty summary, not an error.
func (s *Service) readmeSummary(ctx context.Context, generator *changes.Generator) (string, error) {
	path, err := changes.FindReadme(s.repo.Root())
	if err != nil || path == "" {
		return "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := string(content)
	if len(text) > maxReadmeBytes {
		text = text[:maxReadmeBytes]
	}

	slog.Debug("Summarizing README", "path", path, "bytes", len(text))
	return generator.SummarizeReadme(ctx, text)
}
