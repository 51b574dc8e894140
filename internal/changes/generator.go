package changes

import (
	"context"
	"errors"
	"log/slog"

	llmerrors "gitscribe/internal/llm/errors"
	"gitscribe/internal/llm/providers"
	"gitscribe/internal/prompt"
)

// Completer is the slice of the invocation layer the generators use.
// *llm.Runner satisfies it.
type Completer interface {
	Generate(ctx context.Context, req providers.Request) (string, error)
}

// GeneratorOptions configures content generation.
type GeneratorOptions struct {
	Model        string
	MaxTokens    int
	Instructions prompt.Instructions
}

// Generator produces changelogs and release notes from analyzed commit
// ranges.
type Generator struct {
	runner Completer
	opts   GeneratorOptions
}

func NewGenerator(runner Completer, opts GeneratorOptions) *Generator {
	return &Generator{runner: runner, opts: opts}
}

// Changelog generates a Keep a Changelog document for the analyzed
// range.
func (g *Generator) Changelog(ctx context.Context, analyzed []AnalyzedChange, rng Range, detail DetailLevel, readmeSummary string) (string, error) {
	system, err := ChangelogSystemPrompt(g.opts.Instructions)
	if err != nil {
		return "", err
	}
	user, err := ChangelogUserPrompt(analyzed, detail, rng, readmeSummary)
	if err != nil {
		return "", err
	}

	var response *ChangelogResponse
	err = g.completeValidated(ctx, system, user, func(raw string) error {
		parsed, perr := ParseChangelogResponse(raw)
		if perr != nil {
			return perr
		}
		response = parsed
		return nil
	})
	if err != nil {
		return "", err
	}
	return FormatChangelog(response)
}

// ReleaseNotes generates release notes for the analyzed range.
func (g *Generator) ReleaseNotes(ctx context.Context, analyzed []AnalyzedChange, rng Range, detail DetailLevel, readmeSummary string) (string, error) {
	system, err := ReleaseNotesSystemPrompt(g.opts.Instructions)
	if err != nil {
		return "", err
	}
	user, err := ReleaseNotesUserPrompt(analyzed, detail, rng, readmeSummary)
	if err != nil {
		return "", err
	}

	var response *ReleaseNotesResponse
	err = g.completeValidated(ctx, system, user, func(raw string) error {
		parsed, perr := ParseReleaseNotesResponse(raw)
		if perr != nil {
			return perr
		}
		response = parsed
		return nil
	})
	if err != nil {
		return "", err
	}
	return FormatReleaseNotes(response)
}

const readmeSystemPrompt = `You are an AI assistant tasked with summarizing README files for software projects. Please provide a concise summary of the key points in the README, focusing on the following aspects:
1. The project's main purpose and goals
2. Key features and functionality
3. Technologies or frameworks used
4. Installation or setup instructions (if notable)
5. Usage examples or quick start guide
6. Any crucial information for users or contributors
7. The style and vibe of the project (e.g., professional, casual, fun)

Keep the summary informative yet brief, highlighting the most important aspects of the project.`

// SummarizeReadme asks the model for a short summary of the README,
// used as project context in the range prompts.
func (g *Generator) SummarizeReadme(ctx context.Context, readme string) (string, error) {
	return g.runner.Generate(ctx, providers.Request{
		System:    readmeSystemPrompt,
		User:      "Please summarize the following README content, adhering to the guidelines provided:\n\n" + readme,
		Model:     g.opts.Model,
		MaxTokens: g.opts.MaxTokens,
	})
}

// completeValidated sends the prompt and validates the reply,
// regenerating exactly once when the reply's shape is at fault.
func (g *Generator) completeValidated(ctx context.Context, system, user string, validate func(string) error) error {
	req := providers.Request{
		System:    system,
		User:      user,
		Model:     g.opts.Model,
		MaxTokens: g.opts.MaxTokens,
	}

	raw, err := g.runner.Generate(ctx, req)
	if err == nil {
		err = validate(raw)
		if err == nil {
			return nil
		}
	}
	if !validationFailure(err) {
		return err
	}

	slog.Warn("Generated content failed validation, regenerating once", "error", err)
	raw, err = g.runner.Generate(ctx, req)
	if err != nil {
		return err
	}
	return validate(raw)
}

// validationFailure reports whether the failure lies in the reply's
// shape rather than the transport or the backend. Shape failures are
// worth one regeneration; everything else already exhausted its
// handling downstream.
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
