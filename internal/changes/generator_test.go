package changes

import (
	"context"
	"errors"
	"strings"
	"testing"

	llmerrors "gitscribe/internal/llm/errors"
	"gitscribe/internal/llm/providers"
)

type scriptedReply struct {
	text string
	err  error
}

// scriptedCompleter replays canned replies and records every request.
type scriptedCompleter struct {
	replies  []scriptedReply
	requests []providers.Request
}

func (s *scriptedCompleter) Generate(_ context.Context, req providers.Request) (string, error) {
	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	next := s.replies[0]
	s.replies = s.replies[1:]
	return next.text, next.err
}

const changelogReply = `{
  "version": "1.2.0",
  "release_date": "2026-08-21",
  "sections": {
    "Added": [
      {"description": "Add diff parser", "commit_hashes": ["abc123"], "associated_issues": ["#7"], "pull_request": "#42"}
    ]
  },
  "breaking_changes": [],
  "metrics": {"total_commits": 1, "files_changed": 1, "insertions": 120, "deletions": 30, "total_lines_changed": 150}
}`

const releaseNotesReply = `{
  "version": "2.0.0",
  "release_date": "2026-08-21",
  "summary": "A faster analysis pipeline.",
  "highlights": [{"title": "Parallel analysis", "description": "Commits are analyzed concurrently."}],
  "sections": [],
  "breaking_changes": [],
  "upgrade_notes": [],
  "metrics": {"total_commits": 1, "files_changed": 1, "insertions": 120, "deletions": 30, "total_lines_changed": 150}
}`

func testGenerator(completer Completer) *Generator {
	return NewGenerator(completer, GeneratorOptions{Model: "test-model", MaxTokens: 4096})
}

func TestGeneratorChangelog(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{{text: changelogReply}}}
	generator := testGenerator(completer)

	got, err := generator.Changelog(context.Background(), sampleChanges(), Range{From: "v1.0.0", To: "HEAD"}, Standard, "")
	if err != nil {
		t.Fatalf("Changelog() error = %v", err)
	}

	for _, want := range []string{
		"# Changelog",
		"## [1.2.0] - 2026-08-21",
		"### ✨ Added",
		"- Add diff parser (#7) [#42] (abc123)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("changelog missing %q\n%s", want, got)
		}
	}

	if len(completer.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(completer.requests))
	}
	req := completer.requests[0]
	if req.Model != "test-model" || req.MaxTokens != 4096 {
		t.Errorf("request options = %q/%d", req.Model, req.MaxTokens)
	}
	if !strings.Contains(req.System, "Keep a Changelog 1.1.0 format") {
		t.Errorf("system prompt = %q", req.System)
	}
	if !strings.Contains(req.User, "generate a changelog") {
		t.Errorf("user prompt = %q", req.User)
	}
}

func TestGeneratorChangelogRegeneratesOnMalformedReply(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{
		{text: "Sure! Here is a changelog in prose form."},
		{text: changelogReply},
	}}
	generator := testGenerator(completer)

	got, err := generator.Changelog(context.Background(), sampleChanges(), Range{From: "v1.0.0", To: "HEAD"}, Standard, "")
	if err != nil {
		t.Fatalf("Changelog() error = %v", err)
	}
	if !strings.Contains(got, "Add diff parser") {
		t.Errorf("changelog = %q", got)
	}
	if len(completer.requests) != 2 {
		t.Errorf("requests = %d, want 2", len(completer.requests))
	}
}

func TestGeneratorChangelogGivesUpAfterOneRegeneration(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{
		{text: "{broken"},
		{text: "still not json"},
		{text: changelogReply},
	}}
	generator := testGenerator(completer)

	_, err := generator.Changelog(context.Background(), sampleChanges(), Range{From: "v1.0.0", To: "HEAD"}, Standard, "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "failed to parse changelog response") {
		t.Errorf("error = %v", err)
	}
	if len(completer.requests) != 2 {
		t.Errorf("requests = %d, want 2", len(completer.requests))
	}
}

func TestGeneratorChangelogRetriesEmptyCompletion(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{
		{err: &llmerrors.ProviderError{
			Provider: "Test",
			Class:    llmerrors.ResponseValidation,
			Message:  "empty completion",
		}},
		{text: changelogReply},
	}}
	generator := testGenerator(completer)

	_, err := generator.Changelog(context.Background(), sampleChanges(), Range{From: "v1.0.0", To: "HEAD"}, Standard, "")
	if err != nil {
		t.Fatalf("Changelog() error = %v", err)
	}
	if len(completer.requests) != 2 {
		t.Errorf("requests = %d, want 2", len(completer.requests))
	}
}

func TestGeneratorChangelogDoesNotRetryAuthFailure(t *testing.T) {
	authErr := &llmerrors.ProviderError{
		Provider:   "Test",
		Class:      llmerrors.Authentication,
		StatusCode: 401,
		Message:    "invalid api key",
	}
	completer := &scriptedCompleter{replies: []scriptedReply{{err: authErr}, {text: changelogReply}}}
	generator := testGenerator(completer)

	_, err := generator.Changelog(context.Background(), sampleChanges(), Range{From: "v1.0.0", To: "HEAD"}, Standard, "")
	if !errors.Is(err, authErr) {
		t.Fatalf("error = %v, want auth failure", err)
	}
	if len(completer.requests) != 1 {
		t.Errorf("requests = %d, want 1", len(completer.requests))
	}
}

func TestGeneratorChangelogDoesNotRetryCancellation(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{{err: context.Canceled}, {text: changelogReply}}}
	generator := testGenerator(completer)

	_, err := generator.Changelog(context.Background(), sampleChanges(), Range{From: "v1.0.0", To: "HEAD"}, Standard, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(completer.requests) != 1 {
		t.Errorf("requests = %d, want 1", len(completer.requests))
	}
}

func TestGeneratorReleaseNotes(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{{text: releaseNotesReply}}}
	generator := testGenerator(completer)

	got, err := generator.ReleaseNotes(context.Background(), sampleChanges(), Range{From: "v1.0.0", To: "v2.0.0"}, Detailed, "")
	if err != nil {
		t.Fatalf("ReleaseNotes() error = %v", err)
	}

	for _, want := range []string{
		"# Release Notes - v2.0.0",
		"A faster analysis pipeline.",
		"### Parallel analysis",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("release notes missing %q\n%s", want, got)
		}
	}

	req := completer.requests[0]
	if !strings.Contains(req.User, "generate release notes") {
		t.Errorf("user prompt = %q", req.User)
	}
	if !strings.Contains(req.User, "Include detailed explanations") {
		t.Errorf("user prompt missing detailed guidance\n%s", req.User)
	}
}

func TestGeneratorReleaseNotesFencedReply(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{
		{text: "```json\n" + releaseNotesReply + "\n```"},
	}}
	generator := testGenerator(completer)

	got, err := generator.ReleaseNotes(context.Background(), sampleChanges(), Range{From: "a", To: "b"}, Standard, "")
	if err != nil {
		t.Fatalf("ReleaseNotes() error = %v", err)
	}
	if !strings.Contains(got, "A faster analysis pipeline.") {
		t.Errorf("release notes = %q", got)
	}
	if len(completer.requests) != 1 {
		t.Errorf("requests = %d, want 1", len(completer.requests))
	}
}

func TestGeneratorSummarizeReadme(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{{text: "A CLI for commit hygiene."}}}
	generator := testGenerator(completer)

	got, err := generator.SummarizeReadme(context.Background(), "# gitscribe\n\nWrites commit messages.")
	if err != nil {
		t.Fatalf("SummarizeReadme() error = %v", err)
	}
	if got != "A CLI for commit hygiene." {
		t.Errorf("summary = %q", got)
	}

	req := completer.requests[0]
	if !strings.Contains(req.System, "summarizing README files") {
		t.Errorf("system prompt = %q", req.System)
	}
	if !strings.Contains(req.User, "Writes commit messages.") {
		t.Errorf("user prompt = %q", req.User)
	}
}
