package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitscribe/internal/changes"
	"gitscribe/internal/config"
	"gitscribe/internal/git"
	"gitscribe/internal/llm"
	llmerrors "gitscribe/internal/llm/errors"
	"gitscribe/internal/llm/providers"
)

// fakeGit scripts git invocations keyed by their joined arguments.
type fakeGit struct {
	responses map[string]string
	calls     []string
}

func (f *fakeGit) Run(_ context.Context, args ...string) (string, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if out, ok := f.responses[key]; ok {
		return out, nil
	}
	return "", fmt.Errorf("unscripted git call: %s", key)
}

func (f *fakeGit) countCalls(key string) int {
	n := 0
	for _, call := range f.calls {
		if call == key {
			n++
		}
	}
	return n
}

const parserDiff = `diff --git a/internal/parser.go b/internal/parser.go
index 1111111..2222222 100644
--- a/internal/parser.go
+++ b/internal/parser.go
@@ -10,6 +10,9 @@
 func run() {}
+func Parse(input string) error {
+	return nil
+}
`

// snapshotGit scripts the full command set one Snapshot issues for a
// two-file index.
func snapshotGit() *fakeGit {
	return &fakeGit{responses: map[string]string{
		"rev-parse --abbrev-ref HEAD":                  "main\n",
		"status --porcelain":                           "M  internal/parser.go\nA  docs/usage.md\n",
		"diff --cached --no-color -- internal/parser.go": parserDiff,
		"diff --cached --no-color -- docs/usage.md": `diff --git a/docs/usage.md b/docs/usage.md
--- /dev/null
+++ b/docs/usage.md
@@ -0,0 +1,2 @@
+# Usage
+Run the tool against staged changes.
`,
		"log -n 2 --format=%H%x1f%s%x1e":    "abc123\x1fAdd parser skeleton\x1e\ndef456\x1fFix CI\x1e\n",
		"log -n 2 --name-only --format=":    "internal/parser.go\n",
		"ls-files --others --exclude-standard": "",
		"config user.name":                  "Dev\n",
		"config user.email":                 "dev@example.com\n",
	}}
}

const validReply = `{"emoji": "", "title": "Add streaming diff parser", "message": "Parse staged diffs incrementally so large changes no longer buffer whole files."}`

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.DefaultProvider = "test"
	cfg.TokenBudget = 2000
	cfg.RecentCommitCount = 2
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config, fake *fakeGit, client *providers.TestClient) *Service {
	t.Helper()
	repo := git.NewRepo(t.TempDir(), fake)
	runner := llm.NewRunner(client, llm.DefaultRetryPolicy())
	return New(cfg, repo, runner)
}

func TestGenerateMessage(t *testing.T) {
	client := providers.NewTest().Reply(validReply)
	svc := newTestService(t, testConfig(), snapshotGit(), client)

	cand, err := svc.GenerateMessage(context.Background(), "")
	if err != nil {
		t.Fatalf("GenerateMessage failed: %v", err)
	}

	if !strings.HasPrefix(cand.Text, "Add streaming diff parser\n\n") {
		t.Errorf("Text = %q, expected title then blank line", cand.Text)
	}
	if cand.TokensUsed <= 0 {
		t.Errorf("TokensUsed = %d, expected a positive measurement", cand.TokensUsed)
	}
	if cand.Budget != 2000 {
		t.Errorf("Budget = %d, expected the full budget 2000", cand.Budget)
	}

	reqs := client.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 provider request, got %d", len(reqs))
	}
	if reqs[0].Model != "test-model" {
		t.Errorf("Model = %q, expected test-model", reqs[0].Model)
	}
	if reqs[0].MaxTokens != 4096 {
		t.Errorf("MaxTokens = %d, expected 4096", reqs[0].MaxTokens)
	}
	if !strings.Contains(reqs[0].System, "professional Git commit messages") {
		t.Error("system prompt is missing the role text")
	}
	if !strings.Contains(reqs[0].User, "Branch: main") {
		t.Error("user prompt is missing the branch header")
	}
	if !strings.Contains(reqs[0].User, "internal/parser.go") {
		t.Error("user prompt is missing the staged file")
	}
}

func TestGenerateMessageNothingStaged(t *testing.T) {
	fake := snapshotGit()
	fake.responses["status --porcelain"] = ""
	svc := newTestService(t, testConfig(), fake, providers.NewTest())

	_, err := svc.GenerateMessage(context.Background(), "")
	if err == nil {
		t.Fatal("expected an error with an empty index")
	}
	var xerr *git.ExtractionError
	if !errors.As(err, &xerr) {
		t.Fatalf("expected *git.ExtractionError, got %T: %v", err, err)
	}
	if !strings.Contains(xerr.Hint, "git add") {
		t.Errorf("Hint = %q, expected a git add remediation", xerr.Hint)
	}
}

func TestGenerateMessageReducesBudgetOnContextWindowError(t *testing.T) {
	client := providers.NewTest().
		Fail(&llmerrors.ContextWindowError{Provider: "Test", StatusCode: 413, Message: "prompt is too long"}).
		Reply(validReply)
	svc := newTestService(t, testConfig(), snapshotGit(), client)

	cand, err := svc.GenerateMessage(context.Background(), "")
	if err != nil {
		t.Fatalf("GenerateMessage failed: %v", err)
	}

	if got := len(client.Requests()); got != 2 {
		t.Fatalf("expected 2 provider requests, got %d", got)
	}
	if cand.Budget != 1500 {
		t.Errorf("Budget = %d, expected the reduced budget 1500", cand.Budget)
	}
	if cand.TokensUsed > 1500 {
		t.Errorf("TokensUsed = %d, exceeds the reduced budget", cand.TokensUsed)
	}
}

func TestGenerateMessageExhaustsBudgetLadder(t *testing.T) {
	client := providers.NewTest()
	for range budgetLadder {
		client.Fail(&llmerrors.ContextWindowError{Provider: "Test", StatusCode: 413, Message: "prompt is too long"})
	}
	svc := newTestService(t, testConfig(), snapshotGit(), client)

	_, err := svc.GenerateMessage(context.Background(), "")
	if err == nil {
		t.Fatal("expected an error after exhausting every budget")
	}
	if !strings.Contains(err.Error(), "context window") {
		t.Errorf("error = %v, expected a context window explanation", err)
	}
	if got := len(client.Requests()); got != len(budgetLadder) {
		t.Errorf("expected %d provider requests, got %d", len(budgetLadder), got)
	}
}

func TestGenerateMessageRegeneratesMalformedReplyOnce(t *testing.T) {
	client := providers.NewTest().
		Reply("the model rambled instead of returning JSON").
		Reply(validReply)
	svc := newTestService(t, testConfig(), snapshotGit(), client)

	cand, err := svc.GenerateMessage(context.Background(), "")
	if err != nil {
		t.Fatalf("GenerateMessage failed: %v", err)
	}
	if cand.Message.Title != "Add streaming diff parser" {
		t.Errorf("Title = %q, expected the second reply to win", cand.Message.Title)
	}
	if got := len(client.Requests()); got != 2 {
		t.Errorf("expected 2 provider requests, got %d", got)
	}
}

func TestGenerateMessageMalformedTwiceFails(t *testing.T) {
	client := providers.NewTest().
		Reply("still not JSON").
		Reply("and again not JSON")
	svc := newTestService(t, testConfig(), snapshotGit(), client)

	_, err := svc.GenerateMessage(context.Background(), "")
	if err == nil {
		t.Fatal("expected an error after two malformed replies")
	}
	if got := len(client.Requests()); got != 2 {
		t.Errorf("expected exactly 2 provider requests, got %d", got)
	}
}

func TestGenerateMessageAuthFailureNotRetried(t *testing.T) {
	client := providers.NewTest().Fail(&llmerrors.ProviderError{
		Provider:   "Test",
		Class:      llmerrors.Authentication,
		StatusCode: 401,
		Message:    "invalid api key",
	})
	svc := newTestService(t, testConfig(), snapshotGit(), client)

	_, err := svc.GenerateMessage(context.Background(), "")
	if err == nil {
		t.Fatal("expected an authentication error")
	}
	var perr *llmerrors.ProviderError
	if !errors.As(err, &perr) || perr.Class != llmerrors.Authentication {
		t.Fatalf("expected an authentication provider error, got: %v", err)
	}
	if got := len(client.Requests()); got != 1 {
		t.Errorf("expected 1 provider request, got %d", got)
	}
}

func TestGenerateMessageRegenerationSharesSnapshot(t *testing.T) {
	client := providers.NewTest().Reply(validReply).Reply(validReply)
	fake := snapshotGit()
	svc := newTestService(t, testConfig(), fake, client)

	if _, err := svc.GenerateMessage(context.Background(), ""); err != nil {
		t.Fatalf("first GenerateMessage failed: %v", err)
	}
	if _, err := svc.GenerateMessage(context.Background(), "Mention the ticket number."); err != nil {
		t.Fatalf("second GenerateMessage failed: %v", err)
	}

	if got := fake.countCalls("status --porcelain"); got != 1 {
		t.Errorf("status ran %d times, expected the snapshot to be shared", got)
	}

	reqs := client.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 provider requests, got %d", len(reqs))
	}
	if strings.Contains(reqs[0].System, "Mention the ticket number.") {
		t.Error("first request should not carry the regeneration instructions")
	}
	if !strings.Contains(reqs[1].System, "Mention the ticket number.") {
		t.Error("second request should carry the regeneration instructions")
	}
}

func TestGenerateMessageAppliesGitmoji(t *testing.T) {
	cfg := testConfig()
	cfg.UseGitmoji = true
	client := providers.NewTest().Reply(`{"emoji": "", "title": "feat: add diff parser", "message": "New parser for staged diffs."}`)
	svc := newTestService(t, cfg, snapshotGit(), client)

	cand, err := svc.GenerateMessage(context.Background(), "")
	if err != nil {
		t.Fatalf("GenerateMessage failed: %v", err)
	}
	if cand.Message.Title != "✨ feat: add diff parser" {
		t.Errorf("Title = %q, expected a gitmoji prefix", cand.Message.Title)
	}
}

// rangeGit scripts the commands CommitsBetween issues for one commit.
func rangeGit() *fakeGit {
	return &fakeGit{responses: map[string]string{
		"log --reverse --format=%H%x1f%an%x1f%s%x1f%b%x1e v1.0.0..v1.1.0": "abc123\x1fAlice\x1fAdd diff parser\x1fCloses #7\x1e\n",
		"show --numstat --format= abc123":                                 "120\t30\tinternal/parser.go\n",
	}}
}

const changelogReply = `{
  "version": "1.1.0",
  "release_date": "2026-08-21",
  "sections": {
    "Added": [
      {"description": "Add diff parser", "commit_hashes": ["abc123"], "associated_issues": ["#7"], "pull_request": ""}
    ]
  },
  "breaking_changes": [],
  "metrics": {"total_commits": 1, "files_changed": 1, "insertions": 120, "deletions": 30, "total_lines_changed": 150}
}`

func TestChangelog(t *testing.T) {
	client := providers.NewTest().Reply(changelogReply)
	svc := newTestService(t, testConfig(), rangeGit(), client)

	out, err := svc.Changelog(context.Background(), "v1.0.0", "v1.1.0", changes.Standard)
	if err != nil {
		t.Fatalf("Changelog failed: %v", err)
	}

	if !strings.Contains(out, "# Changelog") {
		t.Errorf("output missing changelog header:\n%s", out)
	}
	if !strings.Contains(out, "Add diff parser (#7)") {
		t.Errorf("output missing the added entry:\n%s", out)
	}

	reqs := client.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 provider request without a README, got %d", len(reqs))
	}
	if !strings.Contains(reqs[0].System, "Keep a Changelog") {
		t.Error("system prompt is missing the changelog format contract")
	}
	if !strings.Contains(reqs[0].User, "Add diff parser") {
		t.Error("user prompt is missing the analyzed commit")
	}
}

func TestChangelogNoCommits(t *testing.T) {
	fake := &fakeGit{responses: map[string]string{
		"log --reverse --format=%H%x1f%an%x1f%s%x1f%b%x1e v1.0.0..v1.1.0": "",
	}}
	svc := newTestService(t, testConfig(), fake, providers.NewTest())

	_, err := svc.Changelog(context.Background(), "v1.0.0", "v1.1.0", changes.Standard)
	if err == nil {
		t.Fatal("expected an error for an empty range")
	}
	if !strings.Contains(err.Error(), "no commits between v1.0.0 and v1.1.0") {
		t.Errorf("unexpected error: %v", err)
	}
}

const releaseNotesReply = `{
  "version": "1.1.0",
  "summary": "This release adds the diff parser.",
  "highlights": [{"title": "Diff parser", "description": "Parses staged diffs."}],
  "sections": [],
  "breaking_changes": [],
  "upgrade_notes": [],
  "metrics": {"total_commits": 1, "files_changed": 1, "insertions": 120, "deletions": 30, "total_lines_changed": 150}
}`

func TestReleaseNotesSummarizesReadme(t *testing.T) {
	root := t.TempDir()
	readme := filepath.Join(root, "README.md")
	if err := os.WriteFile(readme, []byte("A CLI for commit hygiene.\n"), 0o644); err != nil {
		t.Fatalf("failed to write README: %v", err)
	}

	client := providers.NewTest().
		Reply("Focused CLI for commit hygiene.").
		Reply(releaseNotesReply)

	cfg := testConfig()
	repo := git.NewRepo(root, rangeGit())
	svc := New(cfg, repo, llm.NewRunner(client, llm.DefaultRetryPolicy()))

	out, err := svc.ReleaseNotes(context.Background(), "v1.0.0", "v1.1.0", changes.Standard)
	if err != nil {
		t.Fatalf("ReleaseNotes failed: %v", err)
	}

	if !strings.Contains(out, "# Release Notes") {
		t.Errorf("output missing release notes header:\n%s", out)
	}
	if !strings.Contains(out, "This release adds the diff parser.") {
		t.Errorf("output missing the summary:\n%s", out)
	}

	reqs := client.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected summarize then generate, got %d requests", len(reqs))
	}
	if !strings.Contains(reqs[0].User, "A CLI for commit hygiene.") {
		t.Error("first request should carry the README text")
	}
	if !strings.Contains(reqs[1].User, "Focused CLI for commit hygiene.") {
		t.Error("second request should carry the README summary")
	}
}

func TestCommit(t *testing.T) {
	fake := &fakeGit{responses: map[string]string{
		"commit -m Add parser --no-verify": "",
		"rev-parse HEAD":                   "abc123\n",
		"rev-parse --abbrev-ref HEAD":      "main\n",
		"show --numstat --format=":         "10\t2\tinternal/parser.go\n",
	}}
	svc := newTestService(t, testConfig(), fake, providers.NewTest())

	result, err := svc.Commit(context.Background(), "Add parser", false)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if result.Hash != "abc123" {
		t.Errorf("Hash = %q, expected abc123", result.Hash)
	}
	if result.FilesChanged != 1 {
		t.Errorf("FilesChanged = %d, expected 1", result.FilesChanged)
	}
}
