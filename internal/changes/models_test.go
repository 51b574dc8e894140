package changes

import (
	"strings"
	"testing"
)

func TestParseChangelogResponse(t *testing.T) {
	raw := "```json\n" + `{
  "version": "1.2.0",
  "release_date": "2026-08-21",
  "sections": {
    "Added": [
      {"description": "Add diff parser", "commit_hashes": ["abc123"], "associated_issues": ["#7"], "pull_request": "#42"}
    ],
    "Fixed": []
  },
  "breaking_changes": [
    {"description": "Renamed config keys", "commit_hash": "def456"}
  ],
  "metrics": {"total_commits": 2, "files_changed": 3, "insertions": 120, "deletions": 30, "total_lines_changed": 150}
}` + "\n```"

	response, err := ParseChangelogResponse(raw)
	if err != nil {
		t.Fatalf("ParseChangelogResponse() error = %v", err)
	}

	if response.Version != "1.2.0" || response.ReleaseDate != "2026-08-21" {
		t.Errorf("version header = %q / %q", response.Version, response.ReleaseDate)
	}
	added := response.Sections[Added]
	if len(added) != 1 || added[0].Description != "Add diff parser" {
		t.Fatalf("Added section = %+v", added)
	}
	if added[0].PullRequest != "#42" || len(added[0].AssociatedIssues) != 1 {
		t.Errorf("entry references = %+v", added[0])
	}
	if len(response.BreakingChanges) != 1 || response.BreakingChanges[0].CommitHash != "def456" {
		t.Errorf("BreakingChanges = %+v", response.BreakingChanges)
	}
	if response.Metrics.TotalLinesChanged != 150 {
		t.Errorf("Metrics = %+v", response.Metrics)
	}
}

func TestParseChangelogResponseInvalid(t *testing.T) {
	_, err := ParseChangelogResponse("the model apologizes instead of emitting JSON")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "failed to parse changelog response") {
		t.Errorf("error = %v", err)
	}
}

func TestParseReleaseNotesResponse(t *testing.T) {
	raw := `{
  "version": "2.0.0",
  "release_date": "2026-08-21",
  "summary": "A major overhaul of the analysis pipeline.",
  "highlights": [
    {"title": "Faster pipeline", "description": "Analysis now runs in parallel."}
  ],
  "sections": [
    {"title": "Improvements", "items": [
      {"description": "Speed up diff parsing", "associated_issues": ["#12"], "pull_request": "#88"}
    ]}
  ],
  "breaking_changes": [],
  "upgrade_notes": ["Re-run the setup command after upgrading."],
  "metrics": {"total_commits": 5, "files_changed": 9, "insertions": 300, "deletions": 120, "total_lines_changed": 420}
}`

	response, err := ParseReleaseNotesResponse(raw)
	if err != nil {
		t.Fatalf("ParseReleaseNotesResponse() error = %v", err)
	}

	if response.Summary == "" || len(response.Highlights) != 1 {
		t.Errorf("summary/highlights = %q / %+v", response.Summary, response.Highlights)
	}
	if len(response.Sections) != 1 || response.Sections[0].Title != "Improvements" {
		t.Fatalf("Sections = %+v", response.Sections)
	}
	if response.Sections[0].Items[0].PullRequest != "#88" {
		t.Errorf("section item = %+v", response.Sections[0].Items[0])
	}
	if len(response.UpgradeNotes) != 1 {
		t.Errorf("UpgradeNotes = %v", response.UpgradeNotes)
	}
}

func TestParseReleaseNotesResponseInvalid(t *testing.T) {
	_, err := ParseReleaseNotesResponse("```json\n{broken\n```")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "failed to parse release notes response") {
		t.Errorf("error = %v", err)
	}
}

func TestCategoriesOrder(t *testing.T) {
	want := []Category{Added, Changed, Deprecated, Removed, Fixed, Security}
	got := Categories()
	if len(got) != len(want) {
		t.Fatalf("Categories() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Categories()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
