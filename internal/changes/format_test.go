package changes

import (
	"strings"
	"testing"
)

func TestFormatChangelog(t *testing.T) {
	response := &ChangelogResponse{
		Version:     "1.2.0",
		ReleaseDate: "2026-08-21",
		Sections: map[Category][]Entry{
			Fixed: {
				{Description: "Fix crash on empty diff", CommitHashes: []string{"def456"}},
			},
			Added: {
				{
					Description:      "Add diff parser",
					CommitHashes:     []string{"abc123"},
					AssociatedIssues: []string{"#7"},
					PullRequest:      "#42",
				},
			},
			Changed: {},
		},
		BreakingChanges: []BreakingChange{
			{Description: "Renamed config keys", CommitHash: "abc123"},
		},
		Metrics: Metrics{TotalCommits: 2, FilesChanged: 3, Insertions: 120, Deletions: 30, TotalLinesChanged: 150},
	}

	got, err := FormatChangelog(response)
	if err != nil {
		t.Fatalf("FormatChangelog() error = %v", err)
	}

	want := `# Changelog

All notable changes to this project will be documented in this file.

The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.0.0/),
and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).

## [1.2.0] - 2026-08-21

### ✨ Added

- Add diff parser (#7) [#42] (abc123)

### 🐛 Fixed

- Fix crash on empty diff (def456)

### ⚠️ Breaking Changes

- Renamed config keys (abc123)

### 📊 Metrics

- Total Commits: 2
- Files Changed: 3
- Insertions: 120
- Deletions: 30
`
	if got != want {
		t.Errorf("FormatChangelog() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatChangelogSectionOrder(t *testing.T) {
	response := &ChangelogResponse{
		Version:     "0.3.0",
		ReleaseDate: "2026-08-21",
		Sections: map[Category][]Entry{
			Security: {{Description: "Rotate signing keys", CommitHashes: []string{"a1"}}},
			Fixed:    {{Description: "Fix off-by-one", CommitHashes: []string{"b2"}}},
			Removed:  {{Description: "Drop legacy flag", CommitHashes: []string{"c3"}}},
		},
		Metrics: Metrics{TotalCommits: 3},
	}

	got, err := FormatChangelog(response)
	if err != nil {
		t.Fatalf("FormatChangelog() error = %v", err)
	}

	removed := strings.Index(got, "Removed")
	fixed := strings.Index(got, "Fixed")
	security := strings.Index(got, "Security")
	if removed == -1 || fixed == -1 || security == -1 {
		t.Fatalf("sections missing\n%s", got)
	}
	if !(removed < fixed && fixed < security) {
		t.Errorf("sections out of order (Removed %d, Fixed %d, Security %d)\n%s", removed, fixed, security, got)
	}
	if strings.Contains(got, "Breaking Changes") {
		t.Errorf("breaking changes block rendered with no breaking changes\n%s", got)
	}
}

func TestFormatReleaseNotes(t *testing.T) {
	response := &ReleaseNotesResponse{
		Version:     "2.0.0",
		ReleaseDate: "2026-08-21",
		Summary:     "A major overhaul of the analysis pipeline.",
		Highlights: []Highlight{
			{Title: "Faster pipeline", Description: "Analysis now runs in parallel."},
		},
		Sections: []Section{
			{
				Title: "Improvements",
				Items: []SectionItem{
					{Description: "Speed up diff parsing", AssociatedIssues: []string{"#12"}, PullRequest: "#88"},
				},
			},
		},
		UpgradeNotes: []string{"Re-run the setup command after upgrading."},
		Metrics:      Metrics{TotalCommits: 5, FilesChanged: 9, Insertions: 300, Deletions: 120, TotalLinesChanged: 420},
	}

	got, err := FormatReleaseNotes(response)
	if err != nil {
		t.Fatalf("FormatReleaseNotes() error = %v", err)
	}

	want := `# Release Notes - v2.0.0

Release Date: 2026-08-21

A major overhaul of the analysis pipeline.

## ✨ Highlights

### Faster pipeline

Analysis now runs in parallel.

## Improvements

- Speed up diff parsing (#12) [#88]

## 🔧 Upgrade Notes

- Re-run the setup command after upgrading.

## 📊 Metrics

- Total Commits: 5
- Files Changed: 9
- Insertions: 300
- Deletions: 120
`
	if got != want {
		t.Errorf("FormatReleaseNotes() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatReleaseNotesOmitsEmptyBlocks(t *testing.T) {
	response := &ReleaseNotesResponse{
		Version:     "2.0.1",
		ReleaseDate: "2026-08-22",
		Summary:     "Patch release.",
		Metrics:     Metrics{TotalCommits: 1},
	}

	got, err := FormatReleaseNotes(response)
	if err != nil {
		t.Fatalf("FormatReleaseNotes() error = %v", err)
	}

	for _, absent := range []string{"Highlights", "Breaking Changes", "Upgrade Notes"} {
		if strings.Contains(got, absent) {
			t.Errorf("empty %s block rendered\n%s", absent, got)
		}
	}
	if !strings.Contains(got, "Patch release.") {
		t.Errorf("summary missing\n%s", got)
	}
}
