// Package changes turns a commit range into changelog and release
// notes material: commit analysis, prompt construction, and rendering
// of the structured model replies into markdown.
package changes

import (
	"encoding/json"
	"fmt"

	"gitscribe/internal/prompt"
)

// Category is a Keep a Changelog section heading.
type Category string

const (
	Added      Category = "Added"
	Changed    Category = "Changed"
	Deprecated Category = "Deprecated"
	Removed    Category = "Removed"
	Fixed      Category = "Fixed"
	Security   Category = "Security"
)

// Categories lists the section headings in rendering order.
func Categories() []Category {
	return []Category{Added, Changed, Deprecated, Removed, Fixed, Security}
}

// Metrics summarizes the scale of a commit range.
type Metrics struct {
	TotalCommits      int `json:"total_commits"`
	FilesChanged      int `json:"files_changed"`
	Insertions        int `json:"insertions"`
	Deletions         int `json:"deletions"`
	TotalLinesChanged int `json:"total_lines_changed"`
}

// Entry is one change line in a changelog section.
type Entry struct {
	Description      string   `json:"description"`
	CommitHashes     []string `json:"commit_hashes"`
	AssociatedIssues []string `json:"associated_issues"`
	PullRequest      string   `json:"pull_request,omitempty"`
}

// BreakingChange is a change requiring user action on upgrade.
type BreakingChange struct {
	Description string `json:"description"`
	CommitHash  string `json:"commit_hash"`
}

// ChangelogResponse is the structured reply expected from the model
// when generating a changelog.
type ChangelogResponse struct {
	Version         string               `json:"version,omitempty"`
	ReleaseDate     string               `json:"release_date,omitempty"`
	Sections        map[Category][]Entry `json:"sections"`
	BreakingChanges []BreakingChange     `json:"breaking_changes"`
	Metrics         Metrics              `json:"metrics"`
}

// Highlight is a headline feature in release notes.
type Highlight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SectionItem is one entry in a release notes section.
type SectionItem struct {
	Description      string   `json:"description"`
	AssociatedIssues []string `json:"associated_issues"`
	PullRequest      string   `json:"pull_request,omitempty"`
}

// Section groups release note items under a title chosen by the model.
type Section struct {
	Title string        `json:"title"`
	Items []SectionItem `json:"items"`
}

// ReleaseNotesResponse is the structured reply expected from the model
// when generating release notes.
type ReleaseNotesResponse struct {
	Version         string           `json:"version,omitempty"`
	ReleaseDate     string           `json:"release_date,omitempty"`
	Summary         string           `json:"summary"`
	Highlights      []Highlight      `json:"highlights"`
	Sections        []Section        `json:"sections"`
	BreakingChanges []BreakingChange `json:"breaking_changes"`
	UpgradeNotes    []string         `json:"upgrade_notes"`
	Metrics         Metrics          `json:"metrics"`
}

// ParseChangelogResponse decodes a model reply, tolerating a fenced
// code block wrapper.
func ParseChangelogResponse(raw string) (*ChangelogResponse, error) {
	var response ChangelogResponse
	if err := json.Unmarshal([]byte(prompt.StripFences(raw)), &response); err != nil {
		return nil, fmt.Errorf("failed to parse changelog response: %w", err)
	}
	return &response, nil
}

// ParseReleaseNotesResponse decodes a model reply, tolerating a fenced
// code block wrapper.
func ParseReleaseNotesResponse(raw string) (*ReleaseNotesResponse, error) {
	var response ReleaseNotesResponse
	if err := json.Unmarshal([]byte(prompt.StripFences(raw)), &response); err != nil {
		return nil, fmt.Errorf("failed to parse release notes response: %w", err)
	}
	return &response, nil
}
