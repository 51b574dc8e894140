package changes

import (
	_ "embed"
	"text/template"
)

//go:embed changelog_render.md
var changelogRenderText string

//go:embed release_notes_render.md
var releaseNotesRenderText string

var (
	changelogRenderTemplate    *template.Template
	releaseNotesRenderTemplate *template.Template
)

func init() {
	changelogRenderTemplate = template.Must(
		template.New("changelog_render").Funcs(changesTemplateFuncs).Parse(changelogRenderText),
	)
	releaseNotesRenderTemplate = template.Must(
		template.New("release_notes_render").Funcs(changesTemplateFuncs).Parse(releaseNotesRenderText),
	)
}

type renderedSection struct {
	Emoji   string
	Title   string
	Entries []Entry
}

func categoryEmoji(c Category) string {
	switch c {
	case Added:
		return "✨"
	case Changed:
		return "🔄"
	case Deprecated:
		return "⚠️"
	case Removed:
		return "🗑️"
	case Fixed:
		return "🐛"
	case Security:
		return "🔒"
	}
	return ""
}

type changelogRenderData struct {
	Version         string
	ReleaseDate     string
	Sections        []renderedSection
	BreakingChanges []BreakingChange
	Metrics         Metrics
}

// FormatChangelog renders the structured reply as markdown, with
// sections in Keep a Changelog order and empty sections dropped.
func FormatChangelog(response *ChangelogResponse) (string, error) {
	sections := make([]renderedSection, 0, len(response.Sections))
	for _, category := range Categories() {
		entries := response.Sections[category]
		if len(entries) == 0 {
			continue
		}
		sections = append(sections, renderedSection{
			Emoji:   categoryEmoji(category),
			Title:   string(category),
			Entries: entries,
		})
	}

	return render(changelogRenderTemplate, changelogRenderData{
		Version:         response.Version,
		ReleaseDate:     response.ReleaseDate,
		Sections:        sections,
		BreakingChanges: response.BreakingChanges,
		Metrics:         response.Metrics,
	})
}

// FormatReleaseNotes renders the structured reply as markdown.
func FormatReleaseNotes(response *ReleaseNotesResponse) (string, error) {
	return render(releaseNotesRenderTemplate, response)
}
