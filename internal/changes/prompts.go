package changes

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gitscribe/internal/prompt"
)

// DetailLevel controls how much per-commit detail feeds the prompts.
type DetailLevel int

const (
	Minimal DetailLevel = iota
	Standard
	Detailed
)

// ParseDetailLevel maps a flag value to a detail level. Empty input
// selects Standard.
func ParseDetailLevel(s string) (DetailLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimal":
		return Minimal, nil
	case "standard", "":
		return Standard, nil
	case "detailed":
		return Detailed, nil
	}
	return Standard, fmt.Errorf("unknown detail level: %s", s)
}

func (d DetailLevel) String() string {
	switch d {
	case Minimal:
		return "minimal"
	case Detailed:
		return "detailed"
	default:
		return "standard"
	}
}

// adjective is the phrasing used when asking for output at this level.
func (d DetailLevel) adjective() string {
	switch d {
	case Minimal:
		return "concise"
	case Detailed:
		return "highly detailed"
	default:
		return "comprehensive"
	}
}

func (d DetailLevel) releaseNotesGuidance() string {
	switch d {
	case Minimal:
		return "Keep the release notes brief and focused on the most significant changes."
	case Detailed:
		return "Include detailed explanations of changes, their rationale, and potential impact on the project or workflow. Provide context for technical changes and include file-level details where relevant."
	default:
		return "Provide a balanced overview of all important changes, with some details on major features or fixes."
	}
}

// Range names the endpoints of the commit span under generation.
type Range struct {
	From string
	To   string
}

//go:embed changelog_system.md
var changelogSystemText string

//go:embed release_notes_system.md
var releaseNotesSystemText string

//go:embed changelog_user.md
var changelogUserText string

//go:embed release_notes_user.md
var releaseNotesUserText string

var (
	changelogSystemTemplate    *template.Template
	releaseNotesSystemTemplate *template.Template
	changelogUserTemplate      *template.Template
	releaseNotesUserTemplate   *template.Template
)

var changesTemplateFuncs = template.FuncMap{
	"join": strings.Join,
}

func init() {
	changelogSystemTemplate = template.Must(
		template.New("changelog_system").Parse(changelogSystemText),
	)
	releaseNotesSystemTemplate = template.Must(
		template.New("release_notes_system").Parse(releaseNotesSystemText),
	)
	changelogUserTemplate = template.Must(
		template.New("changelog_user").Funcs(changesTemplateFuncs).Parse(changelogUserText),
	)
	releaseNotesUserTemplate = template.Must(
		template.New("release_notes_user").Funcs(changesTemplateFuncs).Parse(releaseNotesUserText),
	)
}

type systemPromptData struct {
	Preset      string
	Custom      string
	Gitmoji     bool
	GitmojiList string
}

func systemData(instr prompt.Instructions) systemPromptData {
	data := systemPromptData{Custom: instr.Custom, Gitmoji: instr.Gitmoji}
	if preset, ok := prompt.PresetByKey(instr.PresetKey); ok {
		data.Preset = preset.Instructions
	}
	if instr.Gitmoji {
		data.GitmojiList = prompt.GitmojiList()
	}
	return data
}

type userPromptData struct {
	From           string
	To             string
	Adjective      string
	DetailGuidance string
	ShowFiles      bool
	ShowAnalysis   bool
	Changes        []AnalyzedChange
	Totals         Metrics
	ReadmeSummary  string
}

func userData(analyzed []AnalyzedChange, detail DetailLevel, rng Range, readmeSummary string) userPromptData {
	return userPromptData{
		From:           rng.From,
		To:             rng.To,
		Adjective:      detail.adjective(),
		DetailGuidance: detail.releaseNotesGuidance(),
		ShowFiles:      detail != Minimal,
		ShowAnalysis:   detail == Detailed,
		Changes:        analyzed,
		Totals:         TotalMetrics(analyzed),
		ReadmeSummary:  readmeSummary,
	}
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// ChangelogSystemPrompt renders the changelog guidelines with any
// preset, custom instructions, and gitmoji directive appended.
func ChangelogSystemPrompt(instr prompt.Instructions) (string, error) {
	return render(changelogSystemTemplate, systemData(instr))
}

// ReleaseNotesSystemPrompt renders the release notes guidelines with
// any preset, custom instructions, and gitmoji directive appended.
func ReleaseNotesSystemPrompt(instr prompt.Instructions) (string, error) {
	return render(releaseNotesSystemTemplate, systemData(instr))
}

// ChangelogUserPrompt renders the analyzed range for changelog
// generation at the requested detail level.
func ChangelogUserPrompt(analyzed []AnalyzedChange, detail DetailLevel, rng Range, readmeSummary string) (string, error) {
	return render(changelogUserTemplate, userData(analyzed, detail, rng, readmeSummary))
}

// ReleaseNotesUserPrompt renders the analyzed range for release notes
// generation at the requested detail level.
func ReleaseNotesUserPrompt(analyzed []AnalyzedChange, detail DetailLevel, rng Range, readmeSummary string) (string, error) {
	return render(releaseNotesUserTemplate, userData(analyzed, detail, rng, readmeSummary))
}
