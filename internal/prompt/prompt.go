// Package prompt renders budget-fitted context into provider request
// text. Rendering is deterministic and the per-section renderers share
// one template with the full prompt builder, so text packed against
// section measurements cannot render larger than measured.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gitscribe/internal/assembly"
	"gitscribe/internal/git"
	"gitscribe/internal/metadata"
)

// Instructions selects the voice of the generated message.
type Instructions struct {
	// PresetKey names an instruction preset; unknown keys render no
	// preset block.
	PresetKey string
	// Custom carries user-supplied instructions verbatim.
	Custom string
	// Gitmoji asks the model to lead with an emoji.
	Gitmoji bool
}

//go:embed user_context.md
var userContextTemplateText string

//go:embed system_prompt.md
var systemPromptTemplateText string

var (
	userContextTemplate  *template.Template
	systemPromptTemplate *template.Template
)

var userTemplateFuncs = template.FuncMap{
	"shortHash": func(hash string) string {
		if len(hash) > 7 {
			return hash[:7]
		}
		return hash
	},
	"orNone": func(s string) string {
		if s == "" {
			return "None"
		}
		return s
	},
	"commaList": func(items []string) string {
		if len(items) == 0 {
			return "None"
		}
		return strings.Join(items, ", ")
	},
}

func init() {
	userContextTemplate = template.Must(
		template.New("user_context").Funcs(userTemplateFuncs).Parse(userContextTemplateText),
	)
	systemPromptTemplate = template.Must(
		template.New("system_prompt").Parse(systemPromptTemplateText),
	)
}

func renderSection(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := userContextTemplate.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s section: %w", name, err)
	}
	return buf.String(), nil
}

// RenderHeader renders the branch header. It is the irreducible core of
// every prompt: even a zero budget renders it.
func RenderHeader(branch string) (string, error) {
	return renderSection("header", branch)
}

// RenderMetadata renders the project metadata section.
func RenderMetadata(meta metadata.Project) (string, error) {
	return renderSection("metadata", meta)
}

// RenderCommits renders the recent history section.
func RenderCommits(commits []git.RecentCommit) (string, error) {
	return renderSection("commits", commits)
}

// RenderFile renders one changed file exactly as BuildUserPrompt will.
func RenderFile(file assembly.OptimizedFile) (string, error) {
	return renderSection("file", file)
}

// RenderTrailer renders the aggregate line for files left out of the
// prompt entirely.
func RenderTrailer(omitted int) (string, error) {
	return renderSection("trailer", omitted)
}

type userContextData struct {
	Branch        string
	HasMetadata   bool
	Metadata      metadata.Project
	RecentCommits []git.RecentCommit
	Files         []assembly.OptimizedFile
	OmittedFiles  int
}

// BuildUserPrompt renders the final user prompt in fixed section order:
// branch header, project metadata, recent commits, changed files in
// snapshot order, aggregate trailer.
func BuildUserPrompt(opt *assembly.Optimized) (string, error) {
	data := userContextData{
		Branch:        opt.Branch,
		HasMetadata:   !opt.Metadata.IsEmpty(),
		Metadata:      opt.Metadata,
		RecentCommits: opt.RecentCommits,
		Files:         opt.Files,
		OmittedFiles:  opt.OmittedFiles,
	}
	var buf bytes.Buffer
	if err := userContextTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render user prompt: %w", err)
	}
	return buf.String(), nil
}

type systemPromptData struct {
	Preset      string
	Custom      string
	Gitmoji     bool
	GitmojiList string
}

// BuildSystemPrompt renders the system prompt: base guidelines, any
// preset and custom instruction blocks, the gitmoji directive, and the
// required response shape.
func BuildSystemPrompt(instr Instructions) (string, error) {
	data := systemPromptData{Custom: instr.Custom, Gitmoji: instr.Gitmoji}
	if preset, ok := PresetByKey(instr.PresetKey); ok {
		data.Preset = preset.Instructions
	}
	if instr.Gitmoji {
		data.GitmojiList = GitmojiList()
	}

	var buf bytes.Buffer
	if err := systemPromptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render system prompt: %w", err)
	}
	return buf.String(), nil
}
