package prompt

import (
	"strings"
	"testing"

	"gitscribe/internal/assembly"
	"gitscribe/internal/git"
	"gitscribe/internal/metadata"
)

func mustRender(t *testing.T) func(string, error) string {
	return func(text string, err error) string {
		t.Helper()
		if err != nil {
			t.Fatalf("render failed: %v", err)
		}
		return text
	}
}

func sampleOptimized() *assembly.Optimized {
	return &assembly.Optimized{
		Branch:               "feature/login",
		InstructionsIncluded: true,
		Metadata:             metadata.Project{Language: "Go", Dependencies: []string{"cobra", "viper"}},
		RecentCommits: []git.RecentCommit{
			{Hash: "abc1234def", Subject: "Add parser"},
		},
		Files: []assembly.OptimizedFile{
			{ChangedFile: assembly.ChangedFile{
				Path:        "pkg/a.go",
				Change:      git.ChangeModified,
				Diff:        "+new line\n",
				Annotations: []string{"Modified functions: A"},
				FileType:    "Go source file",
				Score:       2.25,
			}},
			{ChangedFile: assembly.ChangedFile{
				Path:     "pkg/big.go",
				Change:   git.ChangeModified,
				FileType: "Go source file",
				Score:    1.5,
			}, ContentExcluded: true},
		},
		OmittedFiles: 3,
	}
}

func TestRenderHeader(t *testing.T) {
	got := mustRender(t)(RenderHeader("main"))
	want := "Based on the following context, generate a Git commit message:\n\nBranch: main\n\n"
	if got != want {
		t.Errorf("header = %q, want %q", got, want)
	}
}

func TestRenderMetadata(t *testing.T) {
	got := mustRender(t)(RenderMetadata(metadata.Project{Language: "Go", Dependencies: []string{"cobra", "viper"}}))
	want := "Project metadata:\nLanguage: Go\nFramework: None\nDependencies: cobra, viper\n\n"
	if got != want {
		t.Errorf("metadata = %q, want %q", got, want)
	}
}

func TestRenderCommits(t *testing.T) {
	got := mustRender(t)(RenderCommits([]git.RecentCommit{
		{Hash: "abc1234def", Subject: "Add parser"},
		{Hash: "fff", Subject: "Init"},
	}))
	want := "Recent commits:\nabc1234 - Add parser\nfff - Init\n\n"
	if got != want {
		t.Errorf("commits = %q, want %q", got, want)
	}
}

func TestRenderFileWhole(t *testing.T) {
	file := assembly.OptimizedFile{ChangedFile: assembly.ChangedFile{
		Path:        "pkg/a.go",
		Change:      git.ChangeModified,
		Diff:        "+new line\n",
		Annotations: []string{"Modified functions: A"},
		Score:       2.25,
	}}
	got := mustRender(t)(RenderFile(file))
	want := "File: pkg/a.go (Relevance: 2.25)\nChange Type: Modified\nAnalysis:\n- Modified functions: A\nDiff:\n+new line\n\n"
	if got != want {
		t.Errorf("file section = %q, want %q", got, want)
	}
}

func TestRenderFileRenamed(t *testing.T) {
	file := assembly.OptimizedFile{ChangedFile: assembly.ChangedFile{
		Path:    "pkg/new.go",
		OldPath: "pkg/old.go",
		Change:  git.ChangeRenamed,
		Diff:    "",
		Score:   1.0,
	}}
	got := mustRender(t)(RenderFile(file))
	if !strings.Contains(got, "File: pkg/new.go (renamed from pkg/old.go)") {
		t.Errorf("rename not rendered: %q", got)
	}
}

func TestRenderFileBinary(t *testing.T) {
	file := assembly.OptimizedFile{ChangedFile: assembly.ChangedFile{
		Path:   "assets/logo.png",
		Change: git.ChangeAdded,
		Binary: true,
		Score:  1.4,
	}}
	got := mustRender(t)(RenderFile(file))
	want := "File: assets/logo.png (Relevance: 1.40)\nChange Type: Binary\n(binary file, content not included)\n"
	if got != want {
		t.Errorf("binary section = %q, want %q", got, want)
	}
}

func TestRenderFileContentExcluded(t *testing.T) {
	file := assembly.OptimizedFile{ChangedFile: assembly.ChangedFile{
		Path:        "pkg/big.go",
		Change:      git.ChangeModified,
		Annotations: []string{"Modified functions: run"},
		FileType:    "Go source file",
	}, ContentExcluded: true}
	got := mustRender(t)(RenderFile(file))
	want := "- pkg/big.go (Modified): Modified functions: run\n"
	if got != want {
		t.Errorf("summary line = %q, want %q", got, want)
	}
}

func TestRenderTrailer(t *testing.T) {
	got := mustRender(t)(RenderTrailer(3))
	if got != "+3 more changed files not shown\n" {
		t.Errorf("trailer = %q", got)
	}
}

// The full prompt must be exactly the concatenation of its measured
// sections, otherwise packing against section sizes could overshoot.
func TestBuildUserPromptMatchesSectionConcatenation(t *testing.T) {
	opt := sampleOptimized()

	var want strings.Builder
	want.WriteString(mustRender(t)(RenderHeader(opt.Branch)))
	want.WriteString(mustRender(t)(RenderMetadata(opt.Metadata)))
	want.WriteString(mustRender(t)(RenderCommits(opt.RecentCommits)))
	for _, file := range opt.Files {
		want.WriteString(mustRender(t)(RenderFile(file)))
	}
	want.WriteString(mustRender(t)(RenderTrailer(opt.OmittedFiles)))

	got := mustRender(t)(BuildUserPrompt(opt))
	if got != want.String() {
		t.Errorf("prompt differs from section concatenation:\ngot:\n%q\nwant:\n%q", got, want.String())
	}
}

func TestBuildUserPromptSkipsEmptySections(t *testing.T) {
	opt := &assembly.Optimized{Branch: "main", OmittedFiles: 2}

	got := mustRender(t)(BuildUserPrompt(opt))
	want := mustRender(t)(RenderHeader("main")) + mustRender(t)(RenderTrailer(2))
	if got != want {
		t.Errorf("degenerate prompt = %q, want %q", got, want)
	}
	if strings.Contains(got, "Project metadata") || strings.Contains(got, "Recent commits") {
		t.Errorf("empty sections should not render: %q", got)
	}
}

func TestBuildUserPromptSectionOrder(t *testing.T) {
	got := mustRender(t)(BuildUserPrompt(sampleOptimized()))

	order := []string{
		"Branch: feature/login",
		"Project metadata:",
		"Recent commits:",
		"File: pkg/a.go",
		"- pkg/big.go (Modified):",
		"+3 more changed files not shown",
	}
	last := -1
	for _, marker := range order {
		idx := strings.Index(got, marker)
		if idx < 0 {
			t.Fatalf("marker %q missing from prompt:\n%s", marker, got)
		}
		if idx < last {
			t.Errorf("marker %q out of order", marker)
		}
		last = idx
	}
}

func TestBuildUserPromptDeterministic(t *testing.T) {
	first := mustRender(t)(BuildUserPrompt(sampleOptimized()))
	second := mustRender(t)(BuildUserPrompt(sampleOptimized()))
	if first != second {
		t.Error("identical input rendered different prompts")
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	got := mustRender(t)(BuildSystemPrompt(Instructions{PresetKey: "concise", Custom: "Mention ticket IDs.", Gitmoji: true}))

	for _, want := range []string{
		"imperative mood",
		"valid JSON object",
		"Use this style for the commit message:",
		"Keep responses brief",
		"Additional instructions for the commit message:",
		"Mention ticket IDs.",
		"single gitmoji",
		"✨ - :sparkles: - Introduce new features",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestBuildSystemPromptWithoutExtras(t *testing.T) {
	got := mustRender(t)(BuildSystemPrompt(Instructions{PresetKey: "no-such-preset"}))

	if strings.Contains(got, "Use this style for the commit message:") {
		t.Error("unknown preset should render no style block")
	}
	if strings.Contains(got, "single gitmoji") {
		t.Error("gitmoji directive rendered while disabled")
	}
	if !strings.Contains(got, "NO YAPPING!") {
		t.Error("base guidelines missing")
	}
}
