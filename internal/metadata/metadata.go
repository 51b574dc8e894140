// Package metadata derives a project profile (language, framework,
// dependencies) from the manifest files at the repository root. The
// scan runs once per invocation and its result is treated as read-only.
package metadata

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Project describes what kind of codebase the changes belong to. All
// fields are optional; empty values mean "not detected".
type Project struct {
	Language      string
	Framework     string
	Version       string
	BuildSystem   string
	TestFramework string
	Dependencies  []string
	Plugins       []string
}

// IsEmpty reports whether the scan found nothing at all.
func (p Project) IsEmpty() bool {
	return p.Language == "" && p.Framework == "" && p.Version == "" &&
		p.BuildSystem == "" && p.TestFramework == "" &&
		len(p.Dependencies) == 0 && len(p.Plugins) == 0
}

// Merge folds other into p. Languages accumulate comma-separated,
// scalar fields keep their first detected value, list fields union and
// sort for determinism.
func (p *Project) Merge(other Project) {
	if other.Language != "" && !strings.Contains(p.Language, other.Language) {
		if p.Language == "" {
			p.Language = other.Language
		} else {
			p.Language += ", " + other.Language
		}
	}
	if p.Framework == "" {
		p.Framework = other.Framework
	}
	if p.Version == "" {
		p.Version = other.Version
	}
	if p.BuildSystem == "" {
		p.BuildSystem = other.BuildSystem
	}
	if p.TestFramework == "" {
		p.TestFramework = other.TestFramework
	}
	p.Dependencies = mergeSorted(p.Dependencies, other.Dependencies)
	p.Plugins = mergeSorted(p.Plugins, other.Plugins)
}

func mergeSorted(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]bool, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, value := range append(append([]string{}, a...), b...) {
		if value != "" && !seen[value] {
			seen[value] = true
			merged = append(merged, value)
		}
	}
	sort.Strings(merged)
	return merged
}

// manifestScanners maps root-level manifest files to their parsers, in
// the order they are tried.
var manifestScanners = []struct {
	name  string
	parse func(content []byte, p *Project)
}{
	{"go.mod", parseGoMod},
	{"Cargo.toml", parseCargoToml},
	{"package.json", parsePackageJSON},
	{"pyproject.toml", parsePyprojectToml},
	{"pubspec.yaml", parsePubspecYaml},
	{"pom.xml", parsePomXML},
	{"build.gradle", parseGradle},
	{"build.gradle.kts", parseGradle},
	{"Gemfile", parseGemfile},
	{"CMakeLists.txt", parseCMake},
	{"Makefile", parseMakefile},
}

// Scan reads the known manifests under root and merges what they reveal.
// Missing or unreadable files are skipped silently.
func Scan(root string) Project {
	var project Project
	for _, scanner := range manifestScanners {
		content, err := os.ReadFile(filepath.Join(root, scanner.name))
		if err != nil {
			continue
		}
		var partial Project
		scanner.parse(content, &partial)
		project.Merge(partial)
	}

	project.Merge(detectCI(root))
	return project
}

// detectCI records which pipeline definitions exist without parsing them.
func detectCI(root string) Project {
	var project Project
	if _, err := os.Stat(filepath.Join(root, ".github", "workflows")); err == nil {
		project.Plugins = append(project.Plugins, "GitHub Actions")
	}
	if _, err := os.Stat(filepath.Join(root, ".gitlab-ci.yml")); err == nil {
		project.Plugins = append(project.Plugins, "GitLab CI")
	}
	return project
}

// FromPaths infers languages purely from changed-file extensions, used
// when no manifest identifies the project.
func FromPaths(paths []string) Project {
	var project Project
	for _, path := range paths {
		var lang string
		switch strings.ToLower(filepath.Ext(path)) {
		case ".go":
			lang = "Go"
		case ".rs":
			lang = "Rust"
		case ".js", ".jsx", ".ts", ".tsx":
			lang = "JavaScript/TypeScript"
		case ".py":
			lang = "Python"
		case ".java":
			lang = "Java"
		case ".kt", ".kts":
			lang = "Kotlin"
		case ".rb":
			lang = "Ruby"
		case ".c", ".h":
			lang = "C"
		case ".cpp", ".cc", ".hpp":
			lang = "C++"
		case ".dart":
			lang = "Dart"
		default:
			continue
		}
		project.Merge(Project{Language: lang})
	}
	return project
}
