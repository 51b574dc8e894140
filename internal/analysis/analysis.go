// Package analysis extracts short semantic annotations from staged
// diffs. Analyzers are shallow pattern extractors dispatched by file
// extension; they never fail and never touch the filesystem.
package analysis

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Analyzer inspects one file's diff and reports what changed in it.
// Implementations are pure: identical input always yields identical
// annotations.
type Analyzer interface {
	// Analyze returns annotations for the diff, possibly none.
	Analyze(path, diff string) []string
	// FileType is a short human-readable label for the file kind.
	FileType() string
}

// registry maps lowercased extensions (and a few exact basenames) to
// their analyzer. The set is closed and known at build time.
var registry = map[string]Analyzer{
	".go":         goAnalyzer{},
	".rs":         rustAnalyzer{},
	".js":         javaScriptAnalyzer{},
	".jsx":        javaScriptAnalyzer{},
	".ts":         javaScriptAnalyzer{},
	".tsx":        javaScriptAnalyzer{},
	".py":         pythonAnalyzer{},
	".java":       javaAnalyzer{},
	".kt":         kotlinAnalyzer{},
	".kts":        kotlinAnalyzer{},
	".c":          cAnalyzer{},
	".h":          cAnalyzer{},
	".cpp":        cppAnalyzer{},
	".cc":         cppAnalyzer{},
	".hpp":        cppAnalyzer{},
	".md":         markdownAnalyzer{},
	".json":       jsonAnalyzer{},
	".yaml":       yamlAnalyzer{},
	".yml":        yamlAnalyzer{},
	".toml":       tomlAnalyzer{},
	".gradle":     gradleAnalyzer{},
	".gradle.kts": gradleAnalyzer{},
}

// ForPath returns the analyzer responsible for path. Unknown paths get
// the default analyzer, which reports a generic file type and no
// annotations.
func ForPath(path string) Analyzer {
	name := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(name, ".gradle.kts") {
		return registry[".gradle.kts"]
	}
	if analyzer, ok := registry[filepath.Ext(name)]; ok {
		return analyzer
	}
	return defaultAnalyzer{}
}

// defaultAnalyzer handles everything the registry does not know.
type defaultAnalyzer struct{}

func (defaultAnalyzer) Analyze(string, string) []string { return nil }
func (defaultAnalyzer) FileType() string                { return "Unknown file type" }

// uniqueInOrder drops duplicate names while keeping first-seen order so
// annotations stay deterministic.
func uniqueInOrder(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// captures collects the first non-empty capture group of every match.
func captures(re *regexp.Regexp, diff string) []string {
	var names []string
	for _, match := range re.FindAllStringSubmatch(diff, -1) {
		for _, group := range match[1:] {
			if group != "" {
				names = append(names, group)
				break
			}
		}
	}
	return uniqueInOrder(names)
}
