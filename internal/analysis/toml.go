package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

type tomlAnalyzer struct{}

var (
	tomlTableRe = regexp.MustCompile(`(?m)^[+-]\s*\[([\w.-]+)\]`)
	tomlDepRe   = regexp.MustCompile(`(?m)^[+-]\s*[\w-]+\s*=\s*(?:"[^"]*"|\{)`)
)

func (tomlAnalyzer) Analyze(path, diff string) []string {
	var analysis []string

	if tables := captures(tomlTableRe, diff); len(tables) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified sections: %s", strings.Join(tables, ", ")))
	}
	if strings.HasSuffix(path, "Cargo.toml") && tomlDepRe.MatchString(diff) {
		analysis = append(analysis, "Dependencies updated")
	}

	return analysis
}

func (tomlAnalyzer) FileType() string { return "TOML configuration file" }
