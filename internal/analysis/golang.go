package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

type goAnalyzer struct{}

var (
	goFuncRe   = regexp.MustCompile(`(?m)^[+-]\s*func\s+(?:\([^)]*\)\s*)?(\w+)\s*\(`)
	goTypeRe   = regexp.MustCompile(`(?m)^[+-]\s*type\s+(\w+)\s+`)
	goImportRe = regexp.MustCompile(`(?m)^[+-]\s*(?:import\b|\t_?\s?"[^"]+"$|\t\w+ "[^"]+"$)`)
)

func (goAnalyzer) Analyze(_, diff string) []string {
	var analysis []string

	if funcs := captures(goFuncRe, diff); len(funcs) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified functions: %s", strings.Join(funcs, ", ")))
	}
	if types := captures(goTypeRe, diff); len(types) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified types: %s", strings.Join(types, ", ")))
	}
	if goImportRe.MatchString(diff) {
		analysis = append(analysis, "Import statements have been modified")
	}

	return analysis
}

func (goAnalyzer) FileType() string { return "Go source file" }
