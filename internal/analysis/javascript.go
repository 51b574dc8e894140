package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

type javaScriptAnalyzer struct{}

var (
	jsFuncRe      = regexp.MustCompile(`(?m)^[+-]\s*(?:function\s+(\w+)|const\s+(\w+)\s*=\s*(?:\([^)]*\)\s*=>|function))`)
	jsClassRe     = regexp.MustCompile(`(?m)^[+-]\s*class\s+(\w+)`)
	jsImportRe    = regexp.MustCompile(`(?m)^[+-]\s*(?:import|export)\b`)
	jsComponentRe = regexp.MustCompile(`(?m)^[+-]\s*class\s+(\w+)\s+extends\s+React\.Component`)
)

func (javaScriptAnalyzer) Analyze(_, diff string) []string {
	var analysis []string

	if funcs := captures(jsFuncRe, diff); len(funcs) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified functions: %s", strings.Join(funcs, ", ")))
	}
	if classes := captures(jsClassRe, diff); len(classes) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified classes: %s", strings.Join(classes, ", ")))
	}
	if jsImportRe.MatchString(diff) {
		analysis = append(analysis, "Import statements have been modified")
	}
	if components := captures(jsComponentRe, diff); len(components) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified React components: %s", strings.Join(components, ", ")))
	}

	return analysis
}

func (javaScriptAnalyzer) FileType() string { return "JavaScript/TypeScript source file" }
