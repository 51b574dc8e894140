package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

type jsonAnalyzer struct{}

var (
	jsonKeyRe    = regexp.MustCompile(`(?m)^[+-]\s*"(\w+)"\s*:`)
	jsonArrayRe  = regexp.MustCompile(`(?m)^[+-]\s*(?:"[^"]+"\s*:\s*)?\[`)
	jsonNestedRe = regexp.MustCompile(`(?m)^[+-]\s*"[^"]+"\s*:\s*\{`)
)

func (jsonAnalyzer) Analyze(_, diff string) []string {
	var analysis []string

	if keys := captures(jsonKeyRe, diff); len(keys) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified keys: %s", strings.Join(keys, ", ")))
	}
	if jsonArrayRe.MatchString(diff) {
		analysis = append(analysis, "Array structures have been modified")
	}
	if jsonNestedRe.MatchString(diff) {
		analysis = append(analysis, "Nested objects have been modified")
	}

	return analysis
}

func (jsonAnalyzer) FileType() string { return "JSON configuration file" }
