package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

type yamlAnalyzer struct{}

var (
	yamlTopKeyRe = regexp.MustCompile(`(?m)^[+-](\w+):(?:\s|$)`)
	yamlListRe   = regexp.MustCompile(`(?m)^[+-]\s*-\s+`)
	yamlNestedRe = regexp.MustCompile(`(?m)^[+-]\s+\w+:`)
)

func (yamlAnalyzer) Analyze(_, diff string) []string {
	var analysis []string

	if keys := captures(yamlTopKeyRe, diff); len(keys) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified top-level keys: %s", strings.Join(keys, ", ")))
	}
	if yamlListRe.MatchString(diff) {
		analysis = append(analysis, "List structures have been modified")
	}
	if yamlNestedRe.MatchString(diff) {
		analysis = append(analysis, "Nested structures have been modified")
	}

	return analysis
}

func (yamlAnalyzer) FileType() string { return "YAML configuration file" }
