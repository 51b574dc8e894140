package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

type kotlinAnalyzer struct{}

var (
	kotlinClassRe  = regexp.MustCompile(`(?m)^[+-]\s*(?:class|interface|object)\s+(\w+)`)
	kotlinFuncRe   = regexp.MustCompile(`(?m)^[+-]\s*fun\s+(\w+)`)
	kotlinImportRe = regexp.MustCompile(`(?m)^[+-]\s*import\s+`)
)

func (kotlinAnalyzer) Analyze(_, diff string) []string {
	var analysis []string

	if classes := captures(kotlinClassRe, diff); len(classes) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified classes: %s", strings.Join(classes, ", ")))
	}
	if funcs := captures(kotlinFuncRe, diff); len(funcs) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified functions: %s", strings.Join(funcs, ", ")))
	}
	if kotlinImportRe.MatchString(diff) {
		analysis = append(analysis, "Import statements have been modified")
	}

	return analysis
}

func (kotlinAnalyzer) FileType() string { return "Kotlin source file" }
