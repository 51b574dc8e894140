package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

type javaAnalyzer struct{}

var (
	javaClassRe  = regexp.MustCompile(`(?m)^[+-]\s*(?:public\s+|private\s+)?(?:class|interface|enum)\s+(\w+)`)
	javaMethodRe = regexp.MustCompile(`(?m)^[+-]\s*(?:public|protected|private)?\s*\w+\s+(\w+)\s*\([^)]*\)`)
	javaImportRe = regexp.MustCompile(`(?m)^[+-]\s*import\s+`)
)

func (javaAnalyzer) Analyze(_, diff string) []string {
	var analysis []string

	if classes := captures(javaClassRe, diff); len(classes) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified classes: %s", strings.Join(classes, ", ")))
	}
	if methods := captures(javaMethodRe, diff); len(methods) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified methods: %s", strings.Join(methods, ", ")))
	}
	if javaImportRe.MatchString(diff) {
		analysis = append(analysis, "Import statements have been modified")
	}

	return analysis
}

func (javaAnalyzer) FileType() string { return "Java source file" }
