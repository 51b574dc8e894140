package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

type cAnalyzer struct{}

var (
	cFuncRe    = regexp.MustCompile(`(?m)^[+-]\s*(?:static\s+)?(?:inline\s+)?(?:const\s+)?(?:unsigned\s+)?(?:void|int|char|float|double|long|short|struct\s+\w+)\s+\**(\w+)\s*\(`)
	cStructRe  = regexp.MustCompile(`(?m)^[+-]\s*(?:typedef\s+)?struct\s+(\w+)`)
	cIncludeRe = regexp.MustCompile(`(?m)^[+-]\s*#include`)
)

func (cAnalyzer) Analyze(_, diff string) []string {
	var analysis []string

	if funcs := captures(cFuncRe, diff); len(funcs) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified functions: %s", strings.Join(funcs, ", ")))
	}
	if structs := captures(cStructRe, diff); len(structs) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified structs: %s", strings.Join(structs, ", ")))
	}
	if cIncludeRe.MatchString(diff) {
		analysis = append(analysis, "Include statements have been modified")
	}

	return analysis
}

func (cAnalyzer) FileType() string { return "C source file" }
