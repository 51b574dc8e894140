package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

type cppAnalyzer struct{}

var (
	cppFuncRe    = regexp.MustCompile(`(?m)^[+-]\s*(?:static\s+)?(?:inline\s+)?(?:const\s+)?(?:void|int|char|float|double|long|short|auto|bool|std::\w+)\s+\**(\w+)\s*\(`)
	cppClassRe   = regexp.MustCompile(`(?m)^[+-]\s*class\s+(\w+)`)
	cppIncludeRe = regexp.MustCompile(`(?m)^[+-]\s*#include`)
)

func (cppAnalyzer) Analyze(_, diff string) []string {
	var analysis []string

	if funcs := captures(cppFuncRe, diff); len(funcs) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified functions: %s", strings.Join(funcs, ", ")))
	}
	if classes := captures(cppClassRe, diff); len(classes) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified classes: %s", strings.Join(classes, ", ")))
	}
	if cppIncludeRe.MatchString(diff) {
		analysis = append(analysis, "Include statements have been modified")
	}

	return analysis
}

func (cppAnalyzer) FileType() string { return "C++ source file" }
