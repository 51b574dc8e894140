package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

type pythonAnalyzer struct{}

var (
	pyFuncRe      = regexp.MustCompile(`(?m)^[+-]\s*(?:async\s+)?def\s+(\w+)`)
	pyClassRe     = regexp.MustCompile(`(?m)^[+-]\s*class\s+(\w+)`)
	pyImportRe    = regexp.MustCompile(`(?m)^[+-]\s*(?:import|from)\b`)
	pyDecoratorRe = regexp.MustCompile(`(?m)^[+-]\s*@(\w+)`)
)

func (pythonAnalyzer) Analyze(_, diff string) []string {
	var analysis []string

	funcs := captures(pyFuncRe, diff)
	funcs = withoutName(funcs, "__init__")
	if len(funcs) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified functions: %s", strings.Join(funcs, ", ")))
	}
	if classes := captures(pyClassRe, diff); len(classes) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified classes: %s", strings.Join(classes, ", ")))
	}
	if pyImportRe.MatchString(diff) {
		analysis = append(analysis, "Import statements have been modified")
	}
	if decorators := captures(pyDecoratorRe, diff); len(decorators) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified decorators: %s", strings.Join(decorators, ", ")))
	}

	return analysis
}

func (pythonAnalyzer) FileType() string { return "Python source file" }

func withoutName(names []string, drop string) []string {
	var out []string
	for _, name := range names {
		if name != drop {
			out = append(out, name)
		}
	}
	return out
}
