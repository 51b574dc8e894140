package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

type rustAnalyzer struct{}

var (
	rustFuncRe   = regexp.MustCompile(`(?m)^[+-]\s*(?:pub\s+)?(?:async\s+)?fn\s+(\w+)`)
	rustStructRe = regexp.MustCompile(`(?m)^[+-]\s*(?:pub\s+)?struct\s+(\w+)`)
	rustTraitRe  = regexp.MustCompile(`(?m)^[+-]\s*(?:pub\s+)?trait\s+(\w+)`)
	rustUseRe    = regexp.MustCompile(`(?m)^[+-]\s*(?:use|extern crate)\b`)
)

func (rustAnalyzer) Analyze(_, diff string) []string {
	var analysis []string

	if funcs := captures(rustFuncRe, diff); len(funcs) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified functions: %s", strings.Join(funcs, ", ")))
	}
	if structs := captures(rustStructRe, diff); len(structs) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified structs: %s", strings.Join(structs, ", ")))
	}
	if traits := captures(rustTraitRe, diff); len(traits) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified traits: %s", strings.Join(traits, ", ")))
	}
	if rustUseRe.MatchString(diff) {
		analysis = append(analysis, "Import statements have been modified")
	}

	return analysis
}

func (rustAnalyzer) FileType() string { return "Rust source file" }
