package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

type markdownAnalyzer struct{}

var (
	mdHeaderRe = regexp.MustCompile(`(?m)^[+-]\s*#{1,6}\s+(.+)`)
	mdListRe   = regexp.MustCompile(`(?m)^[+-]\s*[-*+]\s+`)
	mdCodeRe   = regexp.MustCompile("(?m)^[+-]\\s*```")
	mdLinkRe   = regexp.MustCompile(`(?m)^[+-].*\[.+\]\(.+\)`)
)

func (markdownAnalyzer) Analyze(_, diff string) []string {
	var analysis []string

	if headers := captures(mdHeaderRe, diff); len(headers) > 0 {
		analysis = append(analysis, fmt.Sprintf("Modified headers: %s", strings.Join(headers, ", ")))
	}
	if mdListRe.MatchString(diff) {
		analysis = append(analysis, "List structures have been modified")
	}
	if mdCodeRe.MatchString(diff) {
		analysis = append(analysis, "Code blocks have been modified")
	}
	if mdLinkRe.MatchString(diff) {
		analysis = append(analysis, "Links have been modified")
	}

	return analysis
}

func (markdownAnalyzer) FileType() string { return "Markdown file" }
