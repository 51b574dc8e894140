package analysis

import "regexp"

type gradleAnalyzer struct{}

var (
	gradleDepRe    = regexp.MustCompile(`(?m)^[+-]\s*(?:implementation|api|testImplementation|compile)\b`)
	gradlePluginRe = regexp.MustCompile(`(?m)^[+-]\s*(?:plugins|apply plugin)\b`)
	gradleTaskRe   = regexp.MustCompile(`(?m)^[+-]\s*task\s+`)
)

func (gradleAnalyzer) Analyze(_, diff string) []string {
	var analysis []string

	if gradleDepRe.MatchString(diff) {
		analysis = append(analysis, "Dependencies have been modified")
	}
	if gradlePluginRe.MatchString(diff) {
		analysis = append(analysis, "Plugins have been modified")
	}
	if gradleTaskRe.MatchString(diff) {
		analysis = append(analysis, "Tasks have been modified")
	}

	return analysis
}

func (gradleAnalyzer) FileType() string { return "Gradle build file" }
