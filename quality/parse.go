package quality

import (
	"regexp"
	"strconv"
	"strings"
)

// Marker phrases emitted by the check script. The counts follow each marker
// and end at the counter suffix (例: "❌ エラー: 2個").
const (
	errorMarker   = "❌ エラー:"
	warningMarker = "⚠️  警告:"
	countSuffix   = "個"
)

// 提案行は "1." 〜 "5." の番号付きのみ. それ以上の序数や年号付きの行は拾わない
var suggestionPattern = regexp.MustCompile(`^[1-5]\.\s*`)

// Parse extracts error/warning counts and suggestion lines from the script's
// free-text output and derives the score. Malformed lines are skipped, never
// an error.
func Parse(output string) *Report {
	report := &Report{Suggestions: []string{}}
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.Contains(line, errorMarker):
			if n, ok := parseMarkedCount(line, errorMarker); ok {
				report.Errors = n
			}
		case strings.Contains(line, warningMarker):
			if n, ok := parseMarkedCount(line, warningMarker); ok {
				report.Warnings = n
			}
		case suggestionPattern.MatchString(trimmed):
			report.Suggestions = append(report.Suggestions, trimmed)
		}
	}

	report.QualityScore = score(report.Errors, report.Warnings)
	report.QualityLevel = level(report.QualityScore)
	return report
}

func parseMarkedCount(line, marker string) (int, bool) {
	_, after, found := strings.Cut(line, marker)
	if !found {
		return 0, false
	}
	before, _, found := strings.Cut(after, countSuffix)
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(before))
	if err != nil {
		return 0, false
	}
	return n, true
}

func score(errors, warnings int) int {
	s := 100 - errors*20 - warnings*5
	if s < 0 {
		return 0
	}
	return s
}

func level(score int) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "needs_improvement"
	default:
		return "poor"
	}
}
