package parser

import (
	"regexp"
	"strings"
)

// deadlineHintRE spots lines about submission/registration deadlines in
// Russian or English announcement text.
var deadlineHintRE = regexp.MustCompile(`(?i)deadline|дедлайн|submit|submission|abstract|paper|application|registration|заявк|подач|при[её]м|регистрац|до\s+\d{1,2}\s+[а-яё]+|\bby\s+\d{1,2}`)

const maxDeadlineLines = 30

// extractDeadlines returns the deadline-looking lines of text, first-seen
// order, case-insensitively de-duplicated.
func extractDeadlines(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ln := range blockLines(text) {
		if !deadlineHintRE.MatchString(ln) {
			continue
		}
		key := strings.ToLower(ln)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ln)
		if len(out) == maxDeadlineLines {
			break
		}
	}
	return out
}

// prependDeadlines surfaces deadline lines at the top of the details body.
func prependDeadlines(deadlines []string, text string) string {
	if len(deadlines) == 0 {
		return text
	}
	return "DEADLINES:\n" + strings.Join(deadlines, "\n") + "\n\n" + text
}
