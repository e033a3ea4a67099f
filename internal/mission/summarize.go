package mission

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/silverglade/conclave/pkg/models"
)

// summarizeResults renders the aggregated results as one line per task,
// truncating each entry's text to maxChars to bound prompt size. The
// evaluation phase uses a tight cap; synthesis gets a more generous one.
func summarizeResults(results []models.ExecutionResult, maxChars int) string {
	var sb strings.Builder
	for _, r := range results {
		text := r.Output
		if text == "" {
			text = r.Message
		}
		fmt.Fprintf(&sb, "- task %d (%s) %s: %s\n", r.TaskID, r.Agent, r.Status, truncate(text, maxChars))
	}
	return sb.String()
}

// truncate cuts s to at most maxChars bytes on a rune boundary,
// marking the cut.
func truncate(s string, maxChars int) string {
	s = strings.TrimSpace(s)
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "... (truncated)"
}
