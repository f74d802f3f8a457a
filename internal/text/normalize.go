package text

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`[ \t]+`)

// Normalize trims text and collapses runs of spaces and tabs. Line breaks
// are kept, so multi-line input translates line by line.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespaceRegex.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
