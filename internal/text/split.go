package text

import "strings"

// SplitByDelimiter splits text by a delimiter and returns cleaned, non-empty parts.
func SplitByDelimiter(text, delimiter string) []string {
	parts := strings.Split(text, delimiter)
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return cleaned
}

// Lines returns the non-empty trimmed lines of subprocess output.
func Lines(output string) []string {
	return SplitByDelimiter(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
}
