package util

import "strings"

// ExtractSnippet returns up to maxLines lines of content centered on the
// 1-based line number. Out-of-range lines clamp to the file bounds.
func ExtractSnippet(content string, line, maxLines int) string {
	if maxLines <= 0 {
		maxLines = 5
	}
	lines := strings.Split(content, "\n")
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	s := line - 1 - maxLines/2
	if s < 0 {
		s = 0
	}
	e := s + maxLines
	if e > len(lines) {
		e = len(lines)
	}
	return strings.Join(lines[s:e], "\n")
}
