package tts

import (
	"regexp"
	"strings"
)

var headingMarker = regexp.MustCompile(`^#{1,6}\s+`)

// Segments splits a document into the lines that are read aloud. Heading
// markers are stripped, and blank lines and horizontal rules are dropped.
// Document order is preserved.
func Segments(text string) []string {
	lines := strings.Split(text, "\n")
	segments := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(headingMarker.ReplaceAllString(line, ""))
		if line == "" || strings.HasPrefix(line, "---") {
			continue
		}
		segments = append(segments, line)
	}
	return segments
}
