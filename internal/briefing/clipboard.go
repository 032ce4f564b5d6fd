package briefing

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// CopyText is what gets copied: the summary, followed by the sources when
// there are any.
func CopyText(summary string, sources []Source) string {
	if len(sources) == 0 {
		return summary
	}
	var b strings.Builder
	b.WriteString(summary)
	b.WriteString("\n\nSources:")
	for _, s := range sources {
		fmt.Fprintf(&b, "\n- %s: %s", s.Title, s.URI)
	}
	return b.String()
}

// Copy writes the briefing to the system clipboard.
func Copy(summary string, sources []Source) error {
	if summary == "" {
		return nil
	}
	if err := clipboard.WriteAll(CopyText(summary, sources)); err != nil {
		return fmt.Errorf("could not copy summary to clipboard: %w", err)
	}
	return nil
}
