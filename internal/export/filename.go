// Package export writes briefings to PDF.
package export

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxTopicLen = 30

// Filename is the suggested file name for a briefing PDF. Accents are
// folded, every other character outside a-z and 0-9 becomes an underscore,
// and the topic is cut to 30 characters.
func Filename(country, topic string) string {
	topic = sanitize(topic)
	if len(topic) > maxTopicLen {
		topic = topic[:maxTopicLen]
	}
	return "MUN_Briefing_" + sanitize(country) + "_" + topic + ".pdf"
}

func sanitize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	return strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, s)
}
