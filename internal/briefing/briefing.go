// Package briefing holds the types shared by briefing generation, history,
// export and the UI.
package briefing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingInput is returned when a request lacks a country or a topic.
var ErrMissingInput = errors.New("please enter both a country and a topic")

// DetailLevel controls how long and deep a briefing is.
type DetailLevel string

const (
	Concise  DetailLevel = "concise"
	Standard DetailLevel = "standard"
	Detailed DetailLevel = "detailed"
)

// DetailLevels lists the levels in display order.
var DetailLevels = []DetailLevel{Concise, Standard, Detailed}

// ParseDetailLevel parses a level name. The empty string is Standard.
func ParseDetailLevel(s string) (DetailLevel, error) {
	switch DetailLevel(strings.ToLower(strings.TrimSpace(s))) {
	case "", Standard:
		return Standard, nil
	case Concise:
		return Concise, nil
	case Detailed:
		return Detailed, nil
	}
	return "", fmt.Errorf("unknown detail level %q (use concise, standard or detailed)", s)
}

// Source is a web page the model grounded the briefing on.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Request describes the briefing to generate.
type Request struct {
	Country        string
	Topic          string
	Detail         DetailLevel
	IncludeHistory bool
}

// Validate checks that the request can be sent.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Country) == "" || strings.TrimSpace(r.Topic) == "" {
		return ErrMissingInput
	}
	if _, err := ParseDetailLevel(string(r.Detail)); err != nil {
		return err
	}
	return nil
}

// Briefing is a generated document.
type Briefing struct {
	Request
	Summary string
	Sources []Source
}
