// Package utils provides utility functions.
package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/mitchellh/go-homedir"
)

var frontmatterBoundaries = regexp.MustCompile(`(?m)^---[ \t]*\r?$`)

// RemoveFrontmatter removes a YAML front matter block from a Markdown
// document. Documents without one are returned unchanged.
func RemoveFrontmatter(content []byte) []byte {
	if !bytes.HasPrefix(content, []byte("---")) {
		return content
	}
	bounds := frontmatterBoundaries.FindAllIndex(content, 2)
	if len(bounds) < 2 || bounds[0][0] != 0 {
		return content
	}
	return bytes.TrimLeft(content[bounds[1][1]:], "\r\n")
}

// ExpandPath expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// IsMarkdownFile returns whether the filename has a markdown extension.
func IsMarkdownFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case "", ".md", ".mdown", ".mkdn", ".mkd", ".markdown", ".txt":
		return true
	}
	return false
}

// GlamourStyle returns a glamour.TermRendererOption based on the given style.
// Built-in style names are used as-is; anything else is a path to a JSON
// style file.
func GlamourStyle(style string) glamour.TermRendererOption {
	if style == styles.AutoStyle {
		return glamour.WithAutoStyle()
	}
	if _, ok := styles.DefaultStyles[style]; ok {
		return glamour.WithStandardStyle(style)
	}
	return glamour.WithStylesFromJSONFile(ExpandPath(style))
}
