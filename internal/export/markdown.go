package export

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockListItem
	blockCode
	blockRule
)

// block is one printable unit of a Markdown document with inline markup
// flattened to plain text.
type block struct {
	kind   blockKind
	level  int // heading level, or list nesting depth starting at 1
	marker string
	text   string
}

var markdown = goldmark.New()

// parseBlocks flattens src into blocks in document order.
func parseBlocks(src string) []block {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var blocks []block
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			blocks = append(blocks, block{kind: blockHeading, level: n.Level, text: inlineText(n, source)})
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			b := block{kind: blockParagraph, text: inlineText(n, source)}
			if item, ok := n.Parent().(*ast.ListItem); ok {
				b.level = listDepth(item)
				if item.FirstChild() == n {
					b.kind = blockListItem
					b.marker = listMarker(item)
				}
			}
			if b.text != "" {
				blocks = append(blocks, b)
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			var lines []string
			for i := 0; i < n.Lines().Len(); i++ {
				seg := n.Lines().At(i)
				lines = append(lines, strings.TrimRight(string(seg.Value(source)), "\n"))
			}
			blocks = append(blocks, block{kind: blockCode, text: strings.Join(lines, "\n")})
			return ast.WalkSkipChildren, nil
		case *ast.ThematicBreak:
			blocks = append(blocks, block{kind: blockRule})
		}
		return ast.WalkContinue, nil
	})
	return blocks
}

// inlineText concatenates the text under n, turning line breaks into spaces.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(source))
			if c.SoftLineBreak() || c.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.AutoLink:
			b.Write(c.URL(source))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func listDepth(item *ast.ListItem) int {
	depth := 0
	for p := ast.Node(item); p != nil; p = p.Parent() {
		if _, ok := p.(*ast.ListItem); ok {
			depth++
		}
	}
	return depth
}

func listMarker(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return "-"
	}
	i := list.Start
	for c := list.FirstChild(); c != nil && c != ast.Node(item); c = c.NextSibling() {
		i++
	}
	return strconv.Itoa(i) + "."
}
