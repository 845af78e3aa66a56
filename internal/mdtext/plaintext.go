// Package mdtext reduces mixed markdown/HTML content to plain text for
// search descriptions and meta tags.
package mdtext

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// MaxShortDesc is the longest short description ever emitted, ellipsis
// included. Search engines cut meta descriptions around this length.
const MaxShortDesc = 155

const ellipsis = "..."

// PlainText renders markup down to a single line of plain text. Heading
// and emphasis markers disappear, fenced and inline code are removed
// entirely, HTML tags are stripped while their inner text survives, and
// whitespace collapses to single spaces.
func PlainText(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}
	src := []byte(markup)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// Block boundaries become spaces so adjacent words don't fuse.
			if n.Type() == ast.TypeBlock {
				buf.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.CodeSpan:
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock:
			buf.WriteString(stripTags(htmlBlockSource(node, src)))
			buf.WriteByte(' ')
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			// Inline tags vanish; the text between them is parsed as
			// ordinary Text nodes and survives.
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			buf.Write(node.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(buf.String()), " ")
}

// ShortDesc derives a short description from markup, truncating the plain
// text to MaxShortDesc characters with a trailing ellipsis when longer.
func ShortDesc(markup string) string {
	plain := PlainText(markup)
	runes := []rune(plain)
	if len(runes) <= MaxShortDesc {
		return plain
	}
	return string(runes[:MaxShortDesc-len(ellipsis)]) + ellipsis
}

func htmlBlockSource(n *ast.HTMLBlock, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	if n.HasClosure() {
		buf.Write(n.ClosureLine.Value(src))
	}
	return buf.String()
}

// stripTags drops tags from an HTML fragment, keeping text content. Script
// and style bodies are dropped too.
func stripTags(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return buf.String()
}
