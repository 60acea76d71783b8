package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgallion1/docsect/internal/markup"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// MarkdownParser handles Markdown files using goldmark. The rendered HTML
// goes through the same sanitizer as HTML input.
type MarkdownParser struct {
	Policy markup.Policy
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	astDoc := md.Parser().Parse(text.NewReader(src))

	var body bytes.Buffer
	if err := md.Renderer().Render(&body, src, astDoc); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	title := trimExt(filename, ".md", ".markdown")
	if h := firstHeading(astDoc, src); h != "" {
		title = h
	}

	raw := "<html><head><title>" + html.EscapeString(title) + "</title></head><body>" + body.String() + "</body></html>"
	return parseHTML(raw, title, p.Policy)
}

// firstHeading returns the text of the first level-1 heading.
func firstHeading(doc ast.Node, src []byte) string {
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			return string(extractText(h, src))
		}
	}
	return ""
}

// extractText gets the inline text of a goldmark AST node.
func extractText(n ast.Node, src []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		} else {
			buf.Write(extractText(c, src))
		}
	}
	return bytes.TrimSpace(buf.Bytes())
}
