package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docsect/internal/doctree"
	"github.com/dgallion1/docsect/internal/markup"
)

// HTMLParser handles HTML files. Input is sanitized with Policy before the
// tree is built.
type HTMLParser struct {
	Policy markup.Policy
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	return parseHTML(string(raw), trimExt(filename, ".html", ".htm", ".xhtml"), p.Policy)
}

func parseHTML(raw, fallbackTitle string, policy markup.Policy) (*Document, error) {
	clean, err := markup.Sanitize(raw, policy)
	if err != nil {
		return nil, err
	}
	root, err := markup.ParseString(clean)
	if err != nil {
		return nil, err
	}
	doc := &Document{Title: fallbackTitle, Root: root, Pages: findPages(root)}
	if t := doctree.FindLast(root, "title"); t != nil {
		if title := strings.TrimSpace(t.TextContent()); title != "" {
			doc.Title = title
		}
	}
	return doc, nil
}
