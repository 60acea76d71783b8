// Package markup converts between HTML and doctree nodes.
package markup

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docsect/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DocumentName is the element name given to the document root.
const DocumentName = "#document"

// Parse reads an HTML document. Comments, doctypes and whitespace-only text
// are dropped.
func Parse(r io.Reader) (*doctree.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return FromHTML(doc), nil
}

// ParseString is Parse for an in-memory document.
func ParseString(s string) (*doctree.Node, error) {
	return Parse(strings.NewReader(s))
}

// FromHTML converts an html.Node tree.
func FromHTML(n *html.Node) *doctree.Node {
	root := convert(n)
	if root == nil {
		return nil
	}
	type pair struct {
		src *html.Node
		dst *doctree.Node
	}
	stack := []pair{{n, root}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for c := p.src.FirstChild; c != nil; c = c.NextSibling {
			dc := convert(c)
			if dc == nil {
				continue
			}
			p.dst.Children = append(p.dst.Children, dc)
			if dc.IsElement() {
				stack = append(stack, pair{c, dc})
			}
		}
	}
	return root
}

func convert(n *html.Node) *doctree.Node {
	switch n.Type {
	case html.DocumentNode:
		return doctree.Element(DocumentName, nil)
	case html.ElementNode:
		var attrs []doctree.Attr
		for _, a := range n.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			attrs = append(attrs, doctree.Attr{Key: key, Val: a.Val})
		}
		return doctree.Element(n.Data, attrs)
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return doctree.Text(n.Data)
	}
	return nil
}

// ToHTML converts a doctree node into an html.Node tree.
func ToHTML(n *doctree.Node) *html.Node {
	if n == nil {
		return nil
	}
	root := toHTML(n)
	type pair struct {
		src *doctree.Node
		dst *html.Node
	}
	stack := []pair{{n, root}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range p.src.Children {
			if c == nil {
				continue
			}
			hc := toHTML(c)
			p.dst.AppendChild(hc)
			stack = append(stack, pair{c, hc})
		}
	}
	return root
}

func toHTML(n *doctree.Node) *html.Node {
	if n.IsText() {
		return &html.Node{Type: html.TextNode, Data: n.Value}
	}
	if n.Name == DocumentName {
		return &html.Node{Type: html.DocumentNode}
	}
	hn := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Name,
		DataAtom: atom.Lookup([]byte(n.Name)),
	}
	for _, a := range n.Attrs {
		hn.Attr = append(hn.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	return hn
}

// Render writes nodes as HTML, one after another.
func Render(w io.Writer, nodes ...*doctree.Node) error {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if err := html.Render(w, ToHTML(n)); err != nil {
			return fmt.Errorf("render %s: %w", n.Name, err)
		}
	}
	return nil
}

// RenderString renders nodes into a string.
func RenderString(nodes ...*doctree.Node) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, nodes...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderDocument renders a full document with a doctype.
func RenderDocument(w io.Writer, root *doctree.Node) error {
	if _, err := io.WriteString(w, "<!DOCTYPE html>"); err != nil {
		return err
	}
	if root != nil && root.Name == DocumentName {
		return Render(w, root.Children...)
	}
	return Render(w, root)
}

// Reassemble places sections as the body children of a new document. The
// head of src, if any, is copied over.
func Reassemble(src *doctree.Node, sections []*doctree.Node) *doctree.Node {
	htmlEl := doctree.Element("html", nil)
	if src != nil {
		if h := doctree.FindLast(src, "html"); h != nil {
			htmlEl.Attrs = h.Shallow().Attrs
		}
		if head := doctree.FindLast(src, "head"); head != nil {
			htmlEl.Children = append(htmlEl.Children, head.Clone())
		}
	}
	body := doctree.Element("body", nil)
	for _, s := range sections {
		if s != nil {
			body.Children = append(body.Children, s)
		}
	}
	htmlEl.Children = append(htmlEl.Children, body)
	return doctree.Element(DocumentName, nil, htmlEl)
}
