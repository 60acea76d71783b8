// Package toc builds a table-of-contents outline from sectioned output.
package toc

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docsect/internal/classify"
	"github.com/dgallion1/docsect/internal/doctree"
)

// AnchorClass is added to headings that AssignAnchors gives an id.
const AnchorClass = "toc-anchor"

// Entry is one outline line.
type Entry struct {
	Title      string   `json:"title"`
	Level      int      `json:"level"`
	Anchor     string   `json:"anchor,omitempty"`
	Breadcrumb []string `json:"breadcrumb,omitempty"`
	Words      int      `json:"words"`
	Tokens     int      `json:"tokens"`
	// Section is the index of the section in the slice given to Build.
	Section int `json:"section"`
}

// Build returns one entry per section that contains a table-of-contents
// heading. Sections without one are skipped.
func Build(sections []*doctree.Node) []Entry {
	type crumb struct {
		level int
		title string
	}
	var stack []crumb
	var entries []Entry

	for i, sec := range sections {
		if sec == nil {
			continue
		}
		h := Heading(sec)
		if h == nil {
			continue
		}
		title := strings.Join(strings.Fields(h.TextContent()), " ")
		level := classify.HeaderLevel(h)

		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		var bc []string
		for _, c := range stack {
			bc = append(bc, c.title)
		}
		stack = append(stack, crumb{level: level, title: title})

		words := countWords(sec)
		anchor, _ := h.Attr("id")
		entries = append(entries, Entry{
			Title:      title,
			Level:      level,
			Anchor:     anchor,
			Breadcrumb: bc,
			Words:      words,
			Tokens:     tokensForWords(words),
			Section:    i,
		})
	}
	return entries
}

// Heading returns the first table-of-contents heading of sec in document
// order, or nil.
func Heading(sec *doctree.Node) *doctree.Node {
	var found *doctree.Node
	doctree.Walk(sec, func(n *doctree.Node) bool {
		if found != nil {
			return false
		}
		if classify.IsToc(n, false) {
			found = n
			return false
		}
		return n.IsElement()
	})
	return found
}

// AssignAnchors gives every section heading without an id a generated one
// ("sec-1", "sec-2", ...) and tags it with AnchorClass. It returns the
// number of headings changed.
func AssignAnchors(sections []*doctree.Node) int {
	changed := 0
	for i, sec := range sections {
		if sec == nil {
			continue
		}
		h := Heading(sec)
		if h == nil {
			continue
		}
		if id, ok := h.Attr("id"); ok && id != "" {
			continue
		}
		h.SetAttr("id", fmt.Sprintf("sec-%d", i+1))
		class, _ := h.Attr("class")
		h.SetAttr("class", classify.ExtendClass(class, AnchorClass))
		changed++
	}
	return changed
}
