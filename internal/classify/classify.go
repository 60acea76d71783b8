// Package classify holds the predicates that decide whether a node carries
// content and whether it is a heading that belongs in a table of contents.
package classify

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dgallion1/docsect/internal/doctree"
)

// significantAttrs are attributes whose presence alone makes an element
// worth keeping (anchors, media, references).
var significantAttrs = map[string]bool{
	"id":        true,
	"src":       true,
	"href":      true,
	"cite":      true,
	"url":       true,
	"type":      true,
	"alt":       true,
	"width":     true,
	"height":    true,
	"epub:type": true,
}

var (
	headerRe   = regexp.MustCompile(`(?i)h([1-6]|group)$`)
	notInTocRe = regexp.MustCompile(`(?i)not[^a-z]in[^a-z]toc`)
	digitsRe   = regexp.MustCompile(`[0-9]+`)
)

// IsSignificantAttr reports whether an attribute name marks its element as
// meaningful on its own.
func IsSignificantAttr(name string) bool {
	name = strings.ToLower(name)
	return significantAttrs[name] || strings.HasSuffix(name, ":id")
}

func isFiller(r rune) bool {
	switch r {
	case '_', '-', '|', '*', '!', '~', ' ', '\n', '\t', '\r':
		return true
	}
	return false
}

func hasText(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !isFiller(r) }) >= 0
}

func isVoid(n *doctree.Node) bool {
	return n.IsElement() && (n.Name == "br" || n.Name == "hr")
}

// HasContent reports whether n carries anything a reader would miss: text
// beyond filler punctuation, a meaningful descendant, or (unless
// ignoreAttributes) a significant attribute. br and hr never count.
// Descendants are judged with attributes ignored.
func HasContent(n *doctree.Node, ignoreAttributes bool) bool {
	if n == nil || isVoid(n) {
		return false
	}
	if n.IsText() && hasText(n.Value) {
		return true
	}
	if !ignoreAttributes {
		for _, a := range n.Attrs {
			if IsSignificantAttr(a.Key) {
				return true
			}
		}
	}

	found := false
	for _, c := range n.Children {
		doctree.Walk(c, func(x *doctree.Node) bool {
			if found || isVoid(x) {
				return false
			}
			if x.IsText() && hasText(x.Value) {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

// IsHeaderEl reports whether the tag name ends in h1..h6 or hgroup. Prefixed
// names such as "xhtml:h2" qualify.
func IsHeaderEl(n *doctree.Node) bool {
	return n.IsElement() && headerRe.MatchString(n.Name)
}

// HeaderLevel returns the first run of digits in the node's level attribute,
// or in its tag name when there is no level attribute. It falls back to 1.
func HeaderLevel(n *doctree.Node) int {
	if n == nil {
		return 1
	}
	src := n.Name
	if lvl, ok := n.Attr("level"); ok && lvl != "" {
		src = lvl
	}
	m := digitsRe.FindString(src)
	if m == "" {
		return 1
	}
	level, err := strconv.Atoi(m)
	if err != nil {
		return 1
	}
	return level
}

// IsToc reports whether n is a heading that belongs in a table of contents.
func IsToc(n *doctree.Node, ignoreAttributes bool) bool {
	if !IsHeaderEl(n) {
		return false
	}
	if class, _ := n.Attr("class"); notInTocRe.MatchString(class) {
		return false
	}
	return HasContent(n, ignoreAttributes)
}

// ExtendClass merges two class attribute values into a sorted, deduplicated
// token list.
func ExtendClass(oldClass, newClass string) string {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(oldClass) {
		set[tok] = true
	}
	for _, tok := range strings.Fields(newClass) {
		set[tok] = true
	}
	tokens := make([]string, 0, len(set))
	for tok := range set {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
