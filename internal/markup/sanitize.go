package markup

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// TransformFunc rewrites a tag before the allow-lists are applied.
type TransformFunc func(tag string, attrs []html.Attribute) (string, []html.Attribute)

// Policy is an allow-list for Sanitize. Attribute names and scheme
// attributes are glob patterns ("*id", "xmlns:*", "*:*"). The "*" key of
// AllowedAttributes and Transforms applies to every tag.
type Policy struct {
	AllowedTags       map[string]bool
	AllowedAttributes map[string][]string
	AllowedSchemes    map[string]bool
	SchemeAttributes  []string
	Transforms        map[string]TransformFunc
	// DropContentTags are removed together with everything inside them.
	// Other disallowed tags are replaced by their children.
	DropContentTags map[string]bool
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// DropEmptyAttrs removes attributes with an empty value.
func DropEmptyAttrs(tag string, attrs []html.Attribute) (string, []html.Attribute) {
	kept := attrs[:0]
	for _, a := range attrs {
		if a.Val != "" {
			kept = append(kept, a)
		}
	}
	return tag, kept
}

// DefaultPolicy is the allow-list used for publishing input. svg, video and
// audio keep every attribute, event handlers such as onload and onerror
// included; only the URL attributes on them are scheme-checked.
func DefaultPolicy() Policy {
	return Policy{
		AllowedTags: set(
			"html", "head", "title", "body",
			"h1", "h2", "h3", "h4", "h5", "h6", "hgroup",
			"p", "section", "div", "code", "pre", "span", "blockquote",
			"svg", "image", "img", "video", "audio",
			"table", "tr", "td", "th", "tbody", "thead",
			"br", "hr", "a",
			"b", "i", "em", "strong", "sub", "sup",
		),
		AllowedAttributes: map[string][]string{
			"a":     {"href"},
			"img":   {"alt", "src", "width", "height"},
			"image": {"*href", "alt", "width", "height"},
			"svg":   {"*"},
			"video": {"*"},
			"audio": {"*"},
			"html":  {"xmlns:*"},
			"*": {
				"*id", "*:*", "id", "alt", "width", "height", "src", "href",
				"class", "style", "type", "*lang", "*language", "cite",
			},
		},
		AllowedSchemes:   set("http", "https", "ftp", "mailto"),
		SchemeAttributes: []string{"*href", "src", "cite"},
		Transforms:       map[string]TransformFunc{"*": DropEmptyAttrs},
		DropContentTags:  set("script", "style", "textarea", "option", "noscript"),
	}
}

var schemeRe = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.\-]*):`)

// Sanitize parses raw, removes what p does not allow and renders the result.
func Sanitize(raw string, p Policy) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	p.clean(doc)
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

func (p Policy) clean(n *html.Node) {
	c := n.FirstChild
	for c != nil {
		next := c.NextSibling
		switch c.Type {
		case html.CommentNode:
			n.RemoveChild(c)
		case html.ElementNode:
			p.transform(c)
			switch {
			case p.DropContentTags[c.Data]:
				n.RemoveChild(c)
			case !p.AllowedTags[c.Data]:
				// Hoist the children and revisit them in place.
				first := c.FirstChild
				for gc := c.FirstChild; gc != nil; {
					gnext := gc.NextSibling
					c.RemoveChild(gc)
					n.InsertBefore(gc, c)
					gc = gnext
				}
				n.RemoveChild(c)
				if first != nil {
					next = first
				}
			default:
				c.Attr = p.filterAttrs(c.Data, c.Attr)
				p.clean(c)
			}
		}
		c = next
	}
}

func (p Policy) transform(n *html.Node) {
	for _, key := range []string{"*", n.Data} {
		if fn := p.Transforms[key]; fn != nil {
			n.Data, n.Attr = fn(n.Data, n.Attr)
		}
	}
}

func attrName(a html.Attribute) string {
	if a.Namespace != "" {
		return a.Namespace + ":" + a.Key
	}
	return a.Key
}

func matchAny(patterns []string, name string) bool {
	for _, pat := range patterns {
		if ok, err := path.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (p Policy) filterAttrs(tag string, attrs []html.Attribute) []html.Attribute {
	var kept []html.Attribute
	for _, a := range attrs {
		name := attrName(a)
		if !matchAny(p.AllowedAttributes[tag], name) && !matchAny(p.AllowedAttributes["*"], name) {
			continue
		}
		if a.Val == "" {
			continue
		}
		if matchAny(p.SchemeAttributes, name) && !p.schemeAllowed(a.Val) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// schemeAllowed accepts relative and protocol-relative URLs and URLs whose
// scheme is allowed. Control characters and whitespace are removed before the
// scheme is read, as browsers ignore them there.
func (p Policy) schemeAllowed(val string) bool {
	val = strings.Map(func(r rune) rune {
		if r <= 0x20 {
			return -1
		}
		return r
	}, val)
	m := schemeRe.FindStringSubmatch(val)
	if m == nil {
		return true
	}
	return p.AllowedSchemes[strings.ToLower(m[1])]
}
