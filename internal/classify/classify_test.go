package classify

import (
	"testing"

	"github.com/dgallion1/docsect/internal/doctree"
)

func el(name string, attrs []doctree.Attr, children ...*doctree.Node) *doctree.Node {
	return doctree.Element(name, attrs, children...)
}

func attrs(kv ...string) []doctree.Attr {
	var out []doctree.Attr
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, doctree.Attr{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

func TestHasContent_VoidElementsNeverCount(t *testing.T) {
	for _, name := range []string{"br", "hr"} {
		n := el(name, attrs("id", "x", "src", "y"), doctree.Text("text"))
		if HasContent(n, false) {
			t.Errorf("%s: expected no content", name)
		}
	}
}

func TestHasContent_Attributes(t *testing.T) {
	tests := []struct {
		name   string
		node   *doctree.Node
		ignore bool
		want   bool
	}{
		{"id only", el("a", attrs("id", "x")), false, true},
		{"class only", el("a", attrs("class", "x")), false, false},
		{"id ignored", el("a", attrs("id", "x")), true, false},
		{"namespaced id", el("a", attrs("xml:id", "x")), false, true},
		{"epub type", el("a", attrs("epub:type", "noteref")), false, true},
		{"uppercase src", el("img", attrs("SRC", "a.png")), false, true},
		{"style only", el("span", attrs("style", "color:red")), false, false},
	}
	for _, tt := range tests {
		if got := HasContent(tt.node, tt.ignore); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestHasContent_Text(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"hello", true},
		{"  \n\t ", false},
		{"--- *** ~~~ ||| !!! ___", false},
		{"- a -", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := HasContent(doctree.Text(tt.text), false); got != tt.want {
			t.Errorf("text %q: expected %v, got %v", tt.text, tt.want, got)
		}
	}
}

func TestHasContent_Descendants(t *testing.T) {
	deep := el("div", nil, el("span", nil, el("b", nil, doctree.Text("x"))))
	if !HasContent(deep, true) {
		t.Error("expected nested text to count")
	}

	// Attributes on descendants are ignored.
	anchorOnly := el("p", nil, el("a", attrs("id", "x")))
	if HasContent(anchorOnly, false) {
		t.Error("expected descendant attributes to be ignored")
	}

	// Text under a br does not count.
	brText := el("p", nil, el("br", nil, doctree.Text("x")))
	if HasContent(brText, false) {
		t.Error("expected text under br to be ignored")
	}
}

func TestIsHeaderEl(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"h1", true},
		{"H6", true},
		{"hgroup", true},
		{"xhtml:h2", true},
		{"h7", false},
		{"header", false},
		{"p", false},
	}
	for _, tt := range tests {
		if got := IsHeaderEl(el(tt.name, nil)); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
	if IsHeaderEl(doctree.Text("h1")) {
		t.Error("text node must not be a header")
	}
}

func TestHeaderLevel(t *testing.T) {
	tests := []struct {
		node *doctree.Node
		want int
	}{
		{el("h3", nil), 3},
		{el("hgroup", nil), 1},
		{el("h2", attrs("level", "5")), 5},
		{el("h2", attrs("level", "x12y3")), 12},
		{el("h2", attrs("level", "")), 2},
		{nil, 1},
	}
	for i, tt := range tests {
		if got := HeaderLevel(tt.node); got != tt.want {
			t.Errorf("case %d: expected %d, got %d", i, tt.want, got)
		}
	}
}

func TestIsToc(t *testing.T) {
	heading := func(class string) *doctree.Node {
		return el("h2", attrs("class", class), doctree.Text("Chapter"))
	}
	if IsToc(heading("not-in-toc"), false) {
		t.Error("expected not-in-toc heading to be excluded")
	}
	if IsToc(heading("Not_In.TOC other"), false) {
		t.Error("expected case-insensitive exclusion with arbitrary separators")
	}
	if !IsToc(heading("x"), false) {
		t.Error("expected heading with class x to be a toc entry")
	}
	if IsToc(el("h2", nil), false) {
		t.Error("expected empty heading to be excluded")
	}
	if !IsToc(el("h2", attrs("id", "anchor")), false) {
		t.Error("expected heading with an id to count")
	}
	if IsToc(el("h2", attrs("id", "anchor")), true) {
		t.Error("expected heading with only an id to be excluded when attributes are ignored")
	}
	if IsToc(el("p", nil, doctree.Text("x")), false) {
		t.Error("expected paragraph to be excluded")
	}
}

func TestExtendClass(t *testing.T) {
	tests := []struct {
		old, add, want string
	}{
		{"b a", "c", "a b c"},
		{"", "a", "a"},
		{"a  b\tc", "b", "a b c"},
		{"x", "", "x"},
		{"", "", ""},
		{"b", " a ", "a b"},
	}
	for _, tt := range tests {
		if got := ExtendClass(tt.old, tt.add); got != tt.want {
			t.Errorf("ExtendClass(%q, %q): expected %q, got %q", tt.old, tt.add, tt.want, got)
		}
	}
}
