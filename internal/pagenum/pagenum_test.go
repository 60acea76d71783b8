package pagenum

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/dgallion1/docsect/internal/doctree"
)

func el(name string, class string, children ...*doctree.Node) *doctree.Node {
	var attrs []doctree.Attr
	if class != "" {
		attrs = []doctree.Attr{{Key: "class", Val: class}}
	}
	return doctree.Element(name, attrs, children...)
}

func txt(s string) *doctree.Node { return doctree.Text(s) }

// page builds a page with a body paragraph, a numeric noise paragraph and a
// footer holding the page number.
func page(noise, number string) *doctree.Node {
	return el("div", "page",
		el("p", "", txt("Body text")),
		el("p", "", txt(noise)),
		el("div", "footer", el("span", "", txt(number))),
	)
}

// numberPage builds a page with one span per value.
func numberPage(values ...int) *doctree.Node {
	p := el("div", "page")
	for _, v := range values {
		p.Children = append(p.Children, el("span", "", txt(strconv.Itoa(v))))
	}
	return p
}

func TestRun_StripsSequentialNumbers(t *testing.T) {
	pages := []*doctree.Node{
		page("57", "1"),
		page("200", "2"),
		page("57", "3"),
	}
	res := Run(pages)

	if !reflect.DeepEqual(res.Sequence, []int{1, 2, 3}) {
		t.Fatalf("expected [1 2 3], got %v", res.Sequence)
	}
	if res.Stripped != 3 {
		t.Errorf("expected 3 stripped elements, got %d", res.Stripped)
	}
	for i, p := range pages {
		span := p.Children[2].Children[0]
		if span.Name != "span" || len(span.Children) != 0 {
			t.Errorf("page %d: expected empty span, got %+v", i, span)
		}
		noise := p.Children[1]
		if len(noise.Children) != 1 {
			t.Errorf("page %d: noise paragraph was modified", i)
		}
		if p.Children[0].TextContent() != "Body text" {
			t.Errorf("page %d: body text was modified", i)
		}
	}
}

func TestInfer_DoesNotMutate(t *testing.T) {
	pages := []*doctree.Node{page("57", "1"), page("200", "2")}
	seq := Infer(pages)
	if !reflect.DeepEqual(seq, []int{1, 2}) {
		t.Fatalf("expected [1 2], got %v", seq)
	}
	for i, p := range pages {
		if p.Children[2].TextContent() == "" {
			t.Errorf("page %d: Infer removed the page number", i)
		}
	}

	if n := Strip(pages, seq); n != 2 {
		t.Errorf("expected 2 stripped elements, got %d", n)
	}
	for i, p := range pages {
		if p.Children[2].TextContent() != "" {
			t.Errorf("page %d: Strip left the page number", i)
		}
	}
}

func TestInfer_GapLargerThanToleranceBreaksChain(t *testing.T) {
	pages := []*doctree.Node{
		el("div", "", el("span", "", txt("10"))),
		el("div", "", el("span", "", txt("21"))),
		el("div", "", el("span", "", txt("22"))),
	}
	res := Run(pages)

	// 21 -> 10 is 11 apart, so the longest chain is 22 -> 21. It is aligned
	// to the first pages, where those values do not appear.
	if !reflect.DeepEqual(res.Sequence, []int{21, 22}) {
		t.Fatalf("expected [21 22], got %v", res.Sequence)
	}
	if res.Stripped != 0 {
		t.Errorf("expected nothing stripped, got %d", res.Stripped)
	}
}

func TestInfer_BoxSubtreesAreIgnored(t *testing.T) {
	pages := []*doctree.Node{
		el("div", "", el("div", "box", el("span", "", txt("1"))), el("span", "", txt("7"))),
		el("div", "", el("div", "box", el("span", "", txt("2"))), el("span", "", txt("8"))),
	}
	res := Run(pages)
	if !reflect.DeepEqual(res.Sequence, []int{7, 8}) {
		t.Fatalf("expected [7 8], got %v", res.Sequence)
	}
	box := pages[0].Children[0]
	if box.TextContent() != "1" {
		t.Errorf("expected box content untouched, got %q", box.TextContent())
	}
}

func TestRun_NoCandidates(t *testing.T) {
	pages := []*doctree.Node{
		el("div", "", el("p", "", txt("no numbers"))),
		el("div", "", el("p", "", txt("page 2 of 3"))),
	}
	res := Run(pages)
	if len(res.Sequence) != 0 || res.Stripped != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
	if res.Sequence == nil {
		t.Error("expected a non-nil empty sequence")
	}
	if pages[1].TextContent() != "page 2 of 3" {
		t.Error("expected pages to be untouched")
	}
}

func TestCandidates_RootAndNestedElements(t *testing.T) {
	p := el("div", "", txt("4"), el("p", "", el("b", "", txt("12"), txt("x"))), el("i", "", txt("1a")))
	cands := Candidates([]*doctree.Node{p})
	if len(cands) != 1 || len(cands[0]) != 2 {
		t.Fatalf("expected 2 candidates on one page, got %v", cands)
	}
	if cands[0][0] != p || cands[0][1].Name != "b" {
		t.Errorf("unexpected candidates: %s, %s", cands[0][0].Name, cands[0][1].Name)
	}
}

func TestGraph_ToleranceBoundary(t *testing.T) {
	g := NewGraph()
	g.Observe(1)
	g.Observe(11)
	g.Observe(22)
	if g.Len(11) != 2 {
		t.Errorf("expected 11 to chain to 1 (gap 10), got length %d", g.Len(11))
	}
	if g.Len(22) != 1 {
		t.Errorf("expected 22 not to chain to 11 (gap 11), got length %d", g.Len(22))
	}
	if g.Len(99) != 0 {
		t.Errorf("expected unseen value to have length 0")
	}
}

func TestGraph_RootPrefersLongestThenLargest(t *testing.T) {
	g := NewGraph()
	g.Observe(5)
	g.Observe(30)
	root, ok := g.Root()
	if !ok || root != 30 {
		t.Errorf("expected tie broken toward 30, got %d (ok=%v)", root, ok)
	}

	g.Observe(6)
	root, _ = g.Root()
	if root != 6 {
		t.Errorf("expected longest chain root 6, got %d", root)
	}

	if _, ok := NewGraph().Root(); ok {
		t.Error("expected empty graph to have no root")
	}
}

func TestGraph_ChainStepsToLargestPredecessor(t *testing.T) {
	g := NewGraph()
	for _, v := range []int{1, 3, 5, 6} {
		g.Observe(v)
	}
	if g.Len(6) != 4 {
		t.Errorf("expected length 4 for 6, got %d", g.Len(6))
	}
	if got := g.Chain(6); !reflect.DeepEqual(got, []int{6, 5, 3, 1}) {
		t.Errorf("expected [6 5 3 1], got %v", got)
	}
}

func TestGraph_LargestPredecessorSetsLength(t *testing.T) {
	g := NewGraph()
	for _, v := range []int{5, 1, 2, 3, 4, 6} {
		g.Observe(v)
	}
	if g.Len(4) != 4 {
		t.Fatalf("expected length 4 for 4, got %d", g.Len(4))
	}
	// 5 was seen first and has no predecessors, so 6 gets 1+1 even though 4
	// carries a longer chain.
	if g.Len(6) != 2 {
		t.Errorf("expected length 2 for 6, got %d", g.Len(6))
	}
	if got := g.Chain(6); !reflect.DeepEqual(got, []int{6, 5}) {
		t.Errorf("expected [6 5], got %v", got)
	}
	root, _ := g.Root()
	if got := g.Chain(root); !reflect.DeepEqual(got, []int{4, 3, 2, 1}) {
		t.Errorf("expected chain [4 3 2 1] from the root, got %v", got)
	}
}

func TestInfer_RootAgreesWithChainWalk(t *testing.T) {
	pages := []*doctree.Node{
		numberPage(16, 23, 1),
		numberPage(17, 1),
		numberPage(18),
		numberPage(19),
		numberPage(20),
		numberPage(21, 27),
	}
	want := []int{16, 17, 18, 19, 20, 21}
	if got := Infer(pages); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGraph_PredecessorsMustBeSeenFirst(t *testing.T) {
	g := NewGraph()
	g.Observe(2)
	g.Observe(1)
	if g.Len(2) != 1 {
		t.Errorf("expected 2 to have no predecessor yet, got length %d", g.Len(2))
	}
	// A later occurrence of 2 picks up 1.
	g.Observe(2)
	if g.Len(2) != 2 {
		t.Errorf("expected 2 to chain to 1 after reoccurring, got length %d", g.Len(2))
	}
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		chain []int
		pages int
		want  []int
	}{
		{[]int{3, 2, 1}, 3, []int{1, 2, 3}},
		{[]int{9, 8, 7, 6}, 2, []int{8, 9}},
		{[]int{1, 0}, 5, []int{1}},
		{[]int{4}, 0, []int{}},
	}
	for _, tt := range tests {
		if got := assemble(tt.chain, tt.pages); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("assemble(%v, %d): expected %v, got %v", tt.chain, tt.pages, tt.want, got)
		}
	}
}
