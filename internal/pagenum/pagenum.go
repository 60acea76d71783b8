// Package pagenum finds printed page numbers in a batch of per-page trees
// and removes them.
//
// Running page numbers are numeric leaves that recur once per page and grow
// by a small step. Every numeric leaf is linked to the smaller values within
// MaxGap of it; the longest resulting chain is taken as the page sequence.
package pagenum

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/dgallion1/docsect/internal/doctree"
)

// MaxGap is the largest step between two consecutive page numbers. It
// absorbs unnumbered pages.
const MaxGap = 10

// BoxClass marks elements whose subtree is never searched.
const BoxClass = "box"

var numericRe = regexp.MustCompile(`^[0-9]+$`)

// Candidates returns, per page, the elements that have at least one
// digits-only text child, in document order.
func Candidates(pages []*doctree.Node) [][]*doctree.Node {
	out := make([][]*doctree.Node, len(pages))
	for i, page := range pages {
		doctree.Walk(page, func(n *doctree.Node) bool {
			if !n.IsElement() {
				return false
			}
			if class, _ := n.Attr("class"); class == BoxClass {
				return false
			}
			if len(numbers(n)) > 0 {
				out[i] = append(out[i], n)
			}
			return true
		})
	}
	return out
}

// numbers returns the values of the digits-only text children of n.
func numbers(n *doctree.Node) []int {
	var vals []int
	for _, c := range n.Children {
		if !c.IsText() || !numericRe.MatchString(c.Value) {
			continue
		}
		v, err := strconv.Atoi(c.Value)
		if err != nil {
			continue
		}
		vals = append(vals, v)
	}
	return vals
}

// Graph links each observed value to the smaller values within MaxGap that
// were observed before it.
type Graph struct {
	preds  map[int]map[int]bool
	length map[int]int
	known  []int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		preds:  make(map[int]map[int]bool),
		length: make(map[int]int),
	}
}

// Observe records one occurrence of v. Predecessors are only values seen
// earlier. Every occurrence reassigns the chain length of v from its
// predecessors in ascending order, so the largest predecessor sets it.
func (g *Graph) Observe(v int) {
	if _, ok := g.length[v]; !ok {
		g.length[v] = 1
		g.preds[v] = make(map[int]bool)
		i := sort.SearchInts(g.known, v)
		g.known = append(g.known, 0)
		copy(g.known[i+1:], g.known[i:])
		g.known[i] = v
	}
	for _, k := range g.known {
		if k >= v {
			break
		}
		if v-k <= MaxGap {
			g.preds[v][k] = true
			g.length[v] = g.length[k] + 1
		}
	}
}

// Len returns the chain length recorded for v, or 0 if v was never seen.
func (g *Graph) Len(v int) int {
	return g.length[v]
}

// Root returns the value with the longest chain, preferring the larger value
// on ties. ok is false for an empty graph.
func (g *Graph) Root() (root int, ok bool) {
	bestLen := 0
	for _, v := range g.known {
		if l := g.length[v]; l > bestLen || (l == bestLen && v > root) {
			root, bestLen, ok = v, l, true
		}
	}
	return root, ok
}

// Chain walks from start to its largest predecessor until none is left. The
// result starts with start and is strictly decreasing.
func (g *Graph) Chain(start int) []int {
	chain := []int{start}
	cur := start
	for {
		next, found := 0, false
		for k := range g.preds[cur] {
			if !found || k > next {
				next, found = k, true
			}
		}
		if !found {
			return chain
		}
		chain = append(chain, next)
		cur = next
	}
}

// assemble keeps at most pageCount values of a decreasing chain, drops
// zeros and returns them in ascending order.
func assemble(chain []int, pageCount int) []int {
	if len(chain) > pageCount {
		chain = chain[:pageCount]
	}
	seq := make([]int, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i] != 0 {
			seq = append(seq, chain[i])
		}
	}
	return seq
}

// InferCandidates infers the page sequence from already collected
// candidates.
func InferCandidates(cands [][]*doctree.Node) []int {
	g := NewGraph()
	for _, page := range cands {
		for _, c := range page {
			for _, v := range numbers(c) {
				g.Observe(v)
			}
		}
	}
	root, ok := g.Root()
	if !ok {
		return []int{}
	}
	return assemble(g.Chain(root), len(cands))
}

// Infer returns the inferred ascending page-number sequence. Entry i belongs
// to page i; the sequence may be shorter than pages. pages are not modified.
func Infer(pages []*doctree.Node) []int {
	return InferCandidates(Candidates(pages))
}

// Strip removes every child of the candidates on page i whose numeric text
// equals seq[i]. It mutates pages and returns the number of elements
// emptied.
func Strip(pages []*doctree.Node, seq []int) int {
	return stripCandidates(Candidates(pages), seq)
}

func stripCandidates(cands [][]*doctree.Node, seq []int) int {
	stripped := 0
	for i, page := range cands {
		if i >= len(seq) {
			break
		}
		for _, c := range page {
			for _, v := range numbers(c) {
				if v == seq[i] {
					c.Children = nil
					stripped++
					break
				}
			}
		}
	}
	return stripped
}

// Result reports what Run found and removed.
type Result struct {
	Sequence []int `json:"page_numbers"`
	Stripped int   `json:"stripped"`
}

// Run infers the page sequence and strips it from pages in place.
func Run(pages []*doctree.Node) Result {
	cands := Candidates(pages)
	seq := InferCandidates(cands)
	return Result{Sequence: seq, Stripped: stripCandidates(cands, seq)}
}
