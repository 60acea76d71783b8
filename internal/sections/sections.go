// Package sections regroups the children of a document body into nested
// sections that start at table-of-contents headings.
package sections

import (
	"github.com/dgallion1/docsect/internal/classify"
	"github.com/dgallion1/docsect/internal/doctree"
)

// WrapperName is the element synthesized for path prefixes that have no
// node of their own.
const WrapperName = "section"

// entry is one visited node: its path from the top-level body child and a
// copy of the node without children.
type entry struct {
	path []int
	node *doctree.Node
}

// builder accumulates open sections for a single top-level body child.
type builder struct {
	open [][]entry
}

// FindBody returns the last element named body in document order, or nil.
func FindBody(root *doctree.Node) *doctree.Node {
	return doctree.FindLast(root, "body")
}

// Build splits the body of root into sections. Every top-level body child is
// processed on its own and the results are concatenated in order. The
// source tree is not modified.
func Build(root *doctree.Node) []*doctree.Node {
	body := FindBody(root)
	if body == nil {
		return nil
	}
	var out []*doctree.Node
	for _, child := range body.Children {
		if child == nil {
			continue
		}
		b := &builder{}
		b.traverse(child)
		out = append(out, b.fold()...)
	}
	return out
}

// traverse walks the subtree depth-first. The top node sits at path [0] so
// that sibling entries keep their index after rebasing.
func (b *builder) traverse(top *doctree.Node) {
	type frame struct {
		node *doctree.Node
		path []int
	}
	stack := []frame{{node: top, path: []int{0}}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(b.open) == 0 {
			b.open = append(b.open, nil)
		} else if classify.IsToc(f.node, false) {
			b.rebalance()
		}
		last := len(b.open) - 1
		b.open[last] = append(b.open[last], entry{path: f.path, node: f.node.Shallow()})

		for i := len(f.node.Children) - 1; i >= 0; i-- {
			c := f.node.Children[i]
			if c == nil {
				continue
			}
			p := make([]int, len(f.path)+1)
			copy(p, f.path)
			p[len(f.path)] = i
			stack = append(stack, frame{node: c, path: p})
		}
	}
}

// rebalance closes the current section before the run of entries that
// leads down to the node being visited. Walking back from the end, it keeps
// going while each earlier entry is shallower than the one after it.
func (b *builder) rebalance() {
	last := len(b.open) - 1
	cur := b.open[last]
	if len(cur) == 0 {
		return
	}
	i := len(cur) - 1
	for i > 0 {
		if len(cur[i-1].path) >= len(cur[i].path) {
			break
		}
		i--
	}
	head := cur[:i:i]
	tail := make([]entry, len(cur)-i)
	copy(tail, cur[i:])
	b.open[last] = head
	b.open = append(b.open, tail)
}

// fold drops sections without content, rebases the survivors and turns
// each one into a tree. It returns the top-level nodes of every section.
func (b *builder) fold() []*doctree.Node {
	var out []*doctree.Node
	for _, sec := range b.open {
		if !meaningful(sec) {
			continue
		}
		container := &doctree.Node{Kind: doctree.ElementNode, Name: WrapperName}
		shift := minDepth(sec) - 1
		for _, e := range sec {
			place(container, e.path[shift:], e.node)
		}
		for _, n := range container.Children {
			if n != nil {
				out = append(out, compact(n))
			}
		}
	}
	return out
}

func meaningful(sec []entry) bool {
	for _, e := range sec {
		if classify.HasContent(e.node, false) {
			return true
		}
	}
	return false
}

func minDepth(sec []entry) int {
	m := len(sec[0].path)
	for _, e := range sec[1:] {
		if len(e.path) < m {
			m = len(e.path)
		}
	}
	return m
}

// place stores n at path under container, creating wrapper elements for
// missing ancestors. A wrapper already at the target path takes on n's
// metadata and keeps the children placed under it so far.
func place(container *doctree.Node, path []int, n *doctree.Node) {
	cur := container
	for depth, seg := range path {
		for len(cur.Children) <= seg {
			cur.Children = append(cur.Children, nil)
		}
		if depth == len(path)-1 {
			if existing := cur.Children[seg]; existing != nil {
				existing.Kind = n.Kind
				existing.Name = n.Name
				existing.Attrs = n.Attrs
				existing.Value = n.Value
				return
			}
			cur.Children[seg] = n
			return
		}
		if cur.Children[seg] == nil {
			cur.Children[seg] = doctree.Element(WrapperName, nil)
		}
		cur = cur.Children[seg]
	}
}

// compact removes the empty slots left by entries that moved to other
// sections.
func compact(root *doctree.Node) *doctree.Node {
	doctree.Walk(root, func(n *doctree.Node) bool {
		kept := n.Children[:0]
		for _, c := range n.Children {
			if c != nil {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			n.Children = nil
		} else {
			n.Children = kept
		}
		return true
	})
	return root
}
