package doctree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind distinguishes element nodes from text nodes.
type Kind string

const (
	ElementNode Kind = "element"
	TextNode    Kind = "text"
)

// Attr is a single attribute. Attribute order is preserved.
type Attr struct {
	Key string
	Val string
}

// Node is one node of a markup tree. Element nodes use Name, Attrs and
// Children; text nodes use Value.
type Node struct {
	Kind     Kind
	Name     string
	Attrs    []Attr
	Children []*Node
	Value    string
}

// Element returns a new element node.
func Element(name string, attrs []Attr, children ...*Node) *Node {
	return &Node{Kind: ElementNode, Name: name, Attrs: attrs, Children: children}
}

// Text returns a new text node.
func Text(value string) *Node {
	return &Node{Kind: TextNode, Value: value}
}

// IsElement reports whether n is a non-nil element.
func (n *Node) IsElement() bool {
	return n != nil && n.Kind == ElementNode
}

// IsText reports whether n is a non-nil text node.
func (n *Node) IsText() bool {
	return n != nil && n.Kind == TextNode
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, keeping its position if it already exists.
func (n *Node) SetAttr(key, val string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
}

// Shallow copies n without its children.
func (n *Node) Shallow() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Kind: n.Kind, Name: n.Name, Value: n.Value}
	if len(n.Attrs) > 0 {
		c.Attrs = make([]Attr, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	return c
}

// Clone deep-copies n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	type pair struct{ src, dst *Node }
	root := n.Shallow()
	stack := []pair{{n, root}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(p.src.Children) == 0 {
			continue
		}
		p.dst.Children = make([]*Node, len(p.src.Children))
		for i, c := range p.src.Children {
			if c == nil {
				continue
			}
			cc := c.Shallow()
			p.dst.Children[i] = cc
			stack = append(stack, pair{c, cc})
		}
	}
	return root
}

// TextContent concatenates all descendant text values.
func (n *Node) TextContent() string {
	var sb strings.Builder
	Walk(n, func(x *Node) bool {
		if x.IsText() {
			sb.WriteString(x.Value)
		}
		return true
	})
	return sb.String()
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the node's children. It uses an explicit stack so very deep trees
// do not exhaust the goroutine stack.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	stack := []*Node{n}
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(x) {
			continue
		}
		for i := len(x.Children) - 1; i >= 0; i-- {
			if x.Children[i] != nil {
				stack = append(stack, x.Children[i])
			}
		}
	}
}

// wireNode is the JSON interchange shape.
type wireNode struct {
	Kind       Kind            `json:"kind"`
	Name       string          `json:"name,omitempty"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
	Children   []*Node         `json:"children,omitempty"`
	Value      string          `json:"value,omitempty"`
}

// MarshalJSON writes the interchange format. Attributes are an object whose
// key order follows Attrs.
func (n *Node) MarshalJSON() ([]byte, error) {
	w := wireNode{Kind: n.Kind, Name: n.Name, Children: n.Children, Value: n.Value}
	if n.Kind == TextNode {
		w.Name = ""
		w.Children = nil
	}
	if n.Kind == ElementNode {
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, a := range n.Attrs {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(a.Key)
			if err != nil {
				return nil, err
			}
			v, err := json.Marshal(a.Val)
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
		w.Attributes = buf.Bytes()
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the interchange format.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Kind {
	case TextNode:
		*n = Node{Kind: TextNode, Value: w.Value}
		return nil
	case ElementNode, "":
	default:
		return fmt.Errorf("unknown node kind %q", w.Kind)
	}
	*n = Node{Kind: ElementNode, Name: w.Name, Children: w.Children}
	if len(w.Attributes) == 0 || string(w.Attributes) == "null" {
		return nil
	}
	attrs, err := decodeOrderedAttrs(w.Attributes)
	if err != nil {
		return fmt.Errorf("decode attributes of %q: %w", w.Name, err)
	}
	n.Attrs = attrs
	return nil
}

func decodeOrderedAttrs(raw json.RawMessage) ([]Attr, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var attrs []Attr
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %v", kt)
		}
		var val string
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		attrs = append(attrs, Attr{Key: key, Val: val})
	}
	return attrs, nil
}

// FindLast returns the last element named name in document order, or nil.
func FindLast(root *Node, name string) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if n.IsElement() && n.Name == name {
			found = n
		}
		return true
	})
	return found
}
