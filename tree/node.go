// Package tree holds documents in memory.
//
// A Node mirrors one node of a hierarchical stream: a name, ordered
// attributes, an optional text value and ordered children. Trees are built
// with Writer, walked with Reader, and compared, hashed, diffed and rendered
// with the helpers in this package.
package tree

import (
	"strconv"

	"github.com/signadot/objgraph/hier"
)

// Attr is one attribute of a node.
type Attr struct {
	Name  string
	Value string
}

type Node struct {
	Name        string
	Attrs       []Attr
	Value       string
	Children    []*Node
	Parent      *Node
	ParentIndex int
}

// New returns a detached node named name.
func New(name string) *Node {
	return &Node{Name: name}
}

// WithValue sets the text value of n and returns n.
func (n *Node) WithValue(v string) *Node {
	n.Value = v
	return n
}

// WithAttr sets an attribute and returns n.
func (n *Node) WithAttr(name, value string) *Node {
	n.SetAttr(name, value)
	return n
}

// WithChildren appends children and returns n.
func (n *Node) WithChildren(children ...*Node) *Node {
	for _, c := range children {
		n.AddChild(c)
	}
	return n
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			return n.Attrs[i].Value, true
		}
	}
	return "", false
}

// SetAttr sets the named attribute, replacing an existing one in place.
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// AddChild appends c to the children of n.
func (n *Node) AddChild(c *Node) {
	c.Parent = n
	c.ParentIndex = len(n.Children)
	n.Children = append(n.Children, c)
}

func (n *Node) Clone() *Node {
	res := &Node{}
	return n.CloneTo(res)
}

// CloneTo deep copies n into dst. The parent link of dst is preserved from
// n, children are relinked to dst.
func (n *Node) CloneTo(dst *Node) *Node {
	dst.Name = n.Name
	dst.Value = n.Value
	dst.Parent = n.Parent
	dst.ParentIndex = n.ParentIndex
	dst.Attrs = make([]Attr, len(n.Attrs))
	copy(dst.Attrs, n.Attrs)
	dst.Children = make([]*Node, len(n.Children))
	for i, c := range n.Children {
		dc := &Node{}
		c.CloneTo(dc)
		dc.Parent = dst
		dc.ParentIndex = i
		dst.Children[i] = dc
	}
	return dst
}

// Root returns the top of the tree containing n.
func (n *Node) Root() *Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// SiblingIndex returns the 1 based index of n among the children of its
// parent sharing its name.
func (n *Node) SiblingIndex() int {
	if n.Parent == nil {
		return 1
	}
	idx := 1
	for _, s := range n.Parent.Children[:n.ParentIndex] {
		if s.Name == n.Name {
			idx++
		}
	}
	return idx
}

// Path returns the absolute structural path of n.
func (n *Node) Path() hier.Path {
	var chunks []string
	for p := n; p != nil; p = p.Parent {
		chunks = append(chunks, chunk(p.Name, p.SiblingIndex()))
	}
	chunks = append(chunks, "")
	for i, j := 0, len(chunks)-1; i < j; i, j = i+1, j-1 {
		chunks[i], chunks[j] = chunks[j], chunks[i]
	}
	return hier.NewPath(chunks...)
}

func chunk(name string, idx int) string {
	if idx == 1 {
		return name
	}
	return name + "[" + strconv.Itoa(idx) + "]"
}

// Child returns the idx'th (1 based) child of n named name.
func (n *Node) Child(name string, idx int) *Node {
	for _, c := range n.Children {
		if c.Name != name {
			continue
		}
		idx--
		if idx == 0 {
			return c
		}
	}
	return nil
}

// Resolve returns the node p designates. Absolute paths start at the root of
// the tree containing n, relative ones at n. It returns nil when nothing
// matches.
func (n *Node) Resolve(p hier.Path) *Node {
	cur := n
	start := 0
	if p.IsAbsolute() {
		if p.Len() < 2 {
			return nil
		}
		cur = n.Root()
		name, idx := p.Step(1)
		if name != cur.Name || idx != 1 {
			return nil
		}
		start = 2
	}
	for i := start; i < p.Len() && cur != nil; i++ {
		name, idx := p.Step(i)
		switch name {
		case ".":
		case "..":
			cur = cur.Parent
		default:
			cur = cur.Child(name, idx)
		}
	}
	return cur
}

// Visit calls fn for n and every descendant in document order. Returning a
// non-nil error stops the walk.
func (n *Node) Visit(fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.Visit(fn); err != nil {
			return err
		}
	}
	return nil
}
