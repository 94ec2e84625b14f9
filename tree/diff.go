package tree

import (
	"fmt"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeKind classifies a Change.
type ChangeKind int

const (
	Insert ChangeKind = iota
	Delete
	Modify
)

func (k ChangeKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Modify:
		return "modify"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// Change is one difference between two documents. Path locates the node in
// the document it exists in: From for deletions and modifications, To for
// insertions.
type Change struct {
	Kind   ChangeKind
	Path   string
	From   *Node
	To     *Node
	Detail string
}

func (c Change) String() string {
	if c.Detail == "" {
		return c.Kind.String() + " " + c.Path
	}
	return c.Kind.String() + " " + c.Path + ": " + c.Detail
}

// Diff returns the changes turning from into to. Children are aligned by
// name with a sequence diff, then aligned pairs are compared recursively.
func Diff(from, to *Node) []Change {
	var res []Change
	diffNode(from, to, &res)
	return res
}

func diffNode(from, to *Node, res *[]Change) {
	if from.Name != to.Name {
		*res = append(*res, Change{Kind: Modify, Path: from.Path().String(), From: from, To: to,
			Detail: fmt.Sprintf("name %q -> %q", from.Name, to.Name)})
		return
	}
	if from.Value != to.Value {
		*res = append(*res, Change{Kind: Modify, Path: from.Path().String(), From: from, To: to,
			Detail: fmt.Sprintf("value %q -> %q", from.Value, to.Value)})
	}
	diffAttrs(from, to, res)
	diffChildren(from, to, res)
}

func diffAttrs(from, to *Node, res *[]Change) {
	for _, a := range from.Attrs {
		v, ok := to.Attr(a.Name)
		switch {
		case !ok:
			*res = append(*res, Change{Kind: Modify, Path: from.Path().String(), From: from, To: to,
				Detail: fmt.Sprintf("attribute %s removed", a.Name)})
		case v != a.Value:
			*res = append(*res, Change{Kind: Modify, Path: from.Path().String(), From: from, To: to,
				Detail: fmt.Sprintf("attribute %s %q -> %q", a.Name, a.Value, v)})
		}
	}
	for _, a := range to.Attrs {
		if _, ok := from.Attr(a.Name); !ok {
			*res = append(*res, Change{Kind: Modify, Path: from.Path().String(), From: from, To: to,
				Detail: fmt.Sprintf("attribute %s=%q added", a.Name, a.Value)})
		}
	}
}

func diffChildren(from, to *Node, res *[]Change) {
	names := map[string]rune{}
	fromRunes := mapNames(names, from.Children)
	toRunes := mapNames(names, to.Children)
	diffs := diffpatch.New().DiffMainRunes(fromRunes, toRunes, false)
	fi, ti := 0, 0
	for i := range diffs {
		d := &diffs[i]
		for range []rune(d.Text) {
			switch d.Type {
			case diffpatch.DiffDelete:
				c := from.Children[fi]
				*res = append(*res, Change{Kind: Delete, Path: c.Path().String(), From: c})
				fi++
			case diffpatch.DiffInsert:
				c := to.Children[ti]
				*res = append(*res, Change{Kind: Insert, Path: c.Path().String(), To: c})
				ti++
			case diffpatch.DiffEqual:
				diffNode(from.Children[fi], to.Children[ti], res)
				fi++
				ti++
			}
		}
	}
}

func mapNames(m map[string]rune, nodes []*Node) []rune {
	rs := make([]rune, len(nodes))
	for i, n := range nodes {
		r, ok := m[n.Name]
		if !ok {
			// stay clear of the surrogate range
			r = rune(0xE000 + len(m))
			m[n.Name] = r
		}
		rs[i] = r
	}
	return rs
}
