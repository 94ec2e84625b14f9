package tree

import (
	"cmp"
	"encoding/binary"
	"hash/maphash"
	"strings"
)

// Compare returns an integer comparing two nodes by name, value, attributes
// and then children. The result will be 0 if a==b, -1 if a < b, and +1 if
// a > b.
func Compare(a, b *Node) int {
	if a == b {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := strings.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	if c := compareAttrs(a.Attrs, b.Attrs); c != 0 {
		return c
	}
	n := min(len(a.Children), len(b.Children))
	for i := 0; i < n; i++ {
		if c := Compare(a.Children[i], b.Children[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a.Children), len(b.Children))
}

func compareAttrs(a, b []Attr) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := strings.Compare(a[i].Name, b[i].Name); c != 0 {
			return c
		}
		if c := strings.Compare(a[i].Value, b[i].Value); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// Equal reports whether a and b are structurally identical, attribute order
// included.
func Equal(a, b *Node) bool {
	return Compare(a, b) == 0
}

var seed = maphash.MakeSeed()

// Hash returns a 64-bit hash of the node, stable for the life of the
// process. It panics if n is nil.
func (n *Node) Hash() uint64 {
	if n == nil {
		panic("tree: Hash called on nil node")
	}
	var h maphash.Hash
	h.SetSeed(seed)
	h.WriteString(n.Name)
	h.WriteByte(0)
	h.WriteString(n.Value)
	h.WriteByte(0)
	for _, a := range n.Attrs {
		h.WriteString(a.Name)
		h.WriteByte('=')
		h.WriteString(a.Value)
		h.WriteByte(0)
	}
	var b [8]byte
	for _, c := range n.Children {
		binary.LittleEndian.PutUint64(b[:], c.Hash())
		h.Write(b[:])
	}
	return h.Sum64()
}
