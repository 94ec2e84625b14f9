package core

import (
	"strconv"

	"github.com/signadot/objgraph/hier"
	"github.com/signadot/objgraph/mapper"
)

// Scheme derives reference keys and their textual form.
type Scheme interface {
	// NewKey returns the key of a value first written at path.
	NewKey(path hier.Path) string
	// Register is called when a value is associated with key on the node
	// being written.
	Register(key string, w hier.Writer, m mapper.Mapper)
	// Reference returns the reference attribute written at path for key.
	Reference(path hier.Path, key string) string
	// CurrentKey returns the key of the node being read, "" if it has none.
	CurrentKey(r ReaderAt, m mapper.Mapper) string
	// Resolve returns the key a reference read at path designates.
	Resolve(ref string, path hier.Path) string
	// Attributes lists the system attributes the scheme uses.
	Attributes() []string
}

// ReaderAt is a reader knowing its position.
type ReaderAt interface {
	hier.Reader
	CurrentPath() hier.Path
}

// XPathScheme keys values by the path of the node they are first written
// to. References are written relative to the referring node or absolute,
// and with every sibling index spelled out for SingleNode.
type XPathScheme struct {
	Relative   bool
	SingleNode bool
}

func (x *XPathScheme) NewKey(path hier.Path) string { return path.String() }
func (x *XPathScheme) Attributes() []string         { return []string{hier.AttrReference} }

func (x *XPathScheme) Register(string, hier.Writer, mapper.Mapper) {}

func (x *XPathScheme) Reference(path hier.Path, key string) string {
	target := hier.ParsePath(key)
	if x.Relative {
		target = path.RelativeTo(target)
	}
	if x.SingleNode {
		return target.Explicit()
	}
	return target.String()
}

func (x *XPathScheme) CurrentKey(r ReaderAt, _ mapper.Mapper) string {
	return r.CurrentPath().String()
}

func (x *XPathScheme) Resolve(ref string, path hier.Path) string {
	return path.Apply(hier.ParsePath(ref)).String()
}

// SequenceGenerator hands out increasing ids starting at 1.
type SequenceGenerator struct {
	next int
}

func (g *SequenceGenerator) Next() string {
	g.next++
	return strconv.Itoa(g.next)
}

// IDScheme keys values by generated ids, written in the id attribute of the
// node a value is first written to.
type IDScheme struct {
	Sequence SequenceGenerator
}

func (s *IDScheme) NewKey(hier.Path) string { return s.Sequence.Next() }
func (s *IDScheme) Attributes() []string    { return []string{hier.AttrReference, hier.AttrID} }

func (s *IDScheme) Register(key string, w hier.Writer, m mapper.Mapper) {
	if a := m.AliasForSystemAttribute(hier.AttrID); a != "" {
		w.AddAttribute(a, key)
	}
}

func (s *IDScheme) Reference(_ hier.Path, key string) string { return key }

func (s *IDScheme) CurrentKey(r ReaderAt, m mapper.Mapper) string {
	a := m.AliasForSystemAttribute(hier.AttrID)
	if a == "" {
		return ""
	}
	id, _ := r.Attribute(a)
	return id
}

func (s *IDScheme) Resolve(ref string, _ hier.Path) string { return ref }
