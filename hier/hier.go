// Package hier defines the hierarchical stream abstraction every document
// format implements, plus the structural paths used to address nodes.
//
// A document is a tree of nodes. Each node has a name, an ordered set of
// attributes, an optional text value and ordered children. Writers receive
// StartNode/AddAttribute/SetValue/EndNode calls in document order; readers are
// walked with MoveDown/MoveUp.
//
//	w.StartNode("list")
//	w.StartNode("thing")
//	w.AddAttribute("reference", "/list/thing")
//	w.EndNode()
//	w.EndNode()
//
// Attributes of a node must be added before any child node or value of that
// same node, and nodes close in strict LIFO order.
//
// # Related Packages
//
//   - github.com/signadot/objgraph/tree - in-memory documents
//   - github.com/signadot/objgraph/xmldoc - XML streams
//   - github.com/signadot/objgraph/yamldoc - YAML and JSON streams
package hier

// Writer receives a document in order.
//
// Writers may defer errors; Flush and Close report the first error seen.
type Writer interface {
	StartNode(name string)
	AddAttribute(name, value string)
	SetValue(text string)
	EndNode()
	Flush() error
	Close() error
	// Underlying returns the innermost writer when w wraps another one.
	Underlying() Writer
}

// Reader walks a document.
//
// MoveDown enters the next child of the current node and MoveUp leaves the
// current node, skipping whatever remains of it. Readers report parse
// failures through Err; once Err is non-nil HasMoreChildren returns false.
type Reader interface {
	HasMoreChildren() bool
	MoveDown()
	MoveUp()
	NodeName() string
	Value() string
	Attribute(name string) (string, bool)
	AttributeNames() []string
	Err() error
	Close() error
	// Underlying returns the innermost reader when r wraps another one.
	Underlying() Reader
}

// Reserved attribute names. A mapper may alias them.
const (
	AttrClass      = "class"
	AttrReference  = "reference"
	AttrID         = "id"
	AttrResolvesTo = "resolves-to"
	AttrDefinedIn  = "defined-in"
)
