// Package xmldoc reads and writes XML documents as hierarchical streams.
//
// The Reader is a pull reader over encoding/xml tokens: nothing below the
// current node is decoded until it is visited. The Writer emits indented or
// compact XML and closes empty elements as <name/>.
//
// Node and attribute names pass through a hier.NameCoder, by default an
// XMLFriendlyNameCoder, so Go type names such as "[]*main.T" are written as
// valid XML names.
package xmldoc

import "github.com/signadot/objgraph/hier"

type Option func(*opts)

type opts struct {
	indent      string
	newline     string
	coder       hier.NameCoder
	declaration bool
}

func newOpts(options []Option) *opts {
	o := &opts{indent: "  ", newline: "\n"}
	for _, opt := range options {
		opt(o)
	}
	if o.coder == nil {
		o.coder = hier.NewXMLFriendlyNameCoder()
	}
	return o
}

// Indent sets the per level indentation of written documents.
func Indent(s string) Option {
	return func(o *opts) { o.indent = s }
}

// Compact writes documents without any whitespace between elements.
func Compact() Option {
	return func(o *opts) {
		o.indent = ""
		o.newline = ""
	}
}

// WithNameCoder sets the coder translating node and attribute names.
func WithNameCoder(c hier.NameCoder) Option {
	return func(o *opts) { o.coder = c }
}

// Declaration prefixes written documents with an XML declaration.
func Declaration() Option {
	return func(o *opts) { o.declaration = true }
}
