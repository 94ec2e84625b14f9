package yamldoc

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/signadot/objgraph/hier"
	"github.com/signadot/objgraph/tree"
)

type Option func(*opts)

type opts struct {
	json   bool
	indent int
}

// JSON selects JSON output.
func JSON() Option {
	return func(o *opts) { o.json = true }
}

// Indent sets the indentation width of YAML output.
func Indent(n int) Option {
	return func(o *opts) { o.indent = n }
}

func newOpts(options []Option) *opts {
	o := &opts{indent: 2}
	for _, opt := range options {
		opt(o)
	}
	return o
}

func (o *opts) encodeOptions() []yaml.EncodeOption {
	if o.json {
		return []yaml.EncodeOption{yaml.JSON()}
	}
	return []yaml.EncodeOption{yaml.Indent(o.indent), yaml.IndentSequence(true)}
}

// Encode writes n to w.
func Encode(w io.Writer, n *tree.Node, options ...Option) error {
	return encode(w, n, newOpts(options))
}

func encode(w io.Writer, n *tree.Node, o *opts) error {
	str := quote
	if o.json {
		str = plain
	}
	d, err := yaml.MarshalWithOptions(toValue(n, str), o.encodeOptions()...)
	if err != nil {
		return fmt.Errorf("yamldoc: %w", err)
	}
	_, err = w.Write(d)
	return err
}

// Decode reads one document from data. JSON is valid input as well.
func Decode(data []byte) (*tree.Node, error) {
	var v any
	if err := yaml.UnmarshalWithOptions(data, &v, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("yamldoc: %w", err)
	}
	return FromValue(v)
}

// Writer collects a hierarchical stream and encodes it when the root node
// ends.
type Writer struct {
	tw    *tree.Writer
	out   io.Writer
	opts  *opts
	depth int
	err   error
}

var _ hier.Writer = (*Writer)(nil)

func NewWriter(w io.Writer, options ...Option) *Writer {
	return &Writer{tw: tree.NewWriter(), out: w, opts: newOpts(options)}
}

func (w *Writer) StartNode(name string) {
	w.depth++
	w.tw.StartNode(name)
}

func (w *Writer) AddAttribute(name, value string) { w.tw.AddAttribute(name, value) }
func (w *Writer) SetValue(text string)            { w.tw.SetValue(text) }

func (w *Writer) EndNode() {
	w.tw.EndNode()
	w.depth--
	if w.depth != 0 || w.err != nil {
		return
	}
	if w.err = w.tw.Flush(); w.err != nil {
		return
	}
	w.err = encode(w.out, w.tw.Root(), w.opts)
}

func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.tw.Flush()
}

func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.depth != 0 {
		return errors.New("yamldoc: unclosed node")
	}
	return nil
}

func (w *Writer) Underlying() hier.Writer { return w }

// Reader decodes a whole document and walks it. Decoding failures are
// reported by Err.
type Reader struct {
	*tree.Reader
	err error
}

var _ hier.Reader = (*Reader)(nil)

func NewReader(r io.Reader) *Reader {
	data, err := io.ReadAll(r)
	if err != nil {
		return errReader(fmt.Errorf("yamldoc: %w", err))
	}
	n, err := Decode(data)
	if err != nil {
		return errReader(err)
	}
	return &Reader{Reader: tree.NewReader(n)}
}

func errReader(err error) *Reader {
	return &Reader{Reader: tree.NewReader(tree.New("")), err: err}
}

func (r *Reader) HasMoreChildren() bool {
	return r.err == nil && r.Reader.HasMoreChildren()
}

func (r *Reader) Err() error              { return r.err }
func (r *Reader) Underlying() hier.Reader { return r }
