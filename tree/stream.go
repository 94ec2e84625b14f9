package tree

import (
	"errors"

	"github.com/signadot/objgraph/hier"
)

// Writer builds a tree from hierarchical stream calls.
type Writer struct {
	root  *Node
	stack []*Node
	err   error
}

var _ hier.Writer = (*Writer)(nil)

func NewWriter() *Writer {
	return &Writer{}
}

// Root returns the document written so far.
func (w *Writer) Root() *Node {
	return w.root
}

func (w *Writer) StartNode(name string) {
	n := New(name)
	if len(w.stack) == 0 {
		if w.root != nil {
			w.fail(errors.New("tree: second root node " + name))
			return
		}
		w.root = n
	} else {
		w.stack[len(w.stack)-1].AddChild(n)
	}
	w.stack = append(w.stack, n)
}

func (w *Writer) AddAttribute(name, value string) {
	if len(w.stack) == 0 {
		w.fail(errors.New("tree: attribute outside of a node"))
		return
	}
	w.stack[len(w.stack)-1].SetAttr(name, value)
}

func (w *Writer) SetValue(text string) {
	if len(w.stack) == 0 {
		w.fail(errors.New("tree: value outside of a node"))
		return
	}
	w.stack[len(w.stack)-1].Value = text
}

func (w *Writer) EndNode() {
	if len(w.stack) == 0 {
		w.fail(errors.New("tree: EndNode without StartNode"))
		return
	}
	w.stack = w.stack[:len(w.stack)-1]
}

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) Flush() error { return w.err }

func (w *Writer) Close() error {
	if w.err == nil && len(w.stack) != 0 {
		w.err = errors.New("tree: unclosed node " + w.stack[len(w.stack)-1].Name)
	}
	return w.err
}

func (w *Writer) Underlying() hier.Writer { return w }

type frame struct {
	node *Node
	next int
}

// Reader walks a tree as a hierarchical stream, starting on its root.
type Reader struct {
	stack []frame
}

var _ hier.Reader = (*Reader)(nil)

func NewReader(root *Node) *Reader {
	return &Reader{stack: []frame{{node: root}}}
}

func (r *Reader) top() *frame { return &r.stack[len(r.stack)-1] }

// Current returns the node the reader is positioned on.
func (r *Reader) Current() *Node { return r.top().node }

func (r *Reader) HasMoreChildren() bool {
	f := r.top()
	return f.next < len(f.node.Children)
}

func (r *Reader) MoveDown() {
	f := r.top()
	c := f.node.Children[f.next]
	f.next++
	r.stack = append(r.stack, frame{node: c})
}

func (r *Reader) MoveUp() {
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Reader) NodeName() string { return r.top().node.Name }
func (r *Reader) Value() string    { return r.top().node.Value }

func (r *Reader) Attribute(name string) (string, bool) {
	return r.top().node.Attr(name)
}

func (r *Reader) AttributeNames() []string {
	attrs := r.top().node.Attrs
	res := make([]string, len(attrs))
	for i := range attrs {
		res[i] = attrs[i].Name
	}
	return res
}

func (r *Reader) Err() error              { return nil }
func (r *Reader) Close() error            { return nil }
func (r *Reader) Underlying() hier.Reader { return r }

// Read copies the document r is positioned on into a new tree.
func Read(r hier.Reader) (*Node, error) {
	w := NewWriter()
	hier.Copy(r, w)
	if err := r.Err(); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return w.Root(), nil
}

// Write emits n and its descendants to w.
func Write(n *Node, w hier.Writer) error {
	hier.Copy(NewReader(n), w)
	return w.Flush()
}
