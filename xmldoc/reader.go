package xmldoc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/signadot/objgraph/hier"
)

type rframe struct {
	name     string
	attrs    []xml.Attr
	text     strings.Builder
	textDone bool
}

// Reader is a pull reader over an XML document. It starts positioned on the
// root element.
type Reader struct {
	dec     *xml.Decoder
	closer  io.Closer
	coder   hier.NameCoder
	stack   []*rframe
	pending []xml.Token
	err     error
}

var _ hier.Reader = (*Reader)(nil)

// NewReader returns a reader over r, positioned on the root element. Read
// failures, including a missing root, are reported by Err. If r is an
// io.Closer, Close closes it.
func NewReader(r io.Reader, options ...Option) *Reader {
	o := newOpts(options)
	res := &Reader{dec: xml.NewDecoder(r), coder: o.coder}
	if c, ok := r.(io.Closer); ok {
		res.closer = c
	}
	for {
		tok := res.next()
		if tok == nil {
			if res.err == nil {
				res.err = errors.New("xmldoc: no root element")
			}
			res.stack = append(res.stack, &rframe{textDone: true})
			return res
		}
		if se, ok := tok.(xml.StartElement); ok {
			res.push(se)
			return res
		}
	}
}

// next returns the next token, or nil at the end of input or on error.
func (r *Reader) next() xml.Token {
	if n := len(r.pending); n > 0 {
		tok := r.pending[n-1]
		r.pending = r.pending[:n-1]
		return tok
	}
	if r.err != nil {
		return nil
	}
	tok, err := r.dec.Token()
	if err != nil {
		if err != io.EOF {
			r.err = fmt.Errorf("xmldoc: %w", err)
		}
		return nil
	}
	return xml.CopyToken(tok)
}

func (r *Reader) pushBack(tok xml.Token) {
	r.pending = append(r.pending, tok)
}

func (r *Reader) push(se xml.StartElement) {
	f := &rframe{name: r.coder.DecodeNode(se.Name.Local)}
	for _, a := range se.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		a.Name.Local = r.coder.DecodeAttribute(a.Name.Local)
		f.attrs = append(f.attrs, a)
	}
	r.stack = append(r.stack, f)
}

func (r *Reader) top() *rframe { return r.stack[len(r.stack)-1] }

// readText collects character data up to the first child or the end of the
// current element.
func (r *Reader) readText() {
	f := r.top()
	if f.textDone {
		return
	}
	f.textDone = true
	for {
		tok := r.next()
		switch t := tok.(type) {
		case nil:
			return
		case xml.CharData:
			f.text.Write(t)
		case xml.Comment, xml.ProcInst, xml.Directive:
		default:
			r.pushBack(tok)
			return
		}
	}
}

// peek returns the next element boundary token, skipping text and comments.
func (r *Reader) peek() xml.Token {
	for {
		tok := r.next()
		switch tok.(type) {
		case nil:
			return nil
		case xml.StartElement, xml.EndElement:
			r.pushBack(tok)
			return tok
		}
	}
}

func (r *Reader) HasMoreChildren() bool {
	if r.err != nil {
		return false
	}
	r.readText()
	_, ok := r.peek().(xml.StartElement)
	return ok
}

func (r *Reader) MoveDown() {
	if !r.HasMoreChildren() {
		if r.err == nil {
			r.err = fmt.Errorf("xmldoc: no child to move down to in %q", r.top().name)
		}
		return
	}
	r.push(r.next().(xml.StartElement))
}

func (r *Reader) MoveUp() {
	depth := 0
	for {
		tok := r.next()
		if tok == nil {
			break
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
		if depth < 0 {
			break
		}
	}
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
}

func (r *Reader) NodeName() string { return r.top().name }

// Value returns the text of the current element. Whitespace only text in
// front of a child element is indentation and reads as "".
func (r *Reader) Value() string {
	r.readText()
	text := r.top().text.String()
	if strings.TrimSpace(text) == "" {
		if _, ok := r.peek().(xml.StartElement); ok {
			return ""
		}
	}
	return text
}

func (r *Reader) Attribute(name string) (string, bool) {
	for _, a := range r.top().attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (r *Reader) AttributeNames() []string {
	attrs := r.top().attrs
	res := make([]string, len(attrs))
	for i := range attrs {
		res[i] = attrs[i].Name.Local
	}
	return res
}

func (r *Reader) Err() error { return r.err }

func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func (r *Reader) Underlying() hier.Reader { return r }
