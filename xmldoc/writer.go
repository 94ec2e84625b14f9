package xmldoc

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/signadot/objgraph/fault"
	"github.com/signadot/objgraph/hier"
)

type wframe struct {
	name     string
	children bool
}

// Writer writes a hierarchical stream as XML.
type Writer struct {
	out     *bufio.Writer
	opts    *opts
	stack   []wframe
	tagOpen bool
	attrs   []string
	started bool
	err     error
}

var _ hier.Writer = (*Writer)(nil)

// NewWriter returns a writer emitting to w. Output is buffered until the
// root element ends or Flush is called.
func NewWriter(w io.Writer, options ...Option) *Writer {
	return &Writer{out: bufio.NewWriter(w), opts: newOpts(options)}
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.out.WriteString(s)
}

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) closeTag() {
	if w.tagOpen {
		w.write(">")
		w.tagOpen = false
	}
}

func (w *Writer) lineBreak(depth int) {
	if w.opts.newline == "" {
		return
	}
	w.write(w.opts.newline)
	w.write(strings.Repeat(w.opts.indent, depth))
}

func (w *Writer) StartNode(name string) {
	if len(w.stack) == 0 {
		if w.started {
			w.fail(fmt.Errorf("xmldoc: second root element %q", name))
			return
		}
		w.started = true
		if w.opts.declaration {
			w.write(`<?xml version="1.0" encoding="UTF-8"?>`)
			w.write(w.opts.newline)
		}
	} else {
		w.closeTag()
		w.stack[len(w.stack)-1].children = true
		w.lineBreak(len(w.stack))
	}
	enc := w.opts.coder.EncodeNode(name)
	w.attrs = w.attrs[:0]
	w.write("<")
	w.write(enc)
	w.tagOpen = true
	w.stack = append(w.stack, wframe{name: enc})
}

func (w *Writer) AddAttribute(name, value string) {
	if !w.tagOpen {
		w.fail(fmt.Errorf("xmldoc: attribute %q after content", name))
		return
	}
	enc := w.opts.coder.EncodeAttribute(name)
	for _, a := range w.attrs {
		if a == enc {
			w.fail(fault.New(fault.ErrStream, "attribute %q written twice on %q", name, w.stack[len(w.stack)-1].name).
				With("attribute", name))
			return
		}
	}
	w.attrs = append(w.attrs, enc)
	w.write(" ")
	w.write(enc)
	w.write(`="`)
	w.escape(value)
	w.write(`"`)
}

func (w *Writer) SetValue(text string) {
	if len(w.stack) == 0 {
		w.fail(errors.New("xmldoc: value outside of an element"))
		return
	}
	w.closeTag()
	w.escape(text)
}

// escape writes s as character data. Text XML cannot carry fails the
// writer rather than being replaced.
func (w *Writer) escape(s string) {
	if w.err != nil {
		return
	}
	if i := invalidChar(s); i >= 0 {
		r, _ := utf8.DecodeRuneInString(s[i:])
		w.fail(fault.New(fault.ErrStream, "%q at offset %d cannot be written in xml", r, i).With("value", s))
		return
	}
	w.err = xml.EscapeText(w.out, []byte(s))
}

// invalidChar returns the offset of the first byte of s outside the XML
// character range, or -1.
func invalidChar(s string) int {
	for i, r := range s {
		switch {
		case r == utf8.RuneError:
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return i
			}
		case r == '\t' || r == '\n' || r == '\r':
		case r < 0x20, r >= 0xD800 && r <= 0xDFFF, r == 0xFFFE, r == 0xFFFF:
			return i
		}
	}
	return -1
}

func (w *Writer) EndNode() {
	if len(w.stack) == 0 {
		w.fail(errors.New("xmldoc: EndNode without StartNode"))
		return
	}
	top := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if w.tagOpen {
		w.write("/>")
		w.tagOpen = false
	} else {
		if top.children {
			w.lineBreak(len(w.stack))
		}
		w.write("</")
		w.write(top.name)
		w.write(">")
	}
	if len(w.stack) == 0 && w.err == nil {
		w.err = w.out.Flush()
	}
}

func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.out.Flush()
	return w.err
}

func (w *Writer) Close() error {
	if len(w.stack) != 0 {
		w.fail(fmt.Errorf("xmldoc: unclosed element %q", w.stack[len(w.stack)-1].name))
	}
	return w.Flush()
}

func (w *Writer) Underlying() hier.Writer { return w }
