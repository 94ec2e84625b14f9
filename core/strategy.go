package core

import (
	"fmt"
	"reflect"

	"github.com/signadot/objgraph/hier"
)

// Mode selects how shared values are written.
type Mode int

const (
	// XPathRelative writes references as paths relative to the referring
	// node.
	XPathRelative Mode = iota
	// XPathAbsolute writes references as absolute paths.
	XPathAbsolute
	// SingleNodeXPathRelative is XPathRelative with every sibling index
	// written out.
	SingleNodeXPathRelative
	// SingleNodeXPathAbsolute is XPathAbsolute with every sibling index
	// written out.
	SingleNodeXPathAbsolute
	// IDReferences writes an id attribute on shared values and references
	// by id.
	IDReferences
	// NoReferences writes shared values in full at each occurrence and
	// fails on cycles.
	NoReferences
)

var modeNames = []string{
	XPathRelative:           "xpath-relative",
	XPathAbsolute:           "xpath-absolute",
	SingleNodeXPathRelative: "single-node-xpath-relative",
	SingleNodeXPathAbsolute: "single-node-xpath-absolute",
	IDReferences:            "id",
	NoReferences:            "none",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Modes lists every mode.
func Modes() []Mode {
	res := make([]Mode, len(modeNames))
	for i := range res {
		res[i] = Mode(i)
	}
	return res
}

func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if n == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown reference mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	mode, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Strategy runs marshalling passes.
type Strategy interface {
	Marshal(w hier.Writer, v reflect.Value, env Env) error
	// Unmarshal reads the document r is positioned on. A valid root is
	// populated in place when the document allows it.
	Unmarshal(root reflect.Value, r hier.Reader, env Env) (reflect.Value, error)
}

type strategy struct {
	mode Mode
}

// NewStrategy returns the strategy for mode.
func NewStrategy(mode Mode) Strategy {
	return &strategy{mode: mode}
}

// scheme returns a new scheme for one pass, nil for NoReferences.
func (s *strategy) scheme() Scheme {
	switch s.mode {
	case XPathAbsolute:
		return &XPathScheme{}
	case SingleNodeXPathRelative:
		return &XPathScheme{Relative: true, SingleNode: true}
	case SingleNodeXPathAbsolute:
		return &XPathScheme{SingleNode: true}
	case IDReferences:
		return &IDScheme{}
	case NoReferences:
		return nil
	}
	return &XPathScheme{Relative: true}
}

func (s *strategy) Marshal(w hier.Writer, v reflect.Value, env Env) error {
	if sc := s.scheme(); sc != nil {
		return NewReferenceMarshaller(w, env, sc).Start(v)
	}
	return NewTreeMarshaller(w, env).Start(v)
}

func (s *strategy) Unmarshal(root reflect.Value, r hier.Reader, env Env) (reflect.Value, error) {
	if sc := s.scheme(); sc != nil {
		return NewReferenceUnmarshaller(root, r, env, sc).Start()
	}
	return NewTreeUnmarshaller(root, r, env).Start()
}
