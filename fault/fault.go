// Package fault defines the error taxonomy shared by every stage of a
// marshalling or unmarshalling pass.
//
// Every failure is a *Error carrying a Kind (one of the Const values below)
// and an ordered trail of context entries. As an error propagates up the
// recursive descent each frame adds what it knows (structural path, type,
// converter), so the caller receives one error locating the offending node.
//
//	if errors.Is(err, fault.ErrDuplicateField) {
//	    ...
//	}
package fault

import (
	"errors"
	"fmt"
	"strings"
)

// Const is the type for constant error values.
type Const string

// Error implements error for Const returning the string value of the const.
func (e Const) Error() string { return string(e) }

const (
	// ErrNoConverter is the kind of errors raised when no registered converter
	// accepts a type.
	ErrNoConverter = Const("no converter")
	// ErrInstantiation is raised when a type has no usable construction path.
	ErrInstantiation = Const("cannot instantiate")
	// ErrObjectAccess is raised when reading or writing a field fails.
	ErrObjectAccess = Const("object access")
	// ErrDuplicateField is raised when a field is targeted twice while one
	// object is reconstructed.
	ErrDuplicateField = Const("duplicate field")
	// ErrTypeMismatch is raised when a decoded value is not assignable to the
	// statically expected type.
	ErrTypeMismatch = Const("type mismatch")
	// ErrInvalidReference is raised when a reference marker does not resolve.
	ErrInvalidReference = Const("invalid reference")
	// ErrCannotResolveClass is raised when a name in the stream does not map
	// to a known type.
	ErrCannotResolveClass = Const("cannot resolve class")
	// ErrCircularReference is raised in no-references mode when an object
	// contains itself.
	ErrCircularReference = Const("circular reference")
	// ErrUnknownField is raised for an element that matches no field.
	ErrUnknownField = Const("unknown field")
	// ErrConversion is the kind of any other conversion failure.
	ErrConversion = Const("conversion")
	// ErrStream is the kind of failures of the underlying reader or writer.
	ErrStream = Const("stream")
)

// Entry is one breadcrumb in an error's context trail.
type Entry struct {
	Key   string
	Value string
}

// Error is the error type returned by all objgraph packages.
type Error struct {
	Kind    Const
	Detail  string
	Cause   error
	Context []Entry
}

// New creates an error of the given kind.
func New(kind Const, format string, args ...any) *Error {
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Detail: detail}
}

// Wrap returns err as a *Error. An existing *Error anywhere in the chain is
// returned as is so context accumulates on one value; any other error becomes
// the cause of a new error of the given kind.
func Wrap(err error, kind Const) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return &Error{Kind: kind, Detail: err.Error(), Cause: err}
}

// With appends a context entry. If key is already present with a different
// value the entry is stored as key[1], key[2], ... so outer frames never hide
// inner ones.
func (e *Error) With(key, value string) *Error {
	name := key
	for i := 1; ; i++ {
		existing, ok := e.lookup(name)
		if !ok {
			break
		}
		if existing == value {
			return e
		}
		name = fmt.Sprintf("%s[%d]", key, i)
	}
	e.Context = append(e.Context, Entry{Key: name, Value: value})
	return e
}

// Get returns the value recorded for key, or "".
func (e *Error) Get(key string) string {
	v, _ := e.lookup(key)
	return v
}

func (e *Error) lookup(key string) (string, bool) {
	for i := range e.Context {
		if e.Context[i].Key == key {
			return e.Context[i].Value, true
		}
	}
	return "", false
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if len(e.Context) > 0 {
		b.WriteString(" (")
		for i, ent := range e.Context {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(ent.Key)
			b.WriteByte('=')
			b.WriteString(ent.Value)
		}
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	if k, ok := target.(Const); ok {
		return e.Kind == k
	}
	return false
}
