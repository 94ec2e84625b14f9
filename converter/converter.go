// Package converter defines converters, the contexts they run in and the
// registry dispatching Go types to them.
//
// A converter writes the content of the current node: its attributes, its
// value and its children. The node itself is started by the caller, so a
// converter embedding another value starts a child node, hands the value to
// the context and ends the node:
//
//	w.StartNode("field")
//	err := ctx.ConvertAnother(v, nil)
//	w.EndNode()
//
// Going through the context rather than calling a converter directly is what
// lets shared and cyclic values be written as references.
package converter

import (
	"reflect"

	"github.com/signadot/objgraph/hier"
	"github.com/signadot/objgraph/mapper"
	"github.com/signadot/objgraph/reflection"
)

// Priorities for Registry.Register.
const (
	PriorityVeryHigh = 10000
	PriorityHigh     = 1
	PriorityNormal   = 0
	PriorityLow      = -10
	PriorityVeryLow  = -20
)

type Converter interface {
	CanConvert(t reflect.Type) bool
	// Marshal writes the content of the current node for v.
	Marshal(v reflect.Value, w hier.Writer, ctx MarshallingContext) error
	// Unmarshal reads the current node. The result has type
	// ctx.RequiredType() or a type assignable where it is used; an invalid
	// Value stands for nil.
	Unmarshal(r hier.Reader, ctx UnmarshallingContext) (reflect.Value, error)
}

// SingleValueConverter converts values to and from a single string, which
// allows them to be written as attributes.
type SingleValueConverter interface {
	CanConvert(t reflect.Type) bool
	ToString(v reflect.Value) (string, error)
	FromString(s string, t reflect.Type) (reflect.Value, error)
}

// Lookup finds converters.
type Lookup interface {
	// Lookup returns the converter for t. A nil t stands for nil values.
	Lookup(t reflect.Type) (Converter, error)
	// LookupLocal returns the converter registered for one field, or nil.
	LookupLocal(owner reflect.Type, field string) Converter
}

// DataHolder carries arbitrary per-pass data between converters.
type DataHolder interface {
	Get(key any) any
	Put(key, value any)
}

type dataHolder map[any]any

// NewDataHolder returns an empty DataHolder.
func NewDataHolder() DataHolder { return dataHolder{} }

func (d dataHolder) Get(key any) any    { return d[key] }
func (d dataHolder) Put(key, value any) { d[key] = value }

// Context is shared by both directions.
type Context interface {
	DataHolder
	Mapper() mapper.Mapper
	Lookup() Lookup
	Provider() reflection.Provider
	// IsReservedAttribute reports whether the document attribute name is
	// a system attribute the pass writes or reads.
	IsReservedAttribute(name string) bool
}

type MarshallingContext interface {
	Context
	// ConvertAnother writes the content of the current node for v, or a
	// reference to where v was written before. A nil c means the converter
	// registered for the type of v.
	ConvertAnother(v reflect.Value, c Converter) error
	// Replace records that replacement is written in place of original, so
	// later occurrences of original refer to it.
	Replace(original, replacement reflect.Value)
}

type UnmarshallingContext interface {
	Context
	// ConvertAnother reads the current node as a value of type t. parent is
	// the object being populated, registered as the owner of the node's key
	// for references to ancestors. A nil c means the converter registered
	// for t.
	ConvertAnother(parent reflect.Value, t reflect.Type, c Converter) (reflect.Value, error)
	// CurrentObject is the caller supplied root instance while the root is
	// read, the invalid Value otherwise.
	CurrentObject() reflect.Value
	RequiredType() reflect.Type
	// AddCompletionCallback runs fn after the whole graph is read. Higher
	// priorities run first.
	AddCompletionCallback(priority int, fn func() error)
}
