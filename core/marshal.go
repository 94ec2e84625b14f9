// Package core drives marshalling passes: it walks the graph or the document,
// dispatches to converters and keeps track of shared values.
//
// A pass is run by a Strategy for one of the reference modes. All state of a
// pass lives in the marshaller or unmarshaller created for it; the Env it
// runs in may be shared by concurrent passes.
package core

import (
	"log/slog"
	"reflect"

	"github.com/signadot/objgraph/converter"
	"github.com/signadot/objgraph/fault"
	"github.com/signadot/objgraph/hier"
	"github.com/signadot/objgraph/mapper"
	"github.com/signadot/objgraph/reflection"
)

// Env is what a pass runs with.
type Env struct {
	Lookup   converter.Lookup
	Mapper   mapper.Mapper
	Provider reflection.Provider
	// Data is handed to converters, a new holder when nil.
	Data converter.DataHolder
	// Coder encodes the names recorded in paths. It must be the coder of
	// the document so references match node names.
	Coder hier.NameCoder
	Log   *slog.Logger
}

func (e *Env) defaults() {
	if e.Data == nil {
		e.Data = converter.NewDataHolder()
	}
	if e.Log == nil {
		e.Log = slog.Default()
	}
}

// identity identifies values that can be shared: pointers, maps and slices.
// Slices are the same value when they share the first element and length.
type identity struct {
	t   reflect.Type
	p   uintptr
	len int
}

func identify(v reflect.Value) (identity, bool) {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || v.Type().Elem().Size() == 0 {
			return identity{}, false
		}
		return identity{t: v.Type(), p: v.Pointer()}, true
	case reflect.Map:
		if v.IsNil() {
			return identity{}, false
		}
		return identity{t: v.Type(), p: v.Pointer()}, true
	case reflect.Slice:
		if v.Cap() == 0 || v.Type().Elem().Size() == 0 {
			return identity{}, false
		}
		return identity{t: v.Type(), p: v.Pointer(), len: v.Len()}, true
	}
	return identity{}, false
}

// treeAttributes are the system attributes of every pass.
var treeAttributes = []string{hier.AttrClass, hier.AttrResolvesTo, hier.AttrDefinedIn}

func withScheme(sc Scheme) []string {
	return append(append([]string{}, treeAttributes...), sc.Attributes()...)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}

// TreeMarshaller writes a graph as a plain tree. A value reached again while
// it is being written fails with fault.ErrCircularReference; shared values
// that are not cyclic are written in full at each occurrence.
type TreeMarshaller struct {
	converter.DataHolder
	w       *hier.PathTrackingWriter
	env     *Env
	parents map[identity]bool
	system  []string

	// ctx and convert are replaced by marshallers built on this one.
	ctx     converter.MarshallingContext
	convert func(v reflect.Value, c converter.Converter) error
}

var _ converter.MarshallingContext = (*TreeMarshaller)(nil)

func NewTreeMarshaller(w hier.Writer, env Env) *TreeMarshaller {
	env.defaults()
	m := &TreeMarshaller{
		DataHolder: env.Data,
		w:          hier.NewPathTrackingWriter(w, hier.NewPathTracker(env.Coder)),
		env:        &env,
		parents:    map[identity]bool{},
		system:     treeAttributes,
	}
	m.ctx = m
	m.convert = m.convertTree
	return m
}

func (m *TreeMarshaller) Mapper() mapper.Mapper            { return m.env.Mapper }
func (m *TreeMarshaller) Lookup() converter.Lookup         { return m.env.Lookup }
func (m *TreeMarshaller) Provider() reflection.Provider    { return m.env.Provider }
func (m *TreeMarshaller) Replace(_, _ reflect.Value)       {}
func (m *TreeMarshaller) CurrentPath() hier.Path           { return m.w.CurrentPath() }
func (m *TreeMarshaller) Writer() *hier.PathTrackingWriter { return m.w }

func (m *TreeMarshaller) IsReservedAttribute(name string) bool {
	return mapper.IsSystemAttribute(m.env.Mapper, name, m.system...)
}

// Start writes v as the root node and flushes the writer.
func (m *TreeMarshaller) Start(v reflect.Value) error {
	v = converter.Concrete(v)
	m.w.StartNode(m.env.Mapper.SerializedClass(converter.TypeOf(v)))
	err := m.ConvertAnother(v, nil)
	m.w.EndNode()
	if err != nil {
		return err
	}
	if err := m.w.Flush(); err != nil {
		return fault.Wrap(err, fault.ErrStream)
	}
	return nil
}

func (m *TreeMarshaller) ConvertAnother(v reflect.Value, c converter.Converter) error {
	v = converter.Concrete(v)
	if c == nil {
		var err error
		if c, err = m.env.Lookup.Lookup(converter.TypeOf(v)); err != nil {
			return fault.Wrap(err, fault.ErrNoConverter).With("path", m.w.CurrentPath().String())
		}
	}
	return m.convert(v, c)
}

func (m *TreeMarshaller) convertTree(v reflect.Value, c converter.Converter) error {
	if id, ok := identify(v); ok {
		if m.parents[id] {
			return fault.New(fault.ErrCircularReference, "%s contains itself", v.Type()).
				With("path", m.w.CurrentPath().String())
		}
		m.parents[id] = true
		defer delete(m.parents, id)
	}
	return m.marshal(v, c)
}

// marshal runs c on the current node, adding the node to errors.
func (m *TreeMarshaller) marshal(v reflect.Value, c converter.Converter) error {
	if err := c.Marshal(v, m.w, m.ctx); err != nil {
		return fault.Wrap(err, fault.ErrConversion).
			With("path", m.w.CurrentPath().String()).
			With("class", typeName(converter.TypeOf(v))).
			With("converter-type", converter.Name(c))
	}
	return nil
}

type refEntry struct {
	key  string
	path hier.Path
}

// ReferenceMarshaller writes values reached more than once as references to
// their first occurrence. Keys come from a Scheme.
type ReferenceMarshaller struct {
	*TreeMarshaller
	scheme   Scheme
	refs     map[identity]refEntry
	lastPath hier.Path
	hasLast  bool
	frames   []refEntry
}

func NewReferenceMarshaller(w hier.Writer, env Env, scheme Scheme) *ReferenceMarshaller {
	rm := &ReferenceMarshaller{
		TreeMarshaller: NewTreeMarshaller(w, env),
		scheme:         scheme,
		refs:           map[identity]refEntry{},
	}
	rm.system = withScheme(scheme)
	rm.ctx = rm
	rm.convert = rm.convertRef
	return rm
}

func (rm *ReferenceMarshaller) convertRef(v reflect.Value, c converter.Converter) error {
	if !v.IsValid() || rm.env.Mapper.IsImmutableValueType(v.Type()) {
		return rm.marshal(v, c)
	}
	id, ok := identify(v)
	if !ok {
		return rm.marshal(v, c)
	}
	current := rm.w.CurrentPath()
	existing, found := rm.refs[id]
	if found && !existing.path.Equal(current) {
		if a := rm.env.Mapper.AliasForSystemAttribute(hier.AttrReference); a != "" {
			ref := rm.scheme.Reference(current, existing.key)
			rm.env.Log.Debug("writing reference", "path", current.String(), "reference", ref)
			rm.w.AddAttribute(a, ref)
		}
		return nil
	}
	key := existing.key
	if !found {
		key = rm.scheme.NewKey(current)
	}
	if !rm.hasLast || !current.IsAncestor(rm.lastPath) {
		rm.scheme.Register(key, rm.w, rm.env.Mapper)
		rm.lastPath, rm.hasLast = current, true
		rm.refs[id] = refEntry{key: key, path: current}
	}
	rm.frames = append(rm.frames, refEntry{key: key, path: current})
	defer func() { rm.frames = rm.frames[:len(rm.frames)-1] }()
	return rm.marshal(v, c)
}

// Replace makes later occurrences of replacement refer to the node being
// written for original.
func (rm *ReferenceMarshaller) Replace(_, replacement reflect.Value) {
	if len(rm.frames) == 0 {
		return
	}
	top := rm.frames[len(rm.frames)-1]
	if !top.path.Equal(rm.w.CurrentPath()) {
		return
	}
	if id, ok := identify(converter.Concrete(replacement)); ok {
		rm.refs[id] = top
	}
}
