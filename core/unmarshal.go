package core

import (
	"reflect"
	"sort"

	"github.com/signadot/objgraph/converter"
	"github.com/signadot/objgraph/fault"
	"github.com/signadot/objgraph/hier"
	"github.com/signadot/objgraph/mapper"
	"github.com/signadot/objgraph/reflection"
)

type callback struct {
	priority int
	fn       func() error
}

// TreeUnmarshaller reads a document as a plain tree.
type TreeUnmarshaller struct {
	converter.DataHolder
	r         *hier.PathTrackingReader
	env       *Env
	root      reflect.Value
	types     []reflect.Type
	callbacks []callback
	system    []string

	ctx     converter.UnmarshallingContext
	convert func(parent reflect.Value, t reflect.Type, c converter.Converter) (reflect.Value, error)
}

var _ converter.UnmarshallingContext = (*TreeUnmarshaller)(nil)

// NewTreeUnmarshaller reads from r, positioned on the root node. A valid
// root is populated in place when the document's root type allows it.
func NewTreeUnmarshaller(root reflect.Value, r hier.Reader, env Env) *TreeUnmarshaller {
	env.defaults()
	u := &TreeUnmarshaller{
		DataHolder: env.Data,
		r:          hier.NewPathTrackingReader(r, hier.NewPathTracker(env.Coder)),
		env:        &env,
		root:       root,
		system:     treeAttributes,
	}
	u.ctx = u
	u.convert = u.convertTree
	return u
}

func (u *TreeUnmarshaller) Mapper() mapper.Mapper         { return u.env.Mapper }
func (u *TreeUnmarshaller) Lookup() converter.Lookup      { return u.env.Lookup }
func (u *TreeUnmarshaller) Provider() reflection.Provider { return u.env.Provider }
func (u *TreeUnmarshaller) CurrentPath() hier.Path        { return u.r.CurrentPath() }

func (u *TreeUnmarshaller) IsReservedAttribute(name string) bool {
	return mapper.IsSystemAttribute(u.env.Mapper, name, u.system...)
}

func (u *TreeUnmarshaller) RequiredType() reflect.Type {
	if len(u.types) == 0 {
		return nil
	}
	return u.types[len(u.types)-1]
}

func (u *TreeUnmarshaller) CurrentObject() reflect.Value {
	if len(u.types) == 1 {
		return u.root
	}
	return reflect.Value{}
}

func (u *TreeUnmarshaller) AddCompletionCallback(priority int, fn func() error) {
	u.callbacks = append(u.callbacks, callback{priority: priority, fn: fn})
}

// Start reads the root node, then runs the completion callbacks.
func (u *TreeUnmarshaller) Start() (reflect.Value, error) {
	if err := u.r.Err(); err != nil {
		return reflect.Value{}, fault.Wrap(err, fault.ErrStream)
	}
	t, err := converter.ItemType(u.r, u.env.Mapper)
	if err != nil {
		return reflect.Value{}, err
	}
	v, err := u.ConvertAnother(reflect.Value{}, t, nil)
	if err != nil {
		return reflect.Value{}, err
	}
	sort.SliceStable(u.callbacks, func(i, j int) bool {
		return u.callbacks[i].priority > u.callbacks[j].priority
	})
	for _, cb := range u.callbacks {
		u.env.Log.Debug("running completion callback", "priority", cb.priority)
		if err := cb.fn(); err != nil {
			return reflect.Value{}, fault.Wrap(err, fault.ErrConversion)
		}
	}
	return v, nil
}

func (u *TreeUnmarshaller) ConvertAnother(parent reflect.Value, t reflect.Type, c converter.Converter) (reflect.Value, error) {
	if t == nil {
		t = mapper.NullType
	}
	t = u.env.Mapper.DefaultImplementationOf(t)
	if t.Kind() == reflect.Interface {
		return reflect.Value{}, fault.New(fault.ErrCannotResolveClass, "no concrete type for %s", t).
			With("path", u.r.CurrentPath().String()).
			With("required-type", t.String())
	}
	if c == nil {
		var err error
		if c, err = u.env.Lookup.Lookup(t); err != nil {
			return reflect.Value{}, fault.Wrap(err, fault.ErrNoConverter).With("path", u.r.CurrentPath().String())
		}
	}
	return u.convert(parent, t, c)
}

func (u *TreeUnmarshaller) convertTree(_ reflect.Value, t reflect.Type, c converter.Converter) (reflect.Value, error) {
	u.types = append(u.types, t)
	defer func() { u.types = u.types[:len(u.types)-1] }()
	v, err := c.Unmarshal(u.r, u.ctx)
	if err == nil {
		if rerr := u.r.Err(); rerr != nil {
			err = fault.Wrap(rerr, fault.ErrStream)
		}
	}
	if err != nil {
		return reflect.Value{}, fault.Wrap(err, fault.ErrConversion).
			With("path", u.r.CurrentPath().String()).
			With("required-type", t.String()).
			With("converter-type", converter.Name(c))
	}
	return v, nil
}

// ReferenceUnmarshaller resolves the references written by a
// ReferenceMarshaller with the same Scheme.
type ReferenceUnmarshaller struct {
	*TreeUnmarshaller
	scheme  Scheme
	values  map[string]reflect.Value
	parents []string
}

func NewReferenceUnmarshaller(root reflect.Value, r hier.Reader, env Env, scheme Scheme) *ReferenceUnmarshaller {
	ru := &ReferenceUnmarshaller{
		TreeUnmarshaller: NewTreeUnmarshaller(root, r, env),
		scheme:           scheme,
		values:           map[string]reflect.Value{},
	}
	ru.system = withScheme(scheme)
	ru.ctx = ru
	ru.convert = ru.convertRef
	return ru
}

func (ru *ReferenceUnmarshaller) convertRef(parent reflect.Value, t reflect.Type, c converter.Converter) (reflect.Value, error) {
	if n := len(ru.parents); n > 0 && parent.IsValid() {
		if key := ru.parents[n-1]; key != "" {
			if _, ok := ru.values[key]; !ok {
				ru.values[key] = parent
			}
		}
	}
	m := ru.env.Mapper
	if a := m.AliasForSystemAttribute(hier.AttrReference); a != "" {
		if ref, ok := ru.r.Attribute(a); ok {
			current := ru.r.CurrentPath()
			key := ru.scheme.Resolve(ref, current)
			v, ok := ru.values[key]
			if !ok {
				return reflect.Value{}, fault.New(fault.ErrInvalidReference, "%s does not resolve", ref).
					With("reference", ref).
					With("path", current.String())
			}
			ru.env.Log.Debug("resolved reference", "path", current.String(), "reference", ref, "key", key)
			return v, nil
		}
	}
	if m.IsImmutableValueType(t) {
		return ru.convertTree(parent, t, c)
	}
	key := ru.scheme.CurrentKey(ru.r, m)
	ru.parents = append(ru.parents, key)
	defer func() { ru.parents = ru.parents[:len(ru.parents)-1] }()
	v, err := ru.convertTree(parent, t, c)
	if err != nil {
		return reflect.Value{}, err
	}
	if key != "" {
		ru.values[key] = v
	}
	return v, nil
}
