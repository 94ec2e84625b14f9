// Package structural converts arbitrary structs field by field.
//
// Fields are read and written through a reflection.Provider and named by the
// mapper. A struct node holds the fields configured as attributes as
// attributes, followed by a child node per remaining field, in field
// visitation order:
//
//	<thing id="7">
//	  <name>hello</name>
//	  <next class="other"/>
//	</thing>
//
// Nil fields, fields equal to the registered default instance and zero
// omitempty fields are not written.
package structural

import (
	"reflect"
	"sync"

	"github.com/signadot/objgraph/converter"
	"github.com/signadot/objgraph/fault"
	"github.com/signadot/objgraph/hier"
	"github.com/signadot/objgraph/mapper"
	"github.com/signadot/objgraph/reflection"
)

// WriteReplacer is implemented by values written as another value.
type WriteReplacer interface {
	WriteReplace() any
}

// ReadResolver is implemented by values replaced by another value once read.
type ReadResolver interface {
	ReadResolve() any
}

// Defaults holds default instances per struct type.
type Defaults struct {
	m sync.Map // reflect.Type -> reflect.Value
}

// Set registers the struct (or pointer to struct) v as the default instance
// of its type.
func (d *Defaults) Set(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fault.New(fault.ErrInstantiation, "default instance %T is not a struct", v)
	}
	cp := reflect.New(rv.Type()).Elem()
	cp.Set(rv)
	d.m.Store(rv.Type(), cp)
	return nil
}

// Get returns the addressable default instance of t.
func (d *Defaults) Get(t reflect.Type) (reflect.Value, bool) {
	v, ok := d.m.Load(t)
	if !ok {
		return reflect.Value{}, false
	}
	return v.(reflect.Value), true
}

// Converter is the struct converter.
type Converter struct {
	defaults *Defaults
}

var _ converter.Converter = (*Converter)(nil)

// New returns a converter using defaults, which may be nil.
func New(defaults *Defaults) *Converter {
	if defaults == nil {
		defaults = &Defaults{}
	}
	return &Converter{defaults: defaults}
}

func (c *Converter) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.Struct }

func attrName(m mapper.Mapper, name string) string {
	return m.AliasForSystemAttribute(name)
}

// attrConverter returns the single value converter of a field written as an
// attribute, or nil.
func attrConverter(ctx converter.Context, f *reflection.FieldInfo) converter.SingleValueConverter {
	if !ctx.Mapper().UseAttribute(f.DeclaringType, f.Name, f.Type) {
		return nil
	}
	c := ctx.Lookup().LookupLocal(f.DeclaringType, f.Name)
	if c == nil {
		var err error
		if c, err = ctx.Lookup().Lookup(f.Type); err != nil {
			return nil
		}
	}
	svc, _ := converter.AsSingleValue(c)
	return svc
}

func replacement(v reflect.Value) (reflect.Value, bool) {
	var wr WriteReplacer
	if v.CanAddr() {
		wr, _ = v.Addr().Interface().(WriteReplacer)
	}
	if wr == nil {
		wr, _ = v.Interface().(WriteReplacer)
	}
	if wr == nil {
		return reflect.Value{}, false
	}
	return converter.Concrete(reflect.ValueOf(wr.WriteReplace())), true
}

func (c *Converter) Marshal(v reflect.Value, w hier.Writer, ctx converter.MarshallingContext) error {
	if s, ok := replacement(v); ok {
		orig := v
		if v.CanAddr() {
			orig = v.Addr()
		}
		ctx.Replace(orig, s)
		switch {
		case !s.IsValid():
			return nil
		case s.Type() == v.Type():
			v = s
		case s.Type() == reflect.PointerTo(v.Type()):
			v = s.Elem()
		default:
			if name := attrName(ctx.Mapper(), hier.AttrResolvesTo); name != "" {
				w.AddAttribute(name, ctx.Mapper().SerializedClass(s.Type()))
			}
			return ctx.ConvertAnother(s, nil)
		}
	}
	return c.marshalFields(v, w, ctx)
}

// skip reports whether the field value fv is left out of the document.
func (c *Converter) skip(ctx converter.Context, def reflect.Value, f *reflection.FieldInfo, fv reflect.Value) bool {
	if converter.IsNil(fv) {
		return true
	}
	if ctx.Mapper().OmitEmpty(f.DeclaringType, f.Name) && fv.IsZero() {
		return true
	}
	if def.IsValid() {
		dv, err := ctx.Provider().FieldValue(def, f.Name, f.DeclaringType)
		if err == nil && reflect.DeepEqual(fv.Interface(), dv.Interface()) {
			return true
		}
	}
	return false
}

func (c *Converter) marshalFields(v reflect.Value, w hier.Writer, ctx converter.MarshallingContext) error {
	m := ctx.Mapper()
	prov := ctx.Provider()
	def, _ := c.defaults.Get(v.Type())

	err := prov.VisitSerializableFields(v, func(f *reflection.FieldInfo, fv reflect.Value) error {
		if !m.ShouldSerializeMember(f.DeclaringType, f.Name) {
			return nil
		}
		svc := attrConverter(ctx, f)
		if svc == nil || c.skip(ctx, def, f, fv) {
			return nil
		}
		name := m.SerializedMember(f.DeclaringType, f.Name)
		if ctx.IsReservedAttribute(name) {
			return fault.New(fault.ErrConversion, "attribute %s of %s is a system attribute", name, f).
				With("field", f.String())
		}
		text, err := svc.ToString(fv)
		if err != nil {
			return fault.Wrap(err, fault.ErrConversion).With("field", f.String())
		}
		w.AddAttribute(name, text)
		return nil
	})
	if err != nil {
		return err
	}

	emitted := map[string]reflect.Type{}
	return prov.VisitSerializableFields(v, func(f *reflection.FieldInfo, fv reflect.Value) error {
		if !m.ShouldSerializeMember(f.DeclaringType, f.Name) || attrConverter(ctx, f) != nil {
			return nil
		}
		if c.skip(ctx, def, f, fv) {
			return nil
		}
		if ic := m.ImplicitCollectionForField(f.DeclaringType, f.Name); ic != nil && fv.Kind() == reflect.Slice {
			return writeImplicit(ic, fv, w, ctx)
		}
		name := m.SerializedMember(f.DeclaringType, f.Name)
		w.StartNode(name)
		if owner, ok := emitted[name]; ok && owner != f.DeclaringType {
			if a := attrName(m, hier.AttrDefinedIn); a != "" {
				w.AddAttribute(a, m.SerializedClass(f.DeclaringType))
			}
		} else if !ok {
			emitted[name] = f.DeclaringType
		}
		val := converter.Concrete(fv)
		if val.Type() != m.DefaultImplementationOf(f.Type) {
			if a := attrName(m, hier.AttrClass); a != "" {
				w.AddAttribute(a, m.SerializedClass(val.Type()))
			}
		}
		err := ctx.ConvertAnother(val, ctx.Lookup().LookupLocal(f.DeclaringType, f.Name))
		w.EndNode()
		if err != nil {
			return fault.Wrap(err, fault.ErrConversion).With("field", f.String())
		}
		return nil
	})
}

func writeImplicit(ic *mapper.ImplicitCollection, items reflect.Value, w hier.Writer, ctx converter.MarshallingContext) error {
	m := ctx.Mapper()
	for i := 0; i < items.Len(); i++ {
		item := converter.Concrete(items.Index(i))
		it := converter.TypeOf(item)
		name := ic.ItemName
		if name == "" {
			if it == nil {
				name = m.SerializedClass(ic.ItemType)
			} else {
				name = m.SerializedClass(it)
			}
		}
		w.StartNode(name)
		if it == nil || ic.ItemName != "" && it != m.DefaultImplementationOf(ic.ItemType) {
			if a := attrName(m, hier.AttrClass); a != "" {
				w.AddAttribute(a, m.SerializedClass(it))
			}
		}
		err := ctx.ConvertAnother(item, nil)
		w.EndNode()
		if err != nil {
			return fault.Wrap(err, fault.ErrConversion).With("field", ic.Owner.String()+"."+ic.Field)
		}
	}
	return nil
}
