package converter

import (
	"reflect"

	"github.com/signadot/objgraph/fault"
	"github.com/signadot/objgraph/hier"
	"github.com/signadot/objgraph/mapper"
)

// Concrete strips interfaces from v. Nil interfaces and pointers become the
// invalid Value.
func Concrete(v reflect.Value) reflect.Value {
	for v.IsValid() {
		switch v.Kind() {
		case reflect.Interface:
			if v.IsNil() {
				return reflect.Value{}
			}
			v = v.Elem()
			continue
		case reflect.Pointer:
			if v.IsNil() {
				return reflect.Value{}
			}
		}
		return v
	}
	return v
}

// IsNil reports whether v holds no value.
func IsNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// TypeOf returns the type of v, nil for the invalid Value.
func TypeOf(v reflect.Value) reflect.Type {
	if !v.IsValid() {
		return nil
	}
	return v.Type()
}

// Assign stores v in the settable dst. The invalid Value stores zero.
func Assign(dst, v reflect.Value) error {
	if !v.IsValid() {
		dst.SetZero()
		return nil
	}
	if !v.Type().AssignableTo(dst.Type()) {
		return fault.New(fault.ErrTypeMismatch, "%s is not assignable to %s", v.Type(), dst.Type()).
			With("required-type", dst.Type().String())
	}
	dst.Set(v)
	return nil
}

// ClassAttr returns the type name recorded on the current node, from the
// resolves-to attribute or else the class attribute.
func ClassAttr(r hier.Reader, m mapper.Mapper) (string, bool) {
	for _, a := range []string{hier.AttrResolvesTo, hier.AttrClass} {
		alias := m.AliasForSystemAttribute(a)
		if alias == "" {
			continue
		}
		if v, ok := r.Attribute(alias); ok {
			return v, true
		}
	}
	return "", false
}

// ItemType returns the type of an item node, named by its type unless it
// carries a class attribute.
func ItemType(r hier.Reader, m mapper.Mapper) (reflect.Type, error) {
	name, ok := ClassAttr(r, m)
	if !ok {
		name = r.NodeName()
	}
	return m.RealClass(name)
}

// WriteItem writes v as a child node named after its type.
func WriteItem(v reflect.Value, w hier.Writer, ctx MarshallingContext) error {
	v = Concrete(v)
	w.StartNode(ctx.Mapper().SerializedClass(TypeOf(v)))
	err := ctx.ConvertAnother(v, nil)
	w.EndNode()
	return err
}

// ReadItem reads the next child node written by WriteItem.
func ReadItem(r hier.Reader, parent reflect.Value, ctx UnmarshallingContext) (reflect.Value, error) {
	r.MoveDown()
	defer r.MoveUp()
	t, err := ItemType(r, ctx.Mapper())
	if err != nil {
		return reflect.Value{}, err
	}
	return ctx.ConvertAnother(parent, t, nil)
}
