// Package reflection enumerates, reads and writes the persistable fields of
// Go structs and creates instances without running user code.
//
// Two providers are available. Pure only touches what package reflect
// allows: exported fields, reached through embedded structs. Unsafe reaches
// unexported fields as well through reflect.NewAt, so types need no
// cooperation to be persisted.
package reflection

import (
	"reflect"
	"unsafe"

	"github.com/signadot/objgraph/fault"
)

// Provider gives structured access to struct fields.
type Provider interface {
	// NewInstance returns a pointer to a new zero value of t.
	NewInstance(t reflect.Type) (reflect.Value, error)
	// VisitSerializableFields calls visit for each persistable field of the
	// struct obj, in visitation order.
	VisitSerializableFields(obj reflect.Value, visit func(f *FieldInfo, v reflect.Value) error) error
	// WriteField sets the field name declared by owner (nil: the first field
	// of that name) of the addressable struct obj. An invalid value stores
	// the zero value.
	WriteField(obj reflect.Value, name string, value reflect.Value, owner reflect.Type) error
	// FieldValue returns the settable field name declared by owner.
	FieldValue(obj reflect.Value, name string, owner reflect.Type) (reflect.Value, error)
	// FieldType returns the declared type of a field.
	FieldType(t reflect.Type, name string, owner reflect.Type) (reflect.Type, error)
	// FieldOrNil returns the description of a field, or nil.
	FieldOrNil(t reflect.Type, name string, owner reflect.Type) *FieldInfo
	Dictionary() *FieldDictionary
}

type base struct {
	dict   *FieldDictionary
	unsafe bool
}

// NewPure returns a provider restricted to exported fields.
func NewPure(dict *FieldDictionary) Provider {
	if dict == nil {
		dict = NewFieldDictionary()
	}
	return &base{dict: dict}
}

// NewUnsafe returns a provider reaching unexported fields too.
func NewUnsafe(dict *FieldDictionary) Provider {
	if dict == nil {
		dict = NewFieldDictionary()
	}
	return &base{dict: dict, unsafe: true}
}

func (p *base) Dictionary() *FieldDictionary { return p.dict }

func (p *base) NewInstance(t reflect.Type) (reflect.Value, error) {
	if t == nil {
		return reflect.Value{}, fault.New(fault.ErrInstantiation, "nil type")
	}
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Invalid:
		return reflect.Value{}, fault.New(fault.ErrInstantiation, "%s has no concrete representation", t).
			With("class", t.String())
	}
	return reflect.New(t), nil
}

func (p *base) VisitSerializableFields(obj reflect.Value, visit func(*FieldInfo, reflect.Value) error) error {
	fields, err := p.dict.Fields(obj.Type())
	if err != nil {
		return fault.Wrap(err, fault.ErrObjectAccess)
	}
	if p.unsafe && !obj.CanAddr() {
		tmp := reflect.New(obj.Type()).Elem()
		tmp.Set(obj)
		obj = tmp
	}
	for _, f := range fields {
		if !f.Exported && !p.unsafe {
			continue
		}
		if err := visit(f, p.access(obj.FieldByIndex(f.Index))); err != nil {
			return err
		}
	}
	return nil
}

// access makes fv usable through Interface and Set when the provider may
// bypass export rules.
func (p *base) access(fv reflect.Value) reflect.Value {
	if !p.unsafe || fv.CanInterface() && (fv.CanSet() || !fv.CanAddr()) {
		return fv
	}
	return reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
}

func (p *base) field(obj reflect.Value, name string, owner reflect.Type) (*FieldInfo, reflect.Value, error) {
	f := p.dict.Field(obj.Type(), name, owner)
	if f == nil {
		err := fault.New(fault.ErrObjectAccess, "no field %s in %s", name, obj.Type()).With("class", obj.Type().String())
		return nil, reflect.Value{}, err
	}
	fv := obj.FieldByIndex(f.Index)
	if !fv.CanSet() {
		if !p.unsafe || !fv.CanAddr() {
			err := fault.New(fault.ErrObjectAccess, "field %s is not settable", f).With("class", obj.Type().String())
			return nil, reflect.Value{}, err
		}
		fv = p.access(fv)
	}
	return f, fv, nil
}

func (p *base) FieldValue(obj reflect.Value, name string, owner reflect.Type) (reflect.Value, error) {
	_, fv, err := p.field(obj, name, owner)
	return fv, err
}

func (p *base) WriteField(obj reflect.Value, name string, value reflect.Value, owner reflect.Type) error {
	f, fv, err := p.field(obj, name, owner)
	if err != nil {
		return err
	}
	if !value.IsValid() {
		fv.SetZero()
		return nil
	}
	if !value.Type().AssignableTo(f.Type) {
		return fault.New(fault.ErrTypeMismatch, "%s is not assignable to field %s of type %s", value.Type(), f, f.Type).
			With("class", obj.Type().String())
	}
	fv.Set(value)
	return nil
}

func (p *base) FieldType(t reflect.Type, name string, owner reflect.Type) (reflect.Type, error) {
	f := p.dict.Field(t, name, owner)
	if f == nil {
		return nil, fault.New(fault.ErrObjectAccess, "no field %s in %s", name, t).With("class", t.String())
	}
	return f.Type, nil
}

func (p *base) FieldOrNil(t reflect.Type, name string, owner reflect.Type) *FieldInfo {
	f := p.dict.Field(t, name, owner)
	if f == nil || (!f.Exported && !p.unsafe) {
		return nil
	}
	return f
}
