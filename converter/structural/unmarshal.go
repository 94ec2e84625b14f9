package structural

import (
	"reflect"

	"github.com/signadot/objgraph/converter"
	"github.com/signadot/objgraph/fault"
	"github.com/signadot/objgraph/hier"
	"github.com/signadot/objgraph/mapper"
	"github.com/signadot/objgraph/reflection"
)

type writtenKey struct {
	owner reflect.Type
	name  string
}

// reading is the state of one struct being read.
type reading struct {
	ctx      converter.UnmarshallingContext
	m        mapper.Mapper
	prov     reflection.Provider
	t        reflect.Type
	ptr      reflect.Value
	written  map[writtenKey]bool
	implicit map[*mapper.ImplicitCollection]reflect.Value
	order    []*mapper.ImplicitCollection
}

func (c *Converter) instance(ctx converter.UnmarshallingContext) (reflect.Value, error) {
	t := ctx.RequiredType()
	cur := ctx.CurrentObject()
	switch {
	case cur.IsValid() && cur.Type() == reflect.PointerTo(t) && !cur.IsNil():
		return cur, nil
	case cur.IsValid() && cur.Type() == t && cur.CanAddr():
		return cur.Addr(), nil
	}
	ptr, err := ctx.Provider().NewInstance(t)
	if err != nil {
		return reflect.Value{}, err
	}
	if def, ok := c.defaults.Get(t); ok {
		ptr.Elem().Set(def)
	}
	return ptr, nil
}

func (c *Converter) Unmarshal(r hier.Reader, ctx converter.UnmarshallingContext) (reflect.Value, error) {
	ptr, err := c.instance(ctx)
	if err != nil {
		return reflect.Value{}, err
	}
	rd := &reading{
		ctx:      ctx,
		m:        ctx.Mapper(),
		prov:     ctx.Provider(),
		t:        ptr.Type().Elem(),
		ptr:      ptr,
		written:  map[writtenKey]bool{},
		implicit: map[*mapper.ImplicitCollection]reflect.Value{},
	}
	if err := rd.attributes(r); err != nil {
		return reflect.Value{}, err
	}
	for r.HasMoreChildren() {
		r.MoveDown()
		err := rd.child(r)
		r.MoveUp()
		if err != nil {
			return reflect.Value{}, err
		}
	}
	for _, ic := range rd.order {
		if err := rd.write(ic.Owner, ic.Field, rd.implicit[ic]); err != nil {
			return reflect.Value{}, err
		}
	}
	return resolve(ptr), nil
}

func resolve(ptr reflect.Value) reflect.Value {
	rr, ok := ptr.Interface().(ReadResolver)
	if !ok {
		return ptr.Elem()
	}
	res := converter.Concrete(reflect.ValueOf(rr.ReadResolve()))
	if res.IsValid() && res.Type() == ptr.Type() {
		// the pointer converter takes the address back
		return res.Elem()
	}
	return res
}

// field finds the field of the struct read for the serialized name. A
// non-nil owner restricts the search to the fields it declares. omitted is
// set for fields excluded from documents.
func (rd *reading) field(name string, owner reflect.Type) (f *reflection.FieldInfo, omitted bool) {
	for _, o := range rd.prov.Dictionary().Owners(rd.t) {
		if owner != nil && o != owner {
			continue
		}
		fname := rd.m.RealMember(o, name)
		fi := rd.prov.FieldOrNil(rd.t, fname, o)
		if fi == nil || rd.m.SerializedMember(o, fname) != name {
			continue
		}
		if !rd.m.ShouldSerializeMember(o, fname) {
			return nil, true
		}
		return fi, false
	}
	return nil, false
}

func (rd *reading) write(owner reflect.Type, name string, v reflect.Value) error {
	key := writtenKey{owner, name}
	if rd.written[key] {
		return fault.New(fault.ErrDuplicateField, "%s.%s written twice", owner, name).
			With("field", owner.String()+"."+name)
	}
	rd.written[key] = true
	return rd.prov.WriteField(rd.ptr.Elem(), name, v, owner)
}

func (rd *reading) attributes(r hier.Reader) error {
	// A system attribute is read into a field only when an attribute
	// field carries its name.
	for _, name := range r.AttributeNames() {
		f, _ := rd.field(name, nil)
		if f == nil {
			continue
		}
		svc := attrConverter(rd.ctx, f)
		if svc == nil {
			continue
		}
		text, _ := r.Attribute(name)
		v, err := svc.FromString(text, f.Type)
		if err != nil {
			return fault.Wrap(err, fault.ErrConversion).With("field", f.String())
		}
		if err := rd.write(f.DeclaringType, f.Name, v); err != nil {
			return err
		}
	}
	return nil
}

func (rd *reading) child(r hier.Reader) error {
	name := r.NodeName()
	var owner reflect.Type
	if a := attrName(rd.m, hier.AttrDefinedIn); a != "" {
		if definedIn, ok := r.Attribute(a); ok {
			var err error
			if owner, err = rd.m.RealClass(definedIn); err != nil {
				return err
			}
		}
	}
	f, omitted := rd.field(name, owner)
	if omitted {
		return nil
	}
	if f != nil && rd.m.ImplicitCollectionForField(f.DeclaringType, f.Name) == nil {
		return rd.direct(r, f)
	}
	if ok, err := rd.item(r, name); ok || err != nil {
		return err
	}
	if rd.m.IsIgnoredElement(name) {
		return nil
	}
	return fault.New(fault.ErrUnknownField, "no field %s in %s", name, rd.t).
		With("field", name).With("class", rd.t.String())
}

func (rd *reading) direct(r hier.Reader, f *reflection.FieldInfo) error {
	if rd.written[writtenKey{f.DeclaringType, f.Name}] {
		return fault.New(fault.ErrDuplicateField, "%s written twice", f).With("field", f.String())
	}
	t := rd.m.DefaultImplementationOf(f.Type)
	if cls, ok := converter.ClassAttr(r, rd.m); ok {
		var err error
		if t, err = rd.m.RealClass(cls); err != nil {
			return err
		}
	}
	v, err := rd.ctx.ConvertAnother(rd.ptr, t, rd.ctx.Lookup().LookupLocal(f.DeclaringType, f.Name))
	if err != nil {
		return fault.Wrap(err, fault.ErrConversion).With("field", f.String())
	}
	if err := rd.write(f.DeclaringType, f.Name, v); err != nil {
		return fault.Wrap(err, fault.ErrTypeMismatch).With("field", f.String())
	}
	return nil
}

// item reads an implicit collection item. ok is false when no implicit
// collection takes the node.
func (rd *reading) item(r hier.Reader, name string) (ok bool, err error) {
	var classType reflect.Type
	cls, hasClass := converter.ClassAttr(r, rd.m)
	if hasClass {
		if classType, err = rd.m.RealClass(cls); err != nil {
			return false, err
		}
	}
	match := classType
	if nt, err := rd.m.RealClass(name); err == nil {
		match = nt
	}
	var ic *mapper.ImplicitCollection
	for _, o := range rd.prov.Dictionary().Owners(rd.t) {
		if ic = rd.m.ImplicitCollectionForItem(o, match, name); ic != nil {
			break
		}
	}
	if ic == nil {
		return false, nil
	}
	t := classType
	if !hasClass {
		t = match
		if ic.ItemName != "" {
			t = rd.m.DefaultImplementationOf(ic.ItemType)
		}
	}
	v, err := rd.ctx.ConvertAnother(rd.ptr, t, nil)
	if err != nil {
		return true, fault.Wrap(err, fault.ErrConversion).With("field", ic.Owner.String()+"."+ic.Field)
	}
	coll, seen := rd.implicit[ic]
	if !seen {
		ft, err := rd.prov.FieldType(rd.t, ic.Field, ic.Owner)
		if err != nil {
			return true, err
		}
		coll = reflect.MakeSlice(ft, 0, 0)
		rd.order = append(rd.order, ic)
	}
	elem := reflect.New(coll.Type().Elem()).Elem()
	if err := converter.Assign(elem, v); err != nil {
		return true, fault.Wrap(err, fault.ErrTypeMismatch).With("field", ic.Owner.String()+"."+ic.Field)
	}
	rd.implicit[ic] = reflect.Append(coll, elem)
	return true, nil
}
