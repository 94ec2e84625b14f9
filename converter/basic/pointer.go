package basic

import (
	"reflect"

	"github.com/signadot/objgraph/converter"
	"github.com/signadot/objgraph/hier"
	"github.com/signadot/objgraph/mapper"
)

// Null converts nil. It writes an empty node and reads the invalid Value.
type Null struct{}

func (Null) CanConvert(t reflect.Type) bool { return t == mapper.NullType }

func (Null) Marshal(reflect.Value, hier.Writer, converter.MarshallingContext) error { return nil }

func (Null) Unmarshal(hier.Reader, converter.UnmarshallingContext) (reflect.Value, error) {
	return reflect.Value{}, nil
}

// Pointer converts non-nil pointers with the converter of the element type.
// The pointer itself is what references point to.
type Pointer struct{}

func (Pointer) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.Pointer }

func (Pointer) Marshal(v reflect.Value, w hier.Writer, ctx converter.MarshallingContext) error {
	elem := v.Elem()
	c, err := ctx.Lookup().Lookup(elem.Type())
	if err != nil {
		return err
	}
	return c.Marshal(elem, w, ctx)
}

func (Pointer) Unmarshal(r hier.Reader, ctx converter.UnmarshallingContext) (reflect.Value, error) {
	pt := ctx.RequiredType()
	et := pt.Elem()
	c, err := ctx.Lookup().Lookup(et)
	if err != nil {
		return reflect.Value{}, err
	}
	var cur reflect.Value
	if o := ctx.CurrentObject(); o.IsValid() && o.Type() == pt && !o.IsNil() {
		cur = o.Elem()
	}
	res, err := c.Unmarshal(r, &elemContext{UnmarshallingContext: ctx, t: et, cur: cur})
	if err != nil || !res.IsValid() {
		return res, err
	}
	switch {
	case res.Type() == et && res.CanAddr():
		return res.Addr(), nil
	case res.Type().AssignableTo(et):
		p := reflect.New(et)
		p.Elem().Set(res)
		return p, nil
	}
	// substituted by the element converter
	return res, nil
}

type elemContext struct {
	converter.UnmarshallingContext
	t   reflect.Type
	cur reflect.Value
}

func (e *elemContext) RequiredType() reflect.Type   { return e.t }
func (e *elemContext) CurrentObject() reflect.Value { return e.cur }
