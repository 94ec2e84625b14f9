// Package basic holds the converters for values: scalars, well known
// library types, nil and pointers.
package basic

import (
	"reflect"
	"strconv"

	"github.com/signadot/objgraph/converter"
)

// Register adds the converters of this package to r.
func Register(r *converter.Registry) {
	r.Register(Null{}, converter.PriorityVeryHigh)
	r.Register(Pointer{}, converter.PriorityLow)
	r.RegisterSingleValue(TextMarshaler{}, converter.PriorityLow)
	for _, svc := range []converter.SingleValueConverter{
		String{}, Bool{}, Int{}, Uint{}, Float{}, Complex{},
		Bytes{}, Time{}, URL{}, Regexp{}, BigInt{}, BigFloat{},
	} {
		r.RegisterSingleValue(svc, converter.PriorityNormal)
	}
	r.RegisterSingleValue(Duration{}, converter.PriorityHigh)
}

func zero(t reflect.Type) reflect.Value {
	return reflect.New(t).Elem()
}

type String struct{}

func (String) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.String }

func (String) ToString(v reflect.Value) (string, error) { return v.String(), nil }

func (String) FromString(s string, t reflect.Type) (reflect.Value, error) {
	v := zero(t)
	v.SetString(s)
	return v, nil
}

type Bool struct{}

func (Bool) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.Bool }

func (Bool) ToString(v reflect.Value) (string, error) { return strconv.FormatBool(v.Bool()), nil }

func (Bool) FromString(s string, t reflect.Type) (reflect.Value, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return reflect.Value{}, err
	}
	v := zero(t)
	v.SetBool(b)
	return v, nil
}

type Int struct{}

func (Int) CanConvert(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func (Int) ToString(v reflect.Value) (string, error) { return strconv.FormatInt(v.Int(), 10), nil }

func (Int) FromString(s string, t reflect.Type) (reflect.Value, error) {
	n, err := strconv.ParseInt(s, 10, t.Bits())
	if err != nil {
		return reflect.Value{}, err
	}
	v := zero(t)
	v.SetInt(n)
	return v, nil
}

type Uint struct{}

func (Uint) CanConvert(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func (Uint) ToString(v reflect.Value) (string, error) { return strconv.FormatUint(v.Uint(), 10), nil }

func (Uint) FromString(s string, t reflect.Type) (reflect.Value, error) {
	n, err := strconv.ParseUint(s, 10, t.Bits())
	if err != nil {
		return reflect.Value{}, err
	}
	v := zero(t)
	v.SetUint(n)
	return v, nil
}

type Float struct{}

func (Float) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
}

func (Float) ToString(v reflect.Value) (string, error) {
	return strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits()), nil
}

func (Float) FromString(s string, t reflect.Type) (reflect.Value, error) {
	f, err := strconv.ParseFloat(s, t.Bits())
	if err != nil {
		return reflect.Value{}, err
	}
	v := zero(t)
	v.SetFloat(f)
	return v, nil
}

type Complex struct{}

func (Complex) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Complex64 || t.Kind() == reflect.Complex128
}

func (Complex) ToString(v reflect.Value) (string, error) {
	return strconv.FormatComplex(v.Complex(), 'g', -1, v.Type().Bits()), nil
}

func (Complex) FromString(s string, t reflect.Type) (reflect.Value, error) {
	c, err := strconv.ParseComplex(s, t.Bits())
	if err != nil {
		return reflect.Value{}, err
	}
	v := zero(t)
	v.SetComplex(c)
	return v, nil
}
