package basic

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/url"
	"reflect"
	"regexp"
	"time"
)

// Bytes writes byte slices in standard base64.
type Bytes struct{}

func (Bytes) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func (Bytes) ToString(v reflect.Value) (string, error) {
	return base64.StdEncoding.EncodeToString(v.Bytes()), nil
}

func (Bytes) FromString(s string, t reflect.Type) (reflect.Value, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return reflect.Value{}, err
	}
	v := zero(t)
	v.SetBytes(b)
	return v, nil
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	urlType      = reflect.TypeOf(url.URL{})
	regexpType   = reflect.TypeOf(&regexp.Regexp{})
	bigIntType   = reflect.TypeOf(big.Int{})
	bigFloatType = reflect.TypeOf(big.Float{})
)

// valueOrPointer reports whether t is base or a pointer to it.
func valueOrPointer(t, base reflect.Type) bool {
	return t == base || t.Kind() == reflect.Pointer && t.Elem() == base
}

// fromPointer returns p, a pointer to a new value, as a value of type t.
func fromPointer(p any, t reflect.Type) reflect.Value {
	v := reflect.ValueOf(p)
	if t.Kind() == reflect.Pointer {
		return v
	}
	return v.Elem()
}

// Time writes times in RFC 3339 with nanoseconds.
type Time struct{}

func (Time) CanConvert(t reflect.Type) bool { return t == timeType }

func (Time) ToString(v reflect.Value) (string, error) {
	return v.Interface().(time.Time).Format(time.RFC3339Nano), nil
}

func (Time) FromString(s string, _ reflect.Type) (reflect.Value, error) {
	tm, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(tm), nil
}

// Duration writes durations like "1h2m3s".
type Duration struct{}

func (Duration) CanConvert(t reflect.Type) bool { return t == durationType }

func (Duration) ToString(v reflect.Value) (string, error) {
	return time.Duration(v.Int()).String(), nil
}

func (Duration) FromString(s string, _ reflect.Type) (reflect.Value, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(d), nil
}

type URL struct{}

func (URL) CanConvert(t reflect.Type) bool { return valueOrPointer(t, urlType) }

func (URL) ToString(v reflect.Value) (string, error) {
	if v.Kind() != reflect.Pointer {
		u := v.Interface().(url.URL)
		return u.String(), nil
	}
	return v.Interface().(*url.URL).String(), nil
}

func (URL) FromString(s string, t reflect.Type) (reflect.Value, error) {
	u, err := url.Parse(s)
	if err != nil {
		return reflect.Value{}, err
	}
	return fromPointer(u, t), nil
}

type Regexp struct{}

func (Regexp) CanConvert(t reflect.Type) bool { return t == regexpType }

func (Regexp) ToString(v reflect.Value) (string, error) {
	return v.Interface().(*regexp.Regexp).String(), nil
}

func (Regexp) FromString(s string, _ reflect.Type) (reflect.Value, error) {
	re, err := regexp.Compile(s)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(re), nil
}

type BigInt struct{}

func (BigInt) CanConvert(t reflect.Type) bool { return valueOrPointer(t, bigIntType) }

func (BigInt) ToString(v reflect.Value) (string, error) {
	if v.Kind() != reflect.Pointer {
		n := v.Interface().(big.Int)
		return n.String(), nil
	}
	return v.Interface().(*big.Int).String(), nil
}

func (BigInt) FromString(s string, t reflect.Type) (reflect.Value, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return reflect.Value{}, fmt.Errorf("invalid integer %q", s)
	}
	return fromPointer(n, t), nil
}

// BigFloat writes the shortest decimal form that reads back to the same
// value at the precision of the value written.
type BigFloat struct{}

func (BigFloat) CanConvert(t reflect.Type) bool { return valueOrPointer(t, bigFloatType) }

func (BigFloat) ToString(v reflect.Value) (string, error) {
	if v.Kind() != reflect.Pointer {
		f := v.Interface().(big.Float)
		return f.Text('g', -1), nil
	}
	return v.Interface().(*big.Float).Text('g', -1), nil
}

func (BigFloat) FromString(s string, t reflect.Type) (reflect.Value, error) {
	prec := uint(64 + 4*len(s))
	f, _, err := big.ParseFloat(s, 10, prec, big.ToNearestEven)
	if err != nil {
		return reflect.Value{}, err
	}
	return fromPointer(f, t), nil
}

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// TextMarshaler converts types implementing encoding.TextMarshaler and, on
// their pointer, encoding.TextUnmarshaler.
type TextMarshaler struct{}

func (TextMarshaler) CanConvert(t reflect.Type) bool {
	if t.Kind() == reflect.Interface || !t.Implements(textMarshalerType) {
		return false
	}
	if t.Kind() == reflect.Pointer {
		return t.Implements(textUnmarshalerType)
	}
	return reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func (TextMarshaler) ToString(v reflect.Value) (string, error) {
	b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (TextMarshaler) FromString(s string, t reflect.Type) (reflect.Value, error) {
	elem := t
	if t.Kind() == reflect.Pointer {
		elem = t.Elem()
	}
	p := reflect.New(elem)
	if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		return reflect.Value{}, err
	}
	if t.Kind() == reflect.Pointer {
		return p, nil
	}
	return p.Elem(), nil
}
