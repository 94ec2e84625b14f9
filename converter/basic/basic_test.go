package basic

import (
	"math/big"
	"net"
	"net/netip"
	"net/url"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/objgraph/converter"
	"github.com/signadot/objgraph/mapper"
)

type color int

func TestSingleValues(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 30, 0, 500, time.UTC)
	u, _ := url.Parse("https://example.com/a?b=c")
	addr := netip.MustParseAddr("10.0.0.1")

	tests := []struct {
		name string
		svc  converter.SingleValueConverter
		in   any
		text string
	}{
		{"string", String{}, "a <b>", "a <b>"},
		{"bool", Bool{}, true, "true"},
		{"int", Int{}, -42, "-42"},
		{"named int", Int{}, color(3), "3"},
		{"int8", Int{}, int8(-8), "-8"},
		{"uint64", Uint{}, uint64(1 << 63), "9223372036854775808"},
		{"float32", Float{}, float32(0.1), "0.1"},
		{"float64", Float{}, 1e21, "1e+21"},
		{"complex", Complex{}, complex(1, -2), "(1-2i)"},
		{"bytes", Bytes{}, []byte("hi"), "aGk="},
		{"time", Time{}, when, "2024-03-01T12:30:00.0000005Z"},
		{"duration", Duration{}, 90 * time.Second, "1m30s"},
		{"url pointer", URL{}, u, "https://example.com/a?b=c"},
		{"url value", URL{}, *u, "https://example.com/a?b=c"},
		{"big int", BigInt{}, big.NewInt(-12345), "-12345"},
		{"text marshaler", TextMarshaler{}, addr, "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := reflect.ValueOf(tt.in)
			if !tt.svc.CanConvert(v.Type()) {
				t.Fatalf("cannot convert %s", v.Type())
			}
			text, err := tt.svc.ToString(v)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.text, text); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
			back, err := tt.svc.FromString(text, v.Type())
			if err != nil {
				t.Fatal(err)
			}
			if back.Type() != v.Type() {
				t.Fatalf("read %s, want %s", back.Type(), v.Type())
			}
			if diff := cmp.Diff(tt.in, back.Interface(), cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 }), cmp.Comparer(func(a, b netip.Addr) bool { return a == b })); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSpecialValues(t *testing.T) {
	re, err := Regexp{}.FromString(`a+b`, regexpType)
	if err != nil {
		t.Fatal(err)
	}
	if !re.Interface().(*regexp.Regexp).MatchString("aab") {
		t.Errorf("regexp not compiled")
	}
	f, err := BigFloat{}.FromString("3.25", reflect.TypeOf(&big.Float{}))
	if err != nil {
		t.Fatal(err)
	}
	if f.Interface().(*big.Float).Cmp(big.NewFloat(3.25)) != 0 {
		t.Errorf("got %v", f)
	}
	text, _ := BigFloat{}.ToString(f)
	if text != "3.25" {
		t.Errorf("ToString = %q", text)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		svc  converter.SingleValueConverter
		text string
		t    reflect.Type
	}{
		{"bool", Bool{}, "maybe", reflect.TypeOf(false)},
		{"int overflow", Int{}, "300", reflect.TypeOf(int8(0))},
		{"uint negative", Uint{}, "-1", reflect.TypeOf(uint(0))},
		{"float", Float{}, "x", reflect.TypeOf(0.0)},
		{"bytes", Bytes{}, "!!", reflect.TypeOf([]byte{})},
		{"time", Time{}, "yesterday", timeType},
		{"duration", Duration{}, "1 day", durationType},
		{"regexp", Regexp{}, "(", regexpType},
		{"big int", BigInt{}, "1.5", reflect.TypeOf(&big.Int{})},
		{"text", TextMarshaler{}, "not an ip", reflect.TypeOf(netip.Addr{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.svc.FromString(tt.text, tt.t); err == nil {
				t.Errorf("FromString(%q) succeeded", tt.text)
			}
		})
	}
}

func TestRegisterPrecedence(t *testing.T) {
	r := converter.NewRegistry()
	Register(r)
	tests := []struct {
		t    reflect.Type
		want any
	}{
		{durationType, Duration{}},
		{reflect.TypeOf(0), Int{}},
		{timeType, Time{}},
		{reflect.TypeOf(&big.Int{}), BigInt{}},
		{reflect.TypeOf(net.IP{}), Bytes{}},
		{reflect.TypeOf(&netip.Addr{}), TextMarshaler{}},
		{reflect.TypeOf(new(int)), nil},
		{mapper.NullType, nil},
	}
	for _, tt := range tests {
		t.Run(tt.t.String(), func(t *testing.T) {
			c, err := r.Lookup(tt.t)
			if err != nil {
				t.Fatal(err)
			}
			svc, ok := converter.AsSingleValue(c)
			if tt.want == nil {
				if ok {
					t.Errorf("got single value converter %T", svc)
				}
				return
			}
			if !ok || svc != tt.want {
				t.Errorf("got %s, want %T", converter.Name(c), tt.want)
			}
		})
	}
}
