package collection_test

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/objgraph/converter"
	"github.com/signadot/objgraph/converter/basic"
	"github.com/signadot/objgraph/converter/collection"
	"github.com/signadot/objgraph/converter/structural"
	"github.com/signadot/objgraph/core"
	"github.com/signadot/objgraph/fault"
	"github.com/signadot/objgraph/hier"
	"github.com/signadot/objgraph/mapper"
	"github.com/signadot/objgraph/reflection"
	"github.com/signadot/objgraph/xmldoc"
)

func newEnv() core.Env {
	reg := converter.NewRegistry()
	reg.Register(structural.New(nil), converter.PriorityVeryLow)
	collection.Register(reg)
	basic.Register(reg)
	return core.Env{
		Lookup:   reg,
		Mapper:   mapper.NewChain(nil),
		Provider: reflection.NewUnsafe(nil),
		Coder:    hier.NewXMLFriendlyNameCoder(),
	}
}

func write(t *testing.T, env core.Env, v any) string {
	t.Helper()
	var b bytes.Buffer
	w := xmldoc.NewWriter(&b, xmldoc.Compact())
	if err := core.NewStrategy(core.XPathRelative).Marshal(w, reflect.ValueOf(v), env); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

func read(env core.Env, doc string) (any, error) {
	r := xmldoc.NewReader(strings.NewReader(doc))
	v, err := core.NewStrategy(core.XPathRelative).Unmarshal(reflect.Value{}, r, env)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

func TestDocuments(t *testing.T) {
	tests := []struct {
		name string
		in   any
		doc  string
	}{
		{
			name: "list with nil",
			in:   []any{"a", nil, 2},
			doc:  `<list><string>a</string><null/><int>2</int></list>`,
		},
		{
			name: "typed slice",
			in:   []int{3, 1},
			doc:  `<_005b_005dint><int>3</int><int>1</int></_005b_005dint>`,
		},
		{
			name: "array",
			in:   [2]bool{true, false},
			doc:  `<_005b2_005dbool><bool>true</bool><bool>false</bool></_005b2_005dbool>`,
		},
		{
			name: "map in key order",
			in:   map[string]any{"b": 2, "a": "x"},
			doc: `<map><entry><string>a</string><string>x</string></entry>` +
				`<entry><string>b</string><int>2</int></entry></map>`,
		},
		{
			name: "int keys",
			in:   map[int]string{10: "ten", -1: "minus", 2: "two"},
			doc: `<map_005bint_005dstring><entry><int>-1</int><string>minus</string></entry>` +
				`<entry><int>2</int><string>two</string></entry>` +
				`<entry><int>10</int><string>ten</string></entry></map_005bint_005dstring>`,
		},
		{
			name: "nested",
			in:   map[string][]string{"k": {"v"}},
			doc:  `<map_005bstring_005d_005b_005dstring><entry><string>k</string>` +
				`<_005b_005dstring><string>v</string></_005b_005dstring></entry></map_005bstring_005d_005b_005dstring>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv()
			doc := write(t, env, tt.in)
			if diff := cmp.Diff(tt.doc, doc); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
			got, err := read(env, doc)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.in, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMapContainingItself(t *testing.T) {
	env := newEnv()
	m := map[string]any{}
	m["self"] = m
	doc := write(t, env, m)
	want := `<map><entry><string>self</string><map reference="../.."/></entry></map>`
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	got, err := read(env, doc)
	if err != nil {
		t.Fatal(err)
	}
	gm := got.(map[string]any)
	if reflect.ValueOf(gm["self"]).Pointer() != reflect.ValueOf(gm).Pointer() {
		t.Errorf("expected the map to contain itself")
	}
}

func TestSharedSlice(t *testing.T) {
	env := newEnv()
	s := []string{"x", "y"}
	doc := write(t, env, []any{s, s})
	want := `<list><_005b_005dstring><string>x</string><string>y</string></_005b_005dstring>` +
		`<_005b_005dstring reference="../_005b_005dstring"/></list>`
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	got, err := read(env, doc)
	if err != nil {
		t.Fatal(err)
	}
	list := got.([]any)
	a, b := list[0].([]string), list[1].([]string)
	if &a[0] != &b[0] {
		t.Errorf("expected one shared slice")
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		err  error
	}{
		{"array overflow", `<_005b1_005dint><int>1</int><int>2</int></_005b1_005dint>`, fault.ErrConversion},
		{"incomplete entry", `<map><entry><string>a</string></entry></map>`, fault.ErrConversion},
		{"item type mismatch", `<_005b_005dint><string>a</string></_005b_005dint>`, fault.ErrTypeMismatch},
		{"unknown item", `<list><nothing-known/></list>`, fault.ErrCannotResolveClass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := read(newEnv(), tt.doc)
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}
