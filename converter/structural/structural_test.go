package structural_test

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
	"github.com/signadot/objgraph/yamldoc"
)

type person struct {
	id    int    `xs:"attr"`
	name  string `xs:"name=full-name"`
	email string `xs:"omitempty"`
	cache string `xs:"-"`
}

type fruit struct {
	name string
}

type basket struct {
	owner  string
	fruits []*fruit `xs:"implicit,item=fruit"`
}

type bag struct {
	items []any
}

type base struct {
	id string
}

type derived struct {
	base
	id string
}

type config struct {
	host string
	port int
}

type secret struct {
	plain string
}

func (s secret) WriteReplace() any { return &sealed{text: reverse(s.plain)} }

type sealed struct {
	text string
}

func (s *sealed) ReadResolve() any { return &secret{plain: reverse(s.text)} }

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

type label struct {
	text string
}

type upper struct{}

func (upper) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.String }

func (upper) ToString(v reflect.Value) (string, error) { return strings.ToUpper(v.String()), nil }

func (upper) FromString(s string, t reflect.Type) (reflect.Value, error) {
	return reflect.ValueOf(strings.ToLower(s)).Convert(t), nil
}

type fixture struct {
	env      core.Env
	chain    *mapper.Chain
	reg      *converter.Registry
	defaults *structural.Defaults
}

func newFixture() *fixture {
	f := &fixture{
		chain:    mapper.NewChain(nil),
		reg:      converter.NewRegistry(),
		defaults: &structural.Defaults{},
	}
	for name, sample := range map[string]any{
		"person":  &person{},
		"fruit":   &fruit{},
		"basket":  &basket{},
		"bag":     &bag{},
		"derived": &derived{},
		"base":    base{},
		"config":  &config{},
		"secret":  &secret{},
		"sealed":  &sealed{},
		"label":   &label{},
	} {
		f.chain.Classes.Alias(name, reflect.TypeOf(sample))
	}
	f.reg.Register(structural.New(f.defaults), converter.PriorityVeryLow)
	collection.Register(f.reg)
	basic.Register(f.reg)
	f.env = core.Env{
		Lookup:   f.reg,
		Mapper:   f.chain,
		Provider: reflection.NewUnsafe(nil),
		Coder:    hier.NewXMLFriendlyNameCoder(),
	}
	return f
}

func (f *fixture) write(t *testing.T, v any) string {
	t.Helper()
	doc, err := f.writeMode(core.XPathRelative, v)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func (f *fixture) writeMode(mode core.Mode, v any) (string, error) {
	var b bytes.Buffer
	w := xmldoc.NewWriter(&b, xmldoc.Compact())
	if err := core.NewStrategy(mode).Marshal(w, reflect.ValueOf(v), f.env); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (f *fixture) read(doc string) (any, error) {
	return f.readFrom(core.XPathRelative, xmldoc.NewReader(strings.NewReader(doc)))
}

func (f *fixture) readFrom(mode core.Mode, r hier.Reader) (any, error) {
	v, err := core.NewStrategy(mode).Unmarshal(reflect.Value{}, r, f.env)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

var allowed = cmp.AllowUnexported(person{}, fruit{}, basket{}, bag{}, base{}, derived{}, config{}, secret{}, label{})

func TestDocuments(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*fixture)
		in     any
		doc    string
		expect any
	}{
		{
			name:   "attributes and tags",
			in:     &person{id: 7, name: "Ann", cache: "dropped"},
			doc:    `<person id="7"><full-name>Ann</full-name></person>`,
			expect: &person{id: 7, name: "Ann"},
		},
		{
			name: "named implicit collection",
			in:   &basket{owner: "bob", fruits: []*fruit{{name: "apple"}, {name: "pear"}}},
			doc: `<basket><owner>bob</owner><fruit><name>apple</name></fruit>` +
				`<fruit><name>pear</name></fruit></basket>`,
		},
		{
			name: "implicit collection of mixed items",
			setup: func(f *fixture) {
				f.chain.Implicit.Add(&mapper.ImplicitCollection{
					Owner:    reflect.TypeOf(bag{}),
					Field:    "items",
					ItemType: reflect.TypeOf((*any)(nil)).Elem(),
				})
			},
			in:  &bag{items: []any{"a", 1, "b"}},
			doc: `<bag><string>a</string><int>1</int><string>b</string></bag>`,
		},
		{
			name: "shadowed field",
			in:   &derived{base: base{id: "inner"}, id: "outer"},
			doc:  `<derived><id>outer</id><id defined-in="base">inner</id></derived>`,
		},
		{
			name: "default instance",
			setup: func(f *fixture) {
				if err := f.defaults.Set(config{port: 8080}); err != nil {
					panic(err)
				}
			},
			in:  &config{host: "example.com", port: 8080},
			doc: `<config><host>example.com</host></config>`,
		},
		{
			name: "value differing from default",
			setup: func(f *fixture) {
				if err := f.defaults.Set(&config{port: 8080}); err != nil {
					panic(err)
				}
			},
			in:  &config{port: 9090},
			doc: `<config><port>9090</port></config>`,
		},
		{
			name: "write replace and read resolve",
			in:   &secret{plain: "abc"},
			doc:  `<secret resolves-to="sealed"><text>cba</text></secret>`,
		},
		{
			name: "field alias",
			setup: func(f *fixture) {
				f.chain.Fields.AliasField(reflect.TypeOf(config{}), "host", "server")
			},
			in:  &config{host: "a", port: 1},
			doc: `<config><server>a</server><port>1</port></config>`,
		},
		{
			name: "omitted field",
			setup: func(f *fixture) {
				f.chain.Fields.OmitField(reflect.TypeOf(config{}), "port")
			},
			in:     &config{host: "a", port: 1},
			doc:    `<config><host>a</host></config>`,
			expect: &config{host: "a"},
		},
		{
			name: "attribute by type",
			setup: func(f *fixture) {
				f.chain.Attributes.UseAttributeForType(reflect.TypeOf(0))
			},
			in:  &config{host: "a", port: 1},
			doc: `<config port="1"><host>a</host></config>`,
		},
		{
			name: "local converter",
			setup: func(f *fixture) {
				f.reg.RegisterLocal(reflect.TypeOf(label{}), "text", converter.SingleValue(upper{}))
			},
			in:  &label{text: "quiet"},
			doc: `<label><text>QUIET</text></label>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			doc := f.write(t, tt.in)
			if diff := cmp.Diff(tt.doc, doc); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
			got, err := f.read(doc)
			if err != nil {
				t.Fatal(err)
			}
			expect := tt.expect
			if expect == nil {
				expect = tt.in
			}
			if diff := cmp.Diff(expect, got, allowed); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fixture)
		doc   string
		err   error
	}{
		{"unknown element", nil, `<config><bogus/></config>`, fault.ErrUnknownField},
		{"duplicate field", nil, `<config><host>a</host><host>b</host></config>`, fault.ErrDuplicateField},
		{"duplicate attribute and element", func(f *fixture) {
			f.chain.Attributes.UseAttributeForField(reflect.TypeOf(config{}), "port")
		}, `<config port="1"><port>2</port></config>`, fault.ErrDuplicateField},
		{"unknown class", nil, `<config><host class="nowhere">a</host></config>`, fault.ErrCannotResolveClass},
		{"bad value", nil, `<config><port>eighty</port></config>`, fault.ErrConversion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			_, err := f.read(tt.doc)
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestIgnoredElements(t *testing.T) {
	f := newFixture()
	if err := f.chain.Ignored.Ignore("legacy-.*"); err != nil {
		t.Fatal(err)
	}
	got, err := f.read(`<config><legacy-port>1</legacy-port><host>a</host></config>`)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&config{host: "a"}, got, allowed); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownAttributesAreSkipped(t *testing.T) {
	f := newFixture()
	got, err := f.read(`<config note="x"><host>a</host></config>`)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&config{host: "a"}, got, allowed); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSharedItemsInImplicitCollection(t *testing.T) {
	f := newFixture()
	apple := &fruit{name: "apple"}
	doc := f.write(t, &basket{owner: "ann", fruits: []*fruit{apple, apple}})
	want := `<basket><owner>ann</owner><fruit><name>apple</name></fruit><fruit reference="../fruit"/></basket>`
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	got, err := f.read(doc)
	if err != nil {
		t.Fatal(err)
	}
	b := got.(*basket)
	if len(b.fruits) != 2 || b.fruits[0] != b.fruits[1] {
		t.Errorf("expected one shared fruit, got %+v", b.fruits)
	}
}

func TestDefaultsRejectNonStruct(t *testing.T) {
	var d structural.Defaults
	if err := d.Set(3); !errors.Is(err, fault.ErrInstantiation) {
		t.Errorf("expected an instantiation error, got %v", err)
	}
}

func TestAttributeFieldsNamedLikeSystemAttributes(t *testing.T) {
	tests := []struct {
		name  string
		mode  core.Mode
		setup func(*fixture)
		in    any
		doc   string
		err   error
	}{
		{
			name: "id outside id mode",
			mode: core.XPathAbsolute,
			in:   &person{id: 7, name: "Ann"},
			doc:  `<person id="7"><full-name>Ann</full-name></person>`,
		},
		{
			name: "id in id mode",
			mode: core.IDReferences,
			in:   &person{id: 7, name: "Ann"},
			err:  fault.ErrConversion,
		},
		{
			name: "id in id mode after aliasing",
			mode: core.IDReferences,
			setup: func(f *fixture) {
				f.chain.SystemAttrs.Alias(hier.AttrID, "oid")
			},
			in:  &person{id: 7, name: "Ann"},
			doc: `<person oid="1" id="7"><full-name>Ann</full-name></person>`,
		},
		{
			name: "class in any mode",
			mode: core.NoReferences,
			setup: func(f *fixture) {
				f.chain.Fields.AliasField(reflect.TypeOf(fruit{}), "name", "class")
				f.chain.Attributes.UseAttributeForField(reflect.TypeOf(fruit{}), "name")
			},
			in:  &fruit{name: "apple"},
			err: fault.ErrConversion,
		},
		{
			name: "reference in xpath mode",
			mode: core.XPathRelative,
			setup: func(f *fixture) {
				f.chain.Fields.AliasField(reflect.TypeOf(fruit{}), "name", "reference")
				f.chain.Attributes.UseAttributeForField(reflect.TypeOf(fruit{}), "name")
			},
			in:  &fruit{name: "apple"},
			err: fault.ErrConversion,
		},
		{
			name: "reference without references",
			mode: core.NoReferences,
			setup: func(f *fixture) {
				f.chain.Fields.AliasField(reflect.TypeOf(fruit{}), "name", "reference")
				f.chain.Attributes.UseAttributeForField(reflect.TypeOf(fruit{}), "name")
			},
			in:  &fruit{name: "apple"},
			doc: `<fruit reference="apple"/>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			doc, err := f.writeMode(tt.mode, tt.in)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Errorf("expected %v, got %v (%s)", tt.err, err, doc)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.doc, doc); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
			got, err := f.readFrom(tt.mode, xmldoc.NewReader(strings.NewReader(doc)))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.in, got, allowed); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAttributesAfterChildren(t *testing.T) {
	f := newFixture()
	f.chain.Attributes.UseAttributeForField(reflect.TypeOf(config{}), "port")
	doc := `{"config": {"#children": [{"host": "a"}], "@port": "2"}}`
	got, err := f.readFrom(core.XPathRelative, yamldoc.NewReader(strings.NewReader(doc)))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&config{host: "a", port: 2}, got, allowed); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
