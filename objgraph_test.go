package objgraph_test

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/objgraph"
	"github.com/signadot/objgraph/core"
	"github.com/signadot/objgraph/fault"
	"github.com/signadot/objgraph/format"
	"github.com/signadot/objgraph/xmldoc"
)

type Thing struct {
	Field string
}

type Link struct {
	Name string
	Next *Link
}

type Shape interface {
	Area() int
}

type Square struct {
	Side int `xs:"attr"`
}

func (s *Square) Area() int { return s.Side * s.Side }

type Order struct {
	ID      int       `xs:"attr"`
	Note    string    `xs:"omitempty"`
	Items   []*Item   `xs:"implicit,item=item"`
	Tags    map[string]int
	Shape   Shape
	Placed  time.Time
	Timeout time.Duration
	scratch string
}

type Item struct {
	SKU   string `xs:"attr"`
	Count int
}

type Keyed struct {
	ID   int `xs:"attr"`
	Name string
}

type Leaf struct{ X int }

type Left struct{ Leaf }

type Right struct{ Leaf }

type Diamond struct {
	Left
	Right
}

func newGraph(t *testing.T, opts ...objgraph.Option) *objgraph.Graph {
	t.Helper()
	g, err := objgraph.New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	g.Alias("thing", &Thing{})
	g.Alias("link", &Link{})
	g.Alias("order", &Order{})
	g.Alias("item", &Item{})
	g.Alias("square", &Square{})
	return g
}

func ExampleGraph_ToXML() {
	g := objgraph.MustNew(objgraph.WithMode(core.XPathAbsolute))
	g.Alias("thing", &Thing{})
	t := &Thing{Field: "hello"}
	doc, err := g.ToXML([]any{t, t})
	if err != nil {
		panic(err)
	}
	fmt.Println(doc)
	// Output:
	// <list>
	//   <thing>
	//     <Field>hello</Field>
	//   </thing>
	//   <thing reference="/list/thing"/>
	// </list>
}

func TestEncodeCompact(t *testing.T) {
	g := newGraph(t, objgraph.WithMode(core.XPathAbsolute))
	p := &Thing{Field: "hello"}
	var b bytes.Buffer
	opts := format.Options{XML: []xmldoc.Option{xmldoc.Compact()}}
	if err := g.Encode(&b, format.XMLFormat, []any{p, p}, opts); err != nil {
		t.Fatal(err)
	}
	want := `<list><thing><Field>hello</Field></thing><thing reference="/list/thing"/></list>`
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripAllFormats(t *testing.T) {
	for _, f := range format.AllFormats() {
		for _, mode := range []core.Mode{core.XPathRelative, core.XPathAbsolute, core.IDReferences} {
			t.Run(f.String()+"/"+mode.String(), func(t *testing.T) {
				g := newGraph(t, objgraph.WithMode(mode))
				if err := g.AddDefaultImplementation(reflect.TypeFor[Shape](), &Square{}); err != nil {
					t.Fatal(err)
				}

				p := &Thing{Field: "hello"}
				list := roundTrip(t, g, f, []any{p, p}).([]any)
				if list[0].(*Thing) != list[1].(*Thing) {
					t.Errorf("expected a shared item")
				}

				a := &Link{Name: "a"}
				a.Next = &Link{Name: "b", Next: a}
				got := roundTrip(t, g, f, a).(*Link)
				if got.Next.Next != got || got.Next.Name != "b" {
					t.Errorf("expected a two node cycle, got %+v", got)
				}

				in := &Order{
					ID:      3,
					Items:   []*Item{{SKU: "a-1", Count: 2}, {SKU: "b-2", Count: 1}},
					Tags:    map[string]int{"rush": 1},
					Shape:   &Square{Side: 4},
					Placed:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
					Timeout: 90 * time.Second,
				}
				out := roundTrip(t, g, f, in)
				if diff := cmp.Diff(in, out, cmp.AllowUnexported(Order{})); diff != "" {
					t.Errorf("mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestEncodingIsIdempotent(t *testing.T) {
	a := &Link{Name: "a"}
	a.Next = &Link{Name: "b", Next: a}
	p := &Thing{Field: "x < y"}
	values := map[string]any{
		"shared": []any{p, p, &Thing{}},
		"cycle":  a,
		"order": &Order{
			ID:     3,
			Note:   "rush",
			Items:  []*Item{{SKU: "a-1", Count: 2}},
			Tags:   map[string]int{"rush": 1},
			Shape:  &Square{Side: 4},
			Placed: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	for _, f := range format.AllFormats() {
		for _, mode := range []core.Mode{core.XPathRelative, core.SingleNodeXPathAbsolute, core.IDReferences} {
			for name, v := range values {
				t.Run(f.String()+"/"+mode.String()+"/"+name, func(t *testing.T) {
					g := newGraph(t, objgraph.WithMode(mode))
					var first bytes.Buffer
					if err := g.Encode(&first, f, v); err != nil {
						t.Fatal(err)
					}
					got, err := g.Decode(bytes.NewReader(first.Bytes()), f, nil)
					if err != nil {
						t.Fatalf("%v in\n%s", err, first.String())
					}
					var second bytes.Buffer
					if err := g.Encode(&second, f, got); err != nil {
						t.Fatal(err)
					}
					if diff := cmp.Diff(first.String(), second.String()); diff != "" {
						t.Errorf("mismatch (-want +got):\n%s", diff)
					}
				})
			}
		}
	}
}

func TestAttributeNamedID(t *testing.T) {
	tests := []struct {
		mode core.Mode
		doc  string
		err  error
	}{
		{mode: core.XPathRelative, doc: `<keyed id="7"><Name>n</Name></keyed>`},
		{mode: core.NoReferences, doc: `<keyed id="7"><Name>n</Name></keyed>`},
		{mode: core.IDReferences, err: fault.ErrConversion},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			g := newGraph(t, objgraph.WithMode(tt.mode))
			g.Alias("keyed", &Keyed{})
			if err := g.AliasField(&Keyed{}, "ID", "id"); err != nil {
				t.Fatal(err)
			}
			in := &Keyed{ID: 7, Name: "n"}
			var b bytes.Buffer
			opts := format.Options{XML: []xmldoc.Option{xmldoc.Compact()}}
			err := g.Encode(&b, format.XMLFormat, in, opts)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Errorf("expected %v, got %v (%s)", tt.err, err, b.String())
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.doc, b.String()); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
			got, err := g.Decode(&b, format.XMLFormat, nil)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(in, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepeatedEmbeddingFails(t *testing.T) {
	g := newGraph(t)
	g.Alias("diamond", &Diamond{})
	_, err := g.ToXML(&Diamond{Left{Leaf{1}}, Right{Leaf{2}}})
	if !errors.Is(err, fault.ErrObjectAccess) {
		t.Errorf("expected an object access error, got %v", err)
	}
}

func TestXMLRejectsUnrepresentableText(t *testing.T) {
	g := newGraph(t)
	_, err := g.ToXML(&Thing{Field: "a\x00b\ufffec"})
	if !errors.Is(err, fault.ErrStream) {
		t.Errorf("expected a stream error, got %v", err)
	}
}

func shared() []any {
	p := &Thing{Field: "x"}
	return []any{p, p}
}

func roundTrip(t *testing.T, g *objgraph.Graph, f format.Format, v any) any {
	t.Helper()
	var b bytes.Buffer
	if err := g.Encode(&b, f, v); err != nil {
		t.Fatal(err)
	}
	got, err := g.Decode(&b, f, nil)
	if err != nil {
		t.Fatalf("%v in\n%s", err, b.String())
	}
	return got
}

func TestDecodeAs(t *testing.T) {
	g := newGraph(t)
	doc := `<thing><Field>x</Field></thing>`

	p, err := objgraph.DecodeAs[*Thing](g, strings.NewReader(doc), format.XMLFormat)
	if err != nil {
		t.Fatal(err)
	}
	if p.Field != "x" {
		t.Errorf("expected x, got %q", p.Field)
	}
	v, err := objgraph.DecodeAs[Thing](g, strings.NewReader(doc), format.XMLFormat)
	if err != nil {
		t.Fatal(err)
	}
	if v.Field != "x" {
		t.Errorf("expected x, got %q", v.Field)
	}
	_, err = objgraph.DecodeAs[*Link](g, strings.NewReader(doc), format.XMLFormat)
	if !errors.Is(err, fault.ErrTypeMismatch) {
		t.Errorf("expected a type mismatch, got %v", err)
	}
}

func TestUnmarshalIntoRoot(t *testing.T) {
	g := newGraph(t)
	root := &Thing{Field: "old"}
	got, err := g.Decode(strings.NewReader(`<thing><Field>new</Field></thing>`), format.XMLFormat, root)
	if err != nil {
		t.Fatal(err)
	}
	if got != any(root) {
		t.Errorf("expected the root back, got %#v", got)
	}
	if root.Field != "new" {
		t.Errorf("expected the root to be populated, got %q", root.Field)
	}
}

func TestConfigErrors(t *testing.T) {
	g := newGraph(t)
	tests := []struct {
		name string
		run  func() error
		err  error
	}{
		{"alias unknown field", func() error { return g.AliasField(&Thing{}, "Missing", "m") }, fault.ErrObjectAccess},
		{"alias field of non struct", func() error { return g.AliasField(3, "X", "x") }, fault.ErrObjectAccess},
		{"implicit non slice", func() error { return g.AddImplicitCollection(&Thing{}, "Field", "", nil) }, fault.ErrTypeMismatch},
		{"default of non struct", func() error { return g.SetDefault("x") }, fault.ErrInstantiation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestBadFieldFilter(t *testing.T) {
	if _, err := objgraph.New(objgraph.WithFieldFilter("owner +")); err == nil {
		t.Error("expected a compile error")
	}
}

func TestConfiguredDocuments(t *testing.T) {
	tests := []struct {
		name  string
		opts  []objgraph.Option
		setup func(*testing.T, *objgraph.Graph)
		in    any
		doc   string
	}{
		{
			name: "field filter",
			opts: []objgraph.Option{objgraph.WithFieldFilter(`exported && class != "link"`)},
			in:   &Link{Name: "a", Next: &Link{Name: "b"}},
			doc:  `<link><Name>a</Name></link>`,
		},
		{
			name: "default instance",
			setup: func(t *testing.T, g *objgraph.Graph) {
				if err := g.SetDefault(Item{Count: 1}); err != nil {
					t.Fatal(err)
				}
			},
			in:  &Item{SKU: "a", Count: 1},
			doc: `<item SKU="a"/>`,
		},
		{
			name: "field alias and attribute",
			setup: func(t *testing.T, g *objgraph.Graph) {
				if err := g.AliasField(&Link{}, "Name", "n"); err != nil {
					t.Fatal(err)
				}
				if err := g.UseAttributeFor(&Link{}, "Name"); err != nil {
					t.Fatal(err)
				}
			},
			in:  &Link{Name: "a"},
			doc: `<link n="a"/>`,
		},
		{
			name: "omitted field",
			setup: func(t *testing.T, g *objgraph.Graph) {
				if err := g.OmitField(&Item{}, "Count"); err != nil {
					t.Fatal(err)
				}
			},
			in:  &Item{SKU: "a", Count: 9},
			doc: `<item SKU="a"/>`,
		},
		{
			name: "system attribute alias",
			setup: func(t *testing.T, g *objgraph.Graph) {
				g.AliasSystemAttribute("reference", "ref")
			},
			in:  shared(),
			doc: `<list><thing><Field>x</Field></thing><thing ref="../thing"/></list>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGraph(t, tt.opts...)
			if tt.setup != nil {
				tt.setup(t, g)
			}
			var b bytes.Buffer
			opts := format.Options{XML: []xmldoc.Option{xmldoc.Compact()}}
			if err := g.Encode(&b, format.XMLFormat, tt.in, opts); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.doc, b.String()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
