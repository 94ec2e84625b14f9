package yamldoc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/signadot/objgraph/tree"
)

func sample() *tree.Node {
	return tree.New("list").WithChildren(
		tree.New("thing").WithChildren(tree.New("field").WithValue("hello")),
		tree.New("thing").WithAttr("reference", "/list/thing"),
		tree.New("mixed").WithAttr("id", "3").WithValue("text").WithChildren(tree.New("a")),
		tree.New("number").WithValue("42"),
		tree.New("empty"),
	)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "yaml"},
		{name: "json", opts: []Option{JSON()}},
		{name: "yaml indent 4", opts: []Option{Indent(4)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, tt.opts...)
			if err := tree.Write(sample(), w); err != nil {
				t.Fatal(err)
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}
			r := NewReader(bytes.NewReader(buf.Bytes()))
			got, err := tree.Read(r)
			if err != nil {
				t.Fatalf("%v\n%s", err, buf.String())
			}
			if !tree.Equal(sample(), got) {
				t.Errorf("round trip mismatch:\n%s", buf.String())
			}
		})
	}
}

func TestScalarsSurviveRoundTrip(t *testing.T) {
	values := []string{
		".inf", "-.Inf", ".nan", "x\r\ny", "line\n", "\nlead", "true", "no", "null", "~", "3", "0x1F",
		"1e3", "2024-05-01", "", " lead", "trail ", "a: b", "- item", "#hash", "tab\tin", `"quoted"`,
		`back\slash`, "'single'", "é", "[x]", "{y}", "&anchor", "*alias", "!tag", "%dir", "|", ">",
	}
	for _, opts := range [][]Option{nil, {JSON()}} {
		for _, v := range values {
			n := tree.New("s").WithChildren(
				tree.New("v").WithValue(v),
				tree.New("a").WithAttr("x", v).WithValue(v),
			)
			var buf bytes.Buffer
			if err := Encode(&buf, n, opts...); err != nil {
				t.Fatalf("%q: %v", v, err)
			}
			got, err := Decode(buf.Bytes())
			if err != nil {
				t.Fatalf("%q: %v\n%s", v, err, buf.String())
			}
			if !tree.Equal(n, got) {
				t.Errorf("%q did not survive:\n%s", v, buf.String())
			}
		}
	}
}

func TestJSONShape(t *testing.T) {
	var buf bytes.Buffer
	n := tree.New("list").WithChildren(
		tree.New("thing").WithChildren(tree.New("field").WithValue("hello")),
		tree.New("thing").WithAttr("reference", "/list/thing"),
	)
	if err := Encode(&buf, n, JSON()); err != nil {
		t.Fatal(err)
	}
	got := strings.Join(strings.Fields(buf.String()), "")
	want := `{"list":[{"thing":[{"field":"hello"}]},{"thing":{"@reference":"/list/thing"}}]}`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestDecodeHandWritten(t *testing.T) {
	doc := `
point:
  "@class": main.Point
  "#children":
    - x: 1
    - y: 2.5
    - ok: true
`
	n, err := Decode([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := n.Attr("class"); v != "main.Point" {
		t.Errorf("expected class main.Point, got %q", v)
	}
	want := []string{"1", "2.5", "true"}
	for i, c := range n.Children {
		if c.Value != want[i] {
			t.Errorf("child %d: expected %q, got %q", i, want[i], c.Value)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, doc := range []string{
		"a: 1\nb: 2\n",
		"- a\n",
		"a:\n  bogus: 1\n",
	} {
		if _, err := Decode([]byte(doc)); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
	r := NewReader(strings.NewReader("[unterminated"))
	if r.Err() == nil || r.HasMoreChildren() {
		t.Errorf("expected reader error")
	}
}

func TestPatch(t *testing.T) {
	patch := `[
		{"op": "replace", "path": "/list/1/thing/@reference", "value": "../thing"},
		{"op": "add", "path": "/list/-", "value": {"extra": "x"}}
	]`
	got, err := Patch(sample(), []byte(patch))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Children[1].Attr("reference"); v != "../thing" {
		t.Errorf("expected ../thing, got %q", v)
	}
	last := got.Children[len(got.Children)-1]
	if last.Name != "extra" || last.Value != "x" {
		t.Errorf("unexpected appended node %s=%q", last.Name, last.Value)
	}
	if _, err := Patch(sample(), []byte(`[{"op":"remove","path":"/nope"}]`)); err == nil {
		t.Errorf("expected an error for a bad path")
	}
}
