package format

import (
	"bytes"
	"errors"
	"testing"

	"github.com/signadot/objgraph/tree"
	"github.com/signadot/objgraph/xmldoc"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{in: "xml", want: XMLFormat},
		{in: "y", want: YAMLFormat},
		{in: "yml", want: YAMLFormat},
		{in: "json", want: JSONFormat},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
	if _, err := ParseFormat("toml"); !errors.Is(err, ErrBadFormat) {
		t.Errorf("expected ErrBadFormat, got %v", err)
	}
	if f, err := FromPath("dir/doc.json"); err != nil || f != JSONFormat {
		t.Errorf("expected json, got %v %v", f, err)
	}
	var f Format
	if err := f.UnmarshalText([]byte("yaml")); err != nil || f != YAMLFormat {
		t.Errorf("expected yaml, got %v %v", f, err)
	}
}

func TestEveryFormatRoundTrips(t *testing.T) {
	doc := tree.New("list").WithChildren(
		tree.New("thing").WithChildren(tree.New("field").WithValue("hello")),
		tree.New("thing").WithAttr("reference", "/list/thing"),
	)
	for _, f := range AllFormats() {
		t.Run(f.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w := f.NewWriter(&buf, Options{XML: []xmldoc.Option{xmldoc.Compact()}})
			if err := tree.Write(doc, w); err != nil {
				t.Fatal(err)
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}
			got, err := tree.Read(f.NewReader(&buf))
			if err != nil {
				t.Fatal(err)
			}
			if !tree.Equal(doc, got) {
				t.Errorf("round trip mismatch:\n%s", buf.String())
			}
		})
	}
}
