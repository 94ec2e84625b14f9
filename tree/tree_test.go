package tree

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/objgraph/hier"
)

func sample() *Node {
	return New("list").WithChildren(
		New("thing").WithChildren(New("field").WithValue("hello")),
		New("thing").WithAttr("reference", "/list/thing"),
		New("other"),
	)
}

func TestNodePathAndResolve(t *testing.T) {
	root := sample()
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{name: "root", node: root, want: "/list"},
		{name: "first thing", node: root.Children[0], want: "/list/thing"},
		{name: "second thing", node: root.Children[1], want: "/list/thing[2]"},
		{name: "nested", node: root.Children[0].Children[0], want: "/list/thing/field"},
		{name: "other", node: root.Children[2], want: "/list/other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.node.Path()
			if p.String() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, p)
			}
			if got := root.Children[2].Resolve(p); got != tt.node {
				t.Errorf("resolve %s: got %v", p, got)
			}
		})
	}
	second := root.Children[1]
	if got := second.Resolve(hier.ParsePath("../thing/field")); got != root.Children[0].Children[0] {
		t.Errorf("relative resolve failed, got %v", got)
	}
	if got := root.Resolve(hier.ParsePath("/list/thing[3]")); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	root := sample()
	w := NewWriter()
	if err := Write(root, w); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if !Equal(root, w.Root()) {
		t.Errorf("round trip mismatch")
	}
	back, err := Read(NewReader(w.Root()))
	if err != nil {
		t.Fatal(err)
	}
	if back.Hash() != root.Hash() {
		t.Errorf("hash mismatch")
	}
}

func TestWriterErrors(t *testing.T) {
	w := NewWriter()
	w.StartNode("a")
	w.EndNode()
	w.StartNode("b")
	if err := w.Flush(); err == nil {
		t.Errorf("expected second root error")
	}
	w = NewWriter()
	w.StartNode("a")
	if err := w.Close(); err == nil {
		t.Errorf("expected unclosed node error")
	}
}

func TestCloneIsDeep(t *testing.T) {
	root := sample()
	c := root.Clone()
	c.Children[0].Children[0].Value = "changed"
	if root.Children[0].Children[0].Value != "hello" {
		t.Errorf("clone shares children")
	}
	if c.Children[1].Parent != c {
		t.Errorf("clone children not relinked")
	}
	if Equal(root, c) {
		t.Errorf("expected clone to differ after mutation")
	}
}

func TestDiff(t *testing.T) {
	from := sample()
	to := sample()
	to.Children[0].Children[0].Value = "bye"
	to.Children[1].SetAttr("reference", "../thing")
	to.Children = to.Children[:2]
	to.AddChild(New("extra"))
	to.AddChild(New("other"))

	got := []string{}
	for _, c := range Diff(from, to) {
		got = append(got, c.String())
	}
	want := []string{
		`modify /list/thing/field: value "hello" -> "bye"`,
		`modify /list/thing[2]: attribute reference "/list/thing" -> "../thing"`,
		`insert /list/extra`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
	if len(Diff(from, from.Clone())) != 0 {
		t.Errorf("expected no changes for identical trees")
	}
}

func TestRenderPlain(t *testing.T) {
	var b strings.Builder
	if err := Render(&b, sample(), nil); err != nil {
		t.Fatal(err)
	}
	want := "list\n" +
		"  thing\n" +
		"    field: hello\n" +
		"  thing @reference=/list/thing\n" +
		"  other\n"
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("render mismatch (-want +got):\n%s", diff)
	}
}
