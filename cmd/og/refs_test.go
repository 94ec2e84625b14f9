package main

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/objgraph/format"
)

func TestCollectRefs(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "relative",
			doc:  `<list><thing><field>a</field></thing><thing reference="../thing"/></list>`,
			want: []string{"/list/thing[2] -> /list/thing"},
		},
		{
			name: "absolute with explicit index",
			doc:  `<list><thing/><thing reference="/list[1]/thing[1]"/></list>`,
			want: []string{"/list/thing[2] -> /list/thing"},
		},
		{
			name: "encoded names",
			doc:  `<_005b_005dint><int>1</int></_005b_005dint>`,
		},
		{
			name: "cycle",
			doc:  `<node><name>a</name><next><name>b</name><next reference="../.."/></next></node>`,
			want: []string{"/node/next/next -> /node"},
		},
		{
			name: "ids",
			doc:  `<list id="1"><thing id="2"/><thing reference="2"/></list>`,
			want: []string{"/list/thing[2] -> /list/thing"},
		},
		{
			name: "dangling",
			doc:  `<list><thing reference="../other"/></list>`,
			want: []string{"/list/thing -> <nil>"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := readDoc(strings.NewReader(tt.doc), format.XMLFormat)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, r := range collectRefs(encodedTree(doc)) {
				target := "<nil>"
				if r.Target != nil {
					target = r.Target.Path().String()
				}
				got = append(got, r.From.Path().String()+" -> "+target)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodedTreeResolvesTypeNames(t *testing.T) {
	doc, err := readDoc(strings.NewReader(`<list><_005b_005dstring><string>x</string></_005b_005dstring>`+
		`<_005b_005dstring reference="../_005b_005dstring"/></list>`), format.XMLFormat)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Children[0].Name != "[]string" {
		t.Fatalf("expected decoded names in the document, got %q", doc.Children[0].Name)
	}
	refs := collectRefs(encodedTree(doc))
	if len(refs) != 1 || refs[0].Target == nil {
		t.Fatalf("expected one resolved reference, got %+v", refs)
	}
	back := decodedTree(refs[0].Target)
	if back.Name != "[]string" || len(back.Children) != 1 {
		t.Errorf("expected the decoded slice node, got %+v", back)
	}
}
