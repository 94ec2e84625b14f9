// Package objgraph converts Go object graphs to XML, YAML or JSON documents
// and back, keeping shared and circular references intact and recording the
// concrete type behind interface fields.
//
// # Usage
//
//	g, err := objgraph.New(objgraph.WithMode(core.XPathAbsolute))
//	g.Alias("thing", &Thing{})
//	doc, err := g.ToXML([]any{t, t})
//	// <list>
//	//   <thing>
//	//     <field>hello</field>
//	//   </thing>
//	//   <thing reference="/list/thing"/>
//	// </list>
//	v, err := g.FromXML(doc)
//
// A Graph is configured first and then used, possibly concurrently: every
// Marshal or Unmarshal call runs in its own pass.
//
// # Struct tags
//
// Fields are configured with `xs:"..."` tags as well as through the Graph
// methods:
//
//	type Order struct {
//		ID    int     `xs:"attr"`
//		Note  string  `xs:"omitempty"`
//		Items []*Item `xs:"implicit,item=item"`
//		cache any     `xs:"-"`
//	}
//
// # Related Packages
//
//   - github.com/signadot/objgraph/core - reference modes and passes
//   - github.com/signadot/objgraph/converter - converter interfaces and registry
//   - github.com/signadot/objgraph/mapper - naming of types and fields
//   - github.com/signadot/objgraph/format - document formats
package objgraph
