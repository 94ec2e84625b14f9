// Package format names the document formats objgraph reads and writes and
// builds hierarchical stream readers and writers for them.
//
// # Usage
//
//	f, err := format.ParseFormat("yaml")
//	w := f.NewWriter(os.Stdout)
//	r := f.NewReader(os.Stdin)
//
// # Related Packages
//
//   - github.com/signadot/objgraph/xmldoc - XML streams
//   - github.com/signadot/objgraph/yamldoc - YAML and JSON streams
package format
