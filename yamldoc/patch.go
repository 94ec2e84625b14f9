package yamldoc

import (
	"bytes"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/signadot/objgraph/tree"
)

// Patch applies an RFC 6902 JSON patch to the JSON form of doc and returns
// the patched document. Patch paths address the JSON form, for example
// "/list/1/thing/@reference". Attributes come back in key order.
func Patch(doc *tree.Node, patch []byte) (*tree.Node, error) {
	ops, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, fmt.Errorf("yamldoc: decoding patch: %w", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, doc, JSON()); err != nil {
		return nil, err
	}
	out, err := ops.Apply(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("yamldoc: applying patch: %w", err)
	}
	return Decode(out)
}
