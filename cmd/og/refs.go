package main

import (
	"fmt"

	"github.com/signadot/objgraph/hier"
	"github.com/signadot/objgraph/tree"

	"github.com/scott-cotton/cli"
)

// ref is one reference attribute of a document. Target is nil when the
// reference does not resolve.
type ref struct {
	From   *tree.Node
	Value  string
	Target *tree.Node
}

func refs(cfg *RefsConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Refs.Parse(cc, args)
	if err != nil {
		cfg.Refs.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	dangling := 0
	err = eachDoc(cfg.MainConfig, cc, args, func(name string, n *tree.Node) error {
		for _, r := range collectRefs(encodedTree(n)) {
			if r.Target == nil {
				dangling++
				theLog.Warn("dangling reference", "file", name, "path", r.From.Path().String(), "reference", r.Value)
				continue
			}
			if cfg.Check {
				continue
			}
			if _, err := fmt.Fprintf(cc.Out, "%s -> %s\n", r.From.Path(), r.Target.Path()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if dangling != 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// collectRefs lists the references of doc in document order. Documents
// carrying id attributes are resolved by id, others by path.
func collectRefs(doc *tree.Node) []ref {
	ids := map[string]*tree.Node{}
	doc.Visit(func(n *tree.Node) error {
		if id, ok := n.Attr(hier.AttrID); ok {
			ids[id] = n
		}
		return nil
	})
	var res []ref
	doc.Visit(func(n *tree.Node) error {
		v, ok := n.Attr(hier.AttrReference)
		if !ok {
			return nil
		}
		r := ref{From: n, Value: v}
		if len(ids) != 0 {
			r.Target = ids[v]
		} else {
			r.Target = n.Resolve(hier.ParsePath(v))
		}
		res = append(res, r)
		return nil
	})
	return res
}

// encodedTree copies n with node names as reference paths spell them.
func encodedTree(n *tree.Node) *tree.Node {
	return renamed(n, hier.NewXMLFriendlyNameCoder().EncodeNode)
}

func decodedTree(n *tree.Node) *tree.Node {
	return renamed(n, hier.NewXMLFriendlyNameCoder().DecodeNode)
}

func renamed(n *tree.Node, fn func(string) string) *tree.Node {
	res := n.Clone()
	res.Parent = nil
	res.ParentIndex = 0
	res.Visit(func(c *tree.Node) error {
		c.Name = fn(c.Name)
		return nil
	})
	return res
}
