package main

import (
	"github.com/signadot/objgraph/tree"

	"github.com/scott-cotton/cli"
)

func view(cfg *ViewConfig, cc *cli.Context, args []string) error {
	args, err := cfg.View.Parse(cc, args)
	if err != nil {
		return err
	}
	colors := cfg.colors(cc.Out)
	first := true
	return eachDoc(cfg.MainConfig, cc, args, func(_ string, n *tree.Node) error {
		if !first {
			if _, err := cc.Out.Write([]byte("---\n")); err != nil {
				return err
			}
		}
		first = false
		return tree.Render(cc.Out, n, colors)
	})
}
