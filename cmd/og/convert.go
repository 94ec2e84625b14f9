package main

import (
	"github.com/signadot/objgraph/tree"

	"github.com/scott-cotton/cli"
)

func convert(cfg *ConvertConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Convert.Parse(cc, args)
	if err != nil {
		return err
	}
	return eachDoc(cfg.MainConfig, cc, args, func(_ string, n *tree.Node) error {
		return writeDoc(cfg.MainConfig, cc.Out, n)
	})
}
