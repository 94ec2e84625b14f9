package main

import (
	"fmt"

	"github.com/signadot/objgraph/hier"
	"github.com/signadot/objgraph/tree"

	"github.com/scott-cotton/cli"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: get requires one argument, a node path", cli.ErrUsage)
	}
	path := hier.ParsePath(args[0])
	if !path.IsAbsolute() {
		return fmt.Errorf("%w: %q is not an absolute path", cli.ErrUsage, args[0])
	}
	return eachDoc(cfg.MainConfig, cc, args[1:], func(_ string, n *tree.Node) error {
		found := encodedTree(n).Resolve(path)
		if found == nil {
			return fmt.Errorf("nothing at %s", path)
		}
		return writeDoc(cfg.MainConfig, cc.Out, decodedTree(found))
	})
}
