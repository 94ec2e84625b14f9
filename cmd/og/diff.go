package main

import (
	"fmt"

	"github.com/signadot/objgraph/tree"

	"github.com/scott-cotton/cli"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	a, err := readDocFile(cfg.MainConfig, cc, args[0])
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[0], err)
	}
	b, err := readDocFile(cfg.MainConfig, cc, args[1])
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[1], err)
	}
	if cfg.Reverse {
		a, b = b, a
	}
	changes := tree.Diff(a, b)
	if len(changes) == 0 {
		return nil
	}
	colors := cfg.colors(cc.Out)
	for _, c := range changes {
		if _, err := fmt.Fprintln(cc.Out, changeLine(cfg, colors, c)); err != nil {
			return err
		}
	}
	return cli.ExitCodeErr(1)
}

func changeLine(cfg *DiffConfig, colors *tree.Colors, c tree.Change) string {
	head := colors.Color(tree.NameColor, c.Kind.String()) + " " + colors.Color(tree.ReferenceColor, c.Path)
	textual := cfg.Text && c.Kind == tree.Modify && c.From.Value != c.To.Value
	if !textual {
		if c.Detail == "" {
			return head
		}
		return head + ": " + c.Detail
	}
	dmp := diffpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(c.From.Value, c.To.Value, false))
	return head + ": " + dmp.DiffPrettyText(diffs)
}
