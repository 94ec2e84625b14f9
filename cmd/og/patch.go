package main

import (
	"fmt"
	"io"
	"os"

	"github.com/signadot/objgraph/yamldoc"

	"github.com/scott-cotton/cli"
)

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		cfg.Patch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: patch requires 2 arguments, a json patch, and a file to which to apply it", cli.ErrUsage)
	}
	ops, err := getPatch(cfg, cc, args[0])
	if err != nil {
		return err
	}
	target, err := readDocFile(cfg.MainConfig, cc, args[1])
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[1], err)
	}
	res, err := yamldoc.Patch(target, ops)
	if err != nil {
		return fmt.Errorf("error patching %s: %w", args[1], err)
	}
	if err := writeDoc(cfg.MainConfig, cc.Out, res); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}

func getPatch(cfg *PatchConfig, cc *cli.Context, arg string) ([]byte, error) {
	if cfg.String {
		return []byte(arg), nil
	}
	var r io.Reader = cc.In
	if arg != "-" {
		f, err := os.Open(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		defer f.Close()
		r = f
	}
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", arg, err)
	}
	return d, nil
}
