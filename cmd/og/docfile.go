package main

import (
	"fmt"
	"io"
	"os"

	"github.com/signadot/objgraph/format"
	"github.com/signadot/objgraph/tree"

	"github.com/scott-cotton/cli"
)

func readDocFile(cfg *MainConfig, cc *cli.Context, path string) (*tree.Node, error) {
	var r io.Reader
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		r = cc.In
	}
	f := cfg.inFormat(path)
	theLog.Debug("reading document", "path", path, "format", f)
	return readDoc(r, f)
}

func readDoc(r io.Reader, f format.Format) (*tree.Node, error) {
	hr := f.NewReader(r)
	n, err := tree.Read(hr)
	if err != nil {
		return nil, err
	}
	if err := hr.Close(); err != nil {
		return nil, err
	}
	return n, nil
}

func writeDoc(cfg *MainConfig, w io.Writer, n *tree.Node) error {
	f := cfg.outFormat()
	hw := f.NewWriter(w, cfg.writeOpts())
	if err := tree.Write(n, hw); err != nil {
		return err
	}
	if err := hw.Close(); err != nil {
		return err
	}
	if f.IsXML() {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

// eachDoc calls fn with the documents named by args, or standard input when
// there are none.
func eachDoc(cfg *MainConfig, cc *cli.Context, args []string, fn func(string, *tree.Node) error) error {
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, arg := range args {
		n, err := readDocFile(cfg, cc, arg)
		if err != nil {
			return fmt.Errorf("error decoding %s: %w", arg, err)
		}
		if err := fn(arg, n); err != nil {
			return fmt.Errorf("error processing %s: %w", arg, err)
		}
	}
	return nil
}
