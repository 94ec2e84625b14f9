package main

import (
	"fmt"
	"io"
	"os"

	"github.com/signadot/objgraph/format"
	"github.com/signadot/objgraph/tree"
	"github.com/signadot/objgraph/xmldoc"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color   bool `cli:"name=color desc='render with color'"`
	Compact bool `cli:"name=c aliases=compact desc='write xml without indentation'"`
	Verbose bool `cli:"name=v desc='log debug messages'"`

	X bool `cli:"name=x aliases=xml desc='do i/o in xml'"`
	J bool `cli:"name=j aliases=json desc='do i/o in json'"`
	Y bool `cli:"name=y aliases=yaml desc='do i/o in yaml'"`

	InFormat, OutFormat *format.Format

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) fmtFunc(fps ...**format.Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := format.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		for _, fp := range fps {
			*fp = &f
		}
		return f, nil
	})
}

func (cfg *MainConfig) flagFormat() (format.Format, bool) {
	switch {
	case cfg.X:
		return format.XMLFormat, true
	case cfg.Y:
		return format.YAMLFormat, true
	case cfg.J:
		return format.JSONFormat, true
	}
	return format.XMLFormat, false
}

// inFormat is the format of the document at path: -I, then -x/-j/-y, then
// the file extension, xml otherwise.
func (cfg *MainConfig) inFormat(path string) format.Format {
	if cfg.InFormat != nil {
		return *cfg.InFormat
	}
	if f, ok := cfg.flagFormat(); ok {
		return f
	}
	if path != "-" {
		if f, err := format.FromPath(path); err == nil {
			return f
		}
	}
	return format.XMLFormat
}

func (cfg *MainConfig) outFormat() format.Format {
	if cfg.OutFormat != nil {
		return *cfg.OutFormat
	}
	f, _ := cfg.flagFormat()
	return f
}

func (cfg *MainConfig) writeOpts() format.Options {
	if !cfg.Compact {
		return format.Options{}
	}
	return format.Options{XML: []xmldoc.Option{xmldoc.Compact()}}
}

func (cfg *MainConfig) colors(w io.Writer) *tree.Colors {
	if cfg.Color {
		return tree.NewColors()
	}
	colorsSet := false
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		colorsSet = opt.Value != nil
		break
	}
	if colorsSet {
		return tree.NoColors()
	}
	f, ok := w.(*os.File)
	if !ok {
		return tree.NoColors()
	}
	if isatty.IsTerminal(f.Fd()) {
		return tree.NewColors()
	}
	return tree.NoColors()
}

type ConvertConfig struct {
	*MainConfig

	Convert *cli.Command
}

type ViewConfig struct {
	*MainConfig

	View *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Reverse bool `cli:"name=r desc='reverse the diff'"`
	Text    bool `cli:"name=t desc='show value changes as text diffs'"`

	Diff *cli.Command
}

type GetConfig struct {
	*MainConfig

	Get *cli.Command
}

type RefsConfig struct {
	*MainConfig
	Check bool `cli:"name=check desc='only report references which do not resolve'"`

	Refs *cli.Command
}

type PatchConfig struct {
	*MainConfig
	String bool `cli:"name=s desc='patch arg as string'"`

	Patch *cli.Command
}
