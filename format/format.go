package format

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/signadot/objgraph/hier"
	"github.com/signadot/objgraph/xmldoc"
	"github.com/signadot/objgraph/yamldoc"
)

type Format int

const (
	XMLFormat Format = iota
	YAMLFormat
	JSONFormat
)

var ErrBadFormat = errors.New("bad format")

func ParseFormat(v string) (Format, error) {
	f, ok := map[string]Format{
		"x":    XMLFormat,
		"xml":  XMLFormat,
		"y":    YAMLFormat,
		"yaml": YAMLFormat,
		"yml":  YAMLFormat,
		"j":    JSONFormat,
		"json": JSONFormat,
	}[v]
	if ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadFormat, v)
}

// FromPath guesses the format of a file from its extension.
func FromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return 0, fmt.Errorf("%w: %q has no extension", ErrBadFormat, path)
	}
	return ParseFormat(ext[1:])
}

func (f Format) String() string {
	d, err := f.MarshalText()
	if err != nil {
		return err.Error()
	}
	return string(d)
}

func (f Format) MarshalText() ([]byte, error) {
	switch f {
	case XMLFormat:
		return []byte("xml"), nil
	case YAMLFormat:
		return []byte("yaml"), nil
	case JSONFormat:
		return []byte("json"), nil
	default:
		return nil, fmt.Errorf("<err: %d is not a format>", f)
	}
}

func (f *Format) UnmarshalText(d []byte) error {
	pf, err := ParseFormat(string(d))
	if err != nil {
		return err
	}
	*f = pf
	return nil
}

func (f Format) IsXML() bool  { return f == XMLFormat }
func (f Format) IsYAML() bool { return f == YAMLFormat }
func (f Format) IsJSON() bool { return f == JSONFormat }

// Suffix returns the file extension for this format (including the dot).
func (f Format) Suffix() string {
	switch f {
	case XMLFormat:
		return ".xml"
	case YAMLFormat:
		return ".yaml"
	case JSONFormat:
		return ".json"
	default:
		return ""
	}
}

// AllFormats returns all supported formats in preference order.
func AllFormats() []Format {
	return []Format{XMLFormat, YAMLFormat, JSONFormat}
}

// Options carries per format driver options.
type Options struct {
	XML  []xmldoc.Option
	YAML []yamldoc.Option
}

// NewWriter returns a writer emitting f to w.
func (f Format) NewWriter(w io.Writer, o ...Options) hier.Writer {
	opts := merge(o)
	switch f {
	case YAMLFormat:
		return yamldoc.NewWriter(w, opts.YAML...)
	case JSONFormat:
		return yamldoc.NewWriter(w, append(opts.YAML, yamldoc.JSON())...)
	default:
		return xmldoc.NewWriter(w, opts.XML...)
	}
}

// NewReader returns a reader over a document of format f.
func (f Format) NewReader(r io.Reader, o ...Options) hier.Reader {
	switch f {
	case YAMLFormat, JSONFormat:
		return yamldoc.NewReader(r)
	default:
		return xmldoc.NewReader(r, merge(o).XML...)
	}
}

func merge(all []Options) Options {
	var res Options
	for _, o := range all {
		res.XML = append(res.XML, o.XML...)
		res.YAML = append(res.YAML, o.YAML...)
	}
	return res
}
