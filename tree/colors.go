package tree

import (
	"io"
	"strings"

	"github.com/fatih/color"
)

// ColorAttr selects which part of a rendered node a color applies to.
type ColorAttr int

const (
	NameColor ColorAttr = iota
	AttrNameColor
	AttrValueColor
	ValueColor
	SepColor
	ReferenceColor
)

// Colors maps parts of the rendered view to color functions.
type Colors struct {
	Default func(string, ...any) string
	Map     map[ColorAttr]func(string, ...any) string
}

func NewColors() *Colors {
	colors := &Colors{
		Default: colorDefault,
		Map: map[ColorAttr]func(string, ...any) string{
			NameColor:      color.RGB(128, 168, 196).SprintfFunc(),
			AttrNameColor:  color.RGB(196, 96, 16).SprintfFunc(),
			AttrValueColor: color.RGB(128, 216, 236).SprintfFunc(),
			ValueColor:     color.RGB(8, 196, 16).SprintfFunc(),
			SepColor:       color.RGB(255, 0, 196).SprintfFunc(),
			ReferenceColor: color.RGB(168, 0, 196).SprintfFunc(),
		},
	}
	for k, f := range colors.Map {
		colors.Map[k] = func(v string, _ ...any) string {
			return f(strings.ReplaceAll(v, "%", "%%"))
		}
	}
	return colors
}

// NoColors renders plain text.
func NoColors() *Colors {
	return &Colors{Default: colorDefault}
}

func colorDefault(v string, _ ...any) string { return v }

func (c *Colors) Color(a ColorAttr, s string) string {
	return c.Get(a)(s)
}

func (c *Colors) Get(a ColorAttr) func(string, ...any) string {
	f := c.Map[a]
	if f == nil {
		return c.Default
	}
	return f
}

// Render writes an indented view of n, one node per line:
//
//	list
//	  thing
//	    field: hello
//	  thing @reference=/list/thing
func Render(w io.Writer, n *Node, c *Colors) error {
	if c == nil {
		c = NoColors()
	}
	var b strings.Builder
	render(&b, n, c, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func render(b *strings.Builder, n *Node, c *Colors, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(c.Color(NameColor, n.Name))
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		nameAttr, valAttr := AttrNameColor, AttrValueColor
		if a.Name == "reference" {
			nameAttr, valAttr = ReferenceColor, ReferenceColor
		}
		b.WriteString(c.Color(nameAttr, "@"+a.Name))
		b.WriteString(c.Color(SepColor, "="))
		b.WriteString(c.Color(valAttr, a.Value))
	}
	if n.Value != "" {
		b.WriteString(c.Color(SepColor, ":"))
		b.WriteByte(' ')
		b.WriteString(c.Color(ValueColor, n.Value))
	}
	b.WriteByte('\n')
	for _, ch := range n.Children {
		render(b, ch, c, depth+1)
	}
}
