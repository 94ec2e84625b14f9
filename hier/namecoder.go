package hier

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// NameCoder translates between the names the engine uses for nodes and
// attributes (Go type strings, field names) and the names a concrete
// format can carry. Encoding must be reversible and collision free.
type NameCoder interface {
	EncodeNode(name string) string
	EncodeAttribute(name string) string
	DecodeNode(name string) string
	DecodeAttribute(name string) string
}

// NoNameCoder passes names through unchanged.
type NoNameCoder struct{}

func (NoNameCoder) EncodeNode(name string) string      { return name }
func (NoNameCoder) EncodeAttribute(name string) string { return name }
func (NoNameCoder) DecodeNode(name string) string      { return name }
func (NoNameCoder) DecodeAttribute(name string) string { return name }

// XMLFriendlyNameCoder escapes every rune that is not allowed in an XML
// name. '_' is the escape character:
//
//   - "_" becomes "__"
//   - a rune up to U+FFFF becomes "_" followed by 4 lowercase hex digits
//   - any other rune becomes "_x" followed by 6 hex digits
//
// A leading digit, '-' or '.' is escaped too. Results are memoized.
type XMLFriendlyNameCoder struct {
	encoded sync.Map
	decoded sync.Map
}

// NewXMLFriendlyNameCoder returns a ready coder.
func NewXMLFriendlyNameCoder() *XMLFriendlyNameCoder {
	return &XMLFriendlyNameCoder{}
}

func (c *XMLFriendlyNameCoder) EncodeNode(name string) string      { return c.encode(name) }
func (c *XMLFriendlyNameCoder) EncodeAttribute(name string) string { return c.encode(name) }
func (c *XMLFriendlyNameCoder) DecodeNode(name string) string      { return c.decode(name) }
func (c *XMLFriendlyNameCoder) DecodeAttribute(name string) string { return c.decode(name) }

func (c *XMLFriendlyNameCoder) encode(name string) string {
	if v, ok := c.encoded.Load(name); ok {
		return v.(string)
	}
	res := EscapeName(name)
	c.encoded.Store(name, res)
	return res
}

func (c *XMLFriendlyNameCoder) decode(name string) string {
	if v, ok := c.decoded.Load(name); ok {
		return v.(string)
	}
	res, err := UnescapeName(name)
	if err != nil {
		// not produced by EscapeName, leave it alone
		res = name
	}
	c.decoded.Store(name, res)
	return res
}

func nameStart(r rune) bool {
	return unicode.IsLetter(r)
}

func nameChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-'
}

// EscapeName escapes name into a valid XML name.
func EscapeName(name string) string {
	clean := true
	for i, r := range name {
		if r == '_' || (i == 0 && !nameStart(r)) || !nameChar(r) {
			clean = false
			break
		}
	}
	if clean {
		return name
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_':
			b.WriteString("__")
		case i == 0 && !nameStart(r), !nameChar(r):
			if r <= 0xFFFF {
				fmt.Fprintf(&b, "_%04x", r)
			} else {
				fmt.Fprintf(&b, "_x%06x", r)
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UnescapeName reverses EscapeName.
func UnescapeName(name string) (string, error) {
	if !strings.Contains(name, "_") {
		return name, nil
	}
	var b strings.Builder
	for i := 0; i < len(name); {
		if name[i] != '_' {
			r, n := utf8.DecodeRuneInString(name[i:])
			b.WriteRune(r)
			i += n
			continue
		}
		if i+1 < len(name) && name[i+1] == '_' {
			b.WriteByte('_')
			i += 2
			continue
		}
		width, start := 4, i+1
		if i+1 < len(name) && name[i+1] == 'x' {
			width, start = 6, i+2
		}
		if start+width > len(name) {
			return "", fmt.Errorf("truncated escape in %q", name)
		}
		v, err := strconv.ParseUint(name[start:start+width], 16, 32)
		if err != nil {
			return "", fmt.Errorf("bad escape in %q: %w", name, err)
		}
		b.WriteRune(rune(v))
		i = start + width
	}
	return b.String(), nil
}
