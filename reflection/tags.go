package reflection

import (
	"fmt"
	"reflect"
	"strings"
)

// TagKey is the struct tag key read by objgraph.
const TagKey = "xs"

// Tag holds the options of an `xs:"..."` struct tag.
//
//	Name      string   `xs:"name=label"`         // node or attribute name
//	ID        int      `xs:"attr"`               // written as an attribute
//	Note      string   `xs:"omitempty"`          // zero values are skipped
//	Items     []*Item  `xs:"implicit,item=item"` // no wrapper node
//	Cache     any      `xs:"-"`                  // never persisted
type Tag struct {
	Name      string
	Attr      bool
	OmitEmpty bool
	Implicit  bool
	Item      string
	Omit      bool
}

// ParseTag parses the objgraph tag of a struct field.
func ParseTag(tag reflect.StructTag) (Tag, error) {
	var res Tag
	raw, ok := tag.Lookup(TagKey)
	if !ok {
		return res, nil
	}
	if raw == "-" {
		res.Omit = true
		return res, nil
	}
	parsed, err := ParseStructTag(raw)
	if err != nil {
		return res, err
	}
	for k, v := range parsed {
		switch k {
		case "name":
			res.Name = v
		case "attr":
			res.Attr = true
		case "omitempty":
			res.OmitEmpty = true
		case "implicit":
			res.Implicit = true
		case "item":
			res.Item = v
		case "-":
			res.Omit = true
		default:
			return res, fmt.Errorf("invalid tag: unknown option %q", k)
		}
	}
	return res, nil
}

// ParseStructTag parses a struct tag string and returns a map of key-value pairs.
// Handles comma-separated values: `xs:"key1=value1,key2=value2,flag"`
// Supports quoted values with spaces: `xs:"key='value with spaces'"`
func ParseStructTag(tag string) (map[string]string, error) {
	result := make(map[string]string)
	if tag == "" {
		return result, nil
	}

	var parts []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	flush := func() {
		if part := strings.TrimSpace(current.String()); part != "" {
			parts = append(parts, part)
		}
		current.Reset()
	}
	for i := 0; i < len(tag); i++ {
		char := tag[i]
		switch {
		case char == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote
			current.WriteByte(char)
		case char == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
			current.WriteByte(char)
		case (char == ',' || char == ' ') && !inSingleQuote && !inDoubleQuote:
			flush()
		default:
			current.WriteByte(char)
		}
	}
	flush()

	for _, part := range parts {
		idx := strings.Index(part, "=")
		if idx < 0 {
			// flag
			result[part] = ""
			continue
		}
		key := strings.TrimSpace(part[:idx])
		if key == "" {
			return nil, fmt.Errorf("invalid tag: empty key in %q", part)
		}
		result[key] = unquoteValue(strings.TrimSpace(part[idx+1:]))
	}
	return result, nil
}

// unquoteValue removes surrounding single or double quotes from a value.
func unquoteValue(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
