// Package yamldoc reads and writes hierarchical streams as YAML or JSON.
//
// Each node is a mapping with a single key, its name. The value depends on
// what the node carries:
//
//	field: "hello"                       # text only
//	thing: [{field: "hello"}]            # children only
//	thing: {"@reference": "/list/thing"} # anything else
//
// The general form keys attributes with "@", the text with "#text" and the
// children with "#children". Documents are encoded with github.com/goccy/go-yaml,
// which keeps key order, so attribute and child order survive a round trip.
// YAML output double-quotes every text and attribute value so that strings
// such as "true", ".inf" or "a\r\nb" read back unchanged.
package yamldoc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/signadot/objgraph/tree"
)

const (
	attrPrefix  = "@"
	textKey     = "#text"
	childrenKey = "#children"
)

// quoted is a string always emitted as a double-quoted YAML scalar.
type quoted string

func (q quoted) MarshalYAML() ([]byte, error) {
	return []byte(strconv.Quote(string(q))), nil
}

func plain(s string) any { return s }

func quote(s string) any { return quoted(s) }

// ToValue converts n into the ordered YAML value written for it, with
// plain string scalars.
func ToValue(n *tree.Node) yaml.MapSlice {
	return toValue(n, plain)
}

func toValue(n *tree.Node, str func(string) any) yaml.MapSlice {
	return yaml.MapSlice{{Key: n.Name, Value: body(n, str)}}
}

func body(n *tree.Node, str func(string) any) any {
	switch {
	case len(n.Attrs) == 0 && len(n.Children) == 0:
		return str(n.Value)
	case len(n.Attrs) == 0 && n.Value == "":
		return children(n, str)
	}
	res := make(yaml.MapSlice, 0, len(n.Attrs)+2)
	for _, a := range n.Attrs {
		res = append(res, yaml.MapItem{Key: attrPrefix + a.Name, Value: str(a.Value)})
	}
	if n.Value != "" {
		res = append(res, yaml.MapItem{Key: textKey, Value: str(n.Value)})
	}
	if len(n.Children) != 0 {
		res = append(res, yaml.MapItem{Key: childrenKey, Value: children(n, str)})
	}
	return res
}

func children(n *tree.Node, str func(string) any) []any {
	res := make([]any, len(n.Children))
	for i, c := range n.Children {
		res[i] = toValue(c, str)
	}
	return res
}

// FromValue converts a decoded YAML value back into a tree. Mappings must be
// yaml.MapSlice, as produced by decoding with yaml.UseOrderedMap.
func FromValue(v any) (*tree.Node, error) {
	ms, ok := v.(yaml.MapSlice)
	if !ok || len(ms) != 1 {
		return nil, fmt.Errorf("yamldoc: expected a single key mapping, got %T", v)
	}
	name, err := scalar(ms[0].Key)
	if err != nil {
		return nil, err
	}
	n := tree.New(name)
	if err := fill(n, ms[0].Value); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func fill(n *tree.Node, v any) error {
	switch b := v.(type) {
	case []any:
		return addChildren(n, b)
	case yaml.MapSlice:
		for _, item := range b {
			key, err := scalar(item.Key)
			if err != nil {
				return err
			}
			switch {
			case key == textKey:
				if n.Value, err = scalar(item.Value); err != nil {
					return err
				}
			case key == childrenKey:
				cs, ok := item.Value.([]any)
				if !ok {
					return fmt.Errorf("yamldoc: %s must be a sequence, got %T", childrenKey, item.Value)
				}
				if err := addChildren(n, cs); err != nil {
					return err
				}
			case strings.HasPrefix(key, attrPrefix):
				val, err := scalar(item.Value)
				if err != nil {
					return err
				}
				n.SetAttr(key[len(attrPrefix):], val)
			default:
				return fmt.Errorf("yamldoc: unexpected key %q", key)
			}
		}
		return nil
	default:
		s, err := scalar(v)
		if err != nil {
			return err
		}
		n.Value = s
		return nil
	}
}

func addChildren(n *tree.Node, vs []any) error {
	for _, cv := range vs {
		c, err := FromValue(cv)
		if err != nil {
			return err
		}
		n.AddChild(c)
	}
	return nil
}

func scalar(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	}
	return "", fmt.Errorf("yamldoc: expected a scalar, got %T", v)
}
