package mapper

import (
	"reflect"
	"strconv"
	"strings"
)

// Composite names pointer, slice, array and map types after their element
// types, so aliasing a type renames its composites too ("*thing",
// "[]thing", "map[string]thing"), and resolves such names back.
type Composite struct {
	Mapper
}

func NewComposite(m Mapper) *Composite {
	return &Composite{Mapper: m}
}

func (c *Composite) SerializedClass(t reflect.Type) string {
	name := c.Mapper.SerializedClass(t)
	if t == nil || name != t.String() {
		return name
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + c.SerializedClass(t.Elem())
	case reflect.Slice:
		return "[]" + c.SerializedClass(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + c.SerializedClass(t.Elem())
	case reflect.Map:
		return "map[" + c.SerializedClass(t.Key()) + "]" + c.SerializedClass(t.Elem())
	}
	return name
}

func (c *Composite) RealClass(name string) (reflect.Type, error) {
	t, err := c.Mapper.RealClass(name)
	if err == nil {
		return t, nil
	}
	var res reflect.Type
	switch {
	case strings.HasPrefix(name, "*"):
		if e, eErr := c.RealClass(name[1:]); eErr == nil {
			res = reflect.PointerTo(e)
		}
	case strings.HasPrefix(name, "[]"):
		if e, eErr := c.RealClass(name[2:]); eErr == nil {
			res = reflect.SliceOf(e)
		}
	case strings.HasPrefix(name, "map["):
		end := closing(name, 3)
		if end < 0 {
			break
		}
		k, kErr := c.RealClass(name[4:end])
		e, eErr := c.RealClass(name[end+1:])
		if kErr == nil && eErr == nil && k.Comparable() {
			res = reflect.MapOf(k, e)
		}
	case strings.HasPrefix(name, "["):
		end := strings.IndexByte(name, ']')
		if end < 0 {
			break
		}
		n, nErr := strconv.Atoi(name[1:end])
		e, eErr := c.RealClass(name[end+1:])
		if nErr == nil && eErr == nil && n >= 0 {
			res = reflect.ArrayOf(n, e)
		}
	}
	if res == nil {
		return nil, err
	}
	return res, nil
}

// closing returns the index of the bracket closing the one at open.
func closing(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
