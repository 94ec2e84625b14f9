// Package collection converts slices, arrays and maps.
//
// Items are written as child nodes named after their type; nil items are
// written as "null" nodes. Map entries are "entry" nodes holding the key node
// followed by the value node, in key order.
package collection

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/signadot/objgraph/converter"
	"github.com/signadot/objgraph/fault"
	"github.com/signadot/objgraph/hier"
)

// EntryName names the nodes holding map entries.
const EntryName = "entry"

// Register adds the converters of this package to r.
func Register(r *converter.Registry) {
	r.Register(Slice{}, converter.PriorityLow)
	r.Register(Array{}, converter.PriorityLow)
	r.Register(Map{}, converter.PriorityLow)
}

func writeItems(v reflect.Value, w hier.Writer, ctx converter.MarshallingContext) error {
	for i := 0; i < v.Len(); i++ {
		if err := converter.WriteItem(v.Index(i), w, ctx); err != nil {
			return err
		}
	}
	return nil
}

func readInto(dst reflect.Value, r hier.Reader, parent reflect.Value, ctx converter.UnmarshallingContext) error {
	item, err := converter.ReadItem(r, parent, ctx)
	if err != nil {
		return err
	}
	return converter.Assign(dst, item)
}

// Slice converts slices. A slice is created after its items are read, so an
// item cannot refer to the slice containing it.
type Slice struct{}

func (Slice) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.Slice }

func (Slice) Marshal(v reflect.Value, w hier.Writer, ctx converter.MarshallingContext) error {
	return writeItems(v, w, ctx)
}

func (Slice) Unmarshal(r hier.Reader, ctx converter.UnmarshallingContext) (reflect.Value, error) {
	t := ctx.RequiredType()
	res := reflect.MakeSlice(t, 0, 0)
	for r.HasMoreChildren() {
		elem := reflect.New(t.Elem()).Elem()
		if err := readInto(elem, r, reflect.Value{}, ctx); err != nil {
			return reflect.Value{}, err
		}
		res = reflect.Append(res, elem)
	}
	return res, nil
}

type Array struct{}

func (Array) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.Array }

func (Array) Marshal(v reflect.Value, w hier.Writer, ctx converter.MarshallingContext) error {
	return writeItems(v, w, ctx)
}

func (Array) Unmarshal(r hier.Reader, ctx converter.UnmarshallingContext) (reflect.Value, error) {
	t := ctx.RequiredType()
	res := reflect.New(t).Elem()
	for i := 0; r.HasMoreChildren(); i++ {
		if i >= t.Len() {
			return reflect.Value{}, fault.New(fault.ErrConversion, "more than %d items for %s", t.Len(), t)
		}
		if err := readInto(res.Index(i), r, reflect.Value{}, ctx); err != nil {
			return reflect.Value{}, err
		}
	}
	return res, nil
}

// Map converts maps. The map exists before its entries are read, so entries
// may refer to it.
type Map struct{}

func (Map) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.Map }

func (Map) Marshal(v reflect.Value, w hier.Writer, ctx converter.MarshallingContext) error {
	keys := v.MapKeys()
	sortKeys(keys)
	for _, k := range keys {
		w.StartNode(EntryName)
		err := converter.WriteItem(k, w, ctx)
		if err == nil {
			err = converter.WriteItem(v.MapIndex(k), w, ctx)
		}
		w.EndNode()
		if err != nil {
			return err
		}
	}
	return nil
}

func (Map) Unmarshal(r hier.Reader, ctx converter.UnmarshallingContext) (reflect.Value, error) {
	t := ctx.RequiredType()
	res := reflect.MakeMap(t)
	for r.HasMoreChildren() {
		r.MoveDown()
		k := reflect.New(t.Key()).Elem()
		v := reflect.New(t.Elem()).Elem()
		err := readEntry(k, v, r, res, ctx)
		r.MoveUp()
		if err != nil {
			return reflect.Value{}, err
		}
		res.SetMapIndex(k, v)
	}
	return res, nil
}

func readEntry(k, v reflect.Value, r hier.Reader, m reflect.Value, ctx converter.UnmarshallingContext) error {
	for _, dst := range []reflect.Value{k, v} {
		if !r.HasMoreChildren() {
			return fault.New(fault.ErrConversion, "incomplete map entry")
		}
		if err := readInto(dst, r, m, ctx); err != nil {
			return err
		}
	}
	return nil
}

// sortKeys orders map keys so maps are written deterministically.
func sortKeys(keys []reflect.Value) {
	if len(keys) == 0 {
		return
	}
	var less func(a, b reflect.Value) bool
	switch keys[0].Kind() {
	case reflect.String:
		less = func(a, b reflect.Value) bool { return a.String() < b.String() }
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		less = func(a, b reflect.Value) bool { return a.Int() < b.Int() }
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		less = func(a, b reflect.Value) bool { return a.Uint() < b.Uint() }
	case reflect.Float32, reflect.Float64:
		less = func(a, b reflect.Value) bool { return a.Float() < b.Float() }
	case reflect.Bool:
		less = func(a, b reflect.Value) bool { return !a.Bool() && b.Bool() }
	default:
		less = func(a, b reflect.Value) bool { return describe(a) < describe(b) }
	}
	sort.SliceStable(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
}

func describe(v reflect.Value) string {
	c := converter.Concrete(v)
	if !c.IsValid() {
		return ""
	}
	return fmt.Sprintf("%s:%v", c.Type(), c.Interface())
}
