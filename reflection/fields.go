package reflection

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// FieldKey identifies a field within a struct hierarchy. Embedding stands in
// for inheritance: the fields of an embedded struct are declared by the
// embedded type, so a field promoted from it and a field of the same name on
// the outer struct have distinct keys.
type FieldKey struct {
	Name          string
	DeclaringType reflect.Type
	Order         int
}

// FieldInfo describes one persistable field.
type FieldInfo struct {
	FieldKey
	Type     reflect.Type
	Index    []int
	Tag      Tag
	Exported bool
}

func (f *FieldInfo) String() string {
	return fmt.Sprintf("%s.%s", f.DeclaringType, f.Name)
}

type typeFields struct {
	ordered []*FieldInfo
	owners  []reflect.Type
	err     error
}

// FieldDictionary caches the persistable fields of struct types. It is safe
// for concurrent use; racing lookups of the same type may both build the
// table, the first stored wins.
type FieldDictionary struct {
	cache sync.Map
}

func NewFieldDictionary() *FieldDictionary {
	return &FieldDictionary{}
}

// Fields returns the persistable fields of struct type t in visitation
// order: the fields t declares, in declaration order, followed by the fields
// of each embedded struct, recursively and depth first.
func (d *FieldDictionary) Fields(t reflect.Type) ([]*FieldInfo, error) {
	tf := d.lookup(t)
	return tf.ordered, tf.err
}

// Owners returns the declaring types found among the fields of t, outermost
// first.
func (d *FieldDictionary) Owners(t reflect.Type) []reflect.Type {
	return d.lookup(t).owners
}

// Field returns the field of t named name declared by owner, or nil. With a
// nil owner the first field of that name in visitation order is returned.
func (d *FieldDictionary) Field(t reflect.Type, name string, owner reflect.Type) *FieldInfo {
	for _, f := range d.lookup(t).ordered {
		if f.Name == name && (owner == nil || f.DeclaringType == owner) {
			return f
		}
	}
	return nil
}

func (d *FieldDictionary) lookup(t reflect.Type) *typeFields {
	if v, ok := d.cache.Load(t); ok {
		return v.(*typeFields)
	}
	tf := &typeFields{}
	if t.Kind() != reflect.Struct {
		tf.err = fmt.Errorf("%s is not a struct", t)
	} else {
		tf.err = collect(tf, t, nil, 0)
	}
	v, _ := d.cache.LoadOrStore(t, tf)
	return v.(*typeFields)
}

func collect(tf *typeFields, t reflect.Type, prefix []int, depth int) error {
	if depth > 32 {
		return fmt.Errorf("%s: embedding too deep", t)
	}
	// Fields are keyed by declaring type, so a type reached along two
	// embedding paths would declare its fields twice.
	if slices.Contains(tf.owners, t) {
		return fmt.Errorf("%s is embedded more than once in %s", t, tf.owners[0])
	}
	tf.owners = append(tf.owners, t)
	var embedded []reflect.StructField
	order := 0
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			embedded = append(embedded, sf)
			continue
		}
		if sf.Name == "_" || transient(sf.Type) {
			continue
		}
		tag, err := ParseTag(sf.Tag)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", t, sf.Name, err)
		}
		if tag.Omit {
			continue
		}
		tf.ordered = append(tf.ordered, &FieldInfo{
			FieldKey: FieldKey{Name: sf.Name, DeclaringType: t, Order: order},
			Type:     sf.Type,
			Index:    appendIndex(prefix, i),
			Tag:      tag,
			Exported: sf.IsExported(),
		})
		order++
	}
	for _, sf := range embedded {
		if tag, _ := ParseTag(sf.Tag); tag.Omit {
			continue
		}
		if err := collect(tf, sf.Type, appendIndex(prefix, sf.Index[0]), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func appendIndex(prefix []int, i int) []int {
	res := make([]int, len(prefix)+1)
	copy(res, prefix)
	res[len(prefix)] = i
	return res
}

func transient(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}
