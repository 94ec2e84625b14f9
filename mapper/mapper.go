// Package mapper translates between Go types and fields and the names used
// for them in documents.
//
// A Mapper is assembled as a chain: Default answers every question and each
// wrapper embeds the mapper it wraps, overriding what it is configured for.
//
//	var m mapper.Mapper = mapper.NewDefault(types)
//	m = mapper.NewTags(m)
//	classes := mapper.NewClassAliasing(m)
//	classes.Alias("thing", reflect.TypeOf(&Thing{}))
//
// Members are always named by the type declaring them, see
// reflection.FieldKey.
package mapper

import (
	"reflect"

	"github.com/signadot/objgraph/fault"
	"github.com/signadot/objgraph/hier"
)

type null struct{}

// NullType stands for nil values.
var NullType = reflect.TypeOf(null{})

// ImplicitCollection describes a slice field written without a wrapper node.
type ImplicitCollection struct {
	Owner reflect.Type
	Field string
	// ItemType is the declared item type, the element type of the field
	// unless configured otherwise.
	ItemType reflect.Type
	// ItemName names item nodes. Empty means items are named by their type.
	ItemName string
}

type Mapper interface {
	SerializedClass(t reflect.Type) string
	// RealClass resolves a serialized type name. Unknown names fail with
	// fault.ErrCannotResolveClass.
	RealClass(name string) (reflect.Type, error)
	SerializedMember(owner reflect.Type, field string) string
	RealMember(owner reflect.Type, serialized string) string
	DefaultImplementationOf(t reflect.Type) reflect.Type
	IsImmutableValueType(t reflect.Type) bool
	ShouldSerializeMember(owner reflect.Type, field string) bool
	UseAttribute(owner reflect.Type, field string, fieldType reflect.Type) bool
	OmitEmpty(owner reflect.Type, field string) bool
	ImplicitCollectionForField(owner reflect.Type, field string) *ImplicitCollection
	// ImplicitCollectionForItem finds the implicit collection of owner taking
	// items named itemName, or else items of type itemType (which may be
	// nil).
	ImplicitCollectionForItem(owner reflect.Type, itemType reflect.Type, itemName string) *ImplicitCollection
	// AliasForSystemAttribute returns the attribute name used for one of the
	// hier.Attr* names, "" when the attribute is disabled.
	AliasForSystemAttribute(name string) string
	IsIgnoredElement(name string) bool
}

// Default is the innermost mapper. Types are named through a TypeRegistry,
// members keep their Go names.
type Default struct {
	types *TypeRegistry
}

var _ Mapper = (*Default)(nil)

func NewDefault(types *TypeRegistry) *Default {
	if types == nil {
		types = NewTypeRegistry()
	}
	return &Default{types: types}
}

func (d *Default) Types() *TypeRegistry { return d.types }

func (d *Default) SerializedClass(t reflect.Type) string {
	if t == nil {
		return d.types.Name(NullType)
	}
	return d.types.Name(t)
}

func (d *Default) RealClass(name string) (reflect.Type, error) {
	if t, ok := d.types.Type(name); ok {
		return t, nil
	}
	return nil, fault.New(fault.ErrCannotResolveClass, "%s", name).With("class", name)
}

func (d *Default) SerializedMember(_ reflect.Type, field string) string { return field }
func (d *Default) RealMember(_ reflect.Type, serialized string) string  { return serialized }

func (d *Default) DefaultImplementationOf(t reflect.Type) reflect.Type { return t }

// IsImmutableValueType reports true for every type without identity: only
// pointers, maps and slices can be shared.
func (d *Default) IsImmutableValueType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		return false
	}
	return true
}

func (d *Default) ShouldSerializeMember(reflect.Type, string) bool { return true }

func (d *Default) UseAttribute(reflect.Type, string, reflect.Type) bool { return false }

func (d *Default) OmitEmpty(reflect.Type, string) bool { return false }

func (d *Default) ImplicitCollectionForField(reflect.Type, string) *ImplicitCollection { return nil }

func (d *Default) ImplicitCollectionForItem(reflect.Type, reflect.Type, string) *ImplicitCollection {
	return nil
}

func (d *Default) AliasForSystemAttribute(name string) string { return name }

func (d *Default) IsIgnoredElement(string) bool { return false }

// SystemAttributes lists the reserved attribute names.
var SystemAttributes = []string{
	hier.AttrClass,
	hier.AttrReference,
	hier.AttrID,
	hier.AttrResolvesTo,
	hier.AttrDefinedIn,
}

// IsSystemAttribute reports whether the document attribute name is the
// alias of a reserved attribute. With among set, only those reserved
// attributes are considered.
func IsSystemAttribute(m Mapper, name string, among ...string) bool {
	if len(among) == 0 {
		among = SystemAttributes
	}
	for _, a := range among {
		if alias := m.AliasForSystemAttribute(a); alias != "" && alias == name {
			return true
		}
	}
	return false
}
