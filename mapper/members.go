package mapper

import (
	"fmt"
	"reflect"
	"regexp"
	"sync"
)

// Attributes places members in attributes rather than child nodes.
type Attributes struct {
	Mapper
	mu     sync.RWMutex
	fields map[memberKey]bool
	types  map[reflect.Type]bool
}

func NewAttributes(m Mapper) *Attributes {
	return &Attributes{
		Mapper: m,
		fields: map[memberKey]bool{},
		types:  map[reflect.Type]bool{},
	}
}

// UseAttributeForField writes the field declared by owner as an attribute.
func (a *Attributes) UseAttributeForField(owner reflect.Type, field string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fields[memberKey{owner, field}] = true
}

// UseAttributeForType writes every field of type t as an attribute.
func (a *Attributes) UseAttributeForType(t reflect.Type) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.types[t] = true
}

func (a *Attributes) UseAttribute(owner reflect.Type, field string, fieldType reflect.Type) bool {
	a.mu.RLock()
	use := a.fields[memberKey{owner, field}] || a.types[fieldType]
	a.mu.RUnlock()
	return use || a.Mapper.UseAttribute(owner, field, fieldType)
}

// ImplicitCollections writes slice fields without a wrapper node.
type ImplicitCollections struct {
	Mapper
	mu      sync.RWMutex
	byOwner map[reflect.Type][]*ImplicitCollection
}

func NewImplicitCollections(m Mapper) *ImplicitCollections {
	return &ImplicitCollections{Mapper: m, byOwner: map[reflect.Type][]*ImplicitCollection{}}
}

// Add registers def, replacing an earlier registration for the same field.
func (ic *ImplicitCollections) Add(def *ImplicitCollection) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	defs := ic.byOwner[def.Owner]
	for i, d := range defs {
		if d.Field == def.Field {
			defs[i] = def
			return
		}
	}
	ic.byOwner[def.Owner] = append(defs, def)
}

func (ic *ImplicitCollections) ImplicitCollectionForField(owner reflect.Type, field string) *ImplicitCollection {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	for _, d := range ic.byOwner[owner] {
		if d.Field == field {
			return d
		}
	}
	return ic.Mapper.ImplicitCollectionForField(owner, field)
}

func (ic *ImplicitCollections) ImplicitCollectionForItem(owner, itemType reflect.Type, itemName string) *ImplicitCollection {
	ic.mu.RLock()
	d := matchItem(ic.byOwner[owner], itemType, itemName)
	ic.mu.RUnlock()
	if d != nil {
		return d
	}
	return ic.Mapper.ImplicitCollectionForItem(owner, itemType, itemName)
}

func matchItem(defs []*ImplicitCollection, itemType reflect.Type, itemName string) *ImplicitCollection {
	for _, d := range defs {
		if d.ItemName != "" && d.ItemName == itemName {
			return d
		}
	}
	if itemType == nil {
		return nil
	}
	for _, d := range defs {
		if d.ItemName == "" && itemType.AssignableTo(d.ItemType) {
			return d
		}
	}
	return nil
}

// DefaultImplementations records the concrete type expected behind a
// declared type. Values of exactly that type are written without a class
// attribute.
type DefaultImplementations struct {
	Mapper
	mu    sync.RWMutex
	impls map[reflect.Type]reflect.Type
}

func NewDefaultImplementations(m Mapper) *DefaultImplementations {
	return &DefaultImplementations{Mapper: m, impls: map[reflect.Type]reflect.Type{}}
}

func (d *DefaultImplementations) Add(declared, impl reflect.Type) error {
	if !impl.AssignableTo(declared) {
		return fmt.Errorf("%s is not assignable to %s", impl, declared)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.impls[declared] = impl
	return nil
}

func (d *DefaultImplementations) DefaultImplementationOf(t reflect.Type) reflect.Type {
	d.mu.RLock()
	impl, ok := d.impls[t]
	d.mu.RUnlock()
	if ok {
		return impl
	}
	return d.Mapper.DefaultImplementationOf(t)
}

// ImmutableTypes marks types whose values are always written in full, never
// as references.
type ImmutableTypes struct {
	Mapper
	mu    sync.RWMutex
	types map[reflect.Type]bool
}

func NewImmutableTypes(m Mapper) *ImmutableTypes {
	return &ImmutableTypes{Mapper: m, types: map[reflect.Type]bool{}}
}

func (im *ImmutableTypes) Add(t reflect.Type) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.types[t] = true
}

func (im *ImmutableTypes) IsImmutableValueType(t reflect.Type) bool {
	im.mu.RLock()
	immutable := im.types[t]
	im.mu.RUnlock()
	return immutable || im.Mapper.IsImmutableValueType(t)
}

// IgnoredElements skips unknown child nodes whose name matches a pattern.
type IgnoredElements struct {
	Mapper
	mu       sync.RWMutex
	patterns []*regexp.Regexp
}

func NewIgnoredElements(m Mapper) *IgnoredElements {
	return &IgnoredElements{Mapper: m}
}

// Ignore adds a pattern matched against whole node names.
func (ig *IgnoredElements) Ignore(pattern string) error {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return err
	}
	ig.mu.Lock()
	defer ig.mu.Unlock()
	ig.patterns = append(ig.patterns, re)
	return nil
}

func (ig *IgnoredElements) IsIgnoredElement(name string) bool {
	ig.mu.RLock()
	defer ig.mu.RUnlock()
	for _, re := range ig.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return ig.Mapper.IsIgnoredElement(name)
}
