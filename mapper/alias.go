package mapper

import (
	"reflect"
	"sync"
)

// ClassAliasing names types explicitly.
type ClassAliasing struct {
	Mapper
	mu         sync.RWMutex
	nameToType map[string]reflect.Type
	typeToName map[reflect.Type]string
}

func NewClassAliasing(m Mapper) *ClassAliasing {
	return &ClassAliasing{
		Mapper:     m,
		nameToType: map[string]reflect.Type{},
		typeToName: map[reflect.Type]string{},
	}
}

// Alias names t as name in both directions.
func (c *ClassAliasing) Alias(name string, t reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nameToType[name] = t
	c.typeToName[t] = name
}

// AliasType names t as name for writing only.
func (c *ClassAliasing) AliasType(name string, t reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typeToName[t] = name
}

func (c *ClassAliasing) SerializedClass(t reflect.Type) string {
	if t != nil {
		c.mu.RLock()
		name, ok := c.typeToName[t]
		c.mu.RUnlock()
		if ok {
			return name
		}
	}
	return c.Mapper.SerializedClass(t)
}

func (c *ClassAliasing) RealClass(name string) (reflect.Type, error) {
	c.mu.RLock()
	t, ok := c.nameToType[name]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}
	return c.Mapper.RealClass(name)
}

type memberKey struct {
	owner reflect.Type
	name  string
}

// FieldAliasing renames and omits members.
type FieldAliasing struct {
	Mapper
	mu        sync.RWMutex
	toAlias   map[memberKey]string
	fromAlias map[memberKey]string
	omitted   map[memberKey]bool
}

func NewFieldAliasing(m Mapper) *FieldAliasing {
	return &FieldAliasing{
		Mapper:    m,
		toAlias:   map[memberKey]string{},
		fromAlias: map[memberKey]string{},
		omitted:   map[memberKey]bool{},
	}
}

// AliasField names the field declared by owner as alias.
func (f *FieldAliasing) AliasField(owner reflect.Type, field, alias string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toAlias[memberKey{owner, field}] = alias
	f.fromAlias[memberKey{owner, alias}] = field
}

// OmitField excludes the field declared by owner from documents.
func (f *FieldAliasing) OmitField(owner reflect.Type, field string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.omitted[memberKey{owner, field}] = true
}

func (f *FieldAliasing) SerializedMember(owner reflect.Type, field string) string {
	f.mu.RLock()
	alias, ok := f.toAlias[memberKey{owner, field}]
	f.mu.RUnlock()
	if ok {
		return alias
	}
	return f.Mapper.SerializedMember(owner, field)
}

func (f *FieldAliasing) RealMember(owner reflect.Type, serialized string) string {
	f.mu.RLock()
	field, ok := f.fromAlias[memberKey{owner, serialized}]
	f.mu.RUnlock()
	if ok {
		return field
	}
	return f.Mapper.RealMember(owner, serialized)
}

func (f *FieldAliasing) ShouldSerializeMember(owner reflect.Type, field string) bool {
	f.mu.RLock()
	omitted := f.omitted[memberKey{owner, field}]
	f.mu.RUnlock()
	return !omitted && f.Mapper.ShouldSerializeMember(owner, field)
}

// SystemAttributeAliasing renames the reserved attributes.
type SystemAttributeAliasing struct {
	Mapper
	mu      sync.RWMutex
	aliases map[string]string
}

func NewSystemAttributeAliasing(m Mapper) *SystemAttributeAliasing {
	return &SystemAttributeAliasing{Mapper: m, aliases: map[string]string{}}
}

// Alias renames the reserved attribute name. An empty alias disables it.
func (s *SystemAttributeAliasing) Alias(name, alias string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliases[name] = alias
}

func (s *SystemAttributeAliasing) AliasForSystemAttribute(name string) string {
	s.mu.RLock()
	alias, ok := s.aliases[name]
	s.mu.RUnlock()
	if ok {
		return alias
	}
	return s.Mapper.AliasForSystemAttribute(name)
}
