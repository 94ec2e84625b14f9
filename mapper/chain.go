package mapper

// Chain is the standard mapper assembly, with handles on the configurable
// wrappers. The embedded Mapper is the outermost link.
type Chain struct {
	Mapper
	Default         *Default
	Classes         *ClassAliasing
	Fields          *FieldAliasing
	Attributes      *Attributes
	Implicit        *ImplicitCollections
	Implementations *DefaultImplementations
	Immutables      *ImmutableTypes
	SystemAttrs     *SystemAttributeAliasing
	Ignored         *IgnoredElements
}

// NewChain assembles the chain over types, which may be nil.
func NewChain(types *TypeRegistry) *Chain {
	c := &Chain{Default: NewDefault(types)}
	var m Mapper = NewTags(c.Default)
	c.Classes = NewClassAliasing(m)
	m = NewComposite(c.Classes)
	c.Fields = NewFieldAliasing(m)
	c.Attributes = NewAttributes(c.Fields)
	c.Implicit = NewImplicitCollections(c.Attributes)
	c.Implementations = NewDefaultImplementations(c.Implicit)
	c.Immutables = NewImmutableTypes(c.Implementations)
	c.SystemAttrs = NewSystemAttributeAliasing(c.Immutables)
	c.Ignored = NewIgnoredElements(c.SystemAttrs)
	c.Mapper = c.Ignored
	return c
}

// Filter adds a FieldFilter as the outermost link.
func (c *Chain) Filter(source string) error {
	f, err := NewFieldFilter(c.Mapper, source)
	if err != nil {
		return err
	}
	c.Mapper = f
	return nil
}
