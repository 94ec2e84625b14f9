package objgraph

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/signadot/objgraph/converter"
	"github.com/signadot/objgraph/converter/basic"
	"github.com/signadot/objgraph/converter/collection"
	"github.com/signadot/objgraph/converter/structural"
	"github.com/signadot/objgraph/core"
	"github.com/signadot/objgraph/fault"
	"github.com/signadot/objgraph/format"
	"github.com/signadot/objgraph/hier"
	"github.com/signadot/objgraph/mapper"
	"github.com/signadot/objgraph/reflection"
	"github.com/signadot/objgraph/xmldoc"
)

// Graph holds a configuration: converters, names and the reference mode.
type Graph struct {
	chain    *mapper.Chain
	types    *mapper.TypeRegistry
	registry *converter.Registry
	defaults *structural.Defaults
	provider reflection.Provider
	coder    hier.NameCoder
	strategy core.Strategy
	mode     core.Mode
	log      *slog.Logger
	filter   string
	noCache  bool
}

type Option func(*Graph)

// WithMode sets how shared values are written, core.XPathRelative by
// default.
func WithMode(m core.Mode) Option {
	return func(g *Graph) { g.mode = m }
}

// WithProvider sets the field access provider. The default reaches
// unexported fields.
func WithProvider(p reflection.Provider) Option {
	return func(g *Graph) { g.provider = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) { g.log = l }
}

// WithNameCoder sets the coder of node and attribute names.
func WithNameCoder(c hier.NameCoder) Option {
	return func(g *Graph) { g.coder = c }
}

// WithoutCache disables the converter lookup cache.
func WithoutCache() Option {
	return func(g *Graph) { g.noCache = true }
}

// WithFieldFilter only writes the fields for which the expression source
// holds. The expression sees owner, field, name, class and exported:
//
//	objgraph.WithFieldFilter(`exported && class != "time"`)
func WithFieldFilter(source string) Option {
	return func(g *Graph) { g.filter = source }
}

// New returns a Graph with the standard converters.
func New(opts ...Option) (*Graph, error) {
	g := &Graph{
		types:    mapper.NewTypeRegistry(),
		defaults: &structural.Defaults{},
	}
	for _, o := range opts {
		o(g)
	}
	if g.log == nil {
		g.log = slog.Default()
	}
	if g.provider == nil {
		g.provider = reflection.NewUnsafe(nil)
	}
	if g.coder == nil {
		g.coder = hier.NewXMLFriendlyNameCoder()
	}
	g.chain = mapper.NewChain(g.types)
	if g.filter != "" {
		if err := g.chain.Filter(g.filter); err != nil {
			return nil, fmt.Errorf("field filter: %w", err)
		}
	}
	regOpts := []converter.RegistryOption{converter.WithLogger(g.log)}
	if g.noCache {
		regOpts = append(regOpts, converter.WithoutCache())
	}
	g.registry = converter.NewRegistry(regOpts...)
	g.registry.Register(structural.New(g.defaults), converter.PriorityVeryLow)
	collection.Register(g.registry)
	basic.Register(g.registry)
	g.strategy = core.NewStrategy(g.mode)
	g.log.Debug("graph configured", "mode", g.mode.String(), "filter", g.filter)
	return g, nil
}

// MustNew is New, panicking on error.
func MustNew(opts ...Option) *Graph {
	g, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Graph) Mode() core.Mode { return g.mode }

// Mapper returns the mapper chain, for configuration beyond the Graph
// methods.
func (g *Graph) Mapper() *mapper.Chain { return g.chain }

// typeOf returns the type of sample. A reflect.Type stands for itself, which
// is how interface types are passed.
func typeOf(sample any) reflect.Type {
	if t, ok := sample.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(sample)
}

// structOf returns the struct type behind sample.
func structOf(sample any) (reflect.Type, error) {
	t := typeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fault.New(fault.ErrObjectAccess, "%v is not a struct", typeOf(sample))
	}
	return t, nil
}

// field finds the declaration of the field name of the struct behind sample.
func (g *Graph) field(sample any, name string) (*reflection.FieldInfo, error) {
	t, err := structOf(sample)
	if err != nil {
		return nil, err
	}
	fields, err := g.provider.Dictionary().Fields(t)
	if err != nil {
		return nil, fault.Wrap(err, fault.ErrObjectAccess)
	}
	for _, f := range fields {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fault.New(fault.ErrObjectAccess, "no field %s in %s", name, t).With("class", t.String())
}

// Alias names the type of sample in documents, for writing and reading.
func (g *Graph) Alias(name string, sample any) {
	g.chain.Classes.Alias(name, typeOf(sample))
}

// AliasType names the type of sample when writing only; the Go name still
// reads.
func (g *Graph) AliasType(name string, sample any) {
	g.chain.Classes.AliasType(name, typeOf(sample))
}

// RegisterType makes the type of sample resolvable by name, replacing the
// default name of the type.
func (g *Graph) RegisterType(name string, sample any) {
	g.types.Register(name, typeOf(sample))
}

// AliasField renames a field of the struct behind sample.
func (g *Graph) AliasField(sample any, field, alias string) error {
	f, err := g.field(sample, field)
	if err != nil {
		return err
	}
	g.chain.Fields.AliasField(f.DeclaringType, f.Name, alias)
	return nil
}

// OmitField leaves a field out of documents.
func (g *Graph) OmitField(sample any, field string) error {
	f, err := g.field(sample, field)
	if err != nil {
		return err
	}
	g.chain.Fields.OmitField(f.DeclaringType, f.Name)
	return nil
}

// UseAttributeFor writes a field as an attribute.
func (g *Graph) UseAttributeFor(sample any, field string) error {
	f, err := g.field(sample, field)
	if err != nil {
		return err
	}
	g.chain.Attributes.UseAttributeForField(f.DeclaringType, f.Name)
	return nil
}

// UseAttributeForType writes every field of the type of sample as an
// attribute.
func (g *Graph) UseAttributeForType(sample any) {
	g.chain.Attributes.UseAttributeForType(typeOf(sample))
}

// AddImplicitCollection writes the items of a slice field directly in the
// struct node. Items are named itemName, or after their type when it is
// empty. itemSample narrows the declared item type; nil keeps the element
// type of the field.
func (g *Graph) AddImplicitCollection(sample any, field, itemName string, itemSample any) error {
	f, err := g.field(sample, field)
	if err != nil {
		return err
	}
	if f.Type.Kind() != reflect.Slice {
		return fault.New(fault.ErrTypeMismatch, "%s is not a slice", f).With("field", f.String())
	}
	itemType := f.Type.Elem()
	if itemSample != nil {
		itemType = typeOf(itemSample)
	}
	g.chain.Implicit.Add(&mapper.ImplicitCollection{
		Owner:    f.DeclaringType,
		Field:    f.Name,
		ItemType: itemType,
		ItemName: itemName,
	})
	return nil
}

// AddDefaultImplementation reads declared, typically an interface type, as
// impl when the document names no type.
func (g *Graph) AddDefaultImplementation(declared, impl any) error {
	return g.chain.Implementations.Add(typeOf(declared), typeOf(impl))
}

// AddImmutableType writes values of the type of sample in full at each
// occurrence.
func (g *Graph) AddImmutableType(sample any) {
	g.chain.Immutables.Add(typeOf(sample))
}

// SetDefault registers the struct v as the default instance of its type.
// Fields equal to it are not written and read back from it.
func (g *Graph) SetDefault(v any) error {
	return g.defaults.Set(v)
}

// AliasSystemAttribute renames one of the hier.Attr* attributes. An empty
// alias disables it.
func (g *Graph) AliasSystemAttribute(name, alias string) {
	g.chain.SystemAttrs.Alias(name, alias)
}

// IgnoreUnknownElements skips unknown child nodes matching the regular
// expression pattern.
func (g *Graph) IgnoreUnknownElements(pattern string) error {
	return g.chain.Ignored.Ignore(pattern)
}

func (g *Graph) RegisterConverter(c converter.Converter, priority int) {
	g.registry.Register(c, priority)
}

func (g *Graph) RegisterSingleValueConverter(svc converter.SingleValueConverter, priority int) {
	g.registry.RegisterSingleValue(svc, priority)
}

// RegisterLocalConverter converts one field with c.
func (g *Graph) RegisterLocalConverter(sample any, field string, c converter.Converter) error {
	f, err := g.field(sample, field)
	if err != nil {
		return err
	}
	g.registry.RegisterLocal(f.DeclaringType, f.Name, c)
	return nil
}

func (g *Graph) env() core.Env {
	return core.Env{
		Lookup:   g.registry,
		Mapper:   g.chain,
		Provider: g.provider,
		Coder:    g.coder,
		Log:      g.log,
	}
}

// Marshal writes v to w.
func (g *Graph) Marshal(w hier.Writer, v any) error {
	return g.strategy.Marshal(w, reflect.ValueOf(v), g.env())
}

// Unmarshal reads the document r is positioned on. A non-nil root is
// populated in place when the document's type allows it and returned.
func (g *Graph) Unmarshal(r hier.Reader, root any) (any, error) {
	rv := reflect.ValueOf(root)
	v, err := g.strategy.Unmarshal(rv, r, g.env())
	if err != nil {
		return nil, err
	}
	if !v.IsValid() {
		return nil, nil
	}
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && v.Type() == rv.Type().Elem() && v.CanAddr() && v.Addr().Pointer() == rv.Pointer() {
		return root, nil
	}
	return v.Interface(), nil
}

func (g *Graph) formatOptions(f format.Format, opts []format.Options) []format.Options {
	if f.IsXML() {
		return append([]format.Options{{XML: []xmldoc.Option{xmldoc.WithNameCoder(g.coder)}}}, opts...)
	}
	return opts
}

// Encode writes v to w as a document of format f.
func (g *Graph) Encode(w io.Writer, f format.Format, v any, opts ...format.Options) error {
	hw := f.NewWriter(w, g.formatOptions(f, opts)...)
	if err := g.Marshal(hw, v); err != nil {
		return err
	}
	return hw.Close()
}

// Decode reads a document of format f from r.
func (g *Graph) Decode(r io.Reader, f format.Format, root any, opts ...format.Options) (any, error) {
	hr := f.NewReader(r, g.formatOptions(f, opts)...)
	v, err := g.Unmarshal(hr, root)
	if err != nil {
		return nil, err
	}
	if err := hr.Close(); err != nil {
		return nil, fault.Wrap(err, fault.ErrStream)
	}
	return v, nil
}

// ToXML returns v as an indented XML document.
func (g *Graph) ToXML(v any) (string, error) {
	var b bytes.Buffer
	if err := g.Encode(&b, format.XMLFormat, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (g *Graph) FromXML(doc string) (any, error) {
	return g.Decode(strings.NewReader(doc), format.XMLFormat, nil)
}

// DecodeAs decodes a document whose root is a T, or a *T when T is not a
// pointer type.
func DecodeAs[T any](g *Graph, r io.Reader, f format.Format) (T, error) {
	var zero T
	v, err := g.Decode(r, f, nil)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	if p, ok := v.(*T); ok && p != nil {
		return *p, nil
	}
	return zero, fault.New(fault.ErrTypeMismatch, "document holds %T, not %s", v, reflect.TypeFor[T]()).
		With("required-type", reflect.TypeFor[T]().String())
}
