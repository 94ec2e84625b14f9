package converter

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/signadot/objgraph/fault"
	"github.com/signadot/objgraph/mapper"
)

type entry struct {
	c        Converter
	priority int
	seq      int
}

type fieldKey struct {
	owner reflect.Type
	field string
}

// Registry dispatches types to converters by priority. Among equal
// priorities the converter registered last wins. Lookups are cached; a
// registration evicts the cached types the new converter accepts.
//
// A Registry is safe for concurrent use. A lookup racing a registration may
// return either converter; once Register returns, lookups see the new one.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	seq     int
	local   map[fieldKey]Converter
	cache   sync.Map // reflect.Type -> Converter
	noCache bool
	log     *slog.Logger
}

var _ Lookup = (*Registry)(nil)

type RegistryOption func(*Registry)

// WithoutCache disables the lookup cache.
func WithoutCache() RegistryOption {
	return func(r *Registry) { r.noCache = true }
}

func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{local: map[fieldKey]Converter{}}
	for _, o := range opts {
		o(r)
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	return r
}

// Register adds c at priority.
func (r *Registry) Register(c Converter, priority int) {
	r.mu.Lock()
	r.seq++
	r.entries = append(r.entries, entry{c: c, priority: priority, seq: r.seq})
	sort.SliceStable(r.entries, func(i, j int) bool {
		a, b := r.entries[i], r.entries[j]
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		return a.seq > b.seq
	})
	r.mu.Unlock()

	evicted := 0
	r.cache.Range(func(k, _ any) bool {
		if c.CanConvert(k.(reflect.Type)) {
			r.cache.Delete(k)
			evicted++
		}
		return true
	})
	r.log.Debug("registered converter", "converter", Name(c), "priority", priority, "evicted", evicted)
}

// RegisterSingleValue adds svc at priority.
func (r *Registry) RegisterSingleValue(svc SingleValueConverter, priority int) {
	r.Register(SingleValue(svc), priority)
}

// RegisterLocal sets the converter for the field declared by owner,
// overriding the lookup by type.
func (r *Registry) RegisterLocal(owner reflect.Type, field string, c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.local[fieldKey{owner, field}] = c
}

func (r *Registry) LookupLocal(owner reflect.Type, field string) Converter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.local[fieldKey{owner, field}]
}

func (r *Registry) Lookup(t reflect.Type) (Converter, error) {
	if t == nil {
		t = mapper.NullType
	}
	if !r.noCache {
		if c, ok := r.cache.Load(t); ok {
			return c.(Converter), nil
		}
	}
	// The result is cached under the read lock so that a registration's
	// eviction runs after any store made from the entries it replaced.
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found Converter
	for _, e := range r.entries {
		if e.c.CanConvert(t) {
			found = e.c
			break
		}
	}
	if found == nil {
		return nil, fault.New(fault.ErrNoConverter, "no converter for %s", t).With("class", t.String())
	}
	if !r.noCache {
		r.cache.Store(t, found)
	}
	return found, nil
}

// Name describes c for logs and error context.
func Name(c Converter) string {
	if n, ok := c.(interface{ SingleValueConverter() SingleValueConverter }); ok {
		return fmt.Sprintf("%T", n.SingleValueConverter())
	}
	return fmt.Sprintf("%T", c)
}
