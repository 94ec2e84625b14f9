package mapper

import (
	"math/big"
	"net/url"
	"reflect"
	"regexp"
	"sync"
	"time"
)

// TypeRegistry names types. A type without a registered name is named by its
// reflect string, which is remembered so the name resolves back within the
// process. Types only seen in other processes must be registered to be
// resolvable; unregistered names fail to resolve rather than guess.
type TypeRegistry struct {
	mu    sync.RWMutex
	names map[reflect.Type]string
	types map[string]reflect.Type
	seen  sync.Map
}

var builtins = []struct {
	name string
	t    reflect.Type
}{
	{"null", NullType},
	{"string", reflect.TypeOf("")},
	{"bool", reflect.TypeOf(false)},
	{"int", reflect.TypeOf(0)},
	{"int8", reflect.TypeOf(int8(0))},
	{"int16", reflect.TypeOf(int16(0))},
	{"int32", reflect.TypeOf(int32(0))},
	{"int64", reflect.TypeOf(int64(0))},
	{"uint", reflect.TypeOf(uint(0))},
	{"uint8", reflect.TypeOf(uint8(0))},
	{"uint16", reflect.TypeOf(uint16(0))},
	{"uint32", reflect.TypeOf(uint32(0))},
	{"uint64", reflect.TypeOf(uint64(0))},
	{"uintptr", reflect.TypeOf(uintptr(0))},
	{"float32", reflect.TypeOf(float32(0))},
	{"float64", reflect.TypeOf(float64(0))},
	{"complex64", reflect.TypeOf(complex64(0))},
	{"complex128", reflect.TypeOf(complex128(0))},
	{"list", reflect.TypeOf([]any{})},
	{"map", reflect.TypeOf(map[string]any{})},
	{"byte-array", reflect.TypeOf([]byte{})},
	{"time", reflect.TypeOf(time.Time{})},
	{"duration", reflect.TypeOf(time.Duration(0))},
	{"url", reflect.TypeOf(&url.URL{})},
	{"regexp", reflect.TypeOf(&regexp.Regexp{})},
	{"big-int", reflect.TypeOf(&big.Int{})},
	{"big-float", reflect.TypeOf(&big.Float{})},
}

// NewTypeRegistry returns a registry knowing the built-in names.
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{
		names: map[reflect.Type]string{},
		types: map[string]reflect.Type{},
	}
	for _, b := range builtins {
		r.Register(b.name, b.t)
	}
	return r
}

// Register names t. A later registration of the same name or type replaces
// the earlier one.
func (r *TypeRegistry) Register(name string, t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.names[t]; ok {
		delete(r.types, old)
	}
	if old, ok := r.types[name]; ok {
		delete(r.names, old)
	}
	r.names[t] = name
	r.types[name] = t
}

// Name returns the name of t.
func (r *TypeRegistry) Name(t reflect.Type) string {
	r.mu.RLock()
	name, ok := r.names[t]
	r.mu.RUnlock()
	if ok {
		return name
	}
	name = t.String()
	r.seen.LoadOrStore(name, t)
	return name
}

// Type resolves a name registered or produced by Name.
func (r *TypeRegistry) Type(name string) (reflect.Type, bool) {
	r.mu.RLock()
	t, ok := r.types[name]
	r.mu.RUnlock()
	if ok {
		return t, true
	}
	if v, ok := r.seen.Load(name); ok {
		return v.(reflect.Type), true
	}
	return nil, false
}
