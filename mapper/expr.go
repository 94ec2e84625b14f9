package mapper

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FieldFilter decides with an expr-lang expression whether members are
// written. The expression sees
//
//	owner     declaring type, as serialized
//	field     Go field name
//	name      serialized member name
//	class     field type, as serialized
//	exported  whether the field is exported
//
// and must produce a bool, for example `exported && !(field startsWith "tmp")`.
type FieldFilter struct {
	Mapper
	source  string
	program *vm.Program
	results sync.Map // memberKey -> bool
}

func fieldEnv(m Mapper, owner reflect.Type, field string) map[string]any {
	env := map[string]any{
		"owner":    "",
		"field":    field,
		"name":     field,
		"class":    "",
		"exported": false,
	}
	if owner == nil {
		return env
	}
	env["owner"] = m.SerializedClass(owner)
	env["name"] = m.SerializedMember(owner, field)
	if owner.Kind() == reflect.Struct {
		if sf, ok := owner.FieldByName(field); ok {
			env["class"] = m.SerializedClass(sf.Type)
			env["exported"] = sf.IsExported()
		}
	}
	return env
}

// NewFieldFilter compiles source.
func NewFieldFilter(m Mapper, source string) (*FieldFilter, error) {
	program, err := expr.Compile(source, expr.Env(fieldEnv(m, nil, "")), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("field filter %q: %w", source, err)
	}
	return &FieldFilter{Mapper: m, source: source, program: program}, nil
}

func (f *FieldFilter) ShouldSerializeMember(owner reflect.Type, field string) bool {
	if !f.Mapper.ShouldSerializeMember(owner, field) {
		return false
	}
	key := memberKey{owner, field}
	if v, ok := f.results.Load(key); ok {
		return v.(bool)
	}
	keep := true
	out, err := expr.Run(f.program, fieldEnv(f.Mapper, owner, field))
	if err != nil {
		slog.Warn("field filter failed, keeping field", "filter", f.source, "type", owner, "field", field, "error", err)
	} else {
		keep, _ = out.(bool)
	}
	f.results.Store(key, keep)
	return keep
}
