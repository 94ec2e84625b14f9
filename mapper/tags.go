package mapper

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/signadot/objgraph/reflection"
)

// Tags applies `xs:"..."` struct tags. Tags are read from the fields a type
// declares itself; promoted fields are configured on the embedded type.
type Tags struct {
	Mapper
	owners sync.Map // reflect.Type -> *ownerTags
}

type ownerTags struct {
	byField      map[string]reflection.Tag
	bySerialized map[string]string
	implicit     []*ImplicitCollection
}

func NewTags(m Mapper) *Tags {
	return &Tags{Mapper: m}
}

func (tm *Tags) load(owner reflect.Type) *ownerTags {
	if owner == nil || owner.Kind() != reflect.Struct {
		return nil
	}
	if v, ok := tm.owners.Load(owner); ok {
		return v.(*ownerTags)
	}
	ot := &ownerTags{
		byField:      map[string]reflection.Tag{},
		bySerialized: map[string]string{},
	}
	for i := 0; i < owner.NumField(); i++ {
		sf := owner.Field(i)
		tag, err := reflection.ParseTag(sf.Tag)
		if err != nil {
			slog.Warn("ignoring struct tag", "type", owner, "field", sf.Name, "error", err)
			continue
		}
		ot.byField[sf.Name] = tag
		if tag.Name != "" {
			ot.bySerialized[tag.Name] = sf.Name
		}
		if tag.Implicit && sf.Type.Kind() == reflect.Slice {
			ot.implicit = append(ot.implicit, &ImplicitCollection{
				Owner:    owner,
				Field:    sf.Name,
				ItemType: sf.Type.Elem(),
				ItemName: tag.Item,
			})
		}
	}
	v, _ := tm.owners.LoadOrStore(owner, ot)
	return v.(*ownerTags)
}

func (tm *Tags) tag(owner reflect.Type, field string) (reflection.Tag, bool) {
	ot := tm.load(owner)
	if ot == nil {
		return reflection.Tag{}, false
	}
	tag, ok := ot.byField[field]
	return tag, ok
}

func (tm *Tags) SerializedMember(owner reflect.Type, field string) string {
	if tag, ok := tm.tag(owner, field); ok && tag.Name != "" {
		return tag.Name
	}
	return tm.Mapper.SerializedMember(owner, field)
}

func (tm *Tags) RealMember(owner reflect.Type, serialized string) string {
	if ot := tm.load(owner); ot != nil {
		if field, ok := ot.bySerialized[serialized]; ok {
			return field
		}
	}
	return tm.Mapper.RealMember(owner, serialized)
}

func (tm *Tags) ShouldSerializeMember(owner reflect.Type, field string) bool {
	if tag, ok := tm.tag(owner, field); ok && tag.Omit {
		return false
	}
	return tm.Mapper.ShouldSerializeMember(owner, field)
}

func (tm *Tags) UseAttribute(owner reflect.Type, field string, fieldType reflect.Type) bool {
	if tag, ok := tm.tag(owner, field); ok && tag.Attr {
		return true
	}
	return tm.Mapper.UseAttribute(owner, field, fieldType)
}

func (tm *Tags) OmitEmpty(owner reflect.Type, field string) bool {
	if tag, ok := tm.tag(owner, field); ok && tag.OmitEmpty {
		return true
	}
	return tm.Mapper.OmitEmpty(owner, field)
}

func (tm *Tags) ImplicitCollectionForField(owner reflect.Type, field string) *ImplicitCollection {
	if ot := tm.load(owner); ot != nil {
		for _, d := range ot.implicit {
			if d.Field == field {
				return d
			}
		}
	}
	return tm.Mapper.ImplicitCollectionForField(owner, field)
}

func (tm *Tags) ImplicitCollectionForItem(owner, itemType reflect.Type, itemName string) *ImplicitCollection {
	if ot := tm.load(owner); ot != nil {
		if d := matchItem(ot.implicit, itemType, itemName); d != nil {
			return d
		}
	}
	return tm.Mapper.ImplicitCollectionForItem(owner, itemType, itemName)
}
