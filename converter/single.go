package converter

import (
	"reflect"

	"github.com/signadot/objgraph/fault"
	"github.com/signadot/objgraph/hier"
)

type singleValue struct {
	svc SingleValueConverter
}

// SingleValue adapts svc to a Converter writing the node value.
func SingleValue(svc SingleValueConverter) Converter {
	return &singleValue{svc: svc}
}

// AsSingleValue returns the SingleValueConverter behind c, if any.
func AsSingleValue(c Converter) (SingleValueConverter, bool) {
	switch x := c.(type) {
	case *singleValue:
		return x.svc, true
	case SingleValueConverter:
		return x, true
	}
	return nil, false
}

func (s *singleValue) SingleValueConverter() SingleValueConverter { return s.svc }

func (s *singleValue) CanConvert(t reflect.Type) bool { return s.svc.CanConvert(t) }

func (s *singleValue) Marshal(v reflect.Value, w hier.Writer, _ MarshallingContext) error {
	text, err := s.svc.ToString(v)
	if err != nil {
		return fault.Wrap(err, fault.ErrConversion)
	}
	w.SetValue(text)
	return nil
}

func (s *singleValue) Unmarshal(r hier.Reader, ctx UnmarshallingContext) (reflect.Value, error) {
	v, err := s.svc.FromString(r.Value(), ctx.RequiredType())
	if err != nil {
		return reflect.Value{}, fault.Wrap(err, fault.ErrConversion)
	}
	return v, nil
}
