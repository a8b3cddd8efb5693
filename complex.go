package wire

import (
	"fmt"
	"reflect"
)

// complexMember is one serialized struct field.
type complexMember struct {
	name     string
	index    []int
	strategy Strategy
}

// complexStrategy writes struct fields in declaration order.
type complexStrategy struct {
	typ     reflect.Type
	members []complexMember
}

func (s *complexStrategy) Type() reflect.Type              { return s.typ }
func (s *complexStrategy) Requirement() ContextRequirement { return Contextless }

func (s *complexStrategy) Write(v reflect.Value, w Writer) error {
	for _, m := range s.members {
		if err := m.strategy.Write(v.FieldByIndex(m.index), w); err != nil {
			return fmt.Errorf("%s.%s: %w", s.typ.Name(), m.name, err)
		}
	}
	return nil
}

func (s *complexStrategy) Read(r Reader) (reflect.Value, error) {
	out := reflect.New(s.typ).Elem()
	for _, m := range s.members {
		fv, err := m.strategy.Read(r)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%s.%s: %w", s.typ.Name(), m.name, err)
		}
		out.FieldByIndex(m.index).Set(fv)
	}
	return out, nil
}

// customStrategy marks a strategy supplied by the host type.
type customStrategy struct {
	Strategy
}

func (s *customStrategy) Requirement() ContextRequirement { return Contextless }

// refStrategy stands in for a dependency compiled in the same batch. The
// factory binds it before the batch is committed.
type refStrategy struct {
	key    ContextKey
	target Strategy
}

func (s *refStrategy) Type() reflect.Type { return s.key.Type }

func (s *refStrategy) Requirement() ContextRequirement {
	if s.key.Contextless() {
		return Contextless
	}
	return RequiresContext
}

func (s *refStrategy) Write(v reflect.Value, w Writer) error {
	if s.target == nil {
		return &LookupError{Key: s.key}
	}
	return s.target.Write(v, w)
}

func (s *refStrategy) Read(r Reader) (reflect.Value, error) {
	if s.target == nil {
		return reflect.Value{}, &LookupError{Key: s.key}
	}
	return s.target.Read(r)
}
