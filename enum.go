package wire

import (
	"reflect"
	"strconv"
)

// enumStrategy writes a named integer through the strategy of its underlying
// integer type. Ordinals without a declared name are accepted.
type enumStrategy struct {
	typ   reflect.Type
	req   ContextRequirement
	inner Strategy
}

func (s *enumStrategy) Type() reflect.Type              { return s.typ }
func (s *enumStrategy) Requirement() ContextRequirement { return s.req }

func (s *enumStrategy) Write(v reflect.Value, w Writer) error {
	return s.inner.Write(v.Convert(s.inner.Type()), w)
}

func (s *enumStrategy) Read(r Reader) (reflect.Value, error) {
	v, err := s.inner.Read(r)
	if err != nil {
		return reflect.Value{}, err
	}
	return v.Convert(s.typ), nil
}

// enumStringStrategy writes the declared name of an enum value through a
// string strategy.
type enumStringStrategy struct {
	typ   reflect.Type
	req   ContextRequirement
	names *enumTable
	inner Strategy
}

func (s *enumStringStrategy) Type() reflect.Type              { return s.typ }
func (s *enumStringStrategy) Requirement() ContextRequirement { return s.req }

func (s *enumStringStrategy) Write(v reflect.Value, w Writer) error {
	ordinal := enumOrdinal(v)
	name, ok := s.names.byValue[ordinal]
	if !ok {
		return newValueError(ErrUnsupportedValue, s.typ, "no name for value %d", ordinal)
	}
	out := reflect.New(s.inner.Type()).Elem()
	out.SetString(name)
	return s.inner.Write(out, w)
}

func (s *enumStringStrategy) Read(r Reader) (reflect.Value, error) {
	v, err := s.inner.Read(r)
	if err != nil {
		return reflect.Value{}, err
	}
	ordinal, ok := s.names.byName[v.String()]
	if !ok {
		return reflect.Value{}, newValueError(ErrUnsupportedValue, s.typ, "no value named %s", strconv.Quote(v.String()))
	}
	out := reflect.New(s.typ).Elem()
	if isUnsignedKind(s.typ.Kind()) {
		out.SetUint(uint64(ordinal))
	} else {
		out.SetInt(ordinal)
	}
	return out, nil
}

func enumOrdinal(v reflect.Value) int64 {
	if isUnsignedKind(v.Kind()) {
		return int64(v.Uint())
	}
	return v.Int()
}
