package wire

import "reflect"

// subtypeStrategy dispatches an interface value to the strategy of its
// concrete type, prefixed by the discriminator of that type.
type subtypeStrategy struct {
	typ      reflect.Type
	table    *subtypeTable
	disc     *sizeStrategy
	children map[reflect.Type]Strategy
}

func (s *subtypeStrategy) Type() reflect.Type              { return s.typ }
func (s *subtypeStrategy) Requirement() ContextRequirement { return Contextless }

func (s *subtypeStrategy) Write(v reflect.Value, w Writer) error {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return newValueError(ErrUnknownSubtype, s.typ, "nil value")
		}
		v = v.Elem()
	}

	disc, ok := s.table.byType[v.Type()]
	if !ok {
		return newValueError(ErrUnknownSubtype, s.typ, "unmapped concrete type %s", v.Type())
	}
	if err := s.disc.write(disc, w); err != nil {
		return err
	}
	return s.children[v.Type()].Write(v, w)
}

func (s *subtypeStrategy) Read(r Reader) (reflect.Value, error) {
	disc, err := s.disc.read(r)
	if err != nil {
		return reflect.Value{}, err
	}
	child, ok := s.table.byDisc[disc]
	if !ok {
		return reflect.Value{}, newValueError(ErrUnknownSubtype, s.typ, "discriminator %d", disc)
	}

	cv, err := s.children[child].Read(r)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(s.typ).Elem()
	out.Set(cv)
	return out, nil
}
