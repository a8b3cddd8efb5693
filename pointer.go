package wire

import "reflect"

// pointerStrategy writes a presence byte followed by the pointed-to value.
type pointerStrategy struct {
	typ  reflect.Type
	req  ContextRequirement
	elem Strategy
}

func (s *pointerStrategy) Type() reflect.Type              { return s.typ }
func (s *pointerStrategy) Requirement() ContextRequirement { return s.req }

func (s *pointerStrategy) Write(v reflect.Value, w Writer) error {
	if v.IsNil() {
		return w.WriteByte(0)
	}
	if err := w.WriteByte(1); err != nil {
		return err
	}
	return s.elem.Write(v.Elem(), w)
}

func (s *pointerStrategy) Read(r Reader) (reflect.Value, error) {
	present, err := r.ReadByte()
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(s.typ).Elem()
	if present == 0 {
		return out, nil
	}

	ev, err := s.elem.Read(r)
	if err != nil {
		return reflect.Value{}, err
	}
	p := reflect.New(s.typ.Elem())
	p.Elem().Set(ev)
	out.Set(p)
	return out, nil
}
