package wire

import "reflect"

// arrayStrategy writes slices and Go arrays element by element through an
// already resolved element strategy. With count > 0 no length is written;
// otherwise a size field precedes the elements.
type arrayStrategy struct {
	typ    reflect.Type
	req    ContextRequirement
	elem   Strategy
	count  int
	size   *sizeStrategy
	adjust int
}

func (s *arrayStrategy) Type() reflect.Type              { return s.typ }
func (s *arrayStrategy) Requirement() ContextRequirement { return s.req }

func (s *arrayStrategy) Write(v reflect.Value, w Writer) error {
	n := v.Len()
	if s.size != nil {
		if err := s.size.write(int64(n-s.adjust), w); err != nil {
			return err
		}
	} else if n != s.count {
		return newValueError(ErrValueLength, s.typ, "length %d, fixed count %d", n, s.count)
	}

	for i := 0; i < n; i++ {
		if err := s.elem.Write(v.Index(i), w); err != nil {
			return err
		}
	}
	return nil
}

func (s *arrayStrategy) Read(r Reader) (reflect.Value, error) {
	n := s.count
	if s.size != nil {
		stored, err := s.size.read(r)
		if err != nil {
			return reflect.Value{}, err
		}
		n = int(stored) + s.adjust
		if n < 0 {
			return reflect.Value{}, newValueError(ErrUnsupportedValue, s.typ, "negative length %d", n)
		}
	}

	if s.typ.Kind() == reflect.Array {
		out := reflect.New(s.typ).Elem()
		for i := 0; i < n; i++ {
			ev, err := s.elem.Read(r)
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	}

	// The count comes off the wire, so capacity is bounded by what the
	// reader can still deliver and grows with decoded elements.
	capacity := min(n, maxPrealloc)
	if rem, ok := r.(remainder); ok {
		if unit := minWireSize(s.elem); unit > 0 {
			if n > rem.Remaining()/unit {
				return reflect.Value{}, &RangeError{Requested: n * unit, Available: rem.Remaining()}
			}
			capacity = n
		}
	}

	out := reflect.MakeSlice(s.typ, 0, capacity)
	for i := 0; i < n; i++ {
		ev, err := s.elem.Read(r)
		if err != nil {
			return reflect.Value{}, err
		}
		out = reflect.Append(out, ev)
	}
	return out, nil
}

// maxPrealloc caps the elements allocated ahead of decoding when the
// reader cannot report its remaining length.
const maxPrealloc = 1024

// remainder is implemented by readers that know how many bytes are left.
type remainder interface {
	Remaining() int
}

// minWireSize returns the fewest bytes one value written by s occupies, or 0
// when it cannot be bounded.
func minWireSize(s Strategy) int {
	switch s := s.(type) {
	case *primitiveStrategy:
		return s.size
	case *enumStrategy:
		return minWireSize(s.inner)
	case *enumStringStrategy:
		return minWireSize(s.inner)
	case *pointerStrategy:
		return 1
	case *subtypeStrategy:
		return minWireSize(s.disc.inner)
	case *arrayStrategy:
		if s.size != nil {
			return minWireSize(s.size.inner)
		}
		return s.count * minWireSize(s.elem)
	case *stringStrategy:
		return minLayerSize(s.layer)
	case *complexStrategy:
		total := 0
		for _, m := range s.members {
			total += minWireSize(m.strategy)
		}
		return total
	}
	return 0
}

func minLayerSize(l stringLayer) int {
	switch l := l.(type) {
	case *terminatedLayer:
		return l.cs.unit()
	case *fixedLayer:
		return l.size * l.cs.unit()
	case *prefixedLayer:
		return minWireSize(l.size.inner)
	case *reverseLayer:
		return minLayerSize(l.inner)
	}
	return 0
}
