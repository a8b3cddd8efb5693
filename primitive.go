package wire

import (
	"encoding/binary"
	"math"
	"reflect"
)

// primitiveStrategy encodes bool, integer and float kinds at their natural
// width. Little-endian unless bigEndian is set by a reverse member.
type primitiveStrategy struct {
	typ       reflect.Type
	size      int
	bigEndian bool
	req       ContextRequirement
}

func newPrimitiveStrategy(t reflect.Type, bigEndian bool, req ContextRequirement) *primitiveStrategy {
	return &primitiveStrategy{typ: t, size: primitiveSize(t.Kind()), bigEndian: bigEndian, req: req}
}

func primitiveSize(k reflect.Kind) int {
	switch k {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return 1
	case reflect.Int16, reflect.Uint16:
		return 2
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		return 4
	default:
		return 8
	}
}

func (s *primitiveStrategy) Type() reflect.Type              { return s.typ }
func (s *primitiveStrategy) Requirement() ContextRequirement { return s.req }

func (s *primitiveStrategy) order() binary.ByteOrder {
	if s.bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (s *primitiveStrategy) Write(v reflect.Value, w Writer) error {
	var bits uint64
	switch s.typ.Kind() {
	case reflect.Bool:
		if v.Bool() {
			bits = 1
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		bits = uint64(v.Int())
	case reflect.Float32:
		bits = uint64(math.Float32bits(float32(v.Float())))
	case reflect.Float64:
		bits = math.Float64bits(v.Float())
	default:
		bits = v.Uint()
	}
	return w.WriteBytes(s.encode(bits))
}

func (s *primitiveStrategy) encode(bits uint64) []byte {
	buf := make([]byte, s.size)
	switch s.size {
	case 1:
		buf[0] = byte(bits)
	case 2:
		s.order().PutUint16(buf, uint16(bits))
	case 4:
		s.order().PutUint32(buf, uint32(bits))
	default:
		s.order().PutUint64(buf, bits)
	}
	return buf
}

func (s *primitiveStrategy) Read(r Reader) (reflect.Value, error) {
	buf, err := r.ReadBytes(s.size)
	if err != nil {
		return reflect.Value{}, err
	}

	var bits uint64
	switch s.size {
	case 1:
		bits = uint64(buf[0])
	case 2:
		bits = uint64(s.order().Uint16(buf))
	case 4:
		bits = uint64(s.order().Uint32(buf))
	default:
		bits = s.order().Uint64(buf)
	}

	out := reflect.New(s.typ).Elem()
	switch s.typ.Kind() {
	case reflect.Bool:
		out.SetBool(bits != 0)
	case reflect.Int8:
		out.SetInt(int64(int8(bits)))
	case reflect.Int16:
		out.SetInt(int64(int16(bits)))
	case reflect.Int32:
		out.SetInt(int64(int32(bits)))
	case reflect.Int, reflect.Int64:
		out.SetInt(int64(bits))
	case reflect.Float32:
		out.SetFloat(float64(math.Float32frombits(uint32(bits))))
	case reflect.Float64:
		out.SetFloat(math.Float64frombits(bits))
	default:
		out.SetUint(bits)
	}
	return out, nil
}

// sizeStrategy reads and writes a length or discriminator field of one
// SizeType width through the registered integer strategy for that width.
type sizeStrategy struct {
	width SizeType
	inner Strategy
}

// sizeFieldType returns the integer type backing a size field.
func sizeFieldType(width SizeType) reflect.Type {
	switch width {
	case SizeInt32:
		return reflect.TypeFor[int32]()
	case SizeUShort:
		return reflect.TypeFor[uint16]()
	default:
		return reflect.TypeFor[uint8]()
	}
}

func (s *sizeStrategy) write(n int64, w Writer) error {
	if !fitsWidth(n, s.width) {
		return newValueError(ErrValueTooLong, s.inner.Type(), "size field %d does not fit %s", n, s.width)
	}
	v := reflect.New(s.inner.Type()).Elem()
	if isUnsignedKind(v.Kind()) {
		v.SetUint(uint64(n))
	} else {
		v.SetInt(n)
	}
	return s.inner.Write(v, w)
}

func (s *sizeStrategy) read(r Reader) (int64, error) {
	v, err := s.inner.Read(r)
	if err != nil {
		return 0, err
	}
	if isUnsignedKind(v.Kind()) {
		return int64(v.Uint()), nil
	}
	return v.Int(), nil
}
