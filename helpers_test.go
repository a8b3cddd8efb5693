package wire

import (
	"bytes"
	"context"
	"reflect"
	"testing"
)

// compile builds the strategy for typ under member m in a fresh registry.
func compile(t *testing.T, types *TypeTable, typ reflect.Type, m Member) (Strategy, *Registry) {
	t.Helper()
	if types == nil {
		types = NewTypeTable()
	}
	reg := NewRegistry()
	s, err := NewFactory(reg, types, nil).Create(context.Background(), NewMemberContext(typ, m))
	if err != nil {
		t.Fatalf("Create(%v) error: %v", typ, err)
	}
	return s, reg
}

func encode(t *testing.T, s Strategy, v any) []byte {
	t.Helper()
	w := NewBufferWriter()
	if err := s.Write(reflect.ValueOf(v), w); err != nil {
		t.Fatalf("Write(%v) error: %v", v, err)
	}
	return w.Bytes()
}

func decode(t *testing.T, s Strategy, data []byte) any {
	t.Helper()
	r := NewBufferReader(data)
	v, err := s.Read(r)
	if err != nil {
		t.Fatalf("Read(% x) error: %v", data, err)
	}
	if r.Remaining() != 0 {
		t.Errorf("Read left %d bytes", r.Remaining())
	}
	return v.Interface()
}

// expectBytes encodes v, compares the bytes and decodes them back to v.
func expectBytes(t *testing.T, s Strategy, v any, want []byte) {
	t.Helper()
	got := encode(t, s, v)
	if !bytes.Equal(got, want) {
		t.Fatalf("Write(%v) = % x, want % x", v, got, want)
	}
	if back := decode(t, s, got); !reflect.DeepEqual(back, v) {
		t.Errorf("Read = %#v, want %#v", back, v)
	}
}
