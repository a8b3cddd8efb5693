package wire

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type testShape interface {
	Corners() int
}

type testSquare struct {
	Side uint8
}

func (testSquare) Corners() int { return 4 }

type testCircle struct {
	Radius uint16
}

func (testCircle) Corners() int { return 0 }

type testLine struct{}

func (testLine) Corners() int { return 2 }

var shapeType = reflect.TypeFor[testShape]()

func shapeTypes(t *testing.T, width SizeType) *TypeTable {
	t.Helper()
	tt := NewTypeTable()
	err := tt.Subtypes(shapeType, width,
		Subtype{Discriminator: 1, Type: reflect.TypeFor[testSquare]()},
		Subtype{Discriminator: 2, Type: reflect.TypeFor[testCircle]()},
	)
	if err != nil {
		t.Fatalf("Subtypes error: %v", err)
	}
	return tt
}

func TestSubtype_Dispatch(t *testing.T) {
	s, reg := compile(t, shapeTypes(t, SizeByte), shapeType, Member{})

	var circle testShape = testCircle{Radius: 0x0102}
	got := encode(t, s, circle)
	want := []byte{2, 0x02, 0x01}
	if string(got) != string(want) {
		t.Fatalf("Write = % x, want % x", got, want)
	}

	back, err := s.Read(NewBufferReader(got))
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if back.Type() != shapeType {
		t.Errorf("Read type = %v, want the base interface", back.Type())
	}
	if back.Interface() != circle {
		t.Errorf("Read = %#v, want %#v", back.Interface(), circle)
	}

	for _, typ := range []reflect.Type{reflect.TypeFor[testSquare](), reflect.TypeFor[testCircle]()} {
		if !reg.Has(ContextKey{Type: typ}) {
			t.Errorf("child %v should be registered", typ)
		}
	}
}

func TestSubtype_Width(t *testing.T) {
	s, _ := compile(t, shapeTypes(t, SizeUShort), shapeType, Member{})
	var square testShape = testSquare{Side: 9}
	expectBytes(t, s, square, []byte{1, 0, 9})
}

func TestSubtype_UnknownDiscriminator(t *testing.T) {
	s, _ := compile(t, shapeTypes(t, SizeByte), shapeType, Member{})
	_, err := s.Read(NewBufferReader([]byte{7, 0}))
	if !errors.Is(err, ErrUnknownSubtype) {
		t.Errorf("Read error = %v, want ErrUnknownSubtype", err)
	}
}

func TestSubtype_UnmappedValue(t *testing.T) {
	s, _ := compile(t, shapeTypes(t, SizeByte), shapeType, Member{})

	var line testShape = testLine{}
	if err := s.Write(reflect.ValueOf(&line).Elem(), NewBufferWriter()); !errors.Is(err, ErrUnknownSubtype) {
		t.Errorf("Write(unmapped) error = %v, want ErrUnknownSubtype", err)
	}

	var none testShape
	if err := s.Write(reflect.ValueOf(&none).Elem(), NewBufferWriter()); !errors.Is(err, ErrUnknownSubtype) {
		t.Errorf("Write(nil) error = %v, want ErrUnknownSubtype", err)
	}
}

func TestTypeTable_SubtypesInvalid(t *testing.T) {
	square := reflect.TypeFor[testSquare]()
	tests := []struct {
		name     string
		base     reflect.Type
		width    SizeType
		children []Subtype
		want     error
	}{
		{
			name:     "duplicate discriminator",
			base:     shapeType,
			children: []Subtype{{1, square}, {1, reflect.TypeFor[testCircle]()}},
			want:     ErrDuplicateDiscriminator,
		},
		{
			name:     "not implementing",
			base:     shapeType,
			children: []Subtype{{1, reflect.TypeFor[int32]()}},
			want:     ErrConflictingFlags,
		},
		{
			name:     "base not interface",
			base:     square,
			children: []Subtype{{1, square}},
			want:     ErrConflictingFlags,
		},
		{
			name:     "discriminator exceeds width",
			base:     shapeType,
			children: []Subtype{{300, square}},
			want:     ErrConflictingFlags,
		},
		{
			name:     "listed twice",
			base:     shapeType,
			children: []Subtype{{1, square}, {2, square}},
			want:     ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewTypeTable().Subtypes(tt.base, tt.width, tt.children...)
			if !errors.Is(err, tt.want) {
				t.Errorf("Subtypes error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSubtype_InterfaceWithoutTable(t *testing.T) {
	_, err := NewFactory(NewRegistry(), NewTypeTable(), nil).Create(context.Background(), NewTypeContext(shapeType))
	if !errors.Is(err, ErrNoHandler) {
		t.Errorf("Create error = %v, want ErrNoHandler", err)
	}
}
