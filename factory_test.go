package wire

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type testLeaf struct {
	Value uint32
	Label string `wire:"utf16"`
}

type testLeft struct{ Leaf testLeaf }
type testRight struct{ Leaf testLeaf }

type testDiamond struct {
	Left  testLeft
	Right testRight
}

type testNode struct {
	Value    int32
	Next     *testNode
	Children []testNode `wire:"sendsize=byte"`
}

func TestFactory_Diamond(t *testing.T) {
	s, reg := compile(t, nil, reflect.TypeFor[testDiamond](), Member{})

	want := []ContextKey{
		{Type: reflect.TypeFor[testDiamond]()},
		{Type: reflect.TypeFor[testLeft]()},
		{Type: reflect.TypeFor[testRight]()},
		{Type: reflect.TypeFor[testLeaf]()},
		{Type: reflect.TypeFor[uint32]()},
		{Flags: FlagEncoding | FlagUTF16, Type: stringType},
	}
	if reg.Len() != len(want) {
		t.Errorf("registry has %d strategies, want %d: %v", reg.Len(), len(want), reg.Keys())
	}
	for _, k := range want {
		if !reg.Has(k) {
			t.Errorf("registry missing %s", k)
		}
	}

	v := testDiamond{Left: testLeft{testLeaf{1, "a"}}, Right: testRight{testLeaf{2, "b"}}}
	expectBytes(t, s, v, []byte{1, 0, 0, 0, 'a', 0, 0, 0, 2, 0, 0, 0, 'b', 0, 0, 0})
}

func TestFactory_Cycle(t *testing.T) {
	s, reg := compile(t, nil, reflect.TypeFor[testNode](), Member{})

	for _, k := range []ContextKey{
		{Type: reflect.TypeFor[testNode]()},
		{Type: reflect.TypeFor[*testNode]()},
		{Flags: FlagSendSize, Type: reflect.TypeFor[[]testNode]()},
	} {
		if !reg.Has(k) {
			t.Errorf("registry missing %s", k)
		}
	}

	v := testNode{
		Value:    1,
		Next:     &testNode{Value: 2, Children: []testNode{}},
		Children: []testNode{{Value: 3, Children: []testNode{}}},
	}
	want := []byte{
		1, 0, 0, 0,
		1, 2, 0, 0, 0, 0, 0,
		1, 3, 0, 0, 0, 0, 0,
	}
	expectBytes(t, s, v, want)
}

func TestFactory_DuplicateRoot(t *testing.T) {
	reg := NewRegistry()
	f := NewFactory(reg, NewTypeTable(), nil)
	typ := reflect.TypeFor[testLeaf]()

	if _, err := f.Create(context.Background(), NewTypeContext(typ)); err != nil {
		t.Fatalf("first Create error: %v", err)
	}
	n := reg.Len()

	_, err := f.Create(context.Background(), NewTypeContext(typ))
	if !errors.Is(err, ErrDuplicate) || !errors.Is(err, ErrConfiguration) {
		t.Errorf("second Create error = %v, want duplicate configuration error", err)
	}
	if reg.Len() != n {
		t.Errorf("registry grew from %d to %d", n, reg.Len())
	}
}

func TestFactory_ReusesRegistered(t *testing.T) {
	reg := NewRegistry()
	f := NewFactory(reg, NewTypeTable(), nil)

	leaf, err := f.Create(context.Background(), NewTypeContext(reflect.TypeFor[testLeaf]()))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := f.Create(context.Background(), NewTypeContext(reflect.TypeFor[testLeft]())); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	left, _ := reg.Get(ContextKey{Type: reflect.TypeFor[testLeft]()})
	if left.(*complexStrategy).members[0].strategy != leaf {
		t.Error("dependent should reuse the registered strategy")
	}
}

func TestFactory_NilType(t *testing.T) {
	_, err := NewFactory(NewRegistry(), NewTypeTable(), nil).Create(context.Background(), &TypeContext{})
	if !errors.Is(err, ErrInternal) {
		t.Errorf("Create error = %v, want ErrInternal", err)
	}
}

type fakeHandler struct {
	name   string
	accept bool
}

func (h fakeHandler) Name() string                { return h.name }
func (h fakeHandler) CanHandle(*TypeContext) bool { return h.accept }

func (h fakeHandler) Create(*TypeContext, Resolver) (Strategy, error) {
	return nil, nil
}

func (h fakeHandler) Subcontexts(*TypeContext) ([]*TypeContext, error) {
	return nil, nil
}

func TestSelectHandler(t *testing.T) {
	ctx := NewTypeContext(reflect.TypeFor[int8]())

	tests := []struct {
		name     string
		handlers []Handler
		want     error
	}{
		{"none", []Handler{fakeHandler{"a", false}}, ErrNoHandler},
		{"ambiguous", []Handler{fakeHandler{"a", true}, fakeHandler{"b", true}}, ErrAmbiguousHandler},
		{"single", []Handler{fakeHandler{"a", false}, fakeHandler{"b", true}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := selectHandler(tt.handlers, ctx)
			if !errors.Is(err, tt.want) {
				t.Fatalf("selectHandler error = %v, want %v", err, tt.want)
			}
			if tt.want == nil && h.Name() != "b" {
				t.Errorf("selected %s, want b", h.Name())
			}
		})
	}
}

func TestDefaultHandlers_Exclusive(t *testing.T) {
	tt := shapeTypes(t, SizeByte)
	if err := tt.Override(reflect.TypeFor[testStamp](), stampStrategy{}); err != nil {
		t.Fatal(err)
	}
	handlers := defaultHandlers(tt)

	types := []reflect.Type{
		reflect.TypeFor[bool](),
		reflect.TypeFor[float64](),
		reflect.TypeFor[string](),
		reflect.TypeFor[testClass](),
		reflect.TypeFor[testStamp](),
		reflect.TypeFor[testGUID](),
		reflect.TypeFor[[]int8](),
		reflect.TypeFor[[3]int8](),
		shapeType,
		reflect.TypeFor[*testLeaf](),
		reflect.TypeFor[testLeaf](),
	}
	for _, typ := range types {
		ctx := NewTypeContext(typ)
		if _, err := ctx.BuildKey(tt.isCustom(typ)); err != nil {
			t.Fatal(err)
		}
		if _, err := selectHandler(handlers, ctx); err != nil {
			t.Errorf("%v: %v", typ, err)
		}
	}
}
