package wire

import (
	"errors"
	"reflect"
	"testing"
)

type testOpcode uint16

func TestSendSizeKey(t *testing.T) {
	tests := []struct {
		width  SizeType
		adjust int
	}{
		{SizeByte, 0},
		{SizeUShort, 2},
		{SizeInt32, -1},
		{SizeByte, -8},
		{SizeUShort, 1000},
	}

	for _, tt := range tests {
		k := SendSizeKey(tt.width, tt.adjust)
		if k.Width() != tt.width || k.Adjust() != tt.adjust {
			t.Errorf("SendSizeKey(%s, %d) unpacks to %s, %d", tt.width, tt.adjust, k.Width(), k.Adjust())
		}
	}
}

func TestBuildKey_Canonical(t *testing.T) {
	tests := []struct {
		name     string
		typ      reflect.Type
		member   Member
		flags    ContextFlags
		specific SpecificKey
	}{
		{
			name: "plain string",
			typ:  reflect.TypeFor[string](),
		},
		{
			name:   "utf16 string",
			typ:    reflect.TypeFor[string](),
			member: Member{Encodings: []ContextFlags{FlagUTF16}},
			flags:  FlagEncoding | FlagUTF16,
		},
		{
			name:     "fixed string",
			typ:      reflect.TypeFor[string](),
			member:   Member{FixedSize: 4},
			flags:    FlagFixedSize,
			specific: 4,
		},
		{
			name:     "prefixed slice",
			typ:      reflect.TypeFor[[]int32](),
			member:   Member{SendSize: true, SizeWidth: SizeInt32, SizeAdjust: -1},
			flags:    FlagSendSize,
			specific: SendSizeKey(SizeInt32, -1),
		},
		{
			name:   "reversed primitive",
			typ:    reflect.TypeFor[uint32](),
			member: Member{Reverse: true},
			flags:  FlagReverse,
		},
		{
			name:   "string enum keeps charset",
			typ:    reflect.TypeFor[testOpcode](),
			member: Member{EnumString: true, Encodings: []ContextFlags{FlagUTF8}},
			flags:  FlagEnumString | FlagEncoding | FlagUTF8,
		},
		{
			name:     "pointer follows element",
			typ:      reflect.TypeFor[*string](),
			member:   Member{FixedSize: 8, Reverse: true},
			flags:    FlagFixedSize | FlagReverse,
			specific: 8,
		},
		{
			name:   "reversed integer enum",
			typ:    reflect.TypeFor[testOpcode](),
			member: Member{Reverse: true},
			flags:  FlagReverse,
		},
		{
			name:   "reversed slice elements",
			typ:    reflect.TypeFor[[]uint16](),
			member: Member{Reverse: true, SendSize: true, SizeWidth: SizeByte},
			flags:  FlagReverse | FlagSendSize,
		},
		{
			name: "struct is contextless",
			typ:  reflect.TypeFor[struct{ A int32 }](),
		},
		{
			name:   "go array drops matching fixed size",
			typ:    reflect.TypeFor[[6]int32](),
			member: Member{FixedSize: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewMemberContext(tt.typ, tt.member)
			key, err := ctx.BuildKey(false)
			if err != nil {
				t.Fatalf("BuildKey error: %v", err)
			}
			want := ContextKey{Flags: tt.flags, Specific: tt.specific, Type: tt.typ}
			if key != want {
				t.Errorf("BuildKey = %s, want %s", key, want)
			}
			if got := ctx.Requirement() == Contextless; got != want.Contextless() {
				t.Errorf("Requirement contextless = %v, want %v", got, want.Contextless())
			}
		})
	}
}

func TestBuildKey_Custom(t *testing.T) {
	ctx := NewMemberContext(reflect.TypeFor[string](), Member{Encodings: []ContextFlags{FlagUTF16}, FixedSize: 3})
	key, err := ctx.BuildKey(true)
	if err != nil {
		t.Fatalf("BuildKey error: %v", err)
	}
	if !key.Contextless() {
		t.Errorf("custom key = %s, want contextless", key)
	}
}

func TestBuildKey_Conflicts(t *testing.T) {
	tests := []struct {
		name   string
		member Member
	}{
		{"two charsets", Member{Encodings: []ContextFlags{FlagUTF16, FlagUTF8}}},
		{"not a charset", Member{Encodings: []ContextFlags{FlagReverse}}},
		{"charset without encoding", Member{Flags: FlagUTF16}},
		{"encoding without charset", Member{Flags: FlagEncoding}},
		{"fixed and sendsize", Member{FixedSize: 2, SendSize: true}},
		{"unknown width", Member{SendSize: true, SizeWidth: SizeType(9)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewMemberContext(reflect.TypeFor[string](), tt.member)
			_, err := ctx.BuildKey(false)
			if !errors.Is(err, ErrConflictingFlags) {
				t.Errorf("BuildKey error = %v, want ErrConflictingFlags", err)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Error("conflict should be a configuration error")
			}
			if ctx.HasKey() {
				t.Error("failed BuildKey should leave no key")
			}
		})
	}
}

func TestBuildKey_Inapplicable(t *testing.T) {
	tests := []struct {
		name   string
		typ    reflect.Type
		member Member
	}{
		{"charset on primitive", reflect.TypeFor[uint32](), Member{Encodings: []ContextFlags{FlagUTF16}}},
		{"fixed on primitive", reflect.TypeFor[uint32](), Member{FixedSize: 4}},
		{"charset on integer enum", reflect.TypeFor[testOpcode](), Member{Encodings: []ContextFlags{FlagUTF8}}},
		{"enumstring on string", reflect.TypeFor[string](), Member{EnumString: true}},
		{"reverse on struct", reflect.TypeFor[struct{ A int32 }](), Member{Reverse: true}},
		{"fixed on pointer to struct", reflect.TypeFor[*struct{ A int32 }](), Member{FixedSize: 2}},
		{"dontterminate on slice", reflect.TypeFor[[]string](), Member{DontTerminate: true}},
		{"go array length mismatch", reflect.TypeFor[[6]int32](), Member{FixedSize: 4}},
		{"sendsize on go array", reflect.TypeFor[[6]int32](), Member{SendSize: true, SizeWidth: SizeByte}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewMemberContext(tt.typ, tt.member)
			if _, err := ctx.BuildKey(false); !errors.Is(err, ErrConflictingFlags) {
				t.Errorf("BuildKey error = %v, want ErrConflictingFlags", err)
			}
			if ctx.HasKey() {
				t.Error("failed BuildKey should leave no key")
			}
		})
	}
}

func TestTypeContext_KeyBeforeBuild(t *testing.T) {
	ctx := NewTypeContext(reflect.TypeFor[int8]())
	if _, err := ctx.Key(); !errors.Is(err, ErrNoKey) {
		t.Errorf("Key() error = %v, want ErrNoKey", err)
	}

	other := NewTypeContext(reflect.TypeFor[int8]())
	if _, err := ctx.Equal(other); !errors.Is(err, ErrNoKey) {
		t.Errorf("Equal() error = %v, want ErrNoKey", err)
	}
}

func TestTypeContext_Equal(t *testing.T) {
	build := func(typ reflect.Type, m Member) *TypeContext {
		ctx := NewMemberContext(typ, m)
		if _, err := ctx.BuildKey(false); err != nil {
			t.Fatalf("BuildKey error: %v", err)
		}
		return ctx
	}

	str := reflect.TypeFor[string]()
	plainA := build(str, Member{Name: "A"})
	plainB := build(str, Member{Name: "B"})
	utf16 := build(str, Member{Encodings: []ContextFlags{FlagUTF16}})
	utf16b := build(str, Member{Name: "other", Encodings: []ContextFlags{FlagUTF16}})

	tests := []struct {
		name string
		a, b *TypeContext
		want bool
	}{
		{"contextless same type", plainA, plainB, true},
		{"contextless vs contextual", plainA, utf16, false},
		{"same contextual key", utf16, utf16b, true},
		{"different types", plainA, build(reflect.TypeFor[int8](), Member{}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Equal(tt.b)
			if err != nil {
				t.Fatalf("Equal error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContextFlags_String(t *testing.T) {
	if got := FlagNone.String(); got != "none" {
		t.Errorf("FlagNone.String() = %q", got)
	}
	if got := (FlagEncoding | FlagUTF16 | FlagSendSize).String(); got != "encoding|utf16|sendsize" {
		t.Errorf("String() = %q", got)
	}
}
