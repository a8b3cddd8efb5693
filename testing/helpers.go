// Package testing provides fixtures and helpers for wire tests.
package testing

import (
	"reflect"
	"testing"

	"github.com/zoobzio/wire"
)

// Realm is an enum fixture with declared names.
type Realm uint8

// Realm values.
const (
	RealmEU Realm = 1
	RealmUS Realm = 2
)

// Payload is a subtype base fixture.
type Payload interface {
	Opcode() uint16
}

// Chat is the subtype with discriminator 1.
type Chat struct {
	Channel string `wire:"sendsize=byte"`
	Text    string `wire:"utf16"`
}

// Opcode implements Payload.
func (Chat) Opcode() uint16 { return 0x95 }

// Move is the subtype with discriminator 2.
type Move struct {
	X, Y, Z float32
	Facing  float32
}

// Opcode implements Payload.
func (Move) Opcode() uint16 { return 0xB5 }

// Login exercises every handler: strings with fixed, prefixed and reversed
// layers, both enum forms, sized and fixed arrays, pointers and subtypes.
type Login struct {
	Game     string `wire:"fixed=4"`
	Account  string `wire:"utf16,sendsize=ushort"`
	Platform string `wire:"dontterminate,fixed=4,reverse"`
	Realm    Realm  `wire:"enumstring"`
	Home     Realm
	Build    uint16 `wire:"reverse"`
	Seed     [4]byte
	Tags     []string `wire:"sendsize=byte"`
	Checksum []int32  `wire:"fixed=2"`
	Parent   *Login
	Payload  Payload
	Internal string `wire:"-"`
}

// Types returns a TypeTable declaring the fixture enums and subtypes.
func Types(tb testing.TB) *wire.TypeTable {
	tb.Helper()
	tt := wire.NewTypeTable()
	if err := wire.DeclareEnum(tt, map[Realm]string{RealmEU: "EU", RealmUS: "US"}); err != nil {
		tb.Fatalf("DeclareEnum error: %v", err)
	}
	err := tt.Subtypes(reflect.TypeFor[Payload](), wire.SizeByte,
		wire.Subtype{Discriminator: 1, Type: reflect.TypeFor[Chat]()},
		wire.Subtype{Discriminator: 2, Type: reflect.TypeFor[Move]()},
	)
	if err != nil {
		tb.Fatalf("Subtypes error: %v", err)
	}
	return tt
}

// Service returns a compiled service with Login registered.
func Service(tb testing.TB) *wire.Service {
	tb.Helper()
	svc := wire.New(wire.WithTypes(Types(tb)))
	if err := wire.Register[Login](svc); err != nil {
		tb.Fatalf("Register error: %v", err)
	}
	svc.Compile()
	return svc
}

// SampleLogin returns a fully populated Login.
func SampleLogin() Login {
	return Login{
		Game:     "WoW",
		Account:  "Ärger",
		Platform: "x86",
		Realm:    RealmUS,
		Home:     RealmEU,
		Build:    12340,
		Seed:     [4]byte{1, 2, 3, 4},
		Tags:     []string{"a", "bc"},
		Checksum: []int32{-1, 7},
		Parent: &Login{
			Game:     "WoW",
			Realm:    RealmEU,
			Tags:     []string{},
			Checksum: []int32{0, 0},
			Payload:  Move{X: 1},
		},
		Payload: Chat{Channel: "world", Text: "hi"},
	}
}
