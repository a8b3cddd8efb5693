// Package wire provides contextual binary serialization built from composed
// strategies.
//
// A Service resolves the full dependency graph of a payload type, compiles one
// Strategy per canonical context and reuses it wherever the same context
// appears again. Strategies are small byte-level codecs stacked as decorators:
// a string may be encoded, terminated, sized and reversed; an enum may be
// written as its integer or as its name; a slice may carry a length prefix or
// a fixed count; an interface may dispatch on a discriminator.
//
// # Contexts
//
// Member context is declared with the wire struct tag:
//
//	type Login struct {
//	    Game    string   `wire:"fixed=4"`
//	    Account string   `wire:"utf16,sendsize=ushort"`
//	    Realm   Realm    `wire:"enumstring"`
//	    Build   uint16   `wire:"reverse"`
//	    Addons  []Addon  `wire:"sendsize=byte:-1"`
//	    Payload Payload
//	}
//
// Valid tag parts:
//
//	ascii | utf8 | utf16 | utf32   - string charset (ASCII by default)
//	dontterminate                  - no trailing terminator unit
//	fixed=N                        - exactly N units or elements
//	sendsize=W[:adjust]            - length prefix of width byte, ushort or int32
//	reverse                        - reversed runes for strings, big-endian for integers and floats
//	enumstring                     - enum written by name
//
// Slices and arrays pass charset, enumstring and reverse to their elements.
// A part that configures nothing for the member's kind is a ConfigError.
//
// # Basic Usage
//
//	svc := wire.New()
//	svc.Types().Enum(reflect.TypeFor[Realm](), map[string]int64{"EU": 1, "US": 2})
//	svc.Types().Subtypes(reflect.TypeFor[Payload](), wire.SizeByte,
//	    wire.Subtype{Discriminator: 1, Type: reflect.TypeFor[Chat]()},
//	    wire.Subtype{Discriminator: 2, Type: reflect.TypeFor[Move]()},
//	)
//
//	if err := wire.Register[Login](svc); err != nil {
//	    log.Fatal(err)
//	}
//	svc.Compile()
//
//	data, _ := wire.Marshal(ctx, svc, login)
//	back, _ := wire.Unmarshal[Login](ctx, svc, data)
//
// # Custom Strategies
//
// Types implementing StrategyProvider bypass the built-in handlers and are
// registered contextless.
//
// # Concurrency
//
// Registration is serialized per Service. Compiled strategies are immutable,
// so any number of goroutines may serialize concurrently.
package wire

import "reflect"

// Strategy encodes and decodes one value of one type against wire I/O.
type Strategy interface {
	// Type returns the Go type served by the strategy.
	Type() reflect.Type

	// Requirement reports whether the strategy was compiled for a member context.
	Requirement() ContextRequirement

	// Write encodes v to w. v must be of Type().
	Write(v reflect.Value, w Writer) error

	// Read decodes one value of Type() from r.
	Read(r Reader) (reflect.Value, error)
}
