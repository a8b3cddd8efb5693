package wire

import (
	"fmt"
	"reflect"
	"strings"
)

// ContextFlags is the bit set of framing options attached to a member.
type ContextFlags uint32

const (
	FlagNone          ContextFlags = 0
	FlagEncoding      ContextFlags = 1 << 0
	FlagASCII         ContextFlags = 1 << 1
	FlagUTF16         ContextFlags = 1 << 2
	FlagUTF32         ContextFlags = 1 << 3
	FlagUTF8          ContextFlags = 1 << 4
	FlagDontTerminate ContextFlags = 1 << 5
	FlagFixedSize     ContextFlags = 1 << 6
	FlagSendSize      ContextFlags = 1 << 7
	FlagReverse       ContextFlags = 1 << 8
	FlagEnumString    ContextFlags = 1 << 9
)

const (
	charsetFlags = FlagASCII | FlagUTF16 | FlagUTF32 | FlagUTF8
	stringFlags  = FlagEncoding | charsetFlags | FlagDontTerminate | FlagFixedSize | FlagSendSize | FlagReverse
	sizingFlags  = FlagFixedSize | FlagSendSize
)

var flagNames = []struct {
	flag ContextFlags
	name string
}{
	{FlagEncoding, "encoding"},
	{FlagASCII, "ascii"},
	{FlagUTF16, "utf16"},
	{FlagUTF32, "utf32"},
	{FlagUTF8, "utf8"},
	{FlagDontTerminate, "dontterminate"},
	{FlagFixedSize, "fixed"},
	{FlagSendSize, "sendsize"},
	{FlagReverse, "reverse"},
	{FlagEnumString, "enumstring"},
}

// Has reports whether every bit of f is set.
func (c ContextFlags) Has(f ContextFlags) bool {
	return c&f == f
}

func (c ContextFlags) String() string {
	if c == FlagNone {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if c.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// SizeType selects the width of a length or discriminator field.
type SizeType int32

const (
	SizeByte   SizeType = 0
	SizeInt32  SizeType = 1
	SizeUShort SizeType = 2
)

func (s SizeType) String() string {
	switch s {
	case SizeByte:
		return "byte"
	case SizeInt32:
		return "int32"
	case SizeUShort:
		return "ushort"
	default:
		return fmt.Sprintf("SizeType(%d)", int32(s))
	}
}

// SpecificKey is the numeric parameter of a context: a fixed length, or a
// size-field width packed with a signed count adjustment.
type SpecificKey int32

// SendSizeKey packs a size-field width and count adjustment.
func SendSizeKey(width SizeType, adjust int) SpecificKey {
	return SpecificKey(int32(width)&0xF | int32(adjust)<<4)
}

// Width returns the size-field width packed in the low nibble.
func (k SpecificKey) Width() SizeType {
	return SizeType(int32(k) & 0xF)
}

// Adjust returns the signed count adjustment packed above the low nibble.
func (k SpecificKey) Adjust() int {
	return int(int32(k) >> 4)
}

// ContextRequirement declares whether a strategy depends on member context.
type ContextRequirement int

const (
	Contextless ContextRequirement = iota
	RequiresContext
)

func (r ContextRequirement) String() string {
	if r == Contextless {
		return "contextless"
	}
	return "contextual"
}

// ContextKey is the canonical identity of one compiled configuration of a type.
// It is comparable and used directly as a map key.
type ContextKey struct {
	Flags    ContextFlags
	Specific SpecificKey
	Type     reflect.Type
}

// Contextless reports whether the key carries no contextual parameters.
func (k ContextKey) Contextless() bool {
	return k.Flags == FlagNone && k.Specific == 0
}

func (k ContextKey) String() string {
	if k.Contextless() {
		return fmt.Sprintf("%v", k.Type)
	}
	return fmt.Sprintf("%v[%s:%d]", k.Type, k.Flags, k.Specific)
}

// Member holds the raw contextual inputs of one member, as produced by the
// wire struct tag or by code.
type Member struct {
	Name string

	// Encodings lists every charset named by the member; more than one is an error.
	Encodings []ContextFlags

	// FixedSize is the exact unit or element count when greater than zero.
	FixedSize int

	// SendSize requests a length prefix of SizeWidth with SizeAdjust.
	SendSize   bool
	SizeWidth  SizeType
	SizeAdjust int

	DontTerminate bool
	Reverse       bool
	EnumString    bool

	// Flags are explicit flags OR-ed over the derived ones.
	Flags ContextFlags

	// Specific overrides the derived numeric parameter when non-zero.
	Specific SpecificKey
}

// TypeContext is the mutable builder for one (type, member) pair. Its key is
// computed once by BuildKey and cached.
type TypeContext struct {
	Type   reflect.Type
	Member Member

	key *ContextKey
}

// NewTypeContext returns a context for t with no member inputs.
func NewTypeContext(t reflect.Type) *TypeContext {
	return &TypeContext{Type: t}
}

// NewMemberContext returns a context for t with member inputs m.
func NewMemberContext(t reflect.Type, m Member) *TypeContext {
	return &TypeContext{Type: t, Member: m}
}

// HasKey reports whether BuildKey has succeeded.
func (c *TypeContext) HasKey() bool {
	return c.key != nil
}

// Key returns the built key or ErrNoKey.
func (c *TypeContext) Key() (ContextKey, error) {
	if c.key == nil {
		return ContextKey{}, newConfigError(ErrNoKey, c.Type, c.Member.Name)
	}
	return *c.key, nil
}

// Requirement reports whether the built key is contextual.
func (c *TypeContext) Requirement() ContextRequirement {
	if c.key == nil || c.key.Contextless() {
		return Contextless
	}
	return RequiresContext
}

// Flags returns the built key flags, or none when no key is built.
func (c *TypeContext) Flags() ContextFlags {
	if c.key == nil {
		return FlagNone
	}
	return c.key.Flags
}

// Specific returns the built key parameter.
func (c *TypeContext) Specific() SpecificKey {
	if c.key == nil {
		return 0
	}
	return c.key.Specific
}

// Retype returns a fresh context for t carrying the same canonical inputs.
func (c *TypeContext) Retype(t reflect.Type) *TypeContext {
	return &TypeContext{Type: t, Member: Member{Name: c.Member.Name, Flags: c.Flags(), Specific: c.Specific()}}
}

// Equal compares two keyed contexts. Contextless contexts compare by type
// alone.
func (c *TypeContext) Equal(o *TypeContext) (bool, error) {
	if c.key == nil || o.key == nil {
		return false, newConfigError(ErrNoKey, c.Type, o.Type.String())
	}
	if c.key.Contextless() && o.key.Contextless() {
		return c.Type == o.Type, nil
	}
	return *c.key == *o.key, nil
}

func (c *TypeContext) String() string {
	if c.key != nil {
		return c.key.String()
	}
	return fmt.Sprintf("%v(unkeyed)", c.Type)
}

// BuildKey derives and caches the canonical key. The custom flag forces a
// contextless key for types that supply their own strategy.
func (c *TypeContext) BuildKey(custom bool) (ContextKey, error) {
	if c.key != nil {
		return *c.key, nil
	}
	if c.Type == nil {
		return ContextKey{}, newConfigError(ErrInternal, nil, "nil target type")
	}

	flags, specific, err := deriveFlags(c.Type, c.Member)
	if err != nil {
		return ContextKey{}, err
	}
	if custom {
		flags, specific = FlagNone, 0
	} else if flags, specific, err = canonicalize(c.Type, c.Member.Name, flags, specific); err != nil {
		return ContextKey{}, err
	}

	key := ContextKey{Flags: flags, Specific: specific, Type: c.Type}
	c.key = &key
	return key, nil
}

// deriveFlags turns member inputs into flags and parameter, rejecting
// mutually exclusive combinations.
func deriveFlags(t reflect.Type, m Member) (ContextFlags, SpecificKey, error) {
	flags := m.Flags
	for _, enc := range m.Encodings {
		if !IsValidCharset(enc) {
			return 0, 0, newConfigError(ErrConflictingFlags, t, fmt.Sprintf("member %s: %s is not a charset", m.Name, enc))
		}
		flags |= FlagEncoding | enc
	}
	if m.DontTerminate {
		flags |= FlagDontTerminate
	}
	if m.Reverse {
		flags |= FlagReverse
	}
	if m.EnumString {
		flags |= FlagEnumString
	}

	specific := SpecificKey(0)
	if m.FixedSize > 0 {
		flags |= FlagFixedSize
		specific = SpecificKey(m.FixedSize)
	}
	if m.SendSize {
		if !IsValidSizeType(m.SizeWidth) {
			return 0, 0, newConfigError(ErrConflictingFlags, t, fmt.Sprintf("member %s: unknown size width %s", m.Name, m.SizeWidth))
		}
		flags |= FlagSendSize
		specific = SendSizeKey(m.SizeWidth, m.SizeAdjust)
	}
	if m.Specific != 0 {
		specific = m.Specific
	}

	if err := validateFlags(t, m.Name, flags, specific); err != nil {
		return 0, 0, err
	}
	return flags, specific, nil
}

func validateFlags(t reflect.Type, member string, flags ContextFlags, specific SpecificKey) error {
	charsets := 0
	for _, cs := range []ContextFlags{FlagASCII, FlagUTF16, FlagUTF32, FlagUTF8} {
		if flags.Has(cs) {
			charsets++
		}
	}
	switch {
	case charsets > 1:
		return newConfigError(ErrConflictingFlags, t, fmt.Sprintf("member %s: multiple encodings %s", member, flags))
	case charsets == 1 && !flags.Has(FlagEncoding):
		return newConfigError(ErrConflictingFlags, t, fmt.Sprintf("member %s: charset without encoding flag", member))
	case flags.Has(FlagEncoding) && charsets == 0:
		return newConfigError(ErrConflictingFlags, t, fmt.Sprintf("member %s: encoding flag without charset", member))
	case flags.Has(FlagFixedSize) && flags.Has(FlagSendSize):
		return newConfigError(ErrConflictingFlags, t, fmt.Sprintf("member %s: fixed and sendsize", member))
	case flags.Has(FlagFixedSize) && specific <= 0:
		return newConfigError(ErrConflictingFlags, t, fmt.Sprintf("member %s: fixed size %d", member, specific))
	case flags.Has(FlagSendSize) && !IsValidSizeType(specific.Width()):
		return newConfigError(ErrConflictingFlags, t, fmt.Sprintf("member %s: unknown size width %s", member, specific.Width()))
	}
	return nil
}

// canonicalize checks flags against the kind of t so that equivalent
// members share one compiled strategy. Flags that configure nothing for the
// kind are rejected. A fixed size equal to a Go array's length is redundant
// and dropped from the array's own key.
func canonicalize(t reflect.Type, member string, flags ContextFlags, specific SpecificKey) (ContextFlags, SpecificKey, error) {
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if extra := flags &^ applicableFlags(base, flags); extra != 0 {
		return 0, 0, newConfigError(ErrConflictingFlags, t, fmt.Sprintf("member %s: %s does not apply to %v", member, extra, base))
	}

	if base.Kind() == reflect.Array && flags&sizingFlags != 0 {
		if !flags.Has(FlagFixedSize) || int(specific) != base.Len() {
			return 0, 0, newConfigError(ErrConflictingFlags, t, fmt.Sprintf("member %s: sizing conflicts with array length %d", member, base.Len()))
		}
		if t.Kind() == reflect.Array {
			flags &^= FlagFixedSize
		}
	}

	if !flags.Has(FlagFixedSize) && !flags.Has(FlagSendSize) {
		specific = 0
	}
	return flags, specific, nil
}

// applicableFlags returns the flags that configure values of t. Arrays
// accept what their elements accept; the element context checks it.
func applicableFlags(t reflect.Type, flags ContextFlags) ContextFlags {
	switch {
	case t.Kind() == reflect.String:
		return stringFlags
	case isEnumType(t):
		if flags.Has(FlagEnumString) {
			return FlagEnumString | stringFlags
		}
		return FlagEnumString | FlagReverse
	case t.Kind() == reflect.Slice, t.Kind() == reflect.Array:
		return sizingFlags | elementFlagSet
	case isPrimitiveType(t):
		return FlagReverse
	}
	return FlagNone
}

// elementFlagSet is the flags an array passes to its elements.
const elementFlagSet = FlagEncoding | charsetFlags | FlagEnumString | FlagReverse

// elementFlags returns the flags an array passes to its element context.
func elementFlags(flags ContextFlags) ContextFlags {
	return flags & elementFlagSet
}
