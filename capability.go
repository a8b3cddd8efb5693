package wire

// Charset names a supported string encoding.
// Use these constants in struct tags: `wire:"utf16"`
type Charset string

const (
	// CharsetASCII writes one byte per rune; runes above 0x7F become '?'.
	CharsetASCII Charset = "ascii"

	// CharsetUTF16 writes little-endian UTF-16 code units.
	CharsetUTF16 Charset = "utf16"

	// CharsetUTF32 writes little-endian UTF-32 code units.
	CharsetUTF32 Charset = "utf32"

	// CharsetUTF8 writes UTF-8 bytes.
	CharsetUTF8 Charset = "utf8"
)

// validCharsets maps tag names to their context flag.
var validCharsets = map[Charset]ContextFlags{
	CharsetASCII: FlagASCII,
	CharsetUTF16: FlagUTF16,
	CharsetUTF32: FlagUTF32,
	CharsetUTF8:  FlagUTF8,
}

// validSizeTypes maps tag names to size-field widths.
var validSizeTypes = map[string]SizeType{
	"byte":   SizeByte,
	"int32":  SizeInt32,
	"ushort": SizeUShort,
}

// IsValidCharset returns true if f is exactly one charset flag.
func IsValidCharset(f ContextFlags) bool {
	for _, cf := range validCharsets {
		if cf == f {
			return true
		}
	}
	return false
}

// IsValidCharsetName returns true if the name is a known charset.
func IsValidCharsetName(c Charset) bool {
	_, ok := validCharsets[c]
	return ok
}

// IsValidSizeType returns true if s is a known size-field width.
func IsValidSizeType(s SizeType) bool {
	switch s {
	case SizeByte, SizeInt32, SizeUShort:
		return true
	}
	return false
}

// ParseSizeType resolves a size-field width by tag name.
func ParseSizeType(name string) (SizeType, bool) {
	s, ok := validSizeTypes[name]
	return s, ok
}
