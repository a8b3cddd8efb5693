package wire

import (
	"bytes"
	"reflect"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// charset converts between text and its wire code units.
type charset interface {
	name() Charset
	unit() int
	encode(s string) ([]byte, error)
	decode(p []byte) (string, error)
}

// charsetFor selects the charset named by the flags; ASCII when no encoding
// is requested.
func charsetFor(t reflect.Type, flags ContextFlags) (charset, error) {
	if !flags.Has(FlagEncoding) {
		return asciiCharset{}, nil
	}
	switch {
	case flags.Has(FlagASCII):
		return asciiCharset{}, nil
	case flags.Has(FlagUTF16):
		return textCharset{id: CharsetUTF16, width: 2, enc: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)}, nil
	case flags.Has(FlagUTF32):
		return textCharset{id: CharsetUTF32, width: 4, enc: utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)}, nil
	case flags.Has(FlagUTF8):
		return textCharset{id: CharsetUTF8, width: 1, enc: unicode.UTF8}, nil
	}
	return nil, newConfigError(ErrConflictingFlags, t, "encoding flag without charset")
}

// asciiCharset writes one byte per rune. x/text has no plain ASCII encoding,
// so the mapping lives here.
type asciiCharset struct{}

func (asciiCharset) name() Charset { return CharsetASCII }
func (asciiCharset) unit() int     { return 1 }

func (asciiCharset) encode(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0x7F {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return out, nil
}

func (asciiCharset) decode(p []byte) (string, error) {
	out := make([]rune, len(p))
	for i, b := range p {
		if b > 0x7F {
			out[i] = '?'
			continue
		}
		out[i] = rune(b)
	}
	return string(out), nil
}

// textCharset adapts an x/text encoding.
type textCharset struct {
	id    Charset
	width int
	enc   encoding.Encoding
}

func (c textCharset) name() Charset { return c.id }
func (c textCharset) unit() int     { return c.width }

func (c textCharset) encode(s string) ([]byte, error) {
	return c.enc.NewEncoder().Bytes([]byte(s))
}

func (c textCharset) decode(p []byte) (string, error) {
	out, err := c.enc.NewDecoder().Bytes(p)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// stringLayer is one link of the string decorator chain.
type stringLayer interface {
	writeString(s string, w Writer) error
	readString(r Reader) (string, error)
}

// stringStrategy adapts a layer chain to the Strategy contract for a string
// kind.
type stringStrategy struct {
	typ   reflect.Type
	req   ContextRequirement
	layer stringLayer
}

func (s *stringStrategy) Type() reflect.Type              { return s.typ }
func (s *stringStrategy) Requirement() ContextRequirement { return s.req }

func (s *stringStrategy) Write(v reflect.Value, w Writer) error {
	return s.layer.writeString(v.String(), w)
}

func (s *stringStrategy) Read(r Reader) (reflect.Value, error) {
	str, err := s.layer.readString(r)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(s.typ).Elem()
	out.SetString(str)
	return out, nil
}

func encodeString(cs charset, t reflect.Type, s string) ([]byte, error) {
	p, err := cs.encode(s)
	if err != nil {
		return nil, newValueError(ErrUnsupportedValue, t, "%s encode: %v", cs.name(), err)
	}
	return p, nil
}

func decodeString(cs charset, t reflect.Type, p []byte) (string, error) {
	s, err := cs.decode(p)
	if err != nil {
		return "", newValueError(ErrUnsupportedValue, t, "%s decode: %v", cs.name(), err)
	}
	return s, nil
}

// terminatedLayer appends one zero unit and reads up to and including it.
type terminatedLayer struct {
	typ reflect.Type
	cs  charset
}

func (l *terminatedLayer) writeString(s string, w Writer) error {
	p, err := encodeString(l.cs, l.typ, s)
	if err != nil {
		return err
	}
	if err := w.WriteBytes(p); err != nil {
		return err
	}
	return w.WriteBytes(make([]byte, l.cs.unit()))
}

func (l *terminatedLayer) readString(r Reader) (string, error) {
	var buf bytes.Buffer
	for {
		unit, err := r.ReadBytes(l.cs.unit())
		if err != nil {
			return "", err
		}
		if isZeroUnit(unit) {
			break
		}
		buf.Write(unit)
	}
	return decodeString(l.cs, l.typ, buf.Bytes())
}

// unterminatedLayer writes the bare payload and reads the rest of the stream.
type unterminatedLayer struct {
	typ reflect.Type
	cs  charset
}

func (l *unterminatedLayer) writeString(s string, w Writer) error {
	p, err := encodeString(l.cs, l.typ, s)
	if err != nil {
		return err
	}
	return w.WriteBytes(p)
}

func (l *unterminatedLayer) readString(r Reader) (string, error) {
	p, err := r.ReadAll()
	if err != nil {
		return "", err
	}
	return decodeString(l.cs, l.typ, p)
}

// fixedLayer writes exactly size units, padding with zero units.
type fixedLayer struct {
	typ  reflect.Type
	cs   charset
	size int
}

func (l *fixedLayer) writeString(s string, w Writer) error {
	p, err := encodeString(l.cs, l.typ, s)
	if err != nil {
		return err
	}
	total := l.size * l.cs.unit()
	if len(p) > total {
		return newValueError(ErrValueTooLong, l.typ, "%d units exceed fixed size %d", len(p)/l.cs.unit(), l.size)
	}
	if err := w.WriteBytes(p); err != nil {
		return err
	}
	return w.WriteBytes(make([]byte, total-len(p)))
}

func (l *fixedLayer) readString(r Reader) (string, error) {
	p, err := r.ReadBytes(l.size * l.cs.unit())
	if err != nil {
		return "", err
	}
	return decodeString(l.cs, l.typ, trimZeroUnits(p, l.cs.unit()))
}

// prefixedLayer writes a size field before the payload. The stored value is
// the unit count (terminator included when terminating) minus adjust.
type prefixedLayer struct {
	typ       reflect.Type
	cs        charset
	size      *sizeStrategy
	adjust    int
	terminate bool
}

func (l *prefixedLayer) writeString(s string, w Writer) error {
	p, err := encodeString(l.cs, l.typ, s)
	if err != nil {
		return err
	}
	units := len(p) / l.cs.unit()
	if l.terminate {
		units++
	}
	if err := l.size.write(int64(units-l.adjust), w); err != nil {
		return err
	}
	if err := w.WriteBytes(p); err != nil {
		return err
	}
	if l.terminate {
		return w.WriteBytes(make([]byte, l.cs.unit()))
	}
	return nil
}

func (l *prefixedLayer) readString(r Reader) (string, error) {
	stored, err := l.size.read(r)
	if err != nil {
		return "", err
	}
	units := int(stored) + l.adjust
	if units < 0 {
		return "", newValueError(ErrUnsupportedValue, l.typ, "negative length %d", units)
	}
	p, err := r.ReadBytes(units * l.cs.unit())
	if err != nil {
		return "", err
	}
	if l.terminate && units > 0 {
		p = p[:len(p)-l.cs.unit()]
	}
	return decodeString(l.cs, l.typ, p)
}

// reverseLayer reverses rune order before the inner chain writes and after it
// reads.
type reverseLayer struct {
	inner stringLayer
}

func (l *reverseLayer) writeString(s string, w Writer) error {
	return l.inner.writeString(reverseRunes(s), w)
}

func (l *reverseLayer) readString(r Reader) (string, error) {
	s, err := l.inner.readString(r)
	if err != nil {
		return "", err
	}
	return reverseRunes(s), nil
}

func reverseRunes(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func isZeroUnit(p []byte) bool {
	for _, b := range p {
		if b != 0 {
			return false
		}
	}
	return true
}

func trimZeroUnits(p []byte, unit int) []byte {
	end := len(p)
	for end >= unit && isZeroUnit(p[end-unit:end]) {
		end -= unit
	}
	return p[:end]
}
