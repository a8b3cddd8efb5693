package wire

import (
	"bufio"
	"errors"
	"io"
)

// Reader provides byte-level access to an incoming wire stream.
type Reader interface {
	// ReadByte reads and consumes one byte.
	ReadByte() (byte, error)

	// PeekByte returns the next byte without consuming it.
	PeekByte() (byte, error)

	// ReadBytes reads and consumes exactly n bytes.
	ReadBytes(n int) ([]byte, error)

	// PeekBytes returns the next n bytes without consuming them.
	PeekBytes(n int) ([]byte, error)

	// ReadAll consumes every remaining byte. It never returns nil on success.
	ReadAll() ([]byte, error)
}

// Writer accumulates an outgoing wire stream.
type Writer interface {
	// WriteByte appends one byte.
	WriteByte(b byte) error

	// WriteBytes appends p.
	WriteBytes(p []byte) error
}

// BufferReader reads from an in-memory byte slice.
type BufferReader struct {
	data []byte
	pos  int
}

// NewBufferReader returns a Reader over data.
func NewBufferReader(data []byte) *BufferReader {
	return &BufferReader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *BufferReader) Remaining() int {
	return len(r.data) - r.pos
}

func (r *BufferReader) ReadByte() (byte, error) {
	b, err := r.PeekByte()
	if err != nil {
		return 0, err
	}
	r.pos++
	return b, nil
}

func (r *BufferReader) PeekByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, &RangeError{Requested: 1, Available: 0}
	}
	return r.data[r.pos], nil
}

func (r *BufferReader) ReadBytes(n int) ([]byte, error) {
	p, err := r.PeekBytes(n)
	if err != nil {
		return nil, err
	}
	r.pos += n
	return p, nil
}

func (r *BufferReader) PeekBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, &RangeError{Requested: n, Available: r.Remaining()}
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	return out, nil
}

func (r *BufferReader) ReadAll() ([]byte, error) {
	return r.ReadBytes(r.Remaining())
}

// BufferWriter accumulates bytes in memory.
type BufferWriter struct {
	buf []byte
}

// NewBufferWriter returns an empty in-memory Writer.
func NewBufferWriter() *BufferWriter {
	return &BufferWriter{buf: make([]byte, 0, 64)}
}

// Bytes returns the accumulated bytes.
func (w *BufferWriter) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *BufferWriter) Len() int {
	return len(w.buf)
}

func (w *BufferWriter) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

func (w *BufferWriter) WriteBytes(p []byte) error {
	w.buf = append(w.buf, p...)
	return nil
}

// StreamReader reads from an io.Reader. Every call may block on the
// underlying reader, which makes it the suspending counterpart of
// BufferReader with identical observable semantics.
type StreamReader struct {
	br *bufio.Reader
}

// NewStreamReader returns a Reader over r.
func NewStreamReader(r io.Reader) *StreamReader {
	if br, ok := r.(*bufio.Reader); ok {
		return &StreamReader{br: br}
	}
	return &StreamReader{br: bufio.NewReader(r)}
}

func (r *StreamReader) ReadByte() (byte, error) {
	b, err := r.br.ReadByte()
	if err != nil {
		return 0, rangeOrErr(err, 1, 0)
	}
	return b, nil
}

func (r *StreamReader) PeekByte() (byte, error) {
	p, err := r.PeekBytes(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (r *StreamReader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, &RangeError{Requested: n, Available: 0}
	}
	// n may come off the wire, so the buffer grows with the data received.
	out := make([]byte, 0, min(n, readChunk))
	for len(out) < n {
		chunk := min(n-len(out), readChunk)
		start := len(out)
		out = append(out, make([]byte, chunk)...)
		read, err := io.ReadFull(r.br, out[start:])
		if err != nil {
			return nil, rangeOrErr(err, n, start+read)
		}
	}
	return out, nil
}

// readChunk bounds each allocation of StreamReader.ReadBytes.
const readChunk = 64 << 10

func (r *StreamReader) PeekBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, &RangeError{Requested: n, Available: 0}
	}
	// bufio cannot peek beyond its buffer, so grow it for large peeks.
	if n > r.br.Size() {
		r.br = bufio.NewReaderSize(r.br, n)
	}
	p, err := r.br.Peek(n)
	if err != nil {
		return nil, rangeOrErr(err, n, len(p))
	}
	out := make([]byte, n)
	copy(out, p)
	return out, nil
}

func (r *StreamReader) ReadAll() ([]byte, error) {
	out, err := io.ReadAll(r.br)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

func rangeOrErr(err error, requested, available int) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, bufio.ErrBufferFull) {
		return &RangeError{Requested: requested, Available: available}
	}
	return err
}

// StreamWriter writes to an io.Writer, one call per wire unit.
type StreamWriter struct {
	w   io.Writer
	n   int
	one [1]byte
}

// NewStreamWriter returns a Writer over w.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

func (w *StreamWriter) WriteByte(b byte) error {
	w.one[0] = b
	n, err := w.w.Write(w.one[:])
	w.n += n
	return err
}

func (w *StreamWriter) WriteBytes(p []byte) error {
	n, err := w.w.Write(p)
	w.n += n
	return err
}

// Written returns the number of bytes accepted by the underlying writer.
func (w *StreamWriter) Written() int {
	return w.n
}
