package wire

import (
	"bytes"
	"errors"
	"testing"
)

func readers(data []byte) map[string]Reader {
	return map[string]Reader{
		"buffer": NewBufferReader(data),
		"stream": NewStreamReader(bytes.NewReader(data)),
	}
}

func TestReader_Sequence(t *testing.T) {
	for name, r := range readers([]byte{1, 2, 3, 4, 5}) {
		t.Run(name, func(t *testing.T) {
			if b, err := r.PeekByte(); err != nil || b != 1 {
				t.Fatalf("PeekByte = %d, %v", b, err)
			}
			if b, err := r.ReadByte(); err != nil || b != 1 {
				t.Fatalf("ReadByte = %d, %v", b, err)
			}
			if p, err := r.PeekBytes(2); err != nil || !bytes.Equal(p, []byte{2, 3}) {
				t.Fatalf("PeekBytes = %v, %v", p, err)
			}
			if p, err := r.ReadBytes(2); err != nil || !bytes.Equal(p, []byte{2, 3}) {
				t.Fatalf("ReadBytes = %v, %v", p, err)
			}
			if p, err := r.ReadAll(); err != nil || !bytes.Equal(p, []byte{4, 5}) {
				t.Fatalf("ReadAll = %v, %v", p, err)
			}
			p, err := r.ReadAll()
			if err != nil || p == nil || len(p) != 0 {
				t.Fatalf("ReadAll at end = %v, %v; want empty non-nil", p, err)
			}
		})
	}
}

func TestReader_OutOfRange(t *testing.T) {
	for name, r := range readers([]byte{1}) {
		t.Run(name, func(t *testing.T) {
			_, err := r.ReadBytes(4)
			if !errors.Is(err, ErrRange) {
				t.Fatalf("ReadBytes error = %v, want ErrRange", err)
			}
			var re *RangeError
			if !errors.As(err, &re) || re.Requested != 4 {
				t.Errorf("RangeError = %+v", re)
			}
		})
	}

	for name, r := range readers(nil) {
		t.Run(name+"/empty", func(t *testing.T) {
			if _, err := r.ReadByte(); !errors.Is(err, ErrRange) {
				t.Errorf("ReadByte error = %v, want ErrRange", err)
			}
			if _, err := r.PeekByte(); !errors.Is(err, ErrRange) {
				t.Errorf("PeekByte error = %v, want ErrRange", err)
			}
		})
	}
}

func TestStreamReader_LargePeek(t *testing.T) {
	data := bytes.Repeat([]byte{7}, 10000)
	r := NewStreamReader(bytes.NewReader(data))

	p, err := r.PeekBytes(len(data))
	if err != nil {
		t.Fatalf("PeekBytes error: %v", err)
	}
	if len(p) != len(data) {
		t.Errorf("PeekBytes len = %d", len(p))
	}
	rest, err := r.ReadAll()
	if err != nil || len(rest) != len(data) {
		t.Errorf("peek consumed data: %d, %v", len(rest), err)
	}
}

func TestWriters(t *testing.T) {
	bw := NewBufferWriter()
	var out bytes.Buffer
	sw := NewStreamWriter(&out)

	for _, w := range []Writer{bw, sw} {
		if err := w.WriteByte(0xAA); err != nil {
			t.Fatal(err)
		}
		if err := w.WriteBytes([]byte{1, 2}); err != nil {
			t.Fatal(err)
		}
	}

	want := []byte{0xAA, 1, 2}
	if !bytes.Equal(bw.Bytes(), want) || bw.Len() != 3 {
		t.Errorf("BufferWriter = %v", bw.Bytes())
	}
	if !bytes.Equal(out.Bytes(), want) || sw.Written() != 3 {
		t.Errorf("StreamWriter = %v, written %d", out.Bytes(), sw.Written())
	}
}

func TestStreamReader_LargeCount(t *testing.T) {
	r := NewStreamReader(bytes.NewReader([]byte{1, 2, 3}))

	_, err := r.ReadBytes(1 << 30)
	var re *RangeError
	if !errors.As(err, &re) {
		t.Fatalf("ReadBytes error = %v, want RangeError", err)
	}
	if re.Requested != 1<<30 || re.Available != 3 {
		t.Errorf("RangeError = %+v", re)
	}
}

func TestStreamReader_ChunkedRead(t *testing.T) {
	data := bytes.Repeat([]byte{1, 2, 3}, readChunk)
	r := NewStreamReader(bytes.NewReader(data))

	p, err := r.ReadBytes(len(data))
	if err != nil {
		t.Fatalf("ReadBytes error: %v", err)
	}
	if !bytes.Equal(p, data) {
		t.Error("ReadBytes returned different bytes")
	}
}
