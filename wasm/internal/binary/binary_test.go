package binary

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	codecerr "github.com/wasmkit/wasm-codec/errors"
)

func TestReadU32(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0x01}, 255},
		{[]byte{0xff, 0x7f}, 16383},
		{[]byte{0x80, 0x80, 0x01}, 16384},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF},
		// Non-minimal encodings are legal up to five groups.
		{[]byte{0xff, 0x00}, 127},
		{[]byte{0x82, 0x00}, 2},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x00}, 0},
	}

	for _, tt := range tests {
		r := NewReader(tt.encoded)
		got, err := r.ReadU32()
		if err != nil {
			t.Fatalf("ReadU32(% x): %v", tt.encoded, err)
		}
		if got != tt.value {
			t.Errorf("ReadU32(% x): got %d, want %d", tt.encoded, got, tt.value)
		}
		if r.Position() != len(tt.encoded) {
			t.Errorf("ReadU32(% x): consumed %d bytes, want %d", tt.encoded, r.Position(), len(tt.encoded))
		}
	}
}

func TestReadU32TooLong(t *testing.T) {
	// Six groups for a 32-bit value.
	r := NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00})
	_, err := r.ReadU32()
	if !codecerr.IsKind(err, codecerr.KindIntegerTooLong) {
		t.Fatalf("expected integer_too_long, got %v", err)
	}
	if !strings.Contains(err.Error(), "integer representation too long") {
		t.Errorf("message %q missing canonical text", err.Error())
	}
}

func TestReadU32TooLarge(t *testing.T) {
	// Any of the upper four bits of the fifth group must be rejected.
	for _, final := range []byte{0x10, 0x20, 0x40, 0x70, 0x1f} {
		r := NewReader([]byte{0xff, 0xff, 0xff, 0xff, final})
		_, err := r.ReadU32()
		if !codecerr.IsKind(err, codecerr.KindIntegerTooLarge) {
			t.Fatalf("final %#x: expected integer_too_large, got %v", final, err)
		}
		if !strings.Contains(err.Error(), "integer too large") {
			t.Errorf("message %q missing canonical text", err.Error())
		}
	}
}

func TestReadU32Truncated(t *testing.T) {
	r := NewReader([]byte{0x80, 0x80})
	_, err := r.ReadU32()
	if !codecerr.IsKind(err, codecerr.KindUnexpectedEnd) {
		t.Fatalf("expected unexpected_end, got %v", err)
	}
}

func TestReadU64(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   uint64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}, 0xFFFFFFFFFFFFFFFF},
	}
	for _, tt := range tests {
		r := NewReader(tt.encoded)
		got, err := r.ReadU64()
		if err != nil {
			t.Fatalf("ReadU64(% x): %v", tt.encoded, err)
		}
		if got != tt.value {
			t.Errorf("ReadU64(% x): got %d, want %d", tt.encoded, got, tt.value)
		}
	}

	r := NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7e})
	if _, err := r.ReadU64(); !codecerr.IsKind(err, codecerr.KindIntegerTooLarge) {
		t.Errorf("expected integer_too_large for dirty tenth group, got %v", err)
	}

	r = NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x00})
	if _, err := r.ReadU64(); !codecerr.IsKind(err, codecerr.KindIntegerTooLong) {
		t.Errorf("expected integer_too_long for eleven groups, got %v", err)
	}
}

func TestReadS32(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   int32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, -1},
		{[]byte{0x3f}, 63},
		{[]byte{0x40}, -64},
		{[]byte{0xc0, 0x00}, 64},
		{[]byte{0xbf, 0x7f}, -65},
		{[]byte{0xff, 0x00}, 127},
		{[]byte{0x80, 0x7f}, -128},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x07}, 0x7FFFFFFF},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x78}, -0x80000000},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x7f}, -1},
	}
	for _, tt := range tests {
		r := NewReader(tt.encoded)
		got, err := r.ReadS32()
		if err != nil {
			t.Fatalf("ReadS32(% x): %v", tt.encoded, err)
		}
		if got != tt.value {
			t.Errorf("ReadS32(% x): got %d, want %d", tt.encoded, got, tt.value)
		}
	}
}

func TestReadS32BadSignExtension(t *testing.T) {
	// Final group's unused bits disagree with the sign bit.
	for _, final := range []byte{0x0f, 0x4f, 0x17, 0x70} {
		r := NewReader([]byte{0xff, 0xff, 0xff, 0xff, final})
		_, err := r.ReadS32()
		if !codecerr.IsKind(err, codecerr.KindIntegerTooLarge) {
			t.Errorf("final %#x: expected integer_too_large, got %v", final, err)
		}
	}
}

func TestReadS64(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, -1},
		{[]byte{0xff, 0x00}, 127},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x7f}, -0x8000000000000000},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}, 0x7FFFFFFFFFFFFFFF},
	}
	for _, tt := range tests {
		r := NewReader(tt.encoded)
		got, err := r.ReadS64()
		if err != nil {
			t.Fatalf("ReadS64(% x): %v", tt.encoded, err)
		}
		if got != tt.value {
			t.Errorf("ReadS64(% x): got %d, want %d", tt.encoded, got, tt.value)
		}
	}

	r := NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02})
	if _, err := r.ReadS64(); !codecerr.IsKind(err, codecerr.KindIntegerTooLarge) {
		t.Errorf("expected integer_too_large, got %v", err)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	valuesU32 := []uint32{0, 1, 127, 128, 16383, 16384, 624485, 0xFFFFFFFF}
	for _, v := range valuesU32 {
		w := NewWriter()
		w.WriteU32(v)
		r := NewReader(w.Bytes())
		got, err := r.ReadU32()
		if err != nil || got != v {
			t.Errorf("u32 round-trip %d: got %d, err %v", v, got, err)
		}
	}

	valuesS64 := []int64{0, 1, -1, 63, 64, -64, -65, 0x7FFFFFFFFFFFFFFF, -0x8000000000000000}
	for _, v := range valuesS64 {
		w := NewWriter()
		w.WriteS64(v)
		r := NewReader(w.Bytes())
		got, err := r.ReadS64()
		if err != nil || got != v {
			t.Errorf("s64 round-trip %d: got %d, err %v", v, got, err)
		}
	}
}

func TestWriteMinimal(t *testing.T) {
	tests := []struct {
		value uint32
		want  []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{0xFFFFFFFF, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}
	for _, tt := range tests {
		w := NewWriter()
		w.WriteU32(tt.value)
		if !bytes.Equal(w.Bytes(), tt.want) {
			t.Errorf("WriteU32(%d): got % x, want % x", tt.value, w.Bytes(), tt.want)
		}
	}
}

func TestWriteSize32(t *testing.T) {
	tests := []struct {
		value uint32
		want  []byte
	}{
		{0, []byte{0x80, 0x80, 0x80, 0x80, 0x00}},
		{1, []byte{0x81, 0x80, 0x80, 0x80, 0x00}},
		{16, []byte{0x90, 0x80, 0x80, 0x80, 0x00}},
		{0xFFFFFFFF, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}
	for _, tt := range tests {
		w := NewWriter()
		w.WriteSize32(tt.value)
		if w.Len() != Size32Len {
			t.Fatalf("WriteSize32(%d): wrote %d bytes", tt.value, w.Len())
		}
		if !bytes.Equal(w.Bytes(), tt.want) {
			t.Errorf("WriteSize32(%d): got % x, want % x", tt.value, w.Bytes(), tt.want)
		}
		r := NewReader(w.Bytes())
		got, err := r.ReadU32()
		if err != nil || got != tt.value {
			t.Errorf("size32 round-trip %d: got %d, err %v", tt.value, got, err)
		}
	}
}

func TestReadName(t *testing.T) {
	w := NewWriter()
	w.WriteName("spectest")
	r := NewReader(w.Bytes())
	name, err := r.ReadName()
	if err != nil {
		t.Fatalf("ReadName: %v", err)
	}
	if name != "spectest" {
		t.Errorf("got %q, want %q", name, "spectest")
	}

	// Supplementary-plane code points round-trip.
	w = NewWriter()
	w.WriteName("π𝒞🦊")
	r = NewReader(w.Bytes())
	name, err = r.ReadName()
	if err != nil || name != "π𝒞🦊" {
		t.Errorf("got %q err %v", name, err)
	}
}

func TestReadNameInvalidUTF8(t *testing.T) {
	bad := [][]byte{
		{0x80},                   // lone continuation byte
		{0xc0, 0xaf},             // overlong 2-byte form
		{0xe0, 0x80, 0xaf},       // overlong 3-byte form
		{0xf0, 0x80, 0x80, 0xaf}, // overlong 4-byte form
		{0xed, 0xa0, 0x80},       // surrogate half U+D800
		{0xed, 0xbf, 0xbf},       // surrogate half U+DFFF
		{0xe2, 0x82},             // truncated 3-byte sequence
		{0xf4, 0x90, 0x80, 0x80}, // above U+10FFFF
		{0xfe},                   // invalid byte
		{0xff},                   // invalid byte
		{0xf8, 0x80, 0x80, 0x80, 0x80}, // legacy 5-byte form
	}
	for _, seq := range bad {
		w := NewWriter()
		w.WriteU32(uint32(len(seq)))
		w.WriteBytes(seq)
		r := NewReader(w.Bytes())
		_, err := r.ReadName()
		if !codecerr.IsKind(err, codecerr.KindInvalidUTF8) {
			t.Errorf("sequence % x: expected invalid_utf8, got %v", seq, err)
		}
		if err != nil && !strings.Contains(err.Error(), "invalid UTF-8 encoding") {
			t.Errorf("sequence % x: message %q missing canonical text", seq, err.Error())
		}
	}
}

func TestReadNameTruncated(t *testing.T) {
	r := NewReader([]byte{0x05, 'a', 'b'})
	_, err := r.ReadName()
	if !codecerr.IsKind(err, codecerr.KindUnexpectedEnd) {
		t.Fatalf("expected unexpected_end, got %v", err)
	}
}

func TestReaderPosition(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4})
	if r.Remaining() != 4 {
		t.Fatalf("Remaining: got %d", r.Remaining())
	}
	b, err := r.ReadByte()
	if err != nil || b != 1 {
		t.Fatalf("ReadByte: %d, %v", b, err)
	}
	if r.Position() != 1 || r.Remaining() != 3 {
		t.Errorf("position %d remaining %d", r.Position(), r.Remaining())
	}
	if p, _ := r.PeekByte(); p != 2 {
		t.Errorf("PeekByte: got %d", p)
	}
	if r.Position() != 1 {
		t.Error("PeekByte must not advance")
	}
	if err := r.Skip(3); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if _, err := r.ReadByte(); err == nil {
		t.Error("expected error at end of buffer")
	}
}

func TestErrorOffsets(t *testing.T) {
	r := NewReader([]byte{0x01, 0x80})
	if _, err := r.ReadByte(); err != nil {
		t.Fatal(err)
	}
	_, err := r.ReadU32()
	var e *codecerr.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if e.Offset != 2 {
		t.Errorf("offset: got %d, want 2", e.Offset)
	}
}
