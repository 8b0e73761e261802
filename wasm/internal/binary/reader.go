package binary

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/wasmkit/wasm-codec/errors"
)

// Reader is a position-carrying cursor over an immutable byte buffer. Every
// read advances the position; malformed input is reported as a structured
// decode error carrying the offset, never a panic.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over data. The Reader never mutates data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte offset.
func (r *Reader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errors.UnexpectedEnd(errors.PhaseDecode, r.pos)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// PeekByte returns the next byte without advancing the position.
func (r *Reader) PeekByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errors.UnexpectedEnd(errors.PhaseDecode, r.pos)
	}
	return r.data[r.pos], nil
}

// ReadBytes reads exactly n bytes into a fresh slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, errors.UnexpectedEnd(errors.PhaseDecode, len(r.data))
	}
	buf := make([]byte, n)
	copy(buf, r.data[r.pos:r.pos+n])
	r.pos += n
	return buf, nil
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return errors.UnexpectedEnd(errors.PhaseDecode, len(r.data))
	}
	r.pos += n
	return nil
}

// ReadU32 reads an unsigned LEB128 encoded uint32. Encodings longer than
// five groups fail with "integer representation too long"; a final group
// with value bits beyond 32 set fails with "integer too large".
func (r *Reader) ReadU32() (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift == 28 {
			if b&0x80 != 0 {
				return 0, errors.IntegerTooLong(errors.PhaseDecode, r.pos)
			}
			if b&0x70 != 0 {
				return 0, errors.IntegerTooLarge(errors.PhaseDecode, r.pos)
			}
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// ReadU64 reads an unsigned LEB128 encoded uint64. Ten groups at most; the
// tenth group may only carry the final value bit.
func (r *Reader) ReadU64() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift == 63 {
			if b&0x80 != 0 {
				return 0, errors.IntegerTooLong(errors.PhaseDecode, r.pos)
			}
			if b&0x7e != 0 {
				return 0, errors.IntegerTooLarge(errors.PhaseDecode, r.pos)
			}
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// ReadS32 reads a signed LEB128 encoded int32. The unused bits of the final
// group must agree with the value's sign bit.
func (r *Reader) ReadS32() (int32, error) {
	var result int32
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift == 28 {
			if b&0x80 != 0 {
				return 0, errors.IntegerTooLong(errors.PhaseDecode, r.pos)
			}
			// Bits 4-6 must sign-extend bit 3.
			if b&0x08 != 0 {
				if b&0x70 != 0x70 {
					return 0, errors.IntegerTooLarge(errors.PhaseDecode, r.pos)
				}
			} else if b&0x70 != 0 {
				return 0, errors.IntegerTooLarge(errors.PhaseDecode, r.pos)
			}
		}
		result |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	// Sign extend
	if shift < 32 && b&0x40 != 0 {
		result |= ^int32(0) << shift
	}
	return result, nil
}

// ReadS64 reads a signed LEB128 encoded int64.
func (r *Reader) ReadS64() (int64, error) {
	var result int64
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift == 63 {
			if b&0x80 != 0 {
				return 0, errors.IntegerTooLong(errors.PhaseDecode, r.pos)
			}
			// Bits 1-6 must sign-extend bit 0.
			if b&0x01 != 0 {
				if b&0x7e != 0x7e {
					return 0, errors.IntegerTooLarge(errors.PhaseDecode, r.pos)
				}
			} else if b&0x7e != 0 {
				return 0, errors.IntegerTooLarge(errors.PhaseDecode, r.pos)
			}
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	// Sign extend
	if shift < 64 && b&0x40 != 0 {
		result |= ^int64(0) << shift
	}
	return result, nil
}

// ReadName reads a length-prefixed name and validates it as UTF-8. The
// validation is structural: overlong encodings, surrogate halves, truncated
// sequences and the bytes 0xFE/0xFF are all rejected.
func (r *Reader) ReadName() (string, error) {
	length, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	start := r.pos
	data, err := r.ReadBytes(int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, start, data)
	}
	return string(data), nil
}

// BytesSince returns a copy of the bytes consumed since the position start.
func (r *Reader) BytesSince(start int) []byte {
	buf := make([]byte, r.pos-start)
	copy(buf, r.data[start:r.pos])
	return buf
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadRemaining reads all remaining bytes.
func (r *Reader) ReadRemaining() ([]byte, error) {
	return r.ReadBytes(r.Remaining())
}
