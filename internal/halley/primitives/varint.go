package primitives

import (
	"fmt"

	"github.com/haldec/halleypack/internal/herrors"
)

// headerByteCount returns the byte count N encoded by the leading 1-bits of
// the header byte: (N-1) consecutive 1-bits followed by a 0, except N=9 which is
// signalled by a header byte that is all 1s (no terminating 0 bit exists).
func headerByteCount(header uint8) int {
	n := 0
	for n < 8 && header&(0x80>>uint(n)) != 0 {
		n++
	}
	if n == 8 {
		return 9
	}
	return n + 1
}

// headerByte produces the leading byte for byte count n (1..9): (n-1) leading
// 1-bits, then a terminating 0 bit, then the low (8-n) payload bits for n<9;
// for n=9 the byte is all 1s (no terminator fits) and carries no payload bits
// of its own. This must stay the exact inverse of headerByteCount.
func headerByte(n int, lowPayload uint8) uint8 {
	if n == 9 {
		return 0xFF
	}
	var h uint8
	for i := 0; i < n-1; i++ {
		h |= 0x80 >> uint(i)
	}
	mask := uint8(1<<uint(8-n)) - 1
	return h | (lowPayload & mask)
}

// capacityBits returns the number of payload bits carried by an N-byte
// encoding: 7N for N=1..8, 64 for N=9.
func capacityBits(n int) int {
	if n == 9 {
		return 64
	}
	return 7 * n
}

// minBytesForBits returns the smallest N whose capacity holds a value that
// needs `bits` bits of magnitude.
func minBytesForBits(bits int) int {
	for n := 1; n <= 9; n++ {
		if capacityBits(n) >= bits {
			return n
		}
	}
	return 9
}

func bitLength(v uint64) int {
	n := 0
	for v != 0 {
		n++
		v >>= 1
	}
	return n
}

// EncodeVarU encodes an unsigned value using the bit-packed varint scheme.
func EncodeVarU(v uint64) []byte {
	n := minBytesForBits(bitLength(v))
	return packVarint(v, n)
}

// packVarint lays v's bits across n bytes: the low (8-n) bits of byte 0 (for
// n<9; byte 0 is pure header for n=9), then 8 bits per byte thereafter, least
// significant bits first.
func packVarint(v uint64, n int) []byte {
	out := make([]byte, n)
	if n == 9 {
		out[0] = 0xFF
		for i := 0; i < 8; i++ {
			out[1+i] = byte(v >> uint(8*i))
		}
		return out
	}
	lowBits := 8 - n
	out[0] = headerByte(n, uint8(v))
	v >>= uint(lowBits)
	for i := 1; i < n; i++ {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// unpackVarint is the inverse of packVarint: it returns the raw magnitude
// bits (capacityBits(n) of them) encoded across the n-byte run starting at
// c's current position, without interpreting a sign bit.
func unpackVarint(c *Cursor, n int) (uint64, error) {
	raw, err := c.Bytes(n)
	if err != nil {
		return 0, fmt.Errorf("%w: varint needs %d bytes", herrors.ErrTruncated, n)
	}
	if n == 9 {
		var v uint64
		for i := 7; i >= 0; i-- {
			v = (v << 8) | uint64(raw[1+i])
		}
		return v, nil
	}
	lowBits := 8 - n
	mask := uint8(1<<uint(lowBits)) - 1
	var v uint64
	for i := n - 1; i >= 1; i-- {
		v = (v << 8) | uint64(raw[i])
	}
	v = (v << uint(lowBits)) | uint64(raw[0]&mask)
	return v, nil
}

// DecodeVarU reads one bit-packed unsigned varint from c.
func DecodeVarU(c *Cursor) (uint64, error) {
	header, err := c.Peek()
	if err != nil {
		return 0, err
	}
	n := headerByteCount(header)
	return unpackVarint(c, n)
}

// EncodeVarI encodes a signed value. The sign occupies the top payload bit of
// the smallest encoding that fits; negative values are biased as -(v+1) so
// that zero has a canonical unsigned representation.
func EncodeVarI(v int64) []byte {
	var sign uint64
	var mag uint64
	if v < 0 {
		sign = 1
		mag = uint64(-(v + 1))
	} else {
		mag = uint64(v)
	}
	// Need room for the magnitude bits plus one sign bit.
	n := minBytesForBits(bitLength(mag) + 1)
	signBitPos := signBitPosition(n)
	payload := mag | (sign << uint(signBitPos))
	return packVarint(payload, n)
}

func signBitPosition(n int) int {
	if n == 9 {
		return 63
	}
	return 7*n - 1
}

// DecodeVarI reads one bit-packed signed varint from c.
func DecodeVarI(c *Cursor) (int64, error) {
	header, err := c.Peek()
	if err != nil {
		return 0, err
	}
	n := headerByteCount(header)
	payload, err := unpackVarint(c, n)
	if err != nil {
		return 0, err
	}
	signBitPos := signBitPosition(n)
	signMask := uint64(1) << uint(signBitPos)
	mag := payload &^ signMask
	if payload&signMask != 0 {
		return -(int64(mag) + 1), nil
	}
	return int64(mag), nil
}

// VarString reads a varint-length-prefixed UTF-8 string (2023 dialect).
func (c *Cursor) VarString() (string, error) {
	n, err := DecodeVarU(c)
	if err != nil {
		return "", err
	}
	b, err := c.Bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VarString writes a varint-length-prefixed UTF-8 string.
func (w *Writer) VarString(s string) {
	w.RawBytes(EncodeVarU(uint64(len(s))))
	w.buf.WriteString(s)
}

// VarU writes an unsigned varint.
func (w *Writer) VarU(v uint64) { w.RawBytes(EncodeVarU(v)) }

// VarI writes a signed varint.
func (w *Writer) VarI(v int64) { w.RawBytes(EncodeVarI(v)) }
