// Package primitives implements the little-endian scalar, string, and
// ordered-map wire encodings shared by every halleypack container format.
package primitives

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/haldec/halleypack/internal/herrors"
	"github.com/haldec/halleypack/internal/ordmap"
)

// Cursor reads primitives sequentially out of an in-memory byte slice. The
// whole archive is materialized before decoding (see design note on
// streaming vs. buffering), so a cursor over a byte slice is sufficient.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for sequential reads starting at offset 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// Remaining reports how many bytes are left to read.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d at offset %d", herrors.ErrTruncated, n, c.Remaining(), c.pos)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *Cursor) U8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) I32() (int32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (c *Cursor) U32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) I64() (int64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (c *Cursor) U64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *Cursor) I16() (int16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

func (c *Cursor) U16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) F32() (float32, error) {
	bits, err := c.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// Bytes reads n raw bytes.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Peek returns the next byte without advancing the cursor. Used by the
// varint decoders to read the header byte before consuming the whole run.
func (c *Cursor) Peek() (uint8, error) {
	if c.Remaining() < 1 {
		return 0, fmt.Errorf("%w: peek past end", herrors.ErrTruncated)
	}
	return c.buf[c.pos], nil
}

// String reads a u32-length-prefixed, unterminated UTF-8 string.
func (c *Cursor) String() (string, error) {
	n, err := c.U32()
	if err != nil {
		return "", err
	}
	b, err := c.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Bool reads a single signed byte: only the literal value 1 decodes true.
func (c *Cursor) Bool() (bool, error) {
	b, err := c.take(1)
	if err != nil {
		return false, err
	}
	return int8(b[0]) == 1, nil
}

// StringMap reads a u32-counted, insertion-ordered string->string map.
func (c *Cursor) StringMap() (*ordmap.StringMap, error) {
	n, err := c.U32()
	if err != nil {
		return nil, err
	}
	m := ordmap.NewStringMap()
	for i := uint32(0); i < n; i++ {
		k, err := c.String()
		if err != nil {
			return nil, err
		}
		v, err := c.String()
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
	return m, nil
}

// PosSize is the decoded form of the "<pos>:<size>" asset metadata string.
type PosSize struct {
	Pos  uint64
	Size uint64
}

// ParsePosSize parses "<decimal pos>:<decimal size>".
func ParsePosSize(s string) (PosSize, error) {
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return PosSize{}, fmt.Errorf("%w: %q", herrors.ErrMalformedPosSize, s)
	}
	posStr, sizeStr := s[:idx], s[idx+1:]
	pos, err := strconv.ParseUint(posStr, 10, 64)
	if err != nil {
		return PosSize{}, fmt.Errorf("%w: %q", herrors.ErrMalformedPosSize, s)
	}
	size, err := strconv.ParseUint(sizeStr, 10, 64)
	if err != nil {
		return PosSize{}, fmt.Errorf("%w: %q", herrors.ErrMalformedPosSize, s)
	}
	return PosSize{Pos: pos, Size: size}, nil
}

// String renders the canonical "<pos>:<size>" form.
func (p PosSize) String() string {
	return fmt.Sprintf("%d:%d", p.Pos, p.Size)
}

// Writer builds primitive-encoded bytes sequentially.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the bytes accumulated so far.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len reports the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

func (w *Writer) U8(v uint8)   { w.buf.WriteByte(v) }
func (w *Writer) RawBytes(b []byte) { w.buf.Write(b) }

func (w *Writer) I32(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.buf.Write(b[:])
}

func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) I64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

func (w *Writer) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) I16(v int16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(v))
	w.buf.Write(b[:])
}

func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) F32(v float32) {
	w.U32(math.Float32bits(v))
}

func (w *Writer) String(s string) {
	w.U32(uint32(len(s)))
	w.buf.WriteString(s)
}

func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
	} else {
		w.U8(0)
	}
}

func (w *Writer) StringMap(m *ordmap.StringMap) {
	if m == nil {
		w.U32(0)
		return
	}
	w.U32(uint32(m.Len()))
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		w.String(pair.Key)
		w.String(pair.Value)
	}
}
