package primitives

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haldec/halleypack/internal/ordmap"
)

func TestCursorScalarRoundTrip(t *testing.T) {
	w := NewWriter()
	w.U8(0xAB)
	w.U16(0x1234)
	w.U32(0xDEADBEEF)
	w.U64(0x0102030405060708)
	w.I32(-42)
	w.F32(3.5)
	w.Bool(true)
	w.Bool(false)
	w.String("hello")

	c := NewCursor(w.Bytes())

	u8, err := c.U8()
	require.NoError(t, err)
	require.EqualValues(t, 0xAB, u8)

	u16, err := c.U16()
	require.NoError(t, err)
	require.EqualValues(t, 0x1234, u16)

	u32, err := c.U32()
	require.NoError(t, err)
	require.EqualValues(t, 0xDEADBEEF, u32)

	u64, err := c.U64()
	require.NoError(t, err)
	require.EqualValues(t, 0x0102030405060708, u64)

	i32, err := c.I32()
	require.NoError(t, err)
	require.EqualValues(t, -42, i32)

	f32, err := c.F32()
	require.NoError(t, err)
	require.InDelta(t, 3.5, f32, 0.0001)

	b1, err := c.Bool()
	require.NoError(t, err)
	require.True(t, b1)

	b2, err := c.Bool()
	require.NoError(t, err)
	require.False(t, b2)

	s, err := c.String()
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	require.Zero(t, c.Remaining())
}

func TestCursorTruncated(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02})
	_, err := c.U32()
	require.Error(t, err)
}

func TestParsePosSize(t *testing.T) {
	ps, err := ParsePosSize("128:256")
	require.NoError(t, err)
	require.Equal(t, PosSize{Pos: 128, Size: 256}, ps)
	require.Equal(t, "128:256", ps.String())

	_, err = ParsePosSize("notvalid")
	require.Error(t, err)

	_, err = ParsePosSize("12:abc")
	require.Error(t, err)
}

func TestStringMapRoundTrip(t *testing.T) {
	w := NewWriter()
	m := map[string]string{"a": "1", "b": "2", "c": "3"}
	order := []string{"a", "b", "c"}

	sm := ordmap.NewStringMap()
	for _, k := range order {
		sm.Set(k, m[k])
	}
	w.StringMap(sm)

	c := NewCursor(w.Bytes())
	got, err := c.StringMap()
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())

	var gotOrder []string
	for pair := got.Oldest(); pair != nil; pair = pair.Next() {
		gotOrder = append(gotOrder, pair.Key)
		require.Equal(t, m[pair.Key], pair.Value)
	}
	require.Equal(t, order, gotOrder)
}
