package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeapAddSliceRoundTrip(t *testing.T) {
	h := New()
	pos1, size1, err := h.Add([]byte("first asset"), "")
	require.NoError(t, err)
	pos2, size2, err := h.Add([]byte("second asset, a bit longer"), "")
	require.NoError(t, err)

	got1, err := h.Slice(pos1, size1)
	require.NoError(t, err)
	require.Equal(t, []byte("first asset"), got1)

	got2, err := h.Slice(pos2, size2)
	require.NoError(t, err)
	require.Equal(t, []byte("second asset, a bit longer"), got2)
}

func TestHeapSliceOutOfBounds(t *testing.T) {
	h := New()
	_, _, err := h.Add([]byte("x"), "")
	require.NoError(t, err)
	_, err = h.Slice(0, 1000)
	require.Error(t, err)
}

func TestFromBytesSlice(t *testing.T) {
	h := FromBytes([]byte("abcdefgh"))
	got, err := h.Slice(2, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("cdef"), got)
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	schemes := []string{"", "deflate", "lz4"}
	data := []byte("the quick brown fox jumps over the lazy dog, repeated for compressibility: the quick brown fox jumps over the lazy dog")

	for _, scheme := range schemes {
		compressed, err := Compress(data, scheme)
		require.NoError(t, err, scheme)

		decompressed, err := Decompress(compressed, scheme)
		require.NoError(t, err, scheme)
		require.Equal(t, data, decompressed, scheme)
	}
}

func TestCompressUnknownScheme(t *testing.T) {
	_, err := Compress([]byte("x"), "bogus")
	require.Error(t, err)

	_, err = Decompress([]byte("x"), "bogus")
	require.Error(t, err)
}

func TestDecompressDeflateTruncated(t *testing.T) {
	_, err := Decompress([]byte{1, 2, 3}, "deflate")
	require.Error(t, err)
}

func TestDecompressLZ4BadMagic(t *testing.T) {
	_, err := Decompress([]byte{0, 0, 0, 0, 0, 0, 0, 0}, "lz4")
	require.Error(t, err)
}

func TestHeapAddWithCompression(t *testing.T) {
	h := New()
	pos, size, err := h.Add([]byte("compressible compressible compressible compressible"), "deflate")
	require.NoError(t, err)

	raw, err := h.Slice(pos, size)
	require.NoError(t, err)

	out, err := Decompress(raw, "deflate")
	require.NoError(t, err)
	require.Equal(t, []byte("compressible compressible compressible compressible"), out)
}
