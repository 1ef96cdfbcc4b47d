package envelope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		IV:              [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		AssetDBStartPos: 40,
		DataStartPos:    512,
		AssetDBSize:     472,
	}
	buf := h.Bytes()
	require.Len(t, buf, HeaderSize)

	got, err := ParseHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestParseHeaderBadMagic(t *testing.T) {
	buf := make([]byte, HeaderSize)
	copy(buf, "NOTMAGIC")
	_, err := ParseHeader(buf)
	require.Error(t, err)
}

func TestParseHeaderTruncated(t *testing.T) {
	_, err := ParseHeader([]byte("HALLEYPK"))
	require.Error(t, err)
}

func TestIndexDeflateInflateRoundTrip(t *testing.T) {
	original := []byte("this is an asset index payload that compresses reasonably well well well")
	compressed, err := DeflateIndex(original)
	require.NoError(t, err)

	out, err := InflateIndex(compressed, uint64(len(original)))
	require.NoError(t, err)
	require.Equal(t, original, out)
}

func TestInflateIndexBadData(t *testing.T) {
	_, err := InflateIndex([]byte{0, 1, 2, 3}, 10)
	require.Error(t, err)
}

func TestDecodeKeyRoundTrip(t *testing.T) {
	k, err := DecodeKey("AAECAwQFBgcICQoLDA0ODw==")
	require.NoError(t, err)
	require.Equal(t, [16]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, k)

	_, err = DecodeKey("not base64!!")
	require.Error(t, err)

	_, err = DecodeKey("AAA=")
	require.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	var key [16]byte
	for i := range key {
		key[i] = byte(i + 1)
	}
	heap := make([]byte, 32)
	for i := range heap {
		heap[i] = byte(i)
	}

	iv, ciphertext, err := Encrypt(heap, [16]byte{}, &key, nil)
	require.NoError(t, err)
	require.NotEqual(t, [16]byte{}, iv, "a fresh random IV must be generated when key is set and iv is zero")
	require.NotEqual(t, heap, ciphertext)

	plain, err := Decrypt(ciphertext, iv, &key, nil)
	require.NoError(t, err)
	require.Equal(t, heap, plain)
}

func TestZeroIVMeansPassthrough(t *testing.T) {
	var key [16]byte
	heap := []byte{1, 2, 3, 4}

	out, err := Decrypt(heap, [16]byte{}, &key, nil)
	require.NoError(t, err)
	require.Equal(t, heap, out)
}

func TestEncryptNoKeyIsNoop(t *testing.T) {
	heap := []byte{1, 2, 3, 4}
	iv, out, err := Encrypt(heap, [16]byte{}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, [16]byte{}, iv)
	require.Equal(t, heap, out)
}

func TestEncryptRejectsUnalignedHeap(t *testing.T) {
	var key [16]byte
	_, _, err := Encrypt([]byte{1, 2, 3}, [16]byte{}, &key, nil)
	require.Error(t, err)
}
