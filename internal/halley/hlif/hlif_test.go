package hlif

import (
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"

	"github.com/haldec/halleypack/internal/halley/primitives"
)

// buildBlob assembles a minimal, hand-crafted HLIF blob: a header followed by
// an lz4-compressed body of (per-line encoding bytes, residual bytes), with
// no palettes. This exercises the decoder the same way the single-line
// RGBA/Sub-filter scenario does.
func buildBlob(t *testing.T, width, height int, format Format, lineEncodings []uint8, residuals []byte) []byte {
	t.Helper()

	body := primitives.NewWriter()
	for _, enc := range lineEncodings {
		body.U8(enc)
	}
	body.RawBytes(residuals)
	uncompressed := body.Bytes()

	compressed := make([]byte, lz4.CompressBlockBound(len(uncompressed)))
	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(uncompressed, compressed)
	require.NoError(t, err)
	compressed = compressed[:n]

	w := primitives.NewWriter()
	w.RawBytes([]byte(magic))
	w.U16(uint16(width))
	w.U16(uint16(height))
	w.U32(uint32(len(compressed)))
	w.U32(uint32(len(uncompressed)))
	w.U8(uint8(format))
	w.U8(0) // flags
	w.U8(0) // num palettes
	w.U8(0) // reserved
	w.RawBytes(compressed)
	return w.Bytes()
}

func TestDecodeSingleChannelNoFilter(t *testing.T) {
	blob := buildBlob(t, 2, 1, FormatSingleChannel, []uint8{lineNone}, []byte{0, 255})

	img, err := Decode(blob)
	require.NoError(t, err)
	require.Equal(t, 2, img.Width)
	require.Equal(t, 1, img.Height)

	require.InDelta(t, 0.0, img.Pixels[0], 0.001)
	require.InDelta(t, 1.0, img.Pixels[4], 0.001)
	// all four channels replicated
	for ch := 0; ch < 4; ch++ {
		require.InDelta(t, float64(img.Pixels[4+ch]), 1.0, 0.001)
	}
}

func TestDecodeSubFilter(t *testing.T) {
	// Two single-channel pixels where the second is stored as a delta from
	// the first: raw values [10, 30] -> sub-filtered residual [10, 20].
	blob := buildBlob(t, 2, 1, FormatSingleChannel, []uint8{lineSub}, []byte{10, 20})

	img, err := Decode(blob)
	require.NoError(t, err)
	require.InDelta(t, 10.0/255.0, img.Pixels[0], 0.0001)
	require.InDelta(t, 30.0/255.0, img.Pixels[4], 0.0001)
}

// buildIndexedBlob is like buildBlob but prepends a single palette before the
// line-encoding/residual body, matching the decode order: palettes, then
// per-line encodings, then residuals.
func buildIndexedBlob(t *testing.T, width, height int, entries [256]float32, lineEncodings []uint8, residuals []byte) []byte {
	t.Helper()

	body := primitives.NewWriter()
	body.U32(uint32(width * height)) // end_pixel: one palette covers the whole image
	for _, v := range entries {
		body.F32(v)
	}
	for _, enc := range lineEncodings {
		body.U8(enc)
	}
	body.RawBytes(residuals)
	uncompressed := body.Bytes()

	compressed := make([]byte, lz4.CompressBlockBound(len(uncompressed)))
	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(uncompressed, compressed)
	require.NoError(t, err)
	compressed = compressed[:n]

	w := primitives.NewWriter()
	w.RawBytes([]byte(magic))
	w.U16(uint16(width))
	w.U16(uint16(height))
	w.U32(uint32(len(compressed)))
	w.U32(uint32(len(uncompressed)))
	w.U8(uint8(FormatIndexed))
	w.U8(0) // flags
	w.U8(1) // num palettes
	w.U8(0) // reserved
	w.RawBytes(compressed)
	return w.Bytes()
}

// TestDecodeRGBASubFilter exercises the decodeRGBA path (FormatRGBA, no
// palette, bpp=4) against the literal test vector: width=2 height=1, a
// Sub-filtered line, residuals [10,20,30,40,1,2,3,4] decoding to pixels
// [10,20,30,40,11,22,33,44].
func TestDecodeRGBASubFilter(t *testing.T) {
	blob := buildBlob(t, 2, 1, FormatRGBA, []uint8{lineSub}, []byte{10, 20, 30, 40, 1, 2, 3, 4})

	img, err := Decode(blob)
	require.NoError(t, err)
	require.Equal(t, 2, img.Width)
	require.Equal(t, 1, img.Height)

	want := []float32{10, 20, 30, 40, 11, 22, 33, 44}
	for i, w := range want {
		require.InDelta(t, w, img.Pixels[i], 0.001)
	}
}

func TestDecodeIndexedPalette(t *testing.T) {
	var entries [256]float32
	entries[5] = 1.25
	entries[9] = 3.5

	blob := buildIndexedBlob(t, 2, 1, entries, []uint8{lineNone}, []byte{5, 9})

	img, err := Decode(blob)
	require.NoError(t, err)
	require.Equal(t, 2, img.Width)
	require.Equal(t, 1, img.Height)

	for ch := 0; ch < 4; ch++ {
		require.InDelta(t, 1.25, img.Pixels[ch], 0.0001)
		require.InDelta(t, 3.5, img.Pixels[4+ch], 0.0001)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	_, err := Decode([]byte("NOTHLIF\x00extra"))
	require.Error(t, err)
}

func TestDecodeTruncatedHeader(t *testing.T) {
	_, err := Decode([]byte("HLIFv01"))
	require.Error(t, err)
}

func TestDecodeBadLineEncoding(t *testing.T) {
	blob := buildBlob(t, 1, 1, FormatSingleChannel, []uint8{99}, []byte{0})
	_, err := Decode(blob)
	require.Error(t, err)
}

func TestHeaderBytesPerPixel(t *testing.T) {
	require.Equal(t, 4, Header{Format: FormatRGBA, NumPalettes: 0}.BytesPerPixel())
	require.Equal(t, 1, Header{Format: FormatRGBA, NumPalettes: 1}.BytesPerPixel())
	require.Equal(t, 1, Header{Format: FormatIndexed}.BytesPerPixel())
}

func TestToNRGBA(t *testing.T) {
	img := &Image{Width: 1, Height: 1, Pixels: []float32{1, 0.5, 0, 1}}
	out := img.ToNRGBA()
	require.Equal(t, uint8(255), out.Pix[0])
	require.InDelta(t, 127, int(out.Pix[1]), 1)
	require.Equal(t, uint8(0), out.Pix[2])
	require.Equal(t, uint8(255), out.Pix[3])
}
