// Package hlif decodes the indexed-texture ("HLIF") image format: an LZ4
// blob of optional palettes, per-line PNG-style predictor codes, and pixel
// residuals. Encoding is intentionally not implemented — the format this
// package was distilled from never shipped a writer either.
package hlif

import (
	"fmt"
	"math"

	"github.com/pierrec/lz4/v4"

	"github.com/haldec/halleypack/internal/halley/primitives"
	"github.com/haldec/halleypack/internal/herrors"
)

const magic = "HLIFv01\x00"

// Format is the pixel storage format declared in the header.
type Format uint8

const (
	FormatRGBA Format = iota
	FormatSingleChannel
	FormatIndexed
)

// Header is the fixed HLIF prologue.
type Header struct {
	Width            uint16
	Height           uint16
	CompressedSize   uint32
	UncompressedSize uint32
	Format           Format
	Flags            uint8
	NumPalettes      uint8
	Reserved         uint8
}

// BytesPerPixel returns the residual stride: 4 iff RGBA with no palettes,
// else 1.
func (h Header) BytesPerPixel() int {
	if h.Format == FormatRGBA && h.NumPalettes == 0 {
		return 4
	}
	return 1
}

// Palette is one 256-entry float32 lookup table, active for pixels up to
// (but not including) EndPixel in linear scan order.
type Palette struct {
	EndPixel uint32
	Entries  [256]float32
}

// Image is the decoded result: an RGBA32F buffer, width*height*4 float32s in
// row-major RGBA order. For single-channel/indexed sources, the decoded
// value is replicated across all four channels, matching the source's
// "downstream palette-swap stage interprets it" behavior.
type Image struct {
	Width, Height int
	Pixels        []float32 // len == Width*Height*4
}

func parseHeader(c *primitives.Cursor) (Header, error) {
	m, err := c.Bytes(8)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrHLIFTruncated, err)
	}
	if string(m) != magic {
		return Header{}, fmt.Errorf("%w: got %q", herrors.ErrBadHLIFMagic, m)
	}
	width, err := c.U16()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrHLIFTruncated, err)
	}
	height, err := c.U16()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrHLIFTruncated, err)
	}
	compSize, err := c.U32()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrHLIFTruncated, err)
	}
	uncompSize, err := c.U32()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrHLIFTruncated, err)
	}
	format, err := c.U8()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrHLIFTruncated, err)
	}
	flags, err := c.U8()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrHLIFTruncated, err)
	}
	numPalettes, err := c.U8()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrHLIFTruncated, err)
	}
	reserved, err := c.U8()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrHLIFTruncated, err)
	}
	return Header{
		Width: width, Height: height,
		CompressedSize: compSize, UncompressedSize: uncompSize,
		Format: Format(format), Flags: flags, NumPalettes: numPalettes, Reserved: reserved,
	}, nil
}

const lineNone = 0
const lineSub = 1
const lineUp = 2
const lineAverage = 3
const linePaeth = 4

// Decode parses a complete HLIF blob into a decoded RGBA32F image.
func Decode(data []byte) (*Image, error) {
	c := primitives.NewCursor(data)
	hdr, err := parseHeader(c)
	if err != nil {
		return nil, err
	}

	rest, err := c.Bytes(c.Remaining())
	if err != nil {
		return nil, err
	}
	uncompressed := make([]byte, hdr.UncompressedSize)
	n, err := lz4.UncompressBlock(rest, uncompressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrHLIFTruncated, err)
	}
	if n != len(uncompressed) {
		return nil, fmt.Errorf("%w: lz4 blob decompressed to %d bytes, header declares %d", herrors.ErrHLIFTruncated, n, hdr.UncompressedSize)
	}

	bc := primitives.NewCursor(uncompressed)

	palettes := make([]Palette, 0, hdr.NumPalettes)
	for i := 0; i < int(hdr.NumPalettes); i++ {
		p, err := decodePalette(bc)
		if err != nil {
			return nil, err
		}
		palettes = append(palettes, p)
	}
	if len(palettes) > 0 {
		deltaDecodePalettes(palettes)
	}

	width, height := int(hdr.Width), int(hdr.Height)
	bpp := hdr.BytesPerPixel()

	lineEncodings := make([]uint8, height)
	for y := 0; y < height; y++ {
		enc, err := bc.U8()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", herrors.ErrHLIFTruncated, err)
		}
		if enc > linePaeth {
			return nil, fmt.Errorf("%w: %d", herrors.ErrBadLineEncoding, enc)
		}
		lineEncodings[y] = enc
	}

	residuals, err := bc.Bytes(width * height * bpp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrHLIFTruncated, err)
	}

	pixelBytes := unfilter(residuals, width, height, bpp, lineEncodings)

	img := &Image{Width: width, Height: height, Pixels: make([]float32, width*height*4)}

	if len(palettes) > 0 {
		decodeIndexed(img, pixelBytes, palettes)
	} else if bpp == 4 {
		decodeRGBA(img, pixelBytes)
	} else {
		decodeSingleChannelBytes(img, pixelBytes)
	}

	return img, nil
}

func decodePalette(c *primitives.Cursor) (Palette, error) {
	var p Palette
	endPixel, err := c.U32()
	if err != nil {
		return p, fmt.Errorf("%w: %v", herrors.ErrHLIFTruncated, err)
	}
	p.EndPixel = endPixel
	for i := 0; i < 256; i++ {
		v, err := c.F32()
		if err != nil {
			return p, fmt.Errorf("%w: %v", herrors.ErrHLIFTruncated, err)
		}
		p.Entries[i] = v
	}
	return p, nil
}

// deltaDecodePalettes reverses the byte-wise delta coding across the raw
// 1024-byte representation of each palette's Entries array: palette[i][j] +=
// palette[i-1][j] (wrap mod 256), applied in place for i>=1.
func deltaDecodePalettes(palettes []Palette) {
	for i := 1; i < len(palettes); i++ {
		prevBytes := floatsToBytes(palettes[i-1].Entries[:])
		curBytes := floatsToBytes(palettes[i].Entries[:])
		for j := range curBytes {
			curBytes[j] = curBytes[j] + prevBytes[j]
		}
		palettes[i].Entries = bytesToFloats(curBytes)
	}
}

func floatsToBytes(fs []float32) []byte {
	b := make([]byte, len(fs)*4)
	for i, f := range fs {
		bits := math.Float32bits(f)
		b[i*4+0] = byte(bits)
		b[i*4+1] = byte(bits >> 8)
		b[i*4+2] = byte(bits >> 16)
		b[i*4+3] = byte(bits >> 24)
	}
	return b
}

func bytesToFloats(b []byte) [256]float32 {
	var out [256]float32
	for i := 0; i < 256; i++ {
		bits := uint32(b[i*4+0]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out
}

// unfilter reverses the PNG-style per-line predictor filter on a copy of
// residuals (which is left unchanged) and returns the resulting pixel bytes.
func unfilter(residuals []byte, width, height, bpp int, lineEncodings []uint8) []byte {
	stride := width * bpp
	out := make([]byte, len(residuals))
	copy(out, residuals)

	var prevLine []byte
	for y := 0; y < height; y++ {
		line := out[y*stride : (y+1)*stride]
		switch lineEncodings[y] {
		case lineNone:
			// nothing to do
		case lineSub:
			for x := bpp; x < stride; x++ {
				line[x] += line[x-bpp]
			}
		case lineUp:
			if prevLine != nil {
				for x := 0; x < stride; x++ {
					line[x] += prevLine[x]
				}
			}
		case lineAverage:
			for x := 0; x < stride; x++ {
				var left, up int
				if x >= bpp {
					left = int(line[x-bpp])
				}
				if prevLine != nil {
					up = int(prevLine[x])
				}
				line[x] += byte((left + up) / 2)
			}
		case linePaeth:
			for x := 0; x < stride; x++ {
				var a, b, c int
				if x >= bpp {
					a = int(line[x-bpp])
				}
				if prevLine != nil {
					b = int(prevLine[x])
				}
				if x >= bpp && prevLine != nil {
					c = int(prevLine[x-bpp])
				}
				line[x] += paeth(a, b, c)
			}
		}
		prevLine = line
	}
	return out
}

func paeth(a, b, c int) byte {
	p := a + b - c
	pa := abs(p - a)
	pb := abs(p - b)
	pc := abs(p - c)
	if pa <= pb && pa <= pc {
		return byte(a)
	}
	if pb <= pc {
		return byte(b)
	}
	return byte(c)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func decodeRGBA(img *Image, pixelBytes []byte) {
	for i := 0; i < img.Width*img.Height; i++ {
		base := i * 4
		img.Pixels[i*4+0] = float32(pixelBytes[base+0])
		img.Pixels[i*4+1] = float32(pixelBytes[base+1])
		img.Pixels[i*4+2] = float32(pixelBytes[base+2])
		img.Pixels[i*4+3] = float32(pixelBytes[base+3])
	}
}

func decodeSingleChannelBytes(img *Image, pixelBytes []byte) {
	for i := 0; i < img.Width*img.Height; i++ {
		v := float32(pixelBytes[i]) / 255.0
		img.Pixels[i*4+0] = v
		img.Pixels[i*4+1] = v
		img.Pixels[i*4+2] = v
		img.Pixels[i*4+3] = v
	}
}

// decodeIndexed scans pixels left-to-right/top-to-bottom, selecting for each
// linear pixel index the smallest-index palette whose EndPixel is strictly
// greater than that index, and writes its looked-up entry into all four
// output channels.
func decodeIndexed(img *Image, pixelBytes []byte, palettes []Palette) {
	paletteIdx := 0
	for i := 0; i < img.Width*img.Height; i++ {
		for paletteIdx < len(palettes)-1 && uint32(i) >= palettes[paletteIdx].EndPixel {
			paletteIdx++
		}
		v := palettes[paletteIdx].Entries[pixelBytes[i]]
		img.Pixels[i*4+0] = v
		img.Pixels[i*4+1] = v
		img.Pixels[i*4+2] = v
		img.Pixels[i*4+3] = v
	}
}
