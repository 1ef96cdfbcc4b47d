// Package heap implements the append-only data heap and its per-asset
// "deflate"/"lz4" compression schemes.
package heap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"

	"github.com/haldec/halleypack/internal/herrors"
)

var lz4Magic = [4]byte{'L', 'Z', '4', 0}

// Heap is an append-only byte pool that assets are sliced out of by
// (pos, size). It is the only mutable shared structure during packing and
// callers that build sections concurrently must serialize Add calls.
type Heap struct {
	buf bytes.Buffer
}

// New returns an empty heap.
func New() *Heap { return &Heap{} }

// Bytes returns the heap's raw contents.
func (h *Heap) Bytes() []byte { return h.buf.Bytes() }

// Add compresses data per assetCompression, appends it, and returns its
// (pos, size) within the heap.
func (h *Heap) Add(data []byte, assetCompression string) (pos, size uint64, err error) {
	encoded, err := Compress(data, assetCompression)
	if err != nil {
		return 0, 0, err
	}
	pos = uint64(h.buf.Len())
	h.buf.Write(encoded)
	size = uint64(len(encoded))
	return pos, size, nil
}

// Slice returns the raw, still-compressed bytes for (pos, size).
func (h *Heap) Slice(pos, size uint64) ([]byte, error) {
	buf := h.buf.Bytes()
	if pos+size > uint64(len(buf)) {
		return nil, fmt.Errorf("%w: slice [%d:%d] exceeds heap of %d bytes", herrors.ErrTruncated, pos, pos+size, len(buf))
	}
	return buf[pos : pos+size], nil
}

// Compress applies the named per-asset heap compression scheme.
func Compress(data []byte, scheme string) ([]byte, error) {
	switch scheme {
	case "":
		return data, nil
	case "deflate":
		return compressDeflate(data)
	case "lz4":
		return compressLZ4(data)
	default:
		return nil, fmt.Errorf("%w: unknown asset_compression %q", herrors.ErrDecompress, scheme)
	}
}

// Decompress reverses Compress given the scheme recorded in the asset's
// properties.
func Decompress(data []byte, scheme string) ([]byte, error) {
	switch scheme {
	case "":
		return data, nil
	case "deflate":
		return decompressDeflate(data)
	case "lz4":
		return decompressLZ4(data)
	default:
		return nil, fmt.Errorf("%w: unknown asset_compression %q", herrors.ErrDecompress, scheme)
	}
}

func compressDeflate(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := binary.Write(&out, binary.LittleEndian, uint64(len(data))); err != nil {
		return nil, err
	}
	zw := zlib.NewWriter(&out)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func decompressDeflate(data []byte) ([]byte, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: deflate block shorter than length prefix", herrors.ErrTruncated)
	}
	origLen := binary.LittleEndian.Uint64(data[:8])
	zr, err := zlib.NewReader(bytes.NewReader(data[8:]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrDecompress, err)
	}
	defer zr.Close()
	out := make([]byte, origLen)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrDecompress, err)
	}
	return out, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Write(lz4Magic[:])
	if err := binary.Write(&out, binary.LittleEndian, int32(len(data))); err != nil {
		return nil, err
	}
	block := make([]byte, lz4.CompressBlockBound(len(data)))
	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(data, block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrDecompress, err)
	}
	out.Write(block[:n])
	return out.Bytes(), nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	if len(data) < 8 || string(data[:4]) != string(lz4Magic[:]) {
		return nil, fmt.Errorf("%w: bad lz4 block magic", herrors.ErrDecompress)
	}
	origLen := int32(binary.LittleEndian.Uint32(data[4:8]))
	out := make([]byte, origLen)
	n, err := lz4.UncompressBlock(data[8:], out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrDecompress, err)
	}
	return out[:n], nil
}
