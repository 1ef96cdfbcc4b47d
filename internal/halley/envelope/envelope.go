// Package envelope implements the outer HALLEYPK container: the fixed
// header, the zlib-compressed asset index, and the AES-128-CBC data heap.
package envelope

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zlib"

	"github.com/haldec/halleypack/internal/halley/primitives"
	"github.com/haldec/halleypack/internal/herrors"
)

const (
	// Identifier is the fixed 8-byte magic at the start of every archive.
	Identifier = "HALLEYPK"
	// HeaderSize is the total size, in bytes, of the fixed envelope header.
	HeaderSize = 40
)

// Header is the fixed 40-byte envelope prologue.
type Header struct {
	IV              [16]byte
	AssetDBStartPos uint64
	DataStartPos    uint64
	AssetDBSize     uint64
}

// ParseHeader reads and validates the 40-byte envelope header.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: have %d bytes, need %d", herrors.ErrTruncatedHeader, len(buf), HeaderSize)
	}
	if string(buf[0:8]) != Identifier {
		return Header{}, fmt.Errorf("%w: got %q", herrors.ErrBadMagic, buf[0:8])
	}
	c := primitives.NewCursor(buf[8:HeaderSize])
	var h Header
	ivBytes, err := c.Bytes(16)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrTruncatedHeader, err)
	}
	copy(h.IV[:], ivBytes)
	start, err := c.U64()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrTruncatedHeader, err)
	}
	dataStart, err := c.U64()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrTruncatedHeader, err)
	}
	dbSize, err := c.U64()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrTruncatedHeader, err)
	}
	h.AssetDBStartPos = start
	h.DataStartPos = dataStart
	h.AssetDBSize = dbSize
	return h, nil
}

// Bytes serializes the header to its 40-byte wire form.
func (h Header) Bytes() []byte {
	w := primitives.NewWriter()
	w.RawBytes([]byte(Identifier))
	w.RawBytes(h.IV[:])
	w.U64(h.AssetDBStartPos)
	w.U64(h.DataStartPos)
	w.U64(h.AssetDBSize)
	return w.Bytes()
}

// isZeroIV reports whether iv is all zero bytes, the "not encrypted" marker.
func isZeroIV(iv [16]byte) bool {
	var zero [16]byte
	return iv == zero
}

// DecodeKey decodes a base64-encoded 16-byte AES-128 key.
func DecodeKey(b64 string) ([16]byte, error) {
	var key [16]byte
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return key, fmt.Errorf("decoding key: %w", err)
	}
	if len(raw) != 16 {
		return key, fmt.Errorf("key must decode to 16 bytes, got %d", len(raw))
	}
	copy(key[:], raw)
	return key, nil
}

// DeflateIndex zlib-compresses the asset-index bytes for storage after the
// envelope header.
func DeflateIndex(index []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(index); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// InflateIndex zlib-decompresses compressed down to exactly expectedSize
// bytes, matching the envelope invariant that asset_db_size is exact.
func InflateIndex(compressed []byte, expectedSize uint64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrIndexDecompress, err)
	}
	defer zr.Close()
	out := make([]byte, expectedSize)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrIndexDecompress, err)
	}
	return out, nil
}

// Decrypt reverses the AES-128-CBC envelope over the data heap. A zero IV
// means "not encrypted" regardless of whether a key was supplied.
func Decrypt(heap []byte, iv [16]byte, key *[16]byte, logger hclog.Logger) ([]byte, error) {
	if isZeroIV(iv) || key == nil {
		return heap, nil
	}
	if len(heap)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: heap length %d is not a multiple of %d", herrors.ErrDecrypt, len(heap), aes.BlockSize)
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrDecrypt, err)
	}
	out := make([]byte, len(heap))
	cbc := cipher.NewCBCDecrypter(block, iv[:])
	cbc.CryptBlocks(out, heap)
	if logger != nil {
		logger.Debug("decrypted data heap", "bytes", len(heap))
	}
	return out, nil
}

// Encrypt applies AES-128-CBC to heap. If key is non-nil and iv is the zero
// value, a fresh random IV is generated (never a zero IV when a key is
// supplied, matching the corrected write-path behavior this codec targets).
// heap's length must already be a multiple of the AES block size; callers
// pad at a higher layer if needed. Returns the (possibly freshly generated)
// IV alongside the ciphertext.
func Encrypt(heap []byte, iv [16]byte, key *[16]byte, logger hclog.Logger) ([16]byte, []byte, error) {
	if key == nil {
		return [16]byte{}, heap, nil
	}
	if isZeroIV(iv) {
		if _, err := rand.Read(iv[:]); err != nil {
			return iv, nil, fmt.Errorf("%w: generating IV: %v", herrors.ErrDecrypt, err)
		}
	}
	if len(heap)%aes.BlockSize != 0 {
		return iv, nil, fmt.Errorf("%w: heap length %d is not a multiple of %d", herrors.ErrDecrypt, len(heap), aes.BlockSize)
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return iv, nil, fmt.Errorf("%w: %v", herrors.ErrDecrypt, err)
	}
	out := make([]byte, len(heap))
	cbc := cipher.NewCBCEncrypter(block, iv[:])
	cbc.CryptBlocks(out, heap)
	if logger != nil {
		logger.Debug("encrypted data heap", "bytes", len(heap))
	}
	return iv, out, nil
}
