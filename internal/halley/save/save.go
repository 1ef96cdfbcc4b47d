// Package save reads the HLLYSAVE save-game container: a header identifying
// the save plus an AES-CBC/zlib-wrapped body, sharing the envelope's crypto
// but carrying no asset index. This is a read-only inspector: filename_hash
// and data_hash are parsed but never verified against the payload, matching
// the source this was distilled from, which never implemented that check
// either.
package save

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zlib"

	"github.com/haldec/halleypack/internal/halley/envelope"
	"github.com/haldec/halleypack/internal/halley/primitives"
	"github.com/haldec/halleypack/internal/herrors"
)

// Identifier is the save-file magic, distinct from the pack envelope's.
const Identifier = "HLLYSAVE"

// HeaderV1 is the optional trailer present when the declared version
// carries a data hash.
type HeaderV1 struct {
	DataHash uint64
}

// Header is the full HLLYSAVE prologue.
type Header struct {
	Version      uint32
	Reserved     uint32
	IV           [16]byte
	FilenameHash uint64
	V1           *HeaderV1
}

// hasV1Trailer reports whether this header's declared version carries the
// HeaderV1 data_hash trailer. Versions >= 1 do, matching the source's own
// SDLSaveHeader's Option<SDLSaveHeaderV1>.
func hasV1Trailer(version uint32) bool { return version >= 1 }

// ParseHeader reads the HLLYSAVE magic, v0 fields, and the conditional v1
// trailer.
func ParseHeader(c *primitives.Cursor) (Header, error) {
	magic, err := c.Bytes(len(Identifier))
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrTruncatedHeader, err)
	}
	if string(magic) != Identifier {
		return Header{}, fmt.Errorf("%w: got %q", herrors.ErrBadMagic, magic)
	}
	version, err := c.U32()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrTruncatedHeader, err)
	}
	reserved, err := c.U32()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrTruncatedHeader, err)
	}
	ivBytes, err := c.Bytes(16)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrTruncatedHeader, err)
	}
	var iv [16]byte
	copy(iv[:], ivBytes)
	filenameHash, err := c.U64()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", herrors.ErrTruncatedHeader, err)
	}

	h := Header{Version: version, Reserved: reserved, IV: iv, FilenameHash: filenameHash}
	if hasV1Trailer(version) {
		dataHash, err := c.U64()
		if err != nil {
			return Header{}, fmt.Errorf("%w: %v", herrors.ErrTruncatedHeader, err)
		}
		h.V1 = &HeaderV1{DataHash: dataHash}
	}
	return h, nil
}

// FilenameHash computes the xxhash64 of a save's file name, for comparison
// against Header.FilenameHash during manual inspection. This tool never
// enforces the comparison itself.
func FilenameHash(name string) uint64 {
	return xxhash.Sum64String(name)
}

// LoadSaveData reads path, decrypts its body using key (nil or an all-zero
// IV skips decryption, as in the pack envelope), zlib-inflates it, and
// returns the raw decompressed bytes. No hash in the header is checked.
func LoadSaveData(path string, key *[16]byte, logger hclog.Logger) ([]byte, Header, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, Header{}, fmt.Errorf("%w: %v", herrors.ErrInputIO, err)
	}
	c := primitives.NewCursor(raw)
	header, err := ParseHeader(c)
	if err != nil {
		return nil, Header{}, err
	}
	body, err := c.Bytes(c.Remaining())
	if err != nil {
		return nil, Header{}, err
	}

	decrypted, err := envelope.Decrypt(body, header.IV, key, logger)
	if err != nil {
		return nil, Header{}, err
	}

	zr, err := zlib.NewReader(bytes.NewReader(decrypted))
	if err != nil {
		return nil, Header{}, fmt.Errorf("%w: %v", herrors.ErrDecompress, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, Header{}, fmt.Errorf("%w: %v", herrors.ErrDecompress, err)
	}

	logger.Debug("loaded save data", "version", header.Version, "filename_hash", header.FilenameHash, "bytes", len(out))
	return out, header, nil
}
