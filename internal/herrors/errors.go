// Package herrors collects the sentinel errors shared across every halleypack
// codec. Each is wrapped with contextual detail via fmt.Errorf("...: %w", ...)
// at the point it is raised.
package herrors

import "errors"

var (
	// Envelope errors
	ErrBadMagic        = errors.New("bad archive magic")
	ErrTruncatedHeader = errors.New("truncated envelope header")
	ErrIndexDecompress = errors.New("failed to decompress asset index")
	ErrDecrypt         = errors.New("failed to decrypt data heap")

	// Section/asset table errors
	ErrInvalidAssetType     = errors.New("invalid asset type")
	ErrInvalidFileInSections = errors.New("unexpected file where only section_N entries are allowed")
	ErrMissingAssetType     = errors.New("section property file is missing asset_type")
	ErrMalformedPosSize     = errors.New("malformed pos/size metadata")

	// Config-node errors
	ErrDecodeTruncated = errors.New("truncated config-node stream")

	// HLIF errors
	ErrBadHLIFMagic    = errors.New("bad HLIF magic")
	ErrHLIFTruncated   = errors.New("truncated HLIF stream")
	ErrBadLineEncoding = errors.New("unrecognized HLIF line encoding byte")

	// Sprite sheet / animation errors
	ErrBadVersionByte = errors.New("unrecognized dialect version byte")

	// Serialization errors
	ErrSerialization = errors.New("serialization failure")

	// Generic I/O
	ErrInputIO     = errors.New("input file missing or unreadable")
	ErrTruncated   = errors.New("unexpected end of input")
	ErrDecompress  = errors.New("decompression failure")
)
