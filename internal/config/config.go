// Package config holds the small set of named defaults and the base64 key
// parsing shared by the CLI and the pack/unpack orchestration, mirroring the
// teacher's constants.go + defaults.go pattern: named constants with an
// environment-variable override cascade rather than scattered literals.
package config

import (
	"os"

	"github.com/haldec/halleypack/internal/halley/envelope"
	"github.com/haldec/halleypack/internal/serialize"
)

// DefaultSerializationFormat is the format used when no file extension or
// flag says otherwise.
const DefaultSerializationFormat = serialize.FormatJSON5

// DefaultUnknownExtension is appended to passthrough asset names that carry
// no extension of their own.
const DefaultUnknownExtension = "json5"

// EnvKeyVar is the environment variable holding a default base64 AES key,
// consulted when the CLI's -s flag is not given.
const EnvKeyVar = "HALLEYPACK_KEY"

// DecodeKey parses a base64-encoded 16-byte AES-128 key. Delegates to the
// envelope package, which owns the wire-level crypto this key feeds.
func DecodeKey(b64 string) ([16]byte, error) {
	return envelope.DecodeKey(b64)
}

// ResolveKey returns the key to use: the explicit flag value if non-empty,
// else the EnvKeyVar environment variable, else nil (unencrypted).
func ResolveKey(flagValue string) (*[16]byte, error) {
	b64 := flagValue
	if b64 == "" {
		b64 = os.Getenv(EnvKeyVar)
	}
	if b64 == "" {
		return nil, nil
	}
	key, err := DecodeKey(b64)
	if err != nil {
		return nil, err
	}
	return &key, nil
}
