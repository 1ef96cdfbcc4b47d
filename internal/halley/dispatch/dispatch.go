// Package dispatch maps (container version, asset type) to the payload
// codec responsible for lifting that asset's bytes into a human-editable
// text form and back.
package dispatch

import (
	"github.com/haldec/halleypack/internal/halley/assettable"
)

// Kind is one of the payload handler families a dispatch can resolve to.
type Kind int

const (
	// KindPassthrough stores/restores the asset payload verbatim; no text
	// lift is attempted (binary blobs, shaders, textures, meshes, ...).
	KindPassthrough Kind = iota
	// KindConfigTree lifts the payload as a bare ConfigNode; the file-level
	// ConfigFile wrapper is synthesized around it on pack.
	KindConfigTree
	// KindSpriteSheet lifts a multi-sprite sheet asset.
	KindSpriteSheet
	// KindAnimation lifts a sequence/direction animation asset.
	KindAnimation
	// KindIndexedTexture decodes an HLIF-encoded texture for a preview only;
	// there is no HLIF encoder, so the raw bytes travel unchanged on pack.
	KindIndexedTexture
	// KindSpriteResource lifts a single standalone Sprite geometry record.
	KindSpriteResource
)

// String returns a short human-readable name for the handler kind
// ("passthrough" for KindPassthrough and any unknown value).
func (k Kind) String() string {
	switch k {
	case KindConfigTree:
		return "config"
	case KindSpriteSheet:
		return "spritesheet"
	case KindAnimation:
		return "animation"
	case KindIndexedTexture:
		return "texture"
	case KindSpriteResource:
		return "sprite"
	default:
		return "passthrough"
	}
}

// ForV2020 resolves the handler kind for a 2020 asset type.
func ForV2020(t assettable.AssetTypeV2020) Kind {
	switch t {
	case assettable.V2020Config:
		return KindConfigTree
	case assettable.V2020SpriteSheet:
		return KindSpriteSheet
	case assettable.V2020Animation:
		return KindAnimation
	case assettable.V2020Image:
		return KindIndexedTexture
	case assettable.V2020Sprite:
		return KindSpriteResource
	default:
		return KindPassthrough
	}
}

// ForV2023 resolves the handler kind for a 2023 asset type.
func ForV2023(t assettable.AssetTypeV2023) Kind {
	switch t {
	case assettable.V2023Config:
		return KindConfigTree
	case assettable.V2023SpriteSheet:
		return KindSpriteSheet
	case assettable.V2023Animation:
		return KindAnimation
	case assettable.V2023Image:
		return KindIndexedTexture
	case assettable.V2023Sprite:
		return KindSpriteResource
	default:
		return KindPassthrough
	}
}

// ConfigFileVersion is the ConfigFile.Version a dispatcher re-synthesizes
// around a bare ConfigNode root when packing a config-tree asset, keyed by
// container version.
func ConfigFileVersion(is2023 bool) int32 {
	if is2023 {
		return 3
	}
	return 2
}
