// Package payload bridges the binary sub-format codecs (config-node,
// sprite-sheet, animation, HLIF) to the generic values the directory
// projection serializes as JSON5/TOML/YAML text.
package payload

import (
	"bytes"
	"image"
	"image/png"

	"github.com/nfnt/resize"

	"github.com/haldec/halleypack/internal/halley/animation"
	"github.com/haldec/halleypack/internal/halley/confignode"
	"github.com/haldec/halleypack/internal/halley/hlif"
	"github.com/haldec/halleypack/internal/halley/primitives"
	"github.com/haldec/halleypack/internal/halley/spritesheet"
)

// ConfigToText decodes a bare (file-header-less) ConfigNode payload into the
// generic value the text serializer marshals.
func ConfigToText(raw []byte) (interface{}, error) {
	c := primitives.NewCursor(raw)
	node, err := confignode.DecodeNode(c, false)
	if err != nil {
		return nil, err
	}
	return node.ToGeneric(), nil
}

// ConfigFromText re-encodes a generic value (as produced by unmarshaling the
// text sidecar) back into a bare ConfigNode's wire bytes.
func ConfigFromText(v interface{}) []byte {
	node := confignode.FromGeneric(v)
	w := primitives.NewWriter()
	confignode.EncodeNode(w, node, false)
	return w.Bytes()
}

// SpriteSheetToStruct decodes a sprite-sheet asset payload into its plain Go
// struct, ready to be marshaled directly as text.
func SpriteSheetToStruct(raw []byte, is2023 bool) (*spritesheet.SpriteSheet, error) {
	c := primitives.NewCursor(raw)
	if is2023 {
		return spritesheet.DecodeV2(c)
	}
	return spritesheet.DecodeV1(c)
}

// SpriteSheetFromStruct re-encodes a sprite-sheet struct (typically just
// unmarshaled from text) back to wire bytes in the given dialect.
func SpriteSheetFromStruct(ss *spritesheet.SpriteSheet, is2023 bool) []byte {
	w := primitives.NewWriter()
	if is2023 {
		ss.EncodeV2(w)
	} else {
		ss.EncodeV1(w)
	}
	return w.Bytes()
}

// AnimationToStruct decodes an animation asset payload into its plain Go
// struct.
func AnimationToStruct(raw []byte, is2023 bool) (*animation.Animation, error) {
	c := primitives.NewCursor(raw)
	if is2023 {
		return animation.DecodeV2(c)
	}
	return animation.DecodeV1(c)
}

// AnimationFromStruct re-encodes an animation struct back to wire bytes.
func AnimationFromStruct(a *animation.Animation, is2023 bool) []byte {
	w := primitives.NewWriter()
	if is2023 {
		a.EncodeV2(w)
	} else {
		a.EncodeV1(w)
	}
	return w.Bytes()
}

// SpriteResourceToStruct decodes a standalone Sprite asset payload.
func SpriteResourceToStruct(raw []byte, is2023 bool) (*spritesheet.Sprite, error) {
	c := primitives.NewCursor(raw)
	var s spritesheet.Sprite
	var err error
	if is2023 {
		s, err = spritesheet.DecodeSpriteResourceV2(c)
	} else {
		s, err = spritesheet.DecodeSpriteResourceV1(c)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SpriteResourceFromStruct re-encodes a standalone Sprite back to bytes.
func SpriteResourceFromStruct(s *spritesheet.Sprite, is2023 bool) []byte {
	w := primitives.NewWriter()
	if is2023 {
		spritesheet.EncodeSpriteResourceV2(w, *s)
	} else {
		spritesheet.EncodeSpriteResourceV1(w, *s)
	}
	return w.Bytes()
}

// DecodeTexture decodes an HLIF-encoded indexed texture. There is no
// encoder: on pack, indexed-texture assets travel as their original raw
// bytes (see dispatch.KindIndexedTexture), and this is used only to produce
// an informational preview alongside the passthrough payload.
func DecodeTexture(raw []byte) (*hlif.Image, error) {
	return hlif.Decode(raw)
}

// maxPreviewDim bounds the longest edge of a texture preview thumbnail.
const maxPreviewDim = 256

// PreviewPNG renders a decoded indexed texture as a PNG thumbnail, downscaled
// with a high-quality resampler when it exceeds maxPreviewDim on either edge.
// This never feeds back into the pack path: indexed textures travel as raw
// passthrough bytes, and the preview exists purely for a human browsing the
// unpacked tree.
func PreviewPNG(img *hlif.Image) ([]byte, error) {
	src := img.ToNRGBA()

	out := image.Image(src)
	if img.Width > maxPreviewDim || img.Height > maxPreviewDim {
		var dw, dh uint
		if img.Width > img.Height {
			dw = maxPreviewDim
		} else {
			dh = maxPreviewDim
		}
		out = resize.Resize(dw, dh, src, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
