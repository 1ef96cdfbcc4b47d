package payload

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"

	"github.com/haldec/halleypack/internal/halley/animation"
	"github.com/haldec/halleypack/internal/halley/confignode"
	"github.com/haldec/halleypack/internal/halley/hlif"
	"github.com/haldec/halleypack/internal/halley/primitives"
	"github.com/haldec/halleypack/internal/halley/spritesheet"
)

func TestConfigTextRoundTrip(t *testing.T) {
	m := confignode.NewMap()
	m.Set("name", &confignode.Node{Kind: confignode.KindString, Str: "goblin"})
	m.Set("hp", &confignode.Node{Kind: confignode.KindInt, Int: 12})
	node := &confignode.Node{Kind: confignode.KindMap, MapVal: m}

	w := primitives.NewWriter()
	confignode.EncodeNode(w, node, false)

	generic, err := ConfigToText(w.Bytes())
	require.NoError(t, err)

	back := ConfigFromText(generic)
	rebuilt, err := confignode.DecodeNode(primitives.NewCursor(back), false)
	require.NoError(t, err)
	require.Equal(t, confignode.KindMap, rebuilt.Kind)
	nameNode, ok := rebuilt.MapVal.Get("name")
	require.True(t, ok)
	require.Equal(t, "goblin", nameNode.Str)
}

func TestSpriteSheetToFromStruct(t *testing.T) {
	ss := &spritesheet.SpriteSheet{
		Name: "sheet",
		Sprites: []spritesheet.Sprite{
			{Pivot: [2]float32{0.5, 0.5}, Size: [2]float32{16, 16}},
		},
	}
	raw := SpriteSheetFromStruct(ss, false)
	got, err := SpriteSheetToStruct(raw, false)
	require.NoError(t, err)
	require.Equal(t, ss.Name, got.Name)
	require.Equal(t, ss.Sprites, got.Sprites)
}

func TestAnimationToFromStruct(t *testing.T) {
	a := &animation.Animation{Name: "walk", Spritesheet: "sheet", Material: "mat"}
	raw := AnimationFromStruct(a, true)
	got, err := AnimationToStruct(raw, true)
	require.NoError(t, err)
	require.Equal(t, a.Name, got.Name)
}

func TestSpriteResourceToFromStruct(t *testing.T) {
	s := &spritesheet.Sprite{Pivot: [2]float32{1, 2}, Size: [2]float32{3, 4}}
	raw := SpriteResourceFromStruct(s, false)
	got, err := SpriteResourceToStruct(raw, false)
	require.NoError(t, err)
	require.Equal(t, *s, *got)
}

func buildTestHLIF(t *testing.T, width, height int) []byte {
	t.Helper()
	body := primitives.NewWriter()
	for y := 0; y < height; y++ {
		body.U8(0)
	}
	for i := 0; i < width*height; i++ {
		body.U8(uint8(i * 10 % 256))
	}
	uncompressed := body.Bytes()

	compressed := make([]byte, lz4.CompressBlockBound(len(uncompressed)))
	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(uncompressed, compressed)
	require.NoError(t, err)
	compressed = compressed[:n]

	w := primitives.NewWriter()
	w.RawBytes([]byte("HLIFv01\x00"))
	w.U16(uint16(width))
	w.U16(uint16(height))
	w.U32(uint32(len(compressed)))
	w.U32(uint32(len(uncompressed)))
	w.U8(uint8(hlif.FormatSingleChannel))
	w.U8(0)
	w.U8(0)
	w.U8(0)
	w.RawBytes(compressed)
	return w.Bytes()
}

func TestDecodeTextureAndPreview(t *testing.T) {
	raw := buildTestHLIF(t, 4, 4)
	img, err := DecodeTexture(raw)
	require.NoError(t, err)
	require.Equal(t, 4, img.Width)

	pngBytes, err := PreviewPNG(img)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(pngBytes))
	require.NoError(t, err)
	require.Equal(t, 4, decoded.Bounds().Dx())
}

func TestPreviewPNGDownscales(t *testing.T) {
	raw := buildTestHLIF(t, 300, 100)
	img, err := DecodeTexture(raw)
	require.NoError(t, err)

	pngBytes, err := PreviewPNG(img)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(pngBytes))
	require.NoError(t, err)
	require.LessOrEqual(t, decoded.Bounds().Dx(), maxPreviewDim)
	require.LessOrEqual(t, decoded.Bounds().Dy(), maxPreviewDim)
}
