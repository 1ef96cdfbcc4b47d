package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haldec/halleypack/internal/halley/assettable"
)

func TestForV2020Dispatch(t *testing.T) {
	cases := map[assettable.AssetTypeV2020]Kind{
		assettable.V2020Config:      KindConfigTree,
		assettable.V2020SpriteSheet: KindSpriteSheet,
		assettable.V2020Animation:   KindAnimation,
		assettable.V2020Image:       KindIndexedTexture,
		assettable.V2020Sprite:      KindSpriteResource,
		assettable.V2020Binary:      KindPassthrough,
		assettable.V2020Texture:     KindPassthrough,
	}
	for assetType, want := range cases {
		require.Equal(t, want, ForV2020(assetType), "asset type %d", assetType)
	}
}

func TestForV2023Dispatch(t *testing.T) {
	cases := map[assettable.AssetTypeV2023]Kind{
		assettable.V2023Config:      KindConfigTree,
		assettable.V2023SpriteSheet: KindSpriteSheet,
		assettable.V2023Animation:   KindAnimation,
		assettable.V2023Image:       KindIndexedTexture,
		assettable.V2023Sprite:      KindSpriteResource,
		assettable.V2023Prefab:      KindPassthrough,
		assettable.V2023Scene:       KindPassthrough,
	}
	for assetType, want := range cases {
		require.Equal(t, want, ForV2023(assetType), "asset type %d", assetType)
	}
}

func TestKindString(t *testing.T) {
	require.Equal(t, "config", KindConfigTree.String())
	require.Equal(t, "spritesheet", KindSpriteSheet.String())
	require.Equal(t, "animation", KindAnimation.String())
	require.Equal(t, "texture", KindIndexedTexture.String())
	require.Equal(t, "sprite", KindSpriteResource.String())
	require.Equal(t, "passthrough", KindPassthrough.String())
}

func TestConfigFileVersion(t *testing.T) {
	require.EqualValues(t, 3, ConfigFileVersion(true))
	require.EqualValues(t, 2, ConfigFileVersion(false))
}
