// Package assettable implements the Section/Asset table codec shared by
// both container versions.
package assettable

import (
	"fmt"

	"github.com/haldec/halleypack/internal/halley/confignode"
	"github.com/haldec/halleypack/internal/halley/primitives"
	"github.com/haldec/halleypack/internal/herrors"
	"github.com/haldec/halleypack/internal/ordmap"
)

// AssetTypeV2020 enumerates the 16 asset-type kinds recognized by the 2020
// container.
type AssetTypeV2020 int32

const (
	V2020Binary AssetTypeV2020 = iota
	V2020Text
	V2020Config
	V2020Texture
	V2020Shader
	V2020Material
	V2020Image
	V2020Sprite
	V2020SpriteSheet
	V2020Animation
	V2020Font
	V2020AudioClip
	V2020AudioEvent
	V2020Mesh
	V2020MeshAnimation
	V2020VariableTable
)

// AssetTypeV2023 enumerates the 24 asset-type kinds recognized by the 2023
// container.
type AssetTypeV2023 int32

const (
	V2023Binary AssetTypeV2023 = iota
	V2023Text
	V2023Config
	V2023GameProperties
	V2023Texture
	V2023Shader
	V2023Material
	V2023Image
	V2023SpriteSheet
	V2023Sprite
	V2023Animation
	V2023Font
	V2023AudioClip
	V2023AudioObject
	V2023AudioEvent
	V2023Mesh
	V2023MeshAnimation
	V2023VariableTable
	V2023RenderGraphDefinition
	V2023ScriptGraph
	V2023NavMeshSet
	V2023Prefab
	V2023Scene
	V2023UIDefinition
)

// AssetV2020 is one asset entry in a 2020 section.
type AssetV2020 struct {
	Name       string
	Pos, Size  uint64
	Properties *ordmap.StringMap
}

// SectionV2020 is a typed, ordered run of 2020 assets.
type SectionV2020 struct {
	AssetType AssetTypeV2020
	Assets    []AssetV2020
}

// DecodeSectionV2020 reads one 2020 section: i32 asset_type, u32 count, assets.
func DecodeSectionV2020(c *primitives.Cursor) (*SectionV2020, error) {
	assetType, err := c.I32()
	if err != nil {
		return nil, err
	}
	count, err := c.U32()
	if err != nil {
		return nil, err
	}
	assets := make([]AssetV2020, 0, count)
	for i := uint32(0); i < count; i++ {
		a, err := decodeAssetV2020(c)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	if assetType < int32(V2020Binary) || assetType > int32(V2020VariableTable) {
		return nil, fmt.Errorf("%w: %d", herrors.ErrInvalidAssetType, assetType)
	}
	return &SectionV2020{AssetType: AssetTypeV2020(assetType), Assets: assets}, nil
}

// Encode writes the section back to its 2020 wire form.
func (s *SectionV2020) Encode(w *primitives.Writer) {
	w.I32(int32(s.AssetType))
	w.U32(uint32(len(s.Assets)))
	for _, a := range s.Assets {
		encodeAssetV2020(w, a)
	}
}

func decodeAssetV2020(c *primitives.Cursor) (AssetV2020, error) {
	name, err := c.String()
	if err != nil {
		return AssetV2020{}, err
	}
	posSizeStr, err := c.String()
	if err != nil {
		return AssetV2020{}, err
	}
	posSize, err := primitives.ParsePosSize(posSizeStr)
	if err != nil {
		return AssetV2020{}, err
	}
	props, err := c.StringMap()
	if err != nil {
		return AssetV2020{}, err
	}
	return AssetV2020{Name: name, Pos: posSize.Pos, Size: posSize.Size, Properties: props}, nil
}

func encodeAssetV2020(w *primitives.Writer, a AssetV2020) {
	w.String(a.Name)
	w.String(primitives.PosSize{Pos: a.Pos, Size: a.Size}.String())
	w.StringMap(a.Properties)
}

// AssetV2023 is one asset entry in a 2023 section; its property bag is an
// arbitrary ConfigNode rather than a flat string map.
type AssetV2023 struct {
	Name      string
	Pos, Size uint64
	Config    *confignode.Node
}

// SectionV2023 is a typed, ordered run of 2023 assets.
type SectionV2023 struct {
	AssetType    AssetTypeV2023
	SectionIndex int32
	Assets       []AssetV2023
}

// DecodeSectionV2023 reads one 2023 section: i32 asset_type, i32
// section_index, u32 count, assets.
func DecodeSectionV2023(c *primitives.Cursor) (*SectionV2023, error) {
	assetType, err := c.I32()
	if err != nil {
		return nil, err
	}
	sectionIndex, err := c.I32()
	if err != nil {
		return nil, err
	}
	count, err := c.U32()
	if err != nil {
		return nil, err
	}
	assets := make([]AssetV2023, 0, count)
	for i := uint32(0); i < count; i++ {
		a, err := decodeAssetV2023(c)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	if assetType < int32(V2023Binary) || assetType > int32(V2023UIDefinition) {
		return nil, fmt.Errorf("%w: %d", herrors.ErrInvalidAssetType, assetType)
	}
	return &SectionV2023{AssetType: AssetTypeV2023(assetType), SectionIndex: sectionIndex, Assets: assets}, nil
}

// Encode writes the section back to its 2023 wire form.
func (s *SectionV2023) Encode(w *primitives.Writer) {
	w.I32(int32(s.AssetType))
	w.I32(s.SectionIndex)
	w.U32(uint32(len(s.Assets)))
	for _, a := range s.Assets {
		encodeAssetV2023(w, a)
	}
}

func decodeAssetV2023(c *primitives.Cursor) (AssetV2023, error) {
	name, err := c.String()
	if err != nil {
		return AssetV2023{}, err
	}
	posSizeStr, err := c.String()
	if err != nil {
		return AssetV2023{}, err
	}
	posSize, err := primitives.ParsePosSize(posSizeStr)
	if err != nil {
		return AssetV2023{}, err
	}
	node, err := confignode.DecodeNode(c, false)
	if err != nil {
		return AssetV2023{}, err
	}
	return AssetV2023{Name: name, Pos: posSize.Pos, Size: posSize.Size, Config: node}, nil
}

func encodeAssetV2023(w *primitives.Writer, a AssetV2023) {
	w.String(a.Name)
	w.String(primitives.PosSize{Pos: a.Pos, Size: a.Size}.String())
	confignode.EncodeNode(w, a.Config, false)
}

// GetAssetCompression reads the "asset_compression" property, defaulting to
// "" (verbatim) when absent. For 2020 assets it's a flat property; for 2023
// it's read from the asset's ConfigNode Map.
func (a AssetV2020) GetAssetCompression() string {
	if a.Properties == nil {
		return ""
	}
	v, ok := a.Properties.Get("asset_compression")
	if !ok {
		return ""
	}
	return v
}

// GetAssetCompression reads "asset_compression" out of a 2023 asset's
// ConfigNode Map property bag.
func (a AssetV2023) GetAssetCompression() string {
	return stringMapEntry(a.Config, "asset_compression")
}

// GetCompression reads the "compression" property (the payload-level codec
// hint, distinct from asset_compression's heap-level codec).
func (a AssetV2020) GetCompression() string {
	if a.Properties == nil {
		return ""
	}
	v, _ := a.Properties.Get("compression")
	return v
}

// GetCompression reads "compression" out of a 2023 asset's ConfigNode Map.
func (a AssetV2023) GetCompression() string {
	return stringMapEntry(a.Config, "compression")
}

func stringMapEntry(n *confignode.Node, key string) string {
	if n == nil || n.Kind != confignode.KindMap || n.MapVal == nil {
		return ""
	}
	v, ok := n.MapVal.Get(key)
	if !ok || v == nil || v.Kind != confignode.KindString {
		return ""
	}
	return v.Str
}
