package project

import (
	"fmt"
	"path/filepath"

	"github.com/haldec/halleypack/internal/halley/animation"
	"github.com/haldec/halleypack/internal/halley/assettable"
	"github.com/haldec/halleypack/internal/halley/confignode"
	"github.com/haldec/halleypack/internal/halley/dispatch"
	"github.com/haldec/halleypack/internal/halley/heap"
	"github.com/haldec/halleypack/internal/halley/payload"
	"github.com/haldec/halleypack/internal/halley/spritesheet"
	"github.com/haldec/halleypack/internal/herrors"
)

// UnpackV2023 projects a decoded 2023 pack onto disk at root.
func UnpackV2023(sections []*assettable.SectionV2023, h *heap.Heap, root string, opts Options) error {
	log := opts.logger().Named("project.v2023")
	format := opts.Format

	for secIdx, sec := range sections {
		sectionDir := filepath.Join(root, sectionDirName(secIdx))
		sectionSidecar := filepath.Join(sectionDir, sectionDirName(secIdx)+".pro."+format.Ext())
		secProps := map[string]interface{}{
			"asset_type":    int32(sec.AssetType),
			"section_index": sec.SectionIndex,
		}
		if err := writeText(sectionSidecar, format, secProps); err != nil {
			return err
		}

		for _, asset := range sec.Assets {
			if err := unpackAssetV2023(sectionDir, sec.AssetType, asset, h, opts); err != nil {
				return err
			}
		}
		log.Debug("unpacked section", "index", secIdx, "asset_type", sec.AssetType, "assets", len(sec.Assets))
	}
	return nil
}

func unpackAssetV2023(sectionDir string, assetType assettable.AssetTypeV2023, asset assettable.AssetV2023, h *heap.Heap, opts Options) error {
	format := opts.Format
	raw, err := h.Slice(asset.Pos, asset.Size)
	if err != nil {
		return err
	}
	decompressed, err := heap.Decompress(raw, asset.GetAssetCompression())
	if err != nil {
		return err
	}

	kind := dispatch.ForV2023(assetType)
	diskBase := Pathify(asset.Name)
	var payloadPath string

	switch kind {
	case dispatch.KindConfigTree:
		payloadPath = filepath.Join(sectionDir, diskBase+"."+format.Ext())
		generic, err := payload.ConfigToText(decompressed)
		if err != nil {
			return err
		}
		if err := writeText(payloadPath, format, generic); err != nil {
			return err
		}
	case dispatch.KindSpriteSheet:
		payloadPath = filepath.Join(sectionDir, diskBase+"."+format.Ext())
		ss, err := payload.SpriteSheetToStruct(decompressed, true)
		if err != nil {
			return err
		}
		if err := writeText(payloadPath, format, ss); err != nil {
			return err
		}
	case dispatch.KindAnimation:
		payloadPath = filepath.Join(sectionDir, diskBase+"."+format.Ext())
		anim, err := payload.AnimationToStruct(decompressed, true)
		if err != nil {
			return err
		}
		if err := writeText(payloadPath, format, anim); err != nil {
			return err
		}
	case dispatch.KindSpriteResource:
		payloadPath = filepath.Join(sectionDir, diskBase+"."+format.Ext())
		spr, err := payload.SpriteResourceToStruct(decompressed, true)
		if err != nil {
			return err
		}
		if err := writeText(payloadPath, format, spr); err != nil {
			return err
		}
	case dispatch.KindIndexedTexture:
		payloadPath = filepath.Join(sectionDir, withUnknownExt(diskBase, opts.unknownExt()))
		if err := writeRaw(payloadPath, decompressed); err != nil {
			return err
		}
		if err := writeTexturePreview(sectionDir, diskBase, asset.Name, decompressed, opts); err != nil {
			opts.logger().Warn("HLIF preview decode failed", "asset", asset.Name, "error", err)
		}
	default:
		payloadPath = filepath.Join(sectionDir, withUnknownExt(diskBase, opts.unknownExt()))
		if err := writeRaw(payloadPath, decompressed); err != nil {
			return err
		}
	}

	assetProps := asset.Config.ToGeneric()
	sidecar := map[string]interface{}{"name": asset.Name, "properties": assetProps}
	return writeText(sidecarPath(payloadPath, format), format, sidecar)
}

// PackV2023 reads a directory-projected 2023 tree back into sections and a
// freshly built heap.
func PackV2023(root string, opts Options) ([]*assettable.SectionV2023, *heap.Heap, error) {
	format := opts.Format
	indices, err := listSectionDirs(root)
	if err != nil {
		return nil, nil, err
	}

	h := heap.New()
	sections := make([]*assettable.SectionV2023, 0, len(indices))

	for _, idx := range indices {
		sectionDir := filepath.Join(root, sectionDirName(idx))
		sectionSidecar := filepath.Join(sectionDir, sectionDirName(idx)+".pro."+format.Ext())
		var secProps map[string]interface{}
		if err := readText(sectionSidecar, format, &secProps); err != nil {
			return nil, nil, err
		}
		rawType, ok := secProps["asset_type"]
		if !ok {
			return nil, nil, fmt.Errorf("%w: section_%d", herrors.ErrMissingAssetType, idx)
		}
		assetTypeVal, ok := parseAssetTypeProperty(rawType)
		if !ok || assetTypeVal < int32(assettable.V2023Binary) || assetTypeVal > int32(assettable.V2023UIDefinition) {
			return nil, nil, fmt.Errorf("%w: %v", herrors.ErrInvalidAssetType, rawType)
		}
		assetType := assettable.AssetTypeV2023(assetTypeVal)
		sectionIndex := assetTypeVal
		if raw, ok := secProps["section_index"]; ok {
			if v, ok := parseAssetTypeProperty(raw); ok {
				sectionIndex = v
			}
		}

		sidecars, err := walkAssetSidecars(sectionDir, format)
		if err != nil {
			return nil, nil, err
		}

		assets := make([]assettable.AssetV2023, 0, len(sidecars))
		for _, sidecar := range sidecars {
			asset, err := packAssetV2023(sidecar, assetType, h, opts)
			if err != nil {
				return nil, nil, err
			}
			assets = append(assets, asset)
		}
		sections = append(sections, &assettable.SectionV2023{AssetType: assetType, SectionIndex: sectionIndex, Assets: assets})
	}

	return sections, h, nil
}

func packAssetV2023(sidecar string, assetType assettable.AssetTypeV2023, h *heap.Heap, opts Options) (assettable.AssetV2023, error) {
	format := opts.Format
	var sidecarData struct {
		Name       string      `json:"name" toml:"name" yaml:"name"`
		Properties interface{} `json:"properties" toml:"properties" yaml:"properties"`
	}
	if err := readText(sidecar, format, &sidecarData); err != nil {
		return assettable.AssetV2023{}, err
	}

	payloadFile := payloadPathForSidecar(sidecar, format)
	kind := dispatch.ForV2023(assetType)

	var encoded []byte
	switch kind {
	case dispatch.KindConfigTree:
		var generic interface{}
		if err := readText(payloadFile, format, &generic); err != nil {
			return assettable.AssetV2023{}, err
		}
		encoded = payload.ConfigFromText(generic)
	case dispatch.KindSpriteSheet:
		ss := &spritesheet.SpriteSheet{}
		if err := readText(payloadFile, format, ss); err != nil {
			return assettable.AssetV2023{}, err
		}
		encoded = payload.SpriteSheetFromStruct(ss, true)
	case dispatch.KindAnimation:
		anim := &animation.Animation{}
		if err := readText(payloadFile, format, anim); err != nil {
			return assettable.AssetV2023{}, err
		}
		encoded = payload.AnimationFromStruct(anim, true)
	case dispatch.KindSpriteResource:
		spr := &spritesheet.Sprite{}
		if err := readText(payloadFile, format, spr); err != nil {
			return assettable.AssetV2023{}, err
		}
		encoded = payload.SpriteResourceFromStruct(spr, true)
	default:
		raw, err := readRaw(payloadFile)
		if err != nil {
			return assettable.AssetV2023{}, err
		}
		encoded = raw
	}

	configNode := confignode.FromGeneric(sidecarData.Properties)
	assetCompression := ""
	if configNode.Kind == confignode.KindMap && configNode.MapVal != nil {
		if v, ok := configNode.MapVal.Get("asset_compression"); ok && v.Kind == confignode.KindString {
			assetCompression = v.Str
		}
	}

	pos, size, err := h.Add(encoded, assetCompression)
	if err != nil {
		return assettable.AssetV2023{}, err
	}
	return assettable.AssetV2023{Name: sidecarData.Name, Pos: pos, Size: size, Config: configNode}, nil
}
