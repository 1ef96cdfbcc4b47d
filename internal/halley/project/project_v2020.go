package project

import (
	"fmt"
	"path/filepath"

	"github.com/haldec/halleypack/internal/halley/animation"
	"github.com/haldec/halleypack/internal/halley/assettable"
	"github.com/haldec/halleypack/internal/halley/dispatch"
	"github.com/haldec/halleypack/internal/halley/heap"
	"github.com/haldec/halleypack/internal/halley/payload"
	"github.com/haldec/halleypack/internal/halley/spritesheet"
	"github.com/haldec/halleypack/internal/herrors"
	"github.com/haldec/halleypack/internal/ordmap"
)

// UnpackV2020 projects a decoded 2020 pack onto disk at root.
func UnpackV2020(sections []*assettable.SectionV2020, h *heap.Heap, root string, opts Options) error {
	log := opts.logger().Named("project.v2020")
	format := opts.Format

	for secIdx, sec := range sections {
		sectionDir := filepath.Join(root, sectionDirName(secIdx))
		sectionSidecar := filepath.Join(sectionDir, sectionDirName(secIdx)+".pro."+format.Ext())
		if err := writeText(sectionSidecar, format, map[string]interface{}{"asset_type": int32(sec.AssetType)}); err != nil {
			return err
		}

		for _, asset := range sec.Assets {
			if err := unpackAssetV2020(sectionDir, sec.AssetType, asset, h, opts); err != nil {
				return err
			}
		}
		log.Debug("unpacked section", "index", secIdx, "asset_type", sec.AssetType, "assets", len(sec.Assets))
	}
	return nil
}

func unpackAssetV2020(sectionDir string, assetType assettable.AssetTypeV2020, asset assettable.AssetV2020, h *heap.Heap, opts Options) error {
	format := opts.Format
	raw, err := h.Slice(asset.Pos, asset.Size)
	if err != nil {
		return err
	}
	decompressed, err := heap.Decompress(raw, asset.GetAssetCompression())
	if err != nil {
		return err
	}

	kind := dispatch.ForV2020(assetType)
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
		ss, err := payload.SpriteSheetToStruct(decompressed, false)
		if err != nil {
			return err
		}
		if err := writeText(payloadPath, format, ss); err != nil {
			return err
		}
	case dispatch.KindAnimation:
		payloadPath = filepath.Join(sectionDir, diskBase+"."+format.Ext())
		anim, err := payload.AnimationToStruct(decompressed, false)
		if err != nil {
			return err
		}
		if err := writeText(payloadPath, format, anim); err != nil {
			return err
		}
	case dispatch.KindSpriteResource:
		payloadPath = filepath.Join(sectionDir, diskBase+"."+format.Ext())
		spr, err := payload.SpriteResourceToStruct(decompressed, false)
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

	return writeText(sidecarPath(payloadPath, format), format, propertiesToGeneric(asset))
}

func propertiesToGeneric(asset assettable.AssetV2020) map[string]interface{} {
	out := map[string]interface{}{"name": asset.Name}
	if asset.Properties != nil {
		for pair := asset.Properties.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = pair.Value
		}
	}
	return out
}

// PackV2020 reads a directory-projected 2020 tree back into sections and a
// freshly built heap.
func PackV2020(root string, opts Options) ([]*assettable.SectionV2020, *heap.Heap, error) {
	format := opts.Format
	indices, err := listSectionDirs(root)
	if err != nil {
		return nil, nil, err
	}

	h := heap.New()
	sections := make([]*assettable.SectionV2020, 0, len(indices))

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
		if !ok || assetTypeVal < int32(assettable.V2020Binary) || assetTypeVal > int32(assettable.V2020VariableTable) {
			return nil, nil, fmt.Errorf("%w: %v", herrors.ErrInvalidAssetType, rawType)
		}
		assetType := assettable.AssetTypeV2020(assetTypeVal)

		sidecars, err := walkAssetSidecars(sectionDir, format)
		if err != nil {
			return nil, nil, err
		}

		assets := make([]assettable.AssetV2020, 0, len(sidecars))
		for _, sidecar := range sidecars {
			asset, err := packAssetV2020(sidecar, sectionDir, assetType, h, opts)
			if err != nil {
				return nil, nil, err
			}
			assets = append(assets, asset)
		}
		sections = append(sections, &assettable.SectionV2020{AssetType: assetType, Assets: assets})
	}

	return sections, h, nil
}

func packAssetV2020(sidecar, sectionDir string, assetType assettable.AssetTypeV2020, h *heap.Heap, opts Options) (assettable.AssetV2020, error) {
	format := opts.Format
	var sidecarData map[string]interface{}
	if err := readText(sidecar, format, &sidecarData); err != nil {
		return assettable.AssetV2020{}, err
	}
	name, _ := sidecarData["name"].(string)

	payloadFile := payloadPathForSidecar(sidecar, format)
	kind := dispatch.ForV2020(assetType)

	var encoded []byte
	switch kind {
	case dispatch.KindConfigTree:
		var generic interface{}
		if err := readText(payloadFile, format, &generic); err != nil {
			return assettable.AssetV2020{}, err
		}
		encoded = payload.ConfigFromText(generic)
	case dispatch.KindSpriteSheet:
		ss := &spritesheet.SpriteSheet{}
		if err := readText(payloadFile, format, ss); err != nil {
			return assettable.AssetV2020{}, err
		}
		encoded = payload.SpriteSheetFromStruct(ss, false)
	case dispatch.KindAnimation:
		anim := &animation.Animation{}
		if err := readText(payloadFile, format, anim); err != nil {
			return assettable.AssetV2020{}, err
		}
		encoded = payload.AnimationFromStruct(anim, false)
	case dispatch.KindSpriteResource:
		spr := &spritesheet.Sprite{}
		if err := readText(payloadFile, format, spr); err != nil {
			return assettable.AssetV2020{}, err
		}
		encoded = payload.SpriteResourceFromStruct(spr, false)
	default:
		raw, err := readRaw(payloadFile)
		if err != nil {
			return assettable.AssetV2020{}, err
		}
		encoded = raw
	}

	props := ordmap.NewStringMap()
	assetCompression := ""
	for k, v := range sidecarData {
		if k == "name" {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		props.Set(k, s)
		if k == "asset_compression" {
			assetCompression = s
		}
	}

	pos, size, err := h.Add(encoded, assetCompression)
	if err != nil {
		return assettable.AssetV2020{}, err
	}
	return assettable.AssetV2020{Name: name, Pos: pos, Size: size, Properties: props}, nil
}
