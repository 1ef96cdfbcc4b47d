// Package project implements the on-disk directory-projection form: one
// folder per section, a section-level property sidecar, and one payload
// file (plus a property sidecar) per asset.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/haldec/halleypack/internal/halley/payload"
	"github.com/haldec/halleypack/internal/herrors"
	"github.com/haldec/halleypack/internal/serialize"
)

// pathEscape is the literal sequence substituted for ':' on disk, since
// asset names may contain it but most filesystems forbid it in paths.
const pathEscape = "___..___"

// Pathify replaces ':' with the on-disk escape sequence.
func Pathify(name string) string {
	return strings.ReplaceAll(name, ":", pathEscape)
}

// Unpathify reverses Pathify.
func Unpathify(name string) string {
	return strings.ReplaceAll(name, pathEscape, ":")
}

// Options controls directory-projection behavior.
type Options struct {
	// Format is the text serialization used for lifted payloads and every
	// property sidecar.
	Format serialize.Format
	// UnknownExt is appended (without a leading dot) to passthrough asset
	// names that contain no '.', so the on-disk file carries some
	// extension. Defaults to "json5" when left empty.
	UnknownExt string
	Logger     hclog.Logger
}

func (o Options) logger() hclog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return hclog.NewNullLogger()
}

func (o Options) unknownExt() string {
	if o.UnknownExt != "" {
		return o.UnknownExt
	}
	return "json5"
}

func sectionDirName(index int) string {
	return fmt.Sprintf("section_%d", index)
}

// withUnknownExt appends the default extension when name has none.
func withUnknownExt(name, unknownExt string) string {
	if strings.Contains(filepath.Base(name), ".") {
		return name
	}
	return name + "." + unknownExt
}

// sidecarPath derives the ".pro.<ext>" sidecar path for a payload path.
func sidecarPath(payloadPath string, format serialize.Format) string {
	return payloadPath + ".pro." + format.Ext()
}

func writeText(path string, format serialize.Format, v interface{}) error {
	b, err := serialize.Marshal(format, v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", herrors.ErrInputIO, err)
	}
	return os.WriteFile(path, b, 0o644)
}

func writeRaw(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", herrors.ErrInputIO, err)
	}
	return os.WriteFile(path, data, 0o644)
}

func readText(path string, format serialize.Format, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", herrors.ErrInputIO, err)
	}
	return serialize.Unmarshal(format, b, v)
}

func readRaw(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrInputIO, err)
	}
	return b, nil
}

// listSectionDirs returns the numeric-order section_N subdirectories of
// root, failing with ErrInvalidFileInSections if root contains anything
// else at the top level.
func listSectionDirs(root string) ([]int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrInputIO, err)
	}
	var indices []int
	for _, e := range entries {
		if !e.IsDir() {
			return nil, fmt.Errorf("%w: %s", herrors.ErrInvalidFileInSections, e.Name())
		}
		var idx int
		if _, err := fmt.Sscanf(e.Name(), "section_%d", &idx); err != nil {
			return nil, fmt.Errorf("%w: %s", herrors.ErrInvalidFileInSections, e.Name())
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, nil
}

// walkAssetSidecars walks a section directory in deterministic (sorted)
// order, returning every per-asset ".pro.<ext>" sidecar path except the
// section's own <section_N>.pro.<ext>. The sidecar, not the payload file
// name, is the source of truth for the asset's original name (payload
// extensions are not always reversible: a passthrough asset's own "."
// cannot be told apart from an appended unknown-extension default), so pack
// drives off these rather than off payload file names.
func walkAssetSidecars(sectionDir string, format serialize.Format) ([]string, error) {
	sidecarSuffix := ".pro." + format.Ext()
	sectionSidecarName := filepath.Base(sectionDir) + sidecarSuffix
	var paths []string
	err := filepath.WalkDir(sectionDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, sidecarSuffix) {
			return nil
		}
		if filepath.Dir(path) == sectionDir && filepath.Base(path) == sectionSidecarName {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrInputIO, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// payloadPathForSidecar strips the ".pro.<ext>" suffix a sidecar path
// carries, yielding its payload file's path.
func payloadPathForSidecar(sidecarPath string, format serialize.Format) string {
	return strings.TrimSuffix(sidecarPath, ".pro."+format.Ext())
}

// writeTexturePreview decodes raw HLIF bytes and writes a downscaled PNG
// thumbnail alongside the passthrough payload, named "<diskBase>.preview.png"
// and placed next to the asset's own unknown-extension file. originalName is
// used only for error messages.
func writeTexturePreview(sectionDir, diskBase, originalName string, raw []byte, opts Options) error {
	img, err := payload.DecodeTexture(raw)
	if err != nil {
		return fmt.Errorf("decode %s: %w", originalName, err)
	}
	png, err := payload.PreviewPNG(img)
	if err != nil {
		return fmt.Errorf("render preview for %s: %w", originalName, err)
	}
	previewPath := filepath.Join(sectionDir, diskBase+".preview.png")
	return writeRaw(previewPath, png)
}

func parseAssetTypeProperty(v interface{}) (int32, bool) {
	switch n := v.(type) {
	case int:
		return int32(n), true
	case int32:
		return n, true
	case int64:
		return int32(n), true
	case float64:
		return int32(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 32)
		return int32(i), err == nil
	default:
		return 0, false
	}
}
