package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haldec/halleypack/internal/halley/assettable"
	"github.com/haldec/halleypack/internal/halley/confignode"
	"github.com/haldec/halleypack/internal/halley/heap"
	"github.com/haldec/halleypack/internal/serialize"
)

func TestPathifyUnpathifyRoundTrip(t *testing.T) {
	names := []string{
		"images:hero.png",
		"ui:menu:button.png",
		"plain_name.png",
		"",
	}
	for _, n := range names {
		escaped := Pathify(n)
		require.NotContains(t, escaped, ":")
		require.Equal(t, n, Unpathify(escaped))
	}
}

func TestWithUnknownExt(t *testing.T) {
	require.Equal(t, "asset.json5", withUnknownExt("asset", "json5"))
	require.Equal(t, "asset.bin", withUnknownExt("asset.bin", "json5"))
	require.Equal(t, "dir.with.dots/asset", withUnknownExt("dir.with.dots/asset", "json5"))
}

func TestSidecarPathAndBack(t *testing.T) {
	payloadPath := filepath.Join("section_0", "hero.png")
	sc := sidecarPath(payloadPath, serialize.FormatJSON5)
	require.Equal(t, payloadPath+".pro.json5", sc)
	require.Equal(t, payloadPath, payloadPathForSidecar(sc, serialize.FormatJSON5))
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	require.Equal(t, "json5", o.unknownExt())
	require.NotNil(t, o.logger())

	o.UnknownExt = "txt"
	require.Equal(t, "txt", o.unknownExt())
}

func TestListSectionDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "section_0"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "section_2"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "section_1"), 0o755))

	indices, err := listSectionDirs(dir)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, indices)
}

func TestListSectionDirsRejectsStrayFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0o644))

	_, err := listSectionDirs(dir)
	require.Error(t, err)
}

func TestWalkAssetSidecarsExcludesSectionOwn(t *testing.T) {
	dir := t.TempDir()
	sectionDir := filepath.Join(dir, "section_0")
	require.NoError(t, os.MkdirAll(sectionDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(sectionDir, "section_0.pro.json5"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sectionDir, "hero.png.pro.json5"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sectionDir, "sword.png.pro.json5"), []byte("{}"), 0o644))

	paths, err := walkAssetSidecars(sectionDir, serialize.FormatJSON5)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, p := range paths {
		require.NotEqual(t, "section_0.pro.json5", filepath.Base(p))
	}
}

func TestUnpackPackV2023RoundTrip(t *testing.T) {
	h := heap.New()
	cfg := confignode.NewMap()
	cfg.Set("asset_compression", &confignode.Node{Kind: confignode.KindString, Str: ""})
	pos, size, err := h.Add([]byte("some binary bytes"), "")
	require.NoError(t, err)

	sections := []*assettable.SectionV2023{
		{
			AssetType:    assettable.V2023Binary,
			SectionIndex: 0,
			Assets: []assettable.AssetV2023{
				{Name: "data:blob.bin", Pos: pos, Size: size, Config: &confignode.Node{Kind: confignode.KindMap, MapVal: cfg}},
			},
		},
	}

	dir := t.TempDir()
	require.NoError(t, UnpackV2023(sections, h, dir, Options{}))

	gotSections, gotHeap, err := PackV2023(dir, Options{})
	require.NoError(t, err)
	require.Len(t, gotSections, 1)
	require.Equal(t, "data:blob.bin", gotSections[0].Assets[0].Name)

	raw, err := gotHeap.Slice(gotSections[0].Assets[0].Pos, gotSections[0].Assets[0].Size)
	require.NoError(t, err)
	require.Equal(t, []byte("some binary bytes"), raw)
}

func TestParseAssetTypeProperty(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int32
		ok   bool
	}{
		{3, 3, true},
		{int32(5), 5, true},
		{int64(7), 7, true},
		{float64(9), 9, true},
		{"11", 11, true},
		{"not a number", 0, false},
		{true, 0, false},
	}
	for _, c := range cases {
		got, ok := parseAssetTypeProperty(c.in)
		require.Equal(t, c.ok, ok, c.in)
		if ok {
			require.Equal(t, c.want, got, c.in)
		}
	}
}
