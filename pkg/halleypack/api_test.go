package halleypack

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haldec/halleypack/internal/halley/assettable"
	"github.com/haldec/halleypack/internal/halley/heap"
	"github.com/haldec/halleypack/internal/halley/project"
	"github.com/haldec/halleypack/internal/ordmap"
)

func TestParseContainerVersion(t *testing.T) {
	v, err := ParseContainerVersion("v2020")
	require.NoError(t, err)
	require.Equal(t, V2020, v)

	v, err = ParseContainerVersion("2023")
	require.NoError(t, err)
	require.Equal(t, V2023, v)

	_, err = ParseContainerVersion("bogus")
	require.Error(t, err)
}

func buildSimplePack(t *testing.T) *Pack {
	t.Helper()
	h := heap.New()
	pos, size, err := h.Add([]byte("binary payload bytes"), "")
	require.NoError(t, err)

	props := ordmap.NewStringMap()
	section := &assettable.SectionV2020{
		AssetType: assettable.V2020Binary,
		Assets:    []assettable.AssetV2020{{Name: "data/blob.bin", Pos: pos, Size: size, Properties: props}},
	}
	return &Pack{Version: V2020, SectionsV2020: []*assettable.SectionV2020{section}, Heap: h}
}

func TestWriteReadPackRoundTripUnencrypted(t *testing.T) {
	p := buildSimplePack(t)
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "out.halleypk")

	require.NoError(t, p.WritePack(archivePath, nil, nil))

	got, err := ReadPack(archivePath, V2020, nil, nil)
	require.NoError(t, err)
	require.Len(t, got.SectionsV2020, 1)
	require.Equal(t, "data/blob.bin", got.SectionsV2020[0].Assets[0].Name)

	raw, err := got.Heap.Slice(got.SectionsV2020[0].Assets[0].Pos, got.SectionsV2020[0].Assets[0].Size)
	require.NoError(t, err)
	require.Equal(t, []byte("binary payload bytes"), raw)
}

func TestWriteReadPackRoundTripEncrypted(t *testing.T) {
	p := buildSimplePack(t)
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "out_enc.halleypk")

	var key [16]byte
	for i := range key {
		key[i] = byte(i + 1)
	}

	require.NoError(t, p.WritePack(archivePath, &key, nil))

	got, err := ReadPack(archivePath, V2020, &key, nil)
	require.NoError(t, err)
	raw, err := got.Heap.Slice(got.SectionsV2020[0].Assets[0].Pos, got.SectionsV2020[0].Assets[0].Size)
	require.NoError(t, err)
	require.Equal(t, []byte("binary payload bytes"), raw)
}

func TestUnpackToDirPackFromDirRoundTrip(t *testing.T) {
	p := buildSimplePack(t)
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "in.halleypk")
	require.NoError(t, p.WritePack(archivePath, nil, nil))

	projectDir := filepath.Join(dir, "projected")
	require.NoError(t, UnpackToDir(archivePath, V2020, projectDir, nil, project.Options{}, nil))

	_, err := os.Stat(filepath.Join(projectDir, "section_0"))
	require.NoError(t, err)

	outArchive := filepath.Join(dir, "repacked.halleypk")
	require.NoError(t, PackFromDir(projectDir, V2020, outArchive, nil, project.Options{}, nil))

	repacked, err := ReadPack(outArchive, V2020, nil, nil)
	require.NoError(t, err)
	require.Len(t, repacked.SectionsV2020, 1)
	require.Equal(t, "data/blob.bin", repacked.SectionsV2020[0].Assets[0].Name)

	raw, err := repacked.Heap.Slice(repacked.SectionsV2020[0].Assets[0].Pos, repacked.SectionsV2020[0].Assets[0].Size)
	require.NoError(t, err)
	require.Equal(t, []byte("binary payload bytes"), raw)
}

func TestRepack(t *testing.T) {
	p := buildSimplePack(t)
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.halleypk")
	outPath := filepath.Join(dir, "out.halleypk")
	require.NoError(t, p.WritePack(inPath, nil, nil))

	require.NoError(t, Repack(inPath, outPath, V2020, nil, nil))

	got, err := ReadPack(outPath, V2020, nil, nil)
	require.NoError(t, err)
	require.Len(t, got.SectionsV2020, 1)
}

func TestBatchUnpackToDir(t *testing.T) {
	p := buildSimplePack(t)
	dir := t.TempDir()

	var jobs []BatchJob
	for i := 0; i < 3; i++ {
		archivePath := filepath.Join(dir, "archive_"+string(rune('a'+i))+".halleypk")
		require.NoError(t, p.WritePack(archivePath, nil, nil))
		jobs = append(jobs, BatchJob{ArchivePath: archivePath, OutDir: filepath.Join(dir, "out_"+string(rune('a'+i)))})
	}

	err := BatchUnpackToDir(context.Background(), jobs, V2020, nil, project.Options{}, nil)
	require.NoError(t, err)

	for _, j := range jobs {
		_, err := os.Stat(filepath.Join(j.OutDir, "section_0"))
		require.NoError(t, err)
	}
}

func TestReadPackRejectsTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.halleypk")
	require.NoError(t, os.WriteFile(path, []byte("tooshort"), 0o644))

	_, err := ReadPack(path, V2020, nil, nil)
	require.Error(t, err)
}
