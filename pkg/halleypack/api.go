// Package halleypack is the top-level, thin orchestration API: read/write a
// whole archive, or project one to/from a directory tree. Everything here
// composes internal/halley/* codecs; it holds no wire-format knowledge of
// its own.
package halleypack

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/haldec/halleypack/internal/halley/assettable"
	"github.com/haldec/halleypack/internal/halley/envelope"
	"github.com/haldec/halleypack/internal/halley/heap"
	"github.com/haldec/halleypack/internal/halley/primitives"
	"github.com/haldec/halleypack/internal/halley/project"
	"github.com/haldec/halleypack/internal/herrors"
	"github.com/haldec/halleypack/internal/workerpool"
)

// ContainerVersion selects the 2020 or 2023 wire dialect.
type ContainerVersion int

const (
	V2020 ContainerVersion = iota
	V2023
)

// ParseContainerVersion maps the CLI's "-p" flag value.
func ParseContainerVersion(s string) (ContainerVersion, error) {
	switch s {
	case "v2020", "2020":
		return V2020, nil
	case "v2023", "2023":
		return V2023, nil
	default:
		return 0, fmt.Errorf("unknown pack version %q, want v2020 or v2023", s)
	}
}

// Pack is a fully decoded archive: its envelope header, sections (in the
// dialect matching Version), and data heap.
type Pack struct {
	Version       ContainerVersion
	Header        envelope.Header
	SectionsV2020 []*assettable.SectionV2020
	SectionsV2023 []*assettable.SectionV2023
	Heap          *heap.Heap
}

// ReadPack loads and fully decodes an archive file.
func ReadPack(path string, version ContainerVersion, key *[16]byte, logger hclog.Logger) (*Pack, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrInputIO, err)
	}
	if len(raw) < envelope.HeaderSize {
		return nil, fmt.Errorf("%w: file shorter than envelope header", herrors.ErrTruncatedHeader)
	}
	header, err := envelope.ParseHeader(raw[:envelope.HeaderSize])
	if err != nil {
		return nil, err
	}
	if uint64(len(raw)) < header.DataStartPos {
		return nil, fmt.Errorf("%w: data_start_pos exceeds file size", herrors.ErrTruncatedHeader)
	}

	indexCompressed := raw[envelope.HeaderSize:header.DataStartPos]
	index, err := envelope.InflateIndex(indexCompressed, header.AssetDBSize)
	if err != nil {
		return nil, err
	}

	heapBytes, err := envelope.Decrypt(raw[header.DataStartPos:], header.IV, key, logger)
	if err != nil {
		return nil, err
	}

	c := primitives.NewCursor(index)
	count, err := c.U32()
	if err != nil {
		return nil, err
	}

	p := &Pack{Version: version, Header: header, Heap: heap.FromBytes(heapBytes)}
	switch version {
	case V2020:
		for i := uint32(0); i < count; i++ {
			sec, err := assettable.DecodeSectionV2020(c)
			if err != nil {
				return nil, err
			}
			p.SectionsV2020 = append(p.SectionsV2020, sec)
		}
	case V2023:
		for i := uint32(0); i < count; i++ {
			sec, err := assettable.DecodeSectionV2023(c)
			if err != nil {
				return nil, err
			}
			p.SectionsV2023 = append(p.SectionsV2023, sec)
		}
	}
	logger.Debug("read pack", "path", path, "sections", count)
	return p, nil
}

// WritePack re-serializes a Pack to its archive wire form. When key is
// supplied, p.Header.IV is reused; if it is zero, Encrypt mints a fresh
// random IV.
func (p *Pack) WritePack(path string, key *[16]byte, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	idx := primitives.NewWriter()
	var count int
	switch p.Version {
	case V2020:
		count = len(p.SectionsV2020)
		idx.U32(uint32(count))
		for _, sec := range p.SectionsV2020 {
			sec.Encode(idx)
		}
	case V2023:
		count = len(p.SectionsV2023)
		idx.U32(uint32(count))
		for _, sec := range p.SectionsV2023 {
			sec.Encode(idx)
		}
	}

	indexBytes := idx.Bytes()
	compressedIndex, err := envelope.DeflateIndex(indexBytes)
	if err != nil {
		return err
	}

	heapBytes := p.Heap.Bytes()
	if key != nil && len(heapBytes)%16 != 0 {
		// AES-CBC without padding needs whole blocks; zero-fill the tail,
		// which no asset's (pos, size) range reaches.
		heapBytes = append(append([]byte(nil), heapBytes...), make([]byte, 16-len(heapBytes)%16)...)
	}
	iv, encryptedHeap, err := envelope.Encrypt(heapBytes, p.Header.IV, key, logger)
	if err != nil {
		return err
	}

	header := envelope.Header{
		IV:              iv,
		AssetDBStartPos: envelope.HeaderSize,
		DataStartPos:    uint64(envelope.HeaderSize + len(compressedIndex)),
		AssetDBSize:     uint64(len(indexBytes)),
	}

	out := make([]byte, 0, int(header.DataStartPos)+len(encryptedHeap))
	out = append(out, header.Bytes()...)
	out = append(out, compressedIndex...)
	out = append(out, encryptedHeap...)

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("%w: %v", herrors.ErrInputIO, err)
	}
	logger.Debug("wrote pack", "path", path, "sections", count)
	return nil
}

// UnpackToDir reads an archive and projects it onto a directory tree.
func UnpackToDir(archivePath string, version ContainerVersion, outDir string, key *[16]byte, opts project.Options, logger hclog.Logger) error {
	p, err := ReadPack(archivePath, version, key, logger)
	if err != nil {
		return err
	}
	opts.Logger = logger
	switch version {
	case V2020:
		return project.UnpackV2020(p.SectionsV2020, p.Heap, outDir, opts)
	default:
		return project.UnpackV2023(p.SectionsV2023, p.Heap, outDir, opts)
	}
}

// PackFromDir reads a directory-projected tree and writes a fresh archive.
func PackFromDir(dir string, version ContainerVersion, archivePath string, key *[16]byte, opts project.Options, logger hclog.Logger) error {
	opts.Logger = logger
	p := &Pack{Version: version}
	switch version {
	case V2020:
		sections, h, err := project.PackV2020(dir, opts)
		if err != nil {
			return err
		}
		p.SectionsV2020, p.Heap = sections, h
	default:
		sections, h, err := project.PackV2023(dir, opts)
		if err != nil {
			return err
		}
		p.SectionsV2023, p.Heap = sections, h
	}
	return p.WritePack(archivePath, key, logger)
}

// Repack loads an archive and re-emits it byte-for-byte deterministically
// (load then write, with no directory round trip), used by the CLI's
// "repack" verb as a direct test of the envelope/section codec path.
func Repack(inPath, outPath string, version ContainerVersion, key *[16]byte, logger hclog.Logger) error {
	p, err := ReadPack(inPath, version, key, logger)
	if err != nil {
		return err
	}
	return p.WritePack(outPath, key, logger)
}

// BatchJob names one archive to unpack and the directory to project it onto,
// for BatchUnpackToDir.
type BatchJob struct {
	ArchivePath string
	OutDir      string
}

// BatchUnpackToDir unpacks a batch of independent archives, running up to
// runtime.NumCPU() of them concurrently. Cancellation is best-effort between
// archive boundaries: ctx is checked before each archive starts, not mid
// unpack. Returns the first error encountered, if any, after every started
// unpack has finished.
func BatchUnpackToDir(ctx context.Context, jobs []BatchJob, version ContainerVersion, key *[16]byte, opts project.Options, logger hclog.Logger) error {
	work := make([]workerpool.Job, len(jobs))
	for i, j := range jobs {
		j := j
		work[i] = func(ctx context.Context, index int) error {
			return UnpackToDir(j.ArchivePath, version, j.OutDir, key, opts, logger)
		}
	}
	return workerpool.Run(ctx, work)
}
