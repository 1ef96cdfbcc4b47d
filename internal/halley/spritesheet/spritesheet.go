// Package spritesheet implements the two sprite-sheet wire dialects: the
// 2020 fixed-width form and the 2023 varint-counted, version-gated form.
package spritesheet

import (
	"github.com/haldec/halleypack/internal/halley/primitives"
)

// Sprite is the shared geometry record. Duration is only meaningful for the
// 2020 dialect; OrigPivot/TrimBorder/Slices are plain i16/i32 fields in 2020
// but varint-coded i32s in 2023 (widened here to int32 uniformly).
type Sprite struct {
	Pivot      [2]float32
	OrigPivot  [2]int32
	Size       [2]float32
	Coords     [4]float32
	Duration   int32 // 2020 only
	Rotated    bool
	TrimBorder [4]int32
	Slices     [4]int32
}

// FrameTag is a named [from,to) range into the sprite list.
type FrameTag struct {
	Name string
	To   int32
	From int32
}

// SpriteSheet is the decoded form shared by both dialects. SpriteIdx is an
// ordered slice in both dialects, so entry order survives a round trip.
type SpriteSheet struct {
	Name      string
	Sprites   []Sprite
	SpriteIdx []SpriteIdxEntry
	FrameTags []FrameTag

	// 2023-only fields, populated when Version is present.
	HasVersion      bool
	Version         uint8
	DefMaterialName string // present when Version >= 1
	PaletteName     string // present when Version >= 2
}

// SpriteIdxEntry is one (name -> sprite index) pair.
type SpriteIdxEntry struct {
	Name  string
	Index int32
}

// DecodeV1 parses the 2020 fixed-width dialect.
func DecodeV1(c *primitives.Cursor) (*SpriteSheet, error) {
	name, err := c.String()
	if err != nil {
		return nil, err
	}
	spriteCount, err := c.U32()
	if err != nil {
		return nil, err
	}
	sprites := make([]Sprite, 0, spriteCount)
	for i := uint32(0); i < spriteCount; i++ {
		s, err := decodeSpriteV1(c)
		if err != nil {
			return nil, err
		}
		sprites = append(sprites, s)
	}

	idxCount, err := c.U32()
	if err != nil {
		return nil, err
	}
	idx := make([]SpriteIdxEntry, 0, idxCount)
	for i := uint32(0); i < idxCount; i++ {
		k, err := c.String()
		if err != nil {
			return nil, err
		}
		v, err := c.I32()
		if err != nil {
			return nil, err
		}
		idx = append(idx, SpriteIdxEntry{Name: k, Index: v})
	}

	tagCount, err := c.U32()
	if err != nil {
		return nil, err
	}
	tags := make([]FrameTag, 0, tagCount)
	for i := uint32(0); i < tagCount; i++ {
		t, err := decodeFrameTag(c)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}

	return &SpriteSheet{Name: name, Sprites: sprites, SpriteIdx: idx, FrameTags: tags}, nil
}

// EncodeV1 writes the 2020 fixed-width dialect.
func (s *SpriteSheet) EncodeV1(w *primitives.Writer) {
	w.String(s.Name)
	w.U32(uint32(len(s.Sprites)))
	for _, sp := range s.Sprites {
		encodeSpriteV1(w, sp)
	}
	w.U32(uint32(len(s.SpriteIdx)))
	for _, e := range s.SpriteIdx {
		w.String(e.Name)
		w.I32(e.Index)
	}
	w.U32(uint32(len(s.FrameTags)))
	for _, t := range s.FrameTags {
		encodeFrameTag(w, t)
	}
}

func decodeSpriteV1(c *primitives.Cursor) (Sprite, error) {
	var s Sprite
	var err error
	if s.Pivot[0], err = c.F32(); err != nil {
		return s, err
	}
	if s.Pivot[1], err = c.F32(); err != nil {
		return s, err
	}
	if s.OrigPivot[0], err = c.I32(); err != nil {
		return s, err
	}
	if s.OrigPivot[1], err = c.I32(); err != nil {
		return s, err
	}
	if s.Size[0], err = c.F32(); err != nil {
		return s, err
	}
	if s.Size[1], err = c.F32(); err != nil {
		return s, err
	}
	for i := range s.Coords {
		if s.Coords[i], err = c.F32(); err != nil {
			return s, err
		}
	}
	if s.Duration, err = c.I32(); err != nil {
		return s, err
	}
	if s.Rotated, err = c.Bool(); err != nil {
		return s, err
	}
	for i := range s.TrimBorder {
		v, err := c.I16()
		if err != nil {
			return s, err
		}
		s.TrimBorder[i] = int32(v)
	}
	for i := range s.Slices {
		v, err := c.I16()
		if err != nil {
			return s, err
		}
		s.Slices[i] = int32(v)
	}
	return s, nil
}

func encodeSpriteV1(w *primitives.Writer, s Sprite) {
	w.F32(s.Pivot[0])
	w.F32(s.Pivot[1])
	w.I32(s.OrigPivot[0])
	w.I32(s.OrigPivot[1])
	w.F32(s.Size[0])
	w.F32(s.Size[1])
	for _, v := range s.Coords {
		w.F32(v)
	}
	w.I32(s.Duration)
	w.Bool(s.Rotated)
	for _, v := range s.TrimBorder {
		w.I16(int16(v))
	}
	for _, v := range s.Slices {
		w.I16(int16(v))
	}
}

func decodeFrameTag(c *primitives.Cursor) (FrameTag, error) {
	name, err := c.String()
	if err != nil {
		return FrameTag{}, err
	}
	to, err := c.I32()
	if err != nil {
		return FrameTag{}, err
	}
	from, err := c.I32()
	if err != nil {
		return FrameTag{}, err
	}
	return FrameTag{Name: name, To: to, From: from}, nil
}

func encodeFrameTag(w *primitives.Writer, t FrameTag) {
	w.String(t.Name)
	w.I32(t.To)
	w.I32(t.From)
}

// DecodeV2 parses the 2023 varint dialect. It consumes the leading version
// byte, which gates DefMaterialName (>= 1) and PaletteName (>= 2).
func DecodeV2(c *primitives.Cursor) (*SpriteSheet, error) {
	version, err := c.U8()
	if err != nil {
		return nil, err
	}

	name, err := c.VarString()
	if err != nil {
		return nil, err
	}

	spriteCount, err := primitives.DecodeVarU(c)
	if err != nil {
		return nil, err
	}
	sprites := make([]Sprite, 0, spriteCount)
	for i := uint64(0); i < spriteCount; i++ {
		s, err := decodeSpriteV2(c)
		if err != nil {
			return nil, err
		}
		sprites = append(sprites, s)
	}

	idxCount, err := primitives.DecodeVarU(c)
	if err != nil {
		return nil, err
	}
	idx := make([]SpriteIdxEntry, 0, idxCount)
	for i := uint64(0); i < idxCount; i++ {
		k, err := c.VarString()
		if err != nil {
			return nil, err
		}
		v, err := primitives.DecodeVarI(c)
		if err != nil {
			return nil, err
		}
		idx = append(idx, SpriteIdxEntry{Name: k, Index: int32(v)})
	}

	tagCount, err := primitives.DecodeVarU(c)
	if err != nil {
		return nil, err
	}
	tags := make([]FrameTag, 0, tagCount)
	for i := uint64(0); i < tagCount; i++ {
		t, err := decodeFrameTagV2(c)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}

	ss := &SpriteSheet{
		Name: name, Sprites: sprites, SpriteIdx: idx, FrameTags: tags,
		HasVersion: true, Version: version,
	}

	if version >= 1 {
		ss.DefMaterialName, err = c.VarString()
		if err != nil {
			return nil, err
		}
	}
	if version >= 2 {
		ss.PaletteName, err = c.VarString()
		if err != nil {
			return nil, err
		}
	}

	return ss, nil
}

// EncodeV2 writes the 2023 varint dialect, preserving the original Version.
func (s *SpriteSheet) EncodeV2(w *primitives.Writer) {
	w.U8(s.Version)
	w.VarString(s.Name)
	w.VarU(uint64(len(s.Sprites)))
	for _, sp := range s.Sprites {
		encodeSpriteV2(w, sp)
	}
	w.VarU(uint64(len(s.SpriteIdx)))
	for _, e := range s.SpriteIdx {
		w.VarString(e.Name)
		w.VarI(int64(e.Index))
	}
	w.VarU(uint64(len(s.FrameTags)))
	for _, t := range s.FrameTags {
		encodeFrameTagV2(w, t)
	}
	if s.Version >= 1 {
		w.VarString(s.DefMaterialName)
	}
	if s.Version >= 2 {
		w.VarString(s.PaletteName)
	}
}

func decodeSpriteV2(c *primitives.Cursor) (Sprite, error) {
	var s Sprite
	var err error
	if s.Pivot[0], err = c.F32(); err != nil {
		return s, err
	}
	if s.Pivot[1], err = c.F32(); err != nil {
		return s, err
	}
	op0, err := primitives.DecodeVarI(c)
	if err != nil {
		return s, err
	}
	op1, err := primitives.DecodeVarI(c)
	if err != nil {
		return s, err
	}
	s.OrigPivot = [2]int32{int32(op0), int32(op1)}
	if s.Size[0], err = c.F32(); err != nil {
		return s, err
	}
	if s.Size[1], err = c.F32(); err != nil {
		return s, err
	}
	for i := range s.Coords {
		if s.Coords[i], err = c.F32(); err != nil {
			return s, err
		}
	}
	if s.Rotated, err = c.Bool(); err != nil {
		return s, err
	}
	for i := range s.TrimBorder {
		v, err := primitives.DecodeVarI(c)
		if err != nil {
			return s, err
		}
		s.TrimBorder[i] = int32(v)
	}
	for i := range s.Slices {
		v, err := primitives.DecodeVarI(c)
		if err != nil {
			return s, err
		}
		s.Slices[i] = int32(v)
	}
	return s, nil
}

func encodeSpriteV2(w *primitives.Writer, s Sprite) {
	w.F32(s.Pivot[0])
	w.F32(s.Pivot[1])
	w.VarI(int64(s.OrigPivot[0]))
	w.VarI(int64(s.OrigPivot[1]))
	w.F32(s.Size[0])
	w.F32(s.Size[1])
	for _, v := range s.Coords {
		w.F32(v)
	}
	w.Bool(s.Rotated)
	for _, v := range s.TrimBorder {
		w.VarI(int64(v))
	}
	for _, v := range s.Slices {
		w.VarI(int64(v))
	}
}

func decodeFrameTagV2(c *primitives.Cursor) (FrameTag, error) {
	name, err := c.VarString()
	if err != nil {
		return FrameTag{}, err
	}
	to, err := primitives.DecodeVarI(c)
	if err != nil {
		return FrameTag{}, err
	}
	from, err := primitives.DecodeVarI(c)
	if err != nil {
		return FrameTag{}, err
	}
	return FrameTag{Name: name, To: int32(to), From: int32(from)}, nil
}

func encodeFrameTagV2(w *primitives.Writer, t FrameTag) {
	w.VarString(t.Name)
	w.VarI(int64(t.To))
	w.VarI(int64(t.From))
}

// DecodeSpriteResourceV1 decodes a standalone 2020 Sprite asset payload (a
// single geometry record, not a sheet).
func DecodeSpriteResourceV1(c *primitives.Cursor) (Sprite, error) { return decodeSpriteV1(c) }

// EncodeSpriteResourceV1 writes a standalone 2020 Sprite asset payload.
func EncodeSpriteResourceV1(w *primitives.Writer, s Sprite) { encodeSpriteV1(w, s) }

// DecodeSpriteResourceV2 decodes a standalone 2023 Sprite asset payload.
func DecodeSpriteResourceV2(c *primitives.Cursor) (Sprite, error) { return decodeSpriteV2(c) }

// EncodeSpriteResourceV2 writes a standalone 2023 Sprite asset payload.
func EncodeSpriteResourceV2(w *primitives.Writer, s Sprite) { encodeSpriteV2(w, s) }
