// Package animation implements the two animation wire dialects. Both 2020
// and 2023 use the same fixed-width primitives; 2023 additionally carries a
// sequence id/fallback flag and an action-point cube-map.
package animation

import (
	"github.com/haldec/halleypack/internal/halley/primitives"
)

// Frame is one entry in a Sequence's frame list.
type Frame struct {
	ImageName   string
	FrameNumber int32
	Duration    int32
}

// Sequence groups frames under a name; 2023 adds Id and Fallback.
type Sequence struct {
	Frames  []Frame
	Name    string
	ID      int32 // 2023 only
	IsLoop  bool
	NoFlip  bool
	Fallback bool // 2023 only
}

// Direction names a facing and its source image.
type Direction struct {
	Name     string
	Filename string
	ID       int32
	Flip     bool
}

// ActionPointKey is a 3D grid cell; ActionPoint's Points map uses it as a key.
type ActionPointKey struct{ X, Y, Z int32 }

// ActionPointValue is a 2D pixel offset.
type ActionPointValue struct{ X, Y int32 }

// ActionPoint is a named set of grid-cell -> pixel-offset mappings (2023
// only). Go maps are fine here: the spec does not require ordering on this
// structure, unlike ConfigNode.Map or the 2023 sprite index.
type ActionPoint struct {
	Name   string
	ID     int32
	Points map[ActionPointKey]ActionPointValue
}

// Animation is the shared decoded form for both dialects.
type Animation struct {
	Name         string
	Spritesheet  string
	Material     string
	Sequences    []Sequence
	Directions   []Direction
	ActionPoints []ActionPoint // 2023 only
}

// DecodeV1 parses the 2020 fixed-width dialect.
func DecodeV1(c *primitives.Cursor) (*Animation, error) {
	name, err := c.String()
	if err != nil {
		return nil, err
	}
	sheet, err := c.String()
	if err != nil {
		return nil, err
	}
	material, err := c.String()
	if err != nil {
		return nil, err
	}

	seqCount, err := c.U32()
	if err != nil {
		return nil, err
	}
	seqs := make([]Sequence, 0, seqCount)
	for i := uint32(0); i < seqCount; i++ {
		s, err := decodeSequenceV1(c)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, s)
	}

	dirCount, err := c.U32()
	if err != nil {
		return nil, err
	}
	dirs := make([]Direction, 0, dirCount)
	for i := uint32(0); i < dirCount; i++ {
		d, err := decodeDirection(c)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
	}

	return &Animation{Name: name, Spritesheet: sheet, Material: material, Sequences: seqs, Directions: dirs}, nil
}

// EncodeV1 writes the 2020 fixed-width dialect.
func (a *Animation) EncodeV1(w *primitives.Writer) {
	w.String(a.Name)
	w.String(a.Spritesheet)
	w.String(a.Material)
	w.U32(uint32(len(a.Sequences)))
	for _, s := range a.Sequences {
		encodeSequenceV1(w, s)
	}
	w.U32(uint32(len(a.Directions)))
	for _, d := range a.Directions {
		encodeDirection(w, d)
	}
}

func decodeFrameV1(c *primitives.Cursor) (Frame, error) {
	name, err := c.String()
	if err != nil {
		return Frame{}, err
	}
	num, err := c.I32()
	if err != nil {
		return Frame{}, err
	}
	dur, err := c.I32()
	if err != nil {
		return Frame{}, err
	}
	return Frame{ImageName: name, FrameNumber: num, Duration: dur}, nil
}

func encodeFrameV1(w *primitives.Writer, f Frame) {
	w.String(f.ImageName)
	w.I32(f.FrameNumber)
	w.I32(f.Duration)
}

func decodeSequenceV1(c *primitives.Cursor) (Sequence, error) {
	count, err := c.U32()
	if err != nil {
		return Sequence{}, err
	}
	frames := make([]Frame, 0, count)
	for i := uint32(0); i < count; i++ {
		f, err := decodeFrameV1(c)
		if err != nil {
			return Sequence{}, err
		}
		frames = append(frames, f)
	}
	name, err := c.String()
	if err != nil {
		return Sequence{}, err
	}
	isLoop, err := c.Bool()
	if err != nil {
		return Sequence{}, err
	}
	noFlip, err := c.Bool()
	if err != nil {
		return Sequence{}, err
	}
	return Sequence{Frames: frames, Name: name, IsLoop: isLoop, NoFlip: noFlip}, nil
}

func encodeSequenceV1(w *primitives.Writer, s Sequence) {
	w.U32(uint32(len(s.Frames)))
	for _, f := range s.Frames {
		encodeFrameV1(w, f)
	}
	w.String(s.Name)
	w.Bool(s.IsLoop)
	w.Bool(s.NoFlip)
}

func decodeDirection(c *primitives.Cursor) (Direction, error) {
	name, err := c.String()
	if err != nil {
		return Direction{}, err
	}
	filename, err := c.String()
	if err != nil {
		return Direction{}, err
	}
	id, err := c.I32()
	if err != nil {
		return Direction{}, err
	}
	flip, err := c.Bool()
	if err != nil {
		return Direction{}, err
	}
	return Direction{Name: name, Filename: filename, ID: id, Flip: flip}, nil
}

func encodeDirection(w *primitives.Writer, d Direction) {
	w.String(d.Name)
	w.String(d.Filename)
	w.I32(d.ID)
	w.Bool(d.Flip)
}

// DecodeV2 parses the 2023 dialect, including the action-point list. Unlike
// Sprite-sheet, 2023 Animation keeps the same fixed-width primitives as the
// 2020 dialect (h_string, u32 counts, i32 fields) — there is no version byte
// and no varint coding anywhere in this asset.
func DecodeV2(c *primitives.Cursor) (*Animation, error) {
	name, err := c.String()
	if err != nil {
		return nil, err
	}
	sheet, err := c.String()
	if err != nil {
		return nil, err
	}
	material, err := c.String()
	if err != nil {
		return nil, err
	}

	seqCount, err := c.U32()
	if err != nil {
		return nil, err
	}
	seqs := make([]Sequence, 0, seqCount)
	for i := uint32(0); i < seqCount; i++ {
		s, err := decodeSequenceV2(c)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, s)
	}

	dirCount, err := c.U32()
	if err != nil {
		return nil, err
	}
	dirs := make([]Direction, 0, dirCount)
	for i := uint32(0); i < dirCount; i++ {
		d, err := decodeDirectionV2(c)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
	}

	apCount, err := c.U32()
	if err != nil {
		return nil, err
	}
	aps := make([]ActionPoint, 0, apCount)
	for i := uint32(0); i < apCount; i++ {
		ap, err := decodeActionPoint(c)
		if err != nil {
			return nil, err
		}
		aps = append(aps, ap)
	}

	return &Animation{
		Name: name, Spritesheet: sheet, Material: material,
		Sequences: seqs, Directions: dirs, ActionPoints: aps,
	}, nil
}

// EncodeV2 writes the 2023 dialect.
func (a *Animation) EncodeV2(w *primitives.Writer) {
	w.String(a.Name)
	w.String(a.Spritesheet)
	w.String(a.Material)
	w.U32(uint32(len(a.Sequences)))
	for _, s := range a.Sequences {
		encodeSequenceV2(w, s)
	}
	w.U32(uint32(len(a.Directions)))
	for _, d := range a.Directions {
		encodeDirectionV2(w, d)
	}
	w.U32(uint32(len(a.ActionPoints)))
	for _, ap := range a.ActionPoints {
		encodeActionPoint(w, ap)
	}
}

func decodeFrameV2(c *primitives.Cursor) (Frame, error) {
	name, err := c.String()
	if err != nil {
		return Frame{}, err
	}
	num, err := c.I32()
	if err != nil {
		return Frame{}, err
	}
	dur, err := c.I32()
	if err != nil {
		return Frame{}, err
	}
	return Frame{ImageName: name, FrameNumber: num, Duration: dur}, nil
}

func encodeFrameV2(w *primitives.Writer, f Frame) {
	w.String(f.ImageName)
	w.I32(f.FrameNumber)
	w.I32(f.Duration)
}

func decodeSequenceV2(c *primitives.Cursor) (Sequence, error) {
	count, err := c.U32()
	if err != nil {
		return Sequence{}, err
	}
	frames := make([]Frame, 0, count)
	for i := uint32(0); i < count; i++ {
		f, err := decodeFrameV2(c)
		if err != nil {
			return Sequence{}, err
		}
		frames = append(frames, f)
	}
	name, err := c.String()
	if err != nil {
		return Sequence{}, err
	}
	id, err := c.I32()
	if err != nil {
		return Sequence{}, err
	}
	isLoop, err := c.Bool()
	if err != nil {
		return Sequence{}, err
	}
	noFlip, err := c.Bool()
	if err != nil {
		return Sequence{}, err
	}
	fallback, err := c.Bool()
	if err != nil {
		return Sequence{}, err
	}
	return Sequence{Frames: frames, Name: name, ID: id, IsLoop: isLoop, NoFlip: noFlip, Fallback: fallback}, nil
}

func encodeSequenceV2(w *primitives.Writer, s Sequence) {
	w.U32(uint32(len(s.Frames)))
	for _, f := range s.Frames {
		encodeFrameV2(w, f)
	}
	w.String(s.Name)
	w.I32(s.ID)
	w.Bool(s.IsLoop)
	w.Bool(s.NoFlip)
	w.Bool(s.Fallback)
}

func decodeDirectionV2(c *primitives.Cursor) (Direction, error) {
	name, err := c.String()
	if err != nil {
		return Direction{}, err
	}
	filename, err := c.String()
	if err != nil {
		return Direction{}, err
	}
	id, err := c.I32()
	if err != nil {
		return Direction{}, err
	}
	flip, err := c.Bool()
	if err != nil {
		return Direction{}, err
	}
	return Direction{Name: name, Filename: filename, ID: id, Flip: flip}, nil
}

func encodeDirectionV2(w *primitives.Writer, d Direction) {
	w.String(d.Name)
	w.String(d.Filename)
	w.I32(d.ID)
	w.Bool(d.Flip)
}

func decodeActionPoint(c *primitives.Cursor) (ActionPoint, error) {
	name, err := c.String()
	if err != nil {
		return ActionPoint{}, err
	}
	id, err := c.I32()
	if err != nil {
		return ActionPoint{}, err
	}
	count, err := c.U32()
	if err != nil {
		return ActionPoint{}, err
	}
	points := make(map[ActionPointKey]ActionPointValue, count)
	for i := uint32(0); i < count; i++ {
		x, err := c.I32()
		if err != nil {
			return ActionPoint{}, err
		}
		y, err := c.I32()
		if err != nil {
			return ActionPoint{}, err
		}
		z, err := c.I32()
		if err != nil {
			return ActionPoint{}, err
		}
		px, err := c.I32()
		if err != nil {
			return ActionPoint{}, err
		}
		py, err := c.I32()
		if err != nil {
			return ActionPoint{}, err
		}
		points[ActionPointKey{X: x, Y: y, Z: z}] = ActionPointValue{X: px, Y: py}
	}
	return ActionPoint{Name: name, ID: id, Points: points}, nil
}

func encodeActionPoint(w *primitives.Writer, ap ActionPoint) {
	w.String(ap.Name)
	w.I32(ap.ID)
	w.U32(uint32(len(ap.Points)))
	for k, v := range ap.Points {
		w.I32(k.X)
		w.I32(k.Y)
		w.I32(k.Z)
		w.I32(v.X)
		w.I32(v.Y)
	}
}
