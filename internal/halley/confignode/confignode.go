// Package confignode implements the recursive, 17-variant ConfigNode tree
// used by 2023 asset properties and embedded config-type assets.
package confignode

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/haldec/halleypack/internal/halley/primitives"
	"github.com/haldec/halleypack/internal/herrors"
)

// Kind is the ConfigNode tag, matching the wire ordinal exactly.
type Kind uint32

const (
	KindUndefined Kind = iota
	KindString
	KindSequence
	KindMap
	KindInt
	KindFloat
	KindInt2
	KindFloat2
	KindBytes
	KindDeltaSequence
	KindDeltaMap
	KindNoop
	KindIdx
	KindDel
	KindInt64
	KindEntityID
	KindBool
)

// Map is the insertion-ordered string->*Node map backing the Map variant.
type Map = orderedmap.OrderedMap[string, *Node]

// NewMap returns an empty, insertion-ordered ConfigNode map.
func NewMap() *Map { return orderedmap.New[string, *Node]() }

// Pos is the optional trailing (line, column) position recorded after every
// node when the owning ConfigFile has store_file_position set.
type Pos struct {
	Line   uint32
	Column uint32
}

// Node is every ConfigNode variant, carried as one tagged record rather than
// an interface hierarchy: the payload fields relevant to Kind are populated,
// the rest left zero.
type Node struct {
	Kind Kind

	Str      string     // String
	Seq      []*Node    // Sequence, DeltaSequence
	MapVal   *Map       // Map, DeltaMap
	Int      int32      // Int
	Float    float32    // Float
	Int2     [2]int32   // Int2
	Float2   [2]float32 // Float2
	Bytes    []byte     // Bytes
	Int64    int64      // Int64, EntityId
	Bool     bool       // Bool
	Idx      [2]int32   // Idx
	DeltaTag int32      // trailing i32 for DeltaSequence/DeltaMap

	Pos *Pos // present iff the owning file stores edit-time positions
}

// Undefined, Noop and Del are parameterless; helpers keep call sites tidy.
func Undefined() *Node { return &Node{Kind: KindUndefined} }
func Noop() *Node      { return &Node{Kind: KindNoop} }
func Del() *Node       { return &Node{Kind: KindDel} }

// File is the file-level ConfigNode wrapper.
type File struct {
	Version            int32
	StoreFilePosition  bool
	Root               *Node
}

// Decode reads a ConfigFile header (i32 v, conditional bool) followed by its
// root node.
func Decode(c *primitives.Cursor) (*File, error) {
	v, err := c.I32()
	if err != nil {
		return nil, err
	}
	storePos := v == 2
	if v > 2 {
		storePos, err = c.Bool()
		if err != nil {
			return nil, err
		}
	}
	root, err := decodeNode(c, storePos)
	if err != nil {
		return nil, err
	}
	return &File{Version: v, StoreFilePosition: storePos, Root: root}, nil
}

// Encode writes the file header followed by the root node.
func (f *File) Encode(w *primitives.Writer) {
	w.I32(f.Version)
	if f.Version > 2 {
		w.Bool(f.StoreFilePosition)
	}
	encodeNode(w, f.Root, f.StoreFilePosition)
}

// DecodeNode reads one bare ConfigNode (no file-level version header), with
// or without trailing edit-time positions. This is what the 2023
// section/asset table embeds as an asset's property bag.
func DecodeNode(c *primitives.Cursor, storeFilePosition bool) (*Node, error) {
	return decodeNode(c, storeFilePosition)
}

// EncodeNode writes one bare ConfigNode, mirroring DecodeNode.
func EncodeNode(w *primitives.Writer, n *Node, storeFilePosition bool) {
	encodeNode(w, n, storeFilePosition)
}

func decodeNode(c *primitives.Cursor, storePos bool) (*Node, error) {
	tag, err := c.U32()
	if err != nil {
		return nil, fmt.Errorf("%w: reading tag: %v", herrors.ErrDecodeTruncated, err)
	}

	n := &Node{Kind: Kind(tag)}

	switch Kind(tag) {
	case KindUndefined, KindNoop, KindDel:
		// no payload
	case KindBool:
		b, err := c.Bool()
		if err != nil {
			return nil, err
		}
		n.Bool = b
	case KindInt:
		v, err := c.I32()
		if err != nil {
			return nil, err
		}
		n.Int = v
	case KindFloat:
		v, err := c.F32()
		if err != nil {
			return nil, err
		}
		n.Float = v
	case KindInt2:
		for i := range n.Int2 {
			v, err := c.I32()
			if err != nil {
				return nil, err
			}
			n.Int2[i] = v
		}
	case KindFloat2:
		for i := range n.Float2 {
			v, err := c.F32()
			if err != nil {
				return nil, err
			}
			n.Float2[i] = v
		}
	case KindIdx:
		for i := range n.Idx {
			v, err := c.I32()
			if err != nil {
				return nil, err
			}
			n.Idx[i] = v
		}
	case KindInt64, KindEntityID:
		v, err := c.I64()
		if err != nil {
			return nil, err
		}
		n.Int64 = v
	case KindString:
		s, err := c.String()
		if err != nil {
			return nil, err
		}
		n.Str = s
	case KindBytes:
		length, err := c.U32()
		if err != nil {
			return nil, err
		}
		b, err := c.Bytes(int(length))
		if err != nil {
			return nil, err
		}
		n.Bytes = b
	case KindSequence, KindDeltaSequence:
		count, err := c.U32()
		if err != nil {
			return nil, err
		}
		n.Seq = make([]*Node, 0, count)
		for i := uint32(0); i < count; i++ {
			child, err := decodeNode(c, storePos)
			if err != nil {
				return nil, err
			}
			n.Seq = append(n.Seq, child)
		}
		if Kind(tag) == KindDeltaSequence {
			d, err := c.I32()
			if err != nil {
				return nil, err
			}
			n.DeltaTag = d
		}
	case KindMap, KindDeltaMap:
		count, err := c.U32()
		if err != nil {
			return nil, err
		}
		n.MapVal = NewMap()
		for i := uint32(0); i < count; i++ {
			key, err := c.String()
			if err != nil {
				return nil, err
			}
			child, err := decodeNode(c, storePos)
			if err != nil {
				return nil, err
			}
			n.MapVal.Set(key, child)
		}
		if Kind(tag) == KindDeltaMap {
			d, err := c.I32()
			if err != nil {
				return nil, err
			}
			n.DeltaTag = d
		}
	default:
		// Unknown tag: lenient decode as Undefined, matching observed
		// behavior rather than failing the whole archive.
		n.Kind = KindUndefined
	}

	if storePos {
		line, err := c.U32()
		if err != nil {
			return nil, fmt.Errorf("%w: reading position trailer: %v", herrors.ErrDecodeTruncated, err)
		}
		col, err := c.U32()
		if err != nil {
			return nil, fmt.Errorf("%w: reading position trailer: %v", herrors.ErrDecodeTruncated, err)
		}
		n.Pos = &Pos{Line: line, Column: col}
	}

	return n, nil
}

func encodeNode(w *primitives.Writer, n *Node, storePos bool) {
	if n == nil {
		n = Undefined()
	}
	w.U32(uint32(n.Kind))

	switch n.Kind {
	case KindUndefined, KindNoop, KindDel:
	case KindBool:
		w.Bool(n.Bool)
	case KindInt:
		w.I32(n.Int)
	case KindFloat:
		w.F32(n.Float)
	case KindInt2:
		for _, v := range n.Int2 {
			w.I32(v)
		}
	case KindFloat2:
		for _, v := range n.Float2 {
			w.F32(v)
		}
	case KindIdx:
		for _, v := range n.Idx {
			w.I32(v)
		}
	case KindInt64, KindEntityID:
		w.I64(n.Int64)
	case KindString:
		w.String(n.Str)
	case KindBytes:
		w.U32(uint32(len(n.Bytes)))
		w.RawBytes(n.Bytes)
	case KindSequence, KindDeltaSequence:
		w.U32(uint32(len(n.Seq)))
		for _, child := range n.Seq {
			encodeNode(w, child, storePos)
		}
		if n.Kind == KindDeltaSequence {
			w.I32(n.DeltaTag)
		}
	case KindMap, KindDeltaMap:
		w.U32(uint32(n.MapVal.Len()))
		for pair := n.MapVal.Oldest(); pair != nil; pair = pair.Next() {
			w.String(pair.Key)
			encodeNode(w, pair.Value, storePos)
		}
		if n.Kind == KindDeltaMap {
			w.I32(n.DeltaTag)
		}
	}

	if storePos {
		pos := n.Pos
		if pos == nil {
			pos = &Pos{}
		}
		w.U32(pos.Line)
		w.U32(pos.Column)
	}
}
