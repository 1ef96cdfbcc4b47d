package confignode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haldec/halleypack/internal/halley/primitives"
)

func roundTripNode(t *testing.T, n *Node, storePos bool) *Node {
	t.Helper()
	w := primitives.NewWriter()
	EncodeNode(w, n, storePos)
	c := primitives.NewCursor(w.Bytes())
	got, err := DecodeNode(c, storePos)
	require.NoError(t, err)
	require.Zero(t, c.Remaining())
	return got
}

func TestScalarNodeRoundTrip(t *testing.T) {
	cases := []*Node{
		Undefined(),
		Noop(),
		Del(),
		{Kind: KindBool, Bool: true},
		{Kind: KindInt, Int: -7},
		{Kind: KindFloat, Float: 3.25},
		{Kind: KindInt2, Int2: [2]int32{1, 2}},
		{Kind: KindFloat2, Float2: [2]float32{1.5, -2.5}}, {Kind: KindIdx, Idx: [2]int32{4, 5}},
		{Kind: KindInt64, Int64: 1 << 40},
		{Kind: KindEntityID, Int64: 99},
		{Kind: KindString, Str: "hello"},
		{Kind: KindBytes, Bytes: []byte{1, 2, 3}},
	}
	for _, n := range cases {
		got := roundTripNode(t, n, false)
		require.Equal(t, n.Kind, got.Kind)
	}
}

func TestSequenceAndMapRoundTrip(t *testing.T) {
	m := NewMap()
	m.Set("a", &Node{Kind: KindInt, Int: 1})
	m.Set("b", &Node{Kind: KindString, Str: "x"})
	n := &Node{Kind: KindMap, MapVal: m}

	got := roundTripNode(t, n, false)
	require.Equal(t, KindMap, got.Kind)
	require.Equal(t, 2, got.MapVal.Len())

	var keys []string
	for pair := got.MapVal.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	require.Equal(t, []string{"a", "b"}, keys)

	seq := &Node{Kind: KindSequence, Seq: []*Node{
		{Kind: KindInt, Int: 1},
		{Kind: KindInt, Int: 2},
	}}
	gotSeq := roundTripNode(t, seq, false)
	require.Len(t, gotSeq.Seq, 2)
}

func TestNodeWithStoredPosition(t *testing.T) {
	n := &Node{Kind: KindInt, Int: 5, Pos: &Pos{Line: 3, Column: 7}}
	got := roundTripNode(t, n, true)
	require.NotNil(t, got.Pos)
	require.EqualValues(t, 3, got.Pos.Line)
	require.EqualValues(t, 7, got.Pos.Column)
}

func TestFileWrapperRoundTrip(t *testing.T) {
	f := &File{Version: 3, StoreFilePosition: true, Root: &Node{Kind: KindString, Str: "root"}}
	w := primitives.NewWriter()
	f.Encode(w)

	c := primitives.NewCursor(w.Bytes())
	got, err := Decode(c)
	require.NoError(t, err)
	require.Equal(t, int32(3), got.Version)
	require.True(t, got.StoreFilePosition)
	require.Equal(t, "root", got.Root.Str)
}

func TestGenericTextBridgeRoundTrip(t *testing.T) {
	m := NewMap()
	m.Set("name", &Node{Kind: KindString, Str: "sword"})
	m.Set("damage", &Node{Kind: KindInt, Int: 10})
	m.Set("tags", &Node{Kind: KindSequence, Seq: []*Node{
		{Kind: KindString, Str: "melee"},
		{Kind: KindString, Str: "rare"},
	}})
	m.Set("offset", &Node{Kind: KindFloat2, Float2: [2]float32{1.5, -2.5}})
	m.Set("raw", &Node{Kind: KindBytes, Bytes: []byte{0xDE, 0xAD}})
	original := &Node{Kind: KindMap, MapVal: m}

	generic := original.ToGeneric()
	rebuilt := FromGeneric(generic)

	require.Equal(t, KindMap, rebuilt.Kind)
	require.Equal(t, original.MapVal.Len(), rebuilt.MapVal.Len())

	nameNode, ok := rebuilt.MapVal.Get("name")
	require.True(t, ok)
	require.Equal(t, "sword", nameNode.Str)

	dmgNode, ok := rebuilt.MapVal.Get("damage")
	require.True(t, ok)
	require.EqualValues(t, 10, dmgNode.Int)

	rawNode, ok := rebuilt.MapVal.Get("raw")
	require.True(t, ok)
	require.Equal(t, KindBytes, rawNode.Kind)
	require.Equal(t, []byte{0xDE, 0xAD}, rawNode.Bytes)
}

func TestGenericBridgeScalars(t *testing.T) {
	require.Equal(t, Undefined().Kind, FromGeneric(nil).Kind)
	require.Equal(t, KindBool, FromGeneric(true).Kind)
	require.Equal(t, KindString, FromGeneric("x").Kind)
}
