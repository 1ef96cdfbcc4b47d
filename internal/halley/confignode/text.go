package confignode

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// kindTagKey marks the handful of variants that cannot be represented as a bare
// JSON5/TOML/YAML scalar, sequence, or map without losing information (the
// delta/noop/idx/del family, and the Int2/Float2/entity-id pairs).
const kindTagKey = "__kind"

// ToGeneric renders a Node as a generic value suitable for JSON5/TOML/YAML
// marshaling: Map becomes an order-preserving *orderedmap.OrderedMap (every
// supported text encoder in this module honors that ordering), Sequence
// becomes a []interface{}, and common scalars map directly. Variants with no
// natural scalar/collection shape carry an explicit "__kind" tag alongside
// their raw fields so the text form stays round-trippable by a human editor
// even though it is not the wire format itself.
func (n *Node) ToGeneric() interface{} {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindUndefined:
		return nil
	case KindNoop:
		return tagged("noop", nil)
	case KindDel:
		return tagged("del", nil)
	case KindBool:
		return n.Bool
	case KindInt:
		return n.Int
	case KindFloat:
		return n.Float
	case KindInt64:
		return n.Int64
	case KindEntityID:
		return tagged("entity_id", n.Int64)
	case KindString:
		return n.Str
	case KindBytes:
		return tagged("bytes", n.Bytes)
	case KindInt2:
		return tagged("int2", n.Int2)
	case KindFloat2:
		return tagged("float2", n.Float2)
	case KindIdx:
		return tagged("idx", n.Idx)
	case KindSequence:
		return sequenceToGeneric(n.Seq)
	case KindDeltaSequence:
		m := orderedmap.New[string, interface{}]()
		m.Set(kindTagKey, "delta_sequence")
		m.Set("items", sequenceToGeneric(n.Seq))
		m.Set("delta", n.DeltaTag)
		return m
	case KindMap:
		return mapToGeneric(n.MapVal)
	case KindDeltaMap:
		m := orderedmap.New[string, interface{}]()
		m.Set(kindTagKey, "delta_map")
		m.Set("items", mapToGeneric(n.MapVal))
		m.Set("delta", n.DeltaTag)
		return m
	default:
		return nil
	}
}

func tagged(kind string, value interface{}) *orderedmap.OrderedMap[string, interface{}] {
	m := orderedmap.New[string, interface{}]()
	m.Set(kindTagKey, kind)
	if value != nil {
		m.Set("value", value)
	}
	return m
}

func sequenceToGeneric(seq []*Node) []interface{} {
	out := make([]interface{}, len(seq))
	for i, child := range seq {
		out[i] = child.ToGeneric()
	}
	return out
}

func mapToGeneric(m *Map) *orderedmap.OrderedMap[string, interface{}] {
	out := orderedmap.New[string, interface{}]()
	if m == nil {
		return out
	}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value.ToGeneric())
	}
	return out
}

// FromGeneric is the inverse of ToGeneric: it rebuilds a Node tree from a
// value produced by unmarshaling JSON5/TOML/YAML text (maps surface as
// map[string]interface{} from those decoders, not the ordered type ToGeneric
// emits, since the text round-trip is human-editable rather than wire-exact;
// key order within a decoded map therefore follows the decoder's own
// iteration, which for JSON5/YAML is the source document order).
func FromGeneric(v interface{}) *Node {
	switch val := v.(type) {
	case nil:
		return Undefined()
	case bool:
		return &Node{Kind: KindBool, Bool: val}
	case string:
		return &Node{Kind: KindString, Str: val}
	case int:
		return &Node{Kind: KindInt, Int: int32(val)}
	case int32:
		return &Node{Kind: KindInt, Int: val}
	case int64:
		return &Node{Kind: KindInt64, Int64: val}
	case float32:
		return &Node{Kind: KindFloat, Float: val}
	case float64:
		return &Node{Kind: KindFloat, Float: float32(val)}
	case []interface{}:
		seq := make([]*Node, len(val))
		for i, item := range val {
			seq[i] = FromGeneric(item)
		}
		return &Node{Kind: KindSequence, Seq: seq}
	case map[string]interface{}:
		if kind, ok := val[kindTagKey].(string); ok {
			return taggedFromGeneric(kind, val)
		}
		m := NewMap()
		for k, item := range val {
			m.Set(k, FromGeneric(item))
		}
		return &Node{Kind: KindMap, MapVal: m}
	case *orderedmap.OrderedMap[string, interface{}]:
		if kind, ok := val.Get(kindTagKey); ok {
			if ks, ok := kind.(string); ok {
				return taggedFromOrderedGeneric(ks, val)
			}
		}
		m := NewMap()
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			m.Set(pair.Key, FromGeneric(pair.Value))
		}
		return &Node{Kind: KindMap, MapVal: m}
	default:
		return Undefined()
	}
}

func taggedFromGeneric(kind string, val map[string]interface{}) *Node {
	switch kind {
	case "noop":
		return Noop()
	case "del":
		return Del()
	case "entity_id":
		return &Node{Kind: KindEntityID, Int64: toInt64(val["value"])}
	case "bytes":
		return &Node{Kind: KindBytes, Bytes: toByteSlice(val["value"])}
	case "int2":
		return &Node{Kind: KindInt2, Int2: toInt32Pair(val["value"])}
	case "float2":
		return &Node{Kind: KindFloat2, Float2: toFloat32Pair(val["value"])}
	case "idx":
		return &Node{Kind: KindIdx, Idx: toInt32Pair(val["value"])}
	case "delta_sequence":
		return &Node{Kind: KindDeltaSequence, Seq: FromGeneric(val["items"]).Seq, DeltaTag: int32(toInt64(val["delta"]))}
	case "delta_map":
		return &Node{Kind: KindDeltaMap, MapVal: FromGeneric(val["items"]).MapVal, DeltaTag: int32(toInt64(val["delta"]))}
	default:
		return Undefined()
	}
}

func toInt32Pair(v interface{}) [2]int32 {
	var out [2]int32
	items, ok := v.([]interface{})
	if !ok {
		return out
	}
	for i := 0; i < len(items) && i < 2; i++ {
		out[i] = int32(toInt64(items[i]))
	}
	return out
}

func toFloat32Pair(v interface{}) [2]float32 {
	var out [2]float32
	items, ok := v.([]interface{})
	if !ok {
		return out
	}
	for i := 0; i < len(items) && i < 2; i++ {
		if f, ok := items[i].(float64); ok {
			out[i] = float32(f)
		}
	}
	return out
}

func taggedFromOrderedGeneric(kind string, val *orderedmap.OrderedMap[string, interface{}]) *Node {
	get := func(k string) interface{} { v, _ := val.Get(k); return v }
	switch kind {
	case "noop":
		return Noop()
	case "del":
		return Del()
	case "entity_id":
		return &Node{Kind: KindEntityID, Int64: toInt64(get("value"))}
	case "bytes":
		return &Node{Kind: KindBytes, Bytes: toByteSlice(get("value"))}
	case "int2":
		return &Node{Kind: KindInt2, Int2: toInt32Pair(get("value"))}
	case "float2":
		return &Node{Kind: KindFloat2, Float2: toFloat32Pair(get("value"))}
	case "idx":
		return &Node{Kind: KindIdx, Idx: toInt32Pair(get("value"))}
	case "delta_sequence":
		return &Node{Kind: KindDeltaSequence, Seq: FromGeneric(get("items")).Seq, DeltaTag: int32(toInt64(get("delta")))}
	case "delta_map":
		return &Node{Kind: KindDeltaMap, MapVal: FromGeneric(get("items")).MapVal, DeltaTag: int32(toInt64(get("delta")))}
	default:
		return Undefined()
	}
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func toByteSlice(v interface{}) []byte {
	switch b := v.(type) {
	case []byte:
		return b
	case string:
		return []byte(b)
	default:
		return nil
	}
}
