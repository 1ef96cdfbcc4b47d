// Package ordmap is a thin alias layer over go-ordered-map for the
// string-to-string map shape; confignode declares its own alias for the
// string-to-*Node shape.
package ordmap

import orderedmap "github.com/wk8/go-ordered-map/v2"

// StringMap is an insertion-order-preserving string-to-string map, used for
// the 2020 asset property bag and wherever the wire format requires stable
// map-key ordering on round-trip.
type StringMap = orderedmap.OrderedMap[string, string]

// NewStringMap constructs an empty, insertion-ordered string map.
func NewStringMap() *StringMap {
	return orderedmap.New[string, string]()
}
