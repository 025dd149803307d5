package tag

import (
	"bytes"
	"math"
	"slices"
)

// contains reports whether target is root or is reachable from it.
// Only container kinds are walked; anything else cannot hold target.
func contains(root Tag, target Tag) bool {
	switch v := root.(type) {
	case *Compound:
		if v == target {
			return true
		}
		for _, child := range v.values {
			if contains(child, target) {
				return true
			}
		}
	case *List:
		if v == target {
			return true
		}
		if v.elem != KindCompound && v.elem != KindList && v.elem.IsFixed() {
			return false
		}
		for _, child := range v.items {
			if contains(child, target) {
				return true
			}
		}
	case Branch:
		for _, child := range v.Children() {
			if contains(child, target) {
				return true
			}
		}
	}

	return false
}

// Equal reports whether a and b are structurally equal.
//
// Compounds must hold the same names in the same order. Floating point values
// are compared by bit pattern, so NaN equals an identical NaN. Custom tags use
// Equaler when available and otherwise their encoded payloads.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case End:
		return true
	case Byte:
		return sameScalar(x, b)
	case Short:
		return sameScalar(x, b)
	case Int:
		return sameScalar(x, b)
	case Long:
		return sameScalar(x, b)
	case String:
		return sameScalar(x, b)
	case Float:
		y, ok := b.(Float)
		return ok && math.Float32bits(float32(x)) == math.Float32bits(float32(y))
	case Double:
		y, ok := b.(Double)
		return ok && math.Float64bits(float64(x)) == math.Float64bits(float64(y))
	case ByteArray:
		y, ok := b.(ByteArray)
		return ok && bytes.Equal(x, y)
	case IntArray:
		y, ok := b.(IntArray)
		return ok && slices.Equal(x, y)
	case LongArray:
		y, ok := b.(LongArray)
		return ok && slices.Equal(x, y)
	case *List:
		y, ok := b.(*List)
		if !ok || x.elem != y.elem || len(x.items) != len(y.items) {
			return false
		}
		for i := range x.items {
			if !Equal(x.items[i], y.items[i]) {
				return false
			}
		}

		return true
	case *Compound:
		y, ok := b.(*Compound)
		if !ok || len(x.names) != len(y.names) {
			return false
		}
		for i := range x.names {
			if x.names[i] != y.names[i] || !Equal(x.values[i], y.values[i]) {
				return false
			}
		}

		return true
	}

	if eq, ok := a.(Equaler); ok {
		return eq.EqualTag(b)
	}

	return customPayloadEqual(a, b)
}

func sameScalar[T comparable](x T, b Tag) bool {
	y, ok := b.(T)
	return ok && x == y
}

func customPayloadEqual(a, b Tag) bool {
	ca, okA := a.(Custom)
	cb, okB := b.(Custom)
	if !okA || !okB {
		return false
	}

	pa, errA := defaultCodec.AppendPayload(nil, ca)
	pb, errB := defaultCodec.AppendPayload(nil, cb)

	return errA == nil && errB == nil && bytes.Equal(pa, pb)
}

// Clone returns a deep copy of t. Custom tags are returned as is unless they
// implement interface{ CloneTag() Tag }.
func Clone(t Tag) Tag {
	switch v := t.(type) {
	case ByteArray:
		return slices.Clone(v)
	case IntArray:
		return slices.Clone(v)
	case LongArray:
		return slices.Clone(v)
	case *List:
		out := &List{elem: v.elem, items: make([]Tag, len(v.items))}
		for i, item := range v.items {
			out.items[i] = Clone(item)
		}

		return out
	case *Compound:
		out := &Compound{
			names:  slices.Clone(v.names),
			values: make([]Tag, len(v.values)),
			index:  make(map[string]int, len(v.names)),
		}
		for i, value := range v.values {
			out.values[i] = Clone(value)
			out.index[v.names[i]] = i
		}

		return out
	case interface{ CloneTag() Tag }:
		return v.CloneTag()
	default:
		return t
	}
}
