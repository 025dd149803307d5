package palette

import "fmt"

// Layout selects how cell indices are packed into words.
type Layout uint8

const (
	// LayoutPadded never splits a cell across words.
	LayoutPadded Layout = iota
	// LayoutStraddling packs cells contiguously across word boundaries.
	LayoutStraddling
)

// PaddedDataVersion is the first data version written with LayoutPadded.
const PaddedDataVersion = 2527

// LayoutForDataVersion returns the layout used by documents of data version v.
func LayoutForDataVersion(v int32) Layout {
	if v >= PaddedDataVersion {
		return LayoutPadded
	}

	return LayoutStraddling
}

// Packer returns the packing strategy of l.
func (l Layout) Packer() Packer {
	if l == LayoutStraddling {
		return StraddlingPacker{}
	}

	return PaddedPacker{}
}

func (l Layout) String() string {
	switch l {
	case LayoutPadded:
		return "Padded"
	case LayoutStraddling:
		return "Straddling"
	default:
		return fmt.Sprintf("Layout(%d)", uint8(l))
	}
}

func (l Layout) valid() bool {
	return l == LayoutPadded || l == LayoutStraddling
}

// Packer reads and writes fixed-width cells in a word array.
// bits is in [1, 32] and v must fit in bits.
type Packer interface {
	Get(words []uint64, i, bits int) uint64
	Set(words []uint64, i, bits int, v uint64)
	// WordCount returns the number of words needed for n cells of bits each.
	WordCount(n, bits int) int
}

// StraddlingPacker implements LayoutStraddling.
type StraddlingPacker struct{}

func (StraddlingPacker) Get(words []uint64, i, bits int) uint64 {
	pos := i * bits
	w, off := pos>>6, pos&63
	mask := uint64(1)<<bits - 1

	v := words[w] >> off
	if off+bits > 64 {
		v |= words[w+1] << (64 - off)
	}

	return v & mask
}

func (StraddlingPacker) Set(words []uint64, i, bits int, v uint64) {
	pos := i * bits
	w, off := pos>>6, pos&63
	mask := uint64(1)<<bits - 1
	v &= mask

	words[w] = words[w]&^(mask<<off) | v<<off
	if off+bits > 64 {
		shift := 64 - off
		words[w+1] = words[w+1]&^(mask>>shift) | v>>shift
	}
}

func (StraddlingPacker) WordCount(n, bits int) int {
	return (n*bits + 63) / 64
}

// PaddedPacker implements LayoutPadded.
type PaddedPacker struct{}

func (PaddedPacker) Get(words []uint64, i, bits int) uint64 {
	per := 64 / bits
	off := (i % per) * bits

	return words[i/per] >> off & (uint64(1)<<bits - 1)
}

func (PaddedPacker) Set(words []uint64, i, bits int, v uint64) {
	per := 64 / bits
	w, off := i/per, (i%per)*bits
	mask := uint64(1)<<bits - 1

	words[w] = words[w]&^(mask<<off) | (v&mask)<<off
}

func (PaddedPacker) WordCount(n, bits int) int {
	per := 64 / bits
	return (n + per - 1) / per
}
