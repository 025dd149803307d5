package palette

import (
	"fmt"
	"math"
	"math/bits"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/arloliu/anvil/errs"
	"github.com/arloliu/anvil/internal/hash"
	"github.com/arloliu/anvil/internal/options"
	"github.com/arloliu/anvil/internal/pool"
	"github.com/arloliu/anvil/tag"
)

// Container is a palette-indexed array of N cells.
//
// A Container is not safe for concurrent use.
type Container struct {
	size    int
	layout  Layout
	packer  Packer
	minBits int
	bits    int

	entries []tag.Tag
	hashes  []uint64
	// lookup maps a value hash to the palette positions holding that hash.
	lookup map[uint64][]int
	// words is nil while the palette has a single entry.
	words []uint64

	codec      *tag.Codec
	scratch    []byte
	paletteKey string
	dataKey    string
}

func newContainer(size int, opts []Option) (*Container, error) {
	if size <= 0 {
		return nil, fmt.Errorf("container size %d: %w", size, errs.ErrInvalidOption)
	}

	codec, _ := tag.NewCodec()
	c := &Container{
		size:       size,
		layout:     LayoutPadded,
		packer:     LayoutPadded.Packer(),
		minBits:    BlockMinBits,
		lookup:     make(map[uint64][]int),
		codec:      codec,
		paletteKey: DefaultPaletteKey,
		dataKey:    DefaultDataKey,
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// New returns a container of size cells, all holding def.
func New(size int, def tag.Tag, opts ...Option) (*Container, error) {
	c, err := newContainer(size, opts)
	if err != nil {
		return nil, err
	}
	h, err := c.hash(def)
	if err != nil {
		return nil, err
	}
	c.appendEntry(def, h)
	c.bits = c.bitsFor(1)

	return c, nil
}

// Parse builds a container from a decoded palette list and word array.
//
// The palette must not be empty. With more than one entry, data must hold
// exactly the words needed for size cells at the palette's width, and every
// cell must index into the palette. With a single entry data is ignored.
func Parse(size int, palette *tag.List, data []int64, opts ...Option) (*Container, error) {
	c, err := newContainer(size, opts)
	if err != nil {
		return nil, err
	}
	if palette == nil || palette.Len() == 0 {
		return nil, errs.Malformedf("empty palette")
	}

	for i, e := range palette.All() {
		h, err := c.hash(e)
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		c.appendEntry(e, h)
	}
	c.bits = c.bitsFor(len(c.entries))

	if len(c.entries) == 1 {
		return c, nil
	}

	want := c.packer.WordCount(size, c.bits)
	if len(data) != want {
		return nil, errs.Malformedf("%d words for %d cells of %d bits in %s layout, want %d",
			len(data), size, c.bits, c.layout, want)
	}

	c.words = make([]uint64, len(data))
	for i, w := range data {
		c.words[i] = uint64(w) //nolint:gosec
	}

	for i := range size {
		if idx := c.packer.Get(c.words, i, c.bits); idx >= uint64(len(c.entries)) {
			return nil, fmt.Errorf("cell %d holds index %d of %d entries: %w",
				i, idx, len(c.entries), errs.ErrIndexOutOfPalette)
		}
	}

	return c, nil
}

// FromCompound parses the container stored under the palette and data keys
// of parent.
func FromCompound(parent *tag.Compound, size int, opts ...Option) (*Container, error) {
	c, err := newContainer(size, opts)
	if err != nil {
		return nil, err
	}

	list := parent.List(c.paletteKey)
	if list == nil {
		return nil, errs.Malformedf("missing palette list %q", c.paletteKey)
	}

	return Parse(size, list, parent.LongArray(c.dataKey), opts...)
}

// WriteCompound stores the container into parent under the palette and data
// keys. The data field is removed when the palette has a single entry.
func (c *Container) WriteCompound(parent *tag.Compound) error {
	entries := make([]tag.Tag, len(c.entries))
	for i, e := range c.entries {
		entries[i] = tag.Clone(e)
	}

	list, err := tag.NewList(entries[0].Kind(), entries...)
	if err != nil {
		return fmt.Errorf("palette: %w", err)
	}
	if err := parent.Put(c.paletteKey, list); err != nil {
		return err
	}

	if c.words == nil {
		parent.Delete(c.dataKey)
		return nil
	}

	return parent.Put(c.dataKey, tag.LongArray(c.Data()))
}

// Len returns the number of cells.
func (c *Container) Len() int { return c.size }

// Bits returns the index width. A container with a single palette entry
// reports the floor width although it stores no words.
func (c *Container) Bits() int { return c.bits }

// Layout returns the packing layout.
func (c *Container) Layout() Layout { return c.layout }

// PaletteLen returns the number of palette entries.
func (c *Container) PaletteLen() int { return len(c.entries) }

// Palette returns a copy of the palette. The entries themselves are shared
// and must not be modified.
func (c *Container) Palette() []tag.Tag { return slices.Clone(c.entries) }

// Data returns a copy of the packed words, or nil for a single-entry palette.
func (c *Container) Data() []int64 {
	if c.words == nil {
		return nil
	}

	out := make([]int64, len(c.words))
	for i, w := range c.words {
		out[i] = int64(w) //nolint:gosec
	}

	return out
}

// Index returns the palette position stored at cell i.
func (c *Container) Index(i int) (int, error) {
	if err := c.checkCell(i); err != nil {
		return 0, err
	}

	return c.index(i), nil
}

// Get returns the value of cell i. The result is shared with the palette and
// must not be modified.
func (c *Container) Get(i int) (tag.Tag, error) {
	if err := c.checkCell(i); err != nil {
		return nil, err
	}

	return c.entries[c.index(i)], nil
}

// Set stores v at cell i. A value not yet in the palette is appended to it,
// widening every index if the palette grows past a power of two. The palette
// keeps its own copy of v, which must be of the same kind as the existing
// entries.
func (c *Container) Set(i int, v tag.Tag) error {
	if err := c.checkCell(i); err != nil {
		return err
	}

	h, err := c.hash(v)
	if err != nil {
		return err
	}
	if k := c.entries[0].Kind(); v.Kind() != k {
		return fmt.Errorf("cell %d: %s value in %s palette: %w", i, v.Kind(), k, errs.ErrListKindMismatch)
	}

	idx, ok := c.find(v, h)
	if !ok {
		idx = c.appendEntry(v, h)
		c.grow()
	}
	c.setIndex(i, idx)

	return nil
}

// SetIndex stores palette position idx at cell i.
func (c *Container) SetIndex(i, idx int) error {
	if err := c.checkCell(i); err != nil {
		return err
	}
	if idx < 0 || idx >= len(c.entries) {
		return fmt.Errorf("palette position %d of %d: %w", idx, len(c.entries), errs.ErrIndexOutOfRange)
	}
	c.setIndex(i, idx)

	return nil
}

// Cleanup drops palette entries no cell refers to and repacks the cells at
// the resulting width. Position 0 is always kept. Cell values do not change.
//
// Cleanup visits every cell; call it before saving rather than after each Set.
func (c *Container) Cleanup() {
	if len(c.entries) == 1 {
		return
	}

	referenced := roaring.New()
	referenced.Add(0)
	for i := range c.size {
		referenced.Add(uint32(c.index(i))) //nolint:gosec
	}
	if int(referenced.GetCardinality()) == len(c.entries) {
		return
	}

	remap, release := pool.GetUint32Slice(len(c.entries))
	defer release()

	kept := make([]tag.Tag, 0, referenced.GetCardinality())
	keptHashes := make([]uint64, 0, referenced.GetCardinality())
	referenced.Iterate(func(old uint32) bool {
		remap[old] = uint32(len(kept)) //nolint:gosec
		kept = append(kept, c.entries[old])
		keptHashes = append(keptHashes, c.hashes[old])

		return true
	})

	newBits := c.bitsFor(len(kept))
	var words []uint64
	if len(kept) > 1 {
		words = make([]uint64, c.packer.WordCount(c.size, newBits))
		for i := range c.size {
			c.packer.Set(words, i, newBits, uint64(remap[c.index(i)]))
		}
	}

	c.entries, c.hashes, c.words, c.bits = kept, keptHashes, words, newBits
	c.lookup = make(map[uint64][]int, len(kept))
	for pos, h := range keptHashes {
		c.lookup[h] = append(c.lookup[h], pos)
	}
}

func (c *Container) checkCell(i int) error {
	if i < 0 || i >= c.size {
		return fmt.Errorf("cell %d of %d: %w", i, c.size, errs.ErrIndexOutOfRange)
	}

	return nil
}

func (c *Container) index(i int) int {
	if c.words == nil {
		return 0
	}

	return int(c.packer.Get(c.words, i, c.bits)) //nolint:gosec
}

func (c *Container) setIndex(i, idx int) {
	if c.words == nil {
		return
	}
	c.packer.Set(c.words, i, c.bits, uint64(idx)) //nolint:gosec
}

// bitsFor returns the width needed to address n entries.
func (c *Container) bitsFor(n int) int {
	return max(c.minBits, bits.Len(uint(n-1)))
}

// grow widens the word array after an append, if the palette needs it.
func (c *Container) grow() {
	newBits := c.bitsFor(len(c.entries))

	switch {
	case c.words == nil:
		// every cell already refers to position 0, which zeroed words encode
		c.words = make([]uint64, c.packer.WordCount(c.size, newBits))
	case newBits != c.bits:
		words := make([]uint64, c.packer.WordCount(c.size, newBits))
		for i := range c.size {
			c.packer.Set(words, i, newBits, c.packer.Get(c.words, i, c.bits))
		}
		c.words = words
	}
	c.bits = newBits
}

func (c *Container) hash(v tag.Tag) (uint64, error) {
	if v == nil {
		return 0, errs.ErrNilTag
	}
	if v.Kind() == tag.KindEnd {
		return 0, errs.ErrEndTag
	}

	if str, ok := v.(tag.String); ok {
		if len(str) > math.MaxUint16 {
			return 0, fmt.Errorf("palette value: %w: %d bytes", errs.ErrStringTooLong, len(str))
		}

		return hash.SumString(string(str)), nil
	}

	out, err := c.codec.AppendPayload(c.scratch[:0], v)
	c.scratch = out
	if err != nil {
		return 0, fmt.Errorf("palette value: %w", err)
	}

	return hash.Sum(out), nil
}

func (c *Container) find(v tag.Tag, h uint64) (int, bool) {
	for _, pos := range c.lookup[h] {
		if tag.Equal(c.entries[pos], v) {
			return pos, true
		}
	}

	return 0, false
}

// appendEntry adds a copy of v with hash h to the palette without touching
// the words.
func (c *Container) appendEntry(v tag.Tag, h uint64) int {
	pos := len(c.entries)
	c.entries = append(c.entries, tag.Clone(v))
	c.hashes = append(c.hashes, h)
	c.lookup[h] = append(c.lookup[h], pos)

	return pos
}
