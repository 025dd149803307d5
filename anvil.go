// Package anvil reads and writes the binary world storage formats of block
// game saves: tag trees, region files and palette-packed section arrays.
//
// # Core Features
//
//   - Tag codec for the 13 fixed tag kinds plus registered custom kinds
//   - Big-endian wire format by default, little-endian on request
//   - Depth-limited encode and decode (512 nested containers by default)
//   - Whole documents wrapped in gzip, zlib or raw deflate, auto-detected on read
//   - Region files of 32×32 chunk slots with gzip, zlib, LZ4, Zstd, S2 or no compression
//   - Oversized chunks moved to companion files
//   - Palette-indexed bit-packed arrays in both historical packing layouts
//
// # Basic Usage
//
// Reading a level file and a region:
//
//	name, root, ct, err := anvil.ReadDocument(f)
//
//	r, err := anvil.OpenRegion("world/region/r.0.0.mca")
//	chunk := r.Get(5, 5) // nil when the slot is empty
//
// Editing the block states of a chunk section:
//
//	states, err := anvil.ParseBlockStates(section.Compound("block_states"), dataVersion)
//	err = states.Set(0, stone)
//	states.Cleanup()
//	err = states.WriteCompound(section.Compound("block_states"))
//
// # Package Structure
//
// This package provides top-level wrappers for the common cases. For full
// control use the tag, region and palette packages directly.
package anvil

import (
	"io"

	"github.com/arloliu/anvil/format"
	"github.com/arloliu/anvil/palette"
	"github.com/arloliu/anvil/region"
	"github.com/arloliu/anvil/tag"
	"github.com/arloliu/anvil/tag/legacy"
)

// NewCodec creates a tag codec with custom options.
//
// Parameters:
//   - opts: Optional configuration functions (see tag.CodecOption)
//
// Returns:
//   - *tag.Codec: The created codec.
//   - error: An error if an option is invalid.
//
// Available options:
//   - tag.WithRegistry(registry)
//   - tag.WithMaxDepth(depth)
//   - tag.WithLittleEndian() / tag.WithBigEndian()
func NewCodec(opts ...tag.CodecOption) (*tag.Codec, error) {
	return tag.NewCodec(opts...)
}

// NewLegacyCodec creates a tag codec whose registry already holds every legacy
// custom kind (opaque, short array, char and struct).
//
// Use this to read data written by older producers. The registry is private to
// the returned codec; further kinds can be added through codec.Registry().
//
// Parameters:
//   - opts: Optional configuration functions; a tag.WithRegistry option overrides
//     the prepared registry
//
// Returns:
//   - *tag.Codec: The created codec.
//   - error: An error if an option is invalid.
func NewLegacyCodec(opts ...tag.CodecOption) (*tag.Codec, error) {
	registry := tag.NewRegistry()
	if err := legacy.RegisterAll(registry); err != nil {
		return nil, err
	}

	return tag.NewCodec(append([]tag.CodecOption{tag.WithRegistry(registry)}, opts...)...)
}

// ReadDocument decodes a whole document, detecting gzip, zlib or no wrapping.
//
// Returns:
//   - string: Name of the root tag.
//   - tag.Tag: The root tag.
//   - format.CompressionType: The detected wrapping.
//   - error: Decompression or decode failure.
func ReadDocument(r io.Reader) (string, tag.Tag, format.CompressionType, error) {
	codec, err := tag.NewCodec()
	if err != nil {
		return "", nil, 0, err
	}

	return codec.ReadDocument(r)
}

// WriteDocument encodes root as a whole document named name, gzip wrapped.
//
// Example:
//
//	err := anvil.WriteDocument(f, "", level)
func WriteDocument(w io.Writer, name string, root tag.Tag) error {
	codec, err := tag.NewCodec()
	if err != nil {
		return err
	}

	return codec.WriteDocument(w, name, root, format.CompressionGzip)
}

// NewRegion creates an empty region at region coordinates (rx, rz).
//
// Available options:
//   - region.WithCodec(codec)
//   - region.WithCompression(format.CompressionZlib|Gzip|None|LZ4|Zstd|S2)
//   - region.WithExternalStore(store)
//   - region.WithLogger(logger)
//   - region.WithClock(now)
func NewRegion(rx, rz int, opts ...region.Option) (*region.Region, error) {
	return region.New(rx, rz, opts...)
}

// OpenRegion reads the region file at path, named r.<x>.<z>.mca.
//
// Companion files of external chunks are looked up in the same directory.
func OpenRegion(path string, opts ...region.Option) (*region.Region, error) {
	return region.Open(path, opts...)
}

// WriteRegion writes r to path through a temporary file.
func WriteRegion(path string, r *region.Region) error {
	return region.WriteFile(path, r)
}

// Field names of the palette arrays in a section compound.
const (
	blockStatesPaletteKey = "palette"
	blockStatesDataKey    = "data"
)

func sectionOptions(dataVersion int32, minBits int, opts []palette.Option) []palette.Option {
	return append([]palette.Option{
		palette.WithLayout(palette.LayoutForDataVersion(dataVersion)),
		palette.WithMinBits(minBits),
		palette.WithKeys(blockStatesPaletteKey, blockStatesDataKey),
	}, opts...)
}

// NewBlockStates creates the 4096-cell block state array of one section,
// filled with def, using the layout of dataVersion.
func NewBlockStates(def tag.Tag, dataVersion int32, opts ...palette.Option) (*palette.Container, error) {
	return palette.New(palette.BlockVolume, def, sectionOptions(dataVersion, palette.BlockMinBits, opts)...)
}

// ParseBlockStates reads the block state array stored in c.
func ParseBlockStates(c *tag.Compound, dataVersion int32, opts ...palette.Option) (*palette.Container, error) {
	return palette.FromCompound(c, palette.BlockVolume, sectionOptions(dataVersion, palette.BlockMinBits, opts)...)
}

// NewBiomes creates the 64-cell biome array of one section, filled with def.
func NewBiomes(def tag.Tag, dataVersion int32, opts ...palette.Option) (*palette.Container, error) {
	return palette.New(palette.BiomeVolume, def, sectionOptions(dataVersion, palette.BiomeMinBits, opts)...)
}

// ParseBiomes reads the biome array stored in c.
func ParseBiomes(c *tag.Compound, dataVersion int32, opts ...palette.Option) (*palette.Container, error) {
	return palette.FromCompound(c, palette.BiomeVolume, sectionOptions(dataVersion, palette.BiomeMinBits, opts)...)
}
