// Package palette implements palette-indexed bit-packed arrays, the storage
// used for the block states and biomes of a chunk section.
//
// A Container holds N cells. Each cell stores an index into a deduplicated
// palette of tag values, packed into 64-bit words at the smallest width that
// can address the palette (never below a configured floor). Appending a value
// that crosses a power-of-two palette size widens every index; widths never
// shrink except through Cleanup.
//
// # Layouts
//
// Two incompatible packings exist and the data itself does not say which one
// was used:
//
//   - LayoutStraddling: cells are packed back to back and one cell may span
//     two adjacent words.
//   - LayoutPadded: each word holds floor(64/bits) cells and its unused high
//     bits are zero.
//
// Pick the layout from the data version of the enclosing document with
// LayoutForDataVersion.
//
// # Serialized form
//
// A container is carried as two fields of a tag.Compound: a List holding the
// palette and a LongArray holding the words. A palette with a single entry
// has no words at all.
package palette
