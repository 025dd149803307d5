// Package region reads and writes region files: 32×32 grids of chunk slots,
// each holding one compressed tag.Compound.
//
// # File Layout
//
//	bytes      0..4095   : 1024 location words (sector offset:u24be, sector count:u8)
//	bytes   4096..8191   : 1024 timestamps (u32be, unix seconds)
//	bytes   8192..EOF    : records: length:u32be (payload+1), type:u8, payload
//
// The file length is always a multiple of SectorSize. Slot i of both tables
// belongs to the chunk at Index(x, z).
//
// # Writing
//
// Serialization always repacks every occupied slot contiguously starting at
// sector 2, in slot order. Space freed by shrinking or clearing a chunk is
// never reused in place; the whole file is rewritten. A chunk whose record
// needs more than 255 sectors is moved to a companion file through the
// configured ExternalStore, and its inline record keeps only the type byte
// with the external flag set. Companion files are written during
// serialization, but stale ones are only removed by PruneExternal, which
// WriteFile calls after the rename.
//
// Writes are not atomic. Use WriteFile, or write to a temporary file and
// rename it over the target.
//
// # Concurrency
//
// A Region is not safe for concurrent use. Independent files may be processed
// in parallel, see Walk.
package region
