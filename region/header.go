package region

import (
	"fmt"

	"github.com/arloliu/anvil/endian"
	"github.com/arloliu/anvil/errs"
)

const (
	// SectorSize is the allocation unit of a region file.
	SectorSize = 4096
	// Width is the number of chunks along each axis of a region.
	Width = 32
	// SlotCount is the number of chunk slots in a region.
	SlotCount = Width * Width
	// HeaderSize is the size of the location and timestamp tables.
	HeaderSize = 2 * SectorSize
	// MaxSectors is the largest sector count a location word can hold.
	MaxSectors = 0xFF
	// maxOffset is the largest sector offset a location word can hold.
	maxOffset = 0xFFFFFF
	// firstDataSector is where the first record is placed.
	firstDataSector = HeaderSize / SectorSize
	// recordHeaderSize is the length word plus the compression type byte.
	recordHeaderSize = 5
)

var engine = endian.GetBigEndianEngine()

// Location is one word of the location table: a 24-bit sector offset in the
// high bits and an 8-bit sector count in the low byte.
type Location uint32

// NewLocation packs offset and sectors into a Location.
func NewLocation(offset uint32, sectors uint8) Location {
	return Location(offset<<8 | uint32(sectors))
}

// Offset returns the first sector of the record.
func (l Location) Offset() uint32 { return uint32(l) >> 8 }

// Sectors returns the number of sectors the record occupies.
func (l Location) Sectors() uint8 { return uint8(l) }

// IsEmpty reports whether the slot holds no record.
func (l Location) IsEmpty() bool { return l.Sectors() == 0 }

// ByteOffset returns the file offset of the record.
func (l Location) ByteOffset() int64 { return int64(l.Offset()) * SectorSize }

// Header holds both tables at the start of a region file.
type Header struct {
	Locations  [SlotCount]Location
	Timestamps [SlotCount]uint32
}

// Parse parses the header from data, which must hold at least HeaderSize bytes.
func (h *Header) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("region header is %d bytes, want %d: %w", len(data), HeaderSize, errs.ErrTruncated)
	}

	for i := range SlotCount {
		h.Locations[i] = Location(engine.Uint32(data[i*4:]))
		h.Timestamps[i] = engine.Uint32(data[SectorSize+i*4:])
	}

	return nil
}

// Bytes serializes the header into a new HeaderSize byte slice.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.put(b)

	return b
}

func (h *Header) put(b []byte) {
	for i := range SlotCount {
		engine.PutUint32(b[i*4:], uint32(h.Locations[i]))
		engine.PutUint32(b[SectorSize+i*4:], h.Timestamps[i])
	}
}

// sectorsFor returns the number of sectors needed to hold n bytes.
func sectorsFor(n int) int {
	return (n + SectorSize - 1) / SectorSize
}
