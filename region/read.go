package region

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arloliu/anvil/compress"
	"github.com/arloliu/anvil/errs"
	"github.com/arloliu/anvil/format"
	"github.com/arloliu/anvil/internal/options"
	"github.com/arloliu/anvil/tag"
)

// Read parses a region file of the given size from ra.
//
// A zero-length file is an empty region. Any slot that fails to load fails
// the whole read; errors name the chunk coordinates.
func Read(ra io.ReaderAt, size int64, opts ...Option) (*Region, error) {
	r := newRegion()
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}
	if size == 0 {
		return r, nil
	}

	if size < HeaderSize {
		return nil, fmt.Errorf("region: file is %d bytes: %w", size, errs.ErrTruncated)
	}

	raw := make([]byte, HeaderSize)
	if _, err := ra.ReadAt(raw, 0); err != nil {
		return nil, fmt.Errorf("region: read header: %w", err)
	}

	var header Header
	if err := header.Parse(raw); err != nil {
		return nil, fmt.Errorf("region: %w", err)
	}

	for i, loc := range header.Locations {
		r.slots[i].timestamp = header.Timestamps[i]
		if loc.IsEmpty() {
			continue
		}

		if err := r.readSlot(ra, size, i, loc); err != nil {
			cx, cz := r.chunkCoords(i)
			return nil, fmt.Errorf("region: chunk (%d, %d): %w", cx, cz, err)
		}
	}

	r.logger.Debug("region loaded", "x", r.x, "z", r.z, "chunks", r.Count(), "bytes", size)

	return r, nil
}

// Decode parses a region file held in memory.
func Decode(data []byte, opts ...Option) (*Region, error) {
	return Read(bytes.NewReader(data), int64(len(data)), opts...)
}

func (r *Region) readSlot(ra io.ReaderAt, size int64, i int, loc Location) error {
	if loc.Offset() < firstDataSector {
		return fmt.Errorf("sector offset %d inside header: %w", loc.Offset(), errs.ErrCorruptLocation)
	}

	off := loc.ByteOffset()
	if off+recordHeaderSize > size {
		return fmt.Errorf("sector offset %d beyond file end: %w", loc.Offset(), errs.ErrCorruptLocation)
	}

	var hdr [recordHeaderSize]byte
	if _, err := ra.ReadAt(hdr[:], off); err != nil {
		return fmt.Errorf("read record header: %w", err)
	}

	length := int64(engine.Uint32(hdr[:4]))
	if length == 0 {
		return fmt.Errorf("zero record length: %w", errs.ErrCorruptLocation)
	}
	if 4+length > int64(loc.Sectors())*SectorSize {
		return fmt.Errorf("record of %d bytes exceeds %d sectors: %w", length, loc.Sectors(), errs.ErrCorruptLocation)
	}

	ct := format.CompressionType(hdr[4])
	if !ct.IsRegionType() {
		return fmt.Errorf("compression type %#x: %w", hdr[4], errs.ErrUnknownCompression)
	}

	var payload []byte
	if ct.IsExternal() {
		if r.store == nil {
			return fmt.Errorf("chunk is stored externally and no store is configured: %w", errs.ErrInvalidOption)
		}

		cx, cz := r.chunkCoords(i)
		data, err := r.store.ReadExternal(cx, cz)
		if err != nil {
			return fmt.Errorf("read external: %w", err)
		}
		payload = data
	} else {
		if off+4+length > size {
			return fmt.Errorf("record of %d bytes at offset %d: %w", length, off, errs.ErrTruncated)
		}

		payload = make([]byte, length-1)
		if _, err := ra.ReadAt(payload, off+recordHeaderSize); err != nil {
			return fmt.Errorf("read record: %w", err)
		}
	}

	root, err := r.decodeChunk(ct, payload)
	if err != nil {
		return err
	}

	r.slots[i].root = root
	r.slots[i].compression = ct.Base()
	r.slots[i].external = ct.IsExternal()

	return nil
}

func (r *Region) decodeChunk(ct format.CompressionType, payload []byte) (*tag.Compound, error) {
	codec, err := compress.GetCodec(ct)
	if err != nil {
		return nil, err
	}

	data, err := codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", ct.Base(), err)
	}

	_, root, err := r.codec.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	c, ok := root.(*tag.Compound)
	if !ok {
		return nil, fmt.Errorf("root kind %s: %w", root.Kind(), errs.ErrNotCompound)
	}

	return c, nil
}
