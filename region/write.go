package region

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arloliu/anvil/compress"
	"github.com/arloliu/anvil/errs"
	"github.com/arloliu/anvil/format"
	"github.com/arloliu/anvil/internal/pool"
)

// WriteTo serializes the region to w. The returned count is the file length,
// always a multiple of SectorSize. Oversized chunks are written to the
// external store during serialization. Companion files that are no longer
// referenced stay in place until PruneExternal.
func (r *Region) WriteTo(w io.Writer) (int64, error) {
	buf := pool.GetRegionBuffer()
	defer pool.PutRegionBuffer(buf)

	if err := r.serialize(buf); err != nil {
		return 0, err
	}

	return buf.WriteTo(w)
}

// Bytes returns the serialized region file. It has the same external store
// side effects as WriteTo.
func (r *Region) Bytes() ([]byte, error) {
	buf := pool.GetRegionBuffer()
	defer pool.PutRegionBuffer(buf)

	if err := r.serialize(buf); err != nil {
		return nil, err
	}

	return bytes.Clone(buf.Bytes()), nil
}

// serialize lays out the whole file in buf. Records are packed in slot order
// from sector 2 and each is zero padded to the next sector boundary.
func (r *Region) serialize(buf *pool.ByteBuffer) error {
	buf.Reset()
	buf.AppendZeros(HeaderSize)

	var header Header
	cursor := firstDataSector
	chunks, external := 0, 0

	for i := range r.slots {
		s := &r.slots[i]
		cx, cz := r.chunkCoords(i)

		if s.root == nil {
			s.stale = s.external

			continue
		}

		payload, err := r.encodeChunk(s)
		if err != nil {
			return fmt.Errorf("region: chunk (%d, %d): %w", cx, cz, err)
		}

		start := buf.Len()
		if sectorsFor(recordHeaderSize+len(payload)) > MaxSectors {
			if r.store == nil {
				return fmt.Errorf("region: chunk (%d, %d) is %d bytes: %w", cx, cz, len(payload), errs.ErrChunkTooLarge)
			}
			if err := r.store.WriteExternal(cx, cz, payload); err != nil {
				return fmt.Errorf("region: chunk (%d, %d): write external: %w", cx, cz, err)
			}
			putRecordHeader(buf, 1, s.compression|format.ExternalFlag)
			s.external, s.stale = true, false
			external++
			r.logger.Debug("chunk moved to external store", "cx", cx, "cz", cz, "bytes", len(payload))
		} else {
			s.stale = s.external
			putRecordHeader(buf, len(payload)+1, s.compression)
			_, _ = buf.Write(payload)
		}

		written := buf.Len() - start
		sectors := sectorsFor(written)
		buf.AppendZeros(sectors*SectorSize - written)

		header.Locations[i] = NewLocation(uint32(cursor), uint8(sectors)) //nolint:gosec
		header.Timestamps[i] = s.timestamp
		cursor += sectors
		chunks++
	}

	header.put(buf.Bytes()[:HeaderSize])

	r.logger.Debug("region serialized",
		"x", r.x, "z", r.z, "chunks", chunks, "external", external, "bytes", buf.Len())

	return nil
}

func (r *Region) encodeChunk(s *slot) ([]byte, error) {
	data, err := r.codec.Marshal("", s.root)
	if err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(s.compression)
	if err != nil {
		return nil, err
	}

	return codec.Compress(data)
}

// PruneExternal removes the companion files of chunks that the last
// serialization stored inline or dropped. Call it once the new region file is
// in place; WriteFile does so after the rename.
func (r *Region) PruneExternal() error {
	if r.store == nil {
		return nil
	}

	for i := range r.slots {
		s := &r.slots[i]
		if !s.stale {
			continue
		}

		cx, cz := r.chunkCoords(i)
		if err := r.store.RemoveExternal(cx, cz); err != nil {
			return fmt.Errorf("region: chunk (%d, %d): remove external: %w", cx, cz, err)
		}
		s.external, s.stale = false, false
	}

	return nil
}

func putRecordHeader(buf *pool.ByteBuffer, length int, ct format.CompressionType) {
	var hdr [recordHeaderSize]byte
	engine.PutUint32(hdr[:4], uint32(length)) //nolint:gosec
	hdr[4] = byte(ct)
	_, _ = buf.Write(hdr[:])
}
