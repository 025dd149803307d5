package compress

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/anvil/errs"
	"github.com/arloliu/anvil/format"
)

// lz4MaxDecompressed bounds the size prefix accepted by Decompress.
const lz4MaxDecompressed = 128 * 1024 * 1024

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor implements LZ4 block compression (region compression type 4).
//
// The output is a 4-byte big-endian uncompressed length followed by one LZ4 block,
// so decompression allocates exactly once.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates an LZ4 codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Type returns format.CompressionLZ4.
func (c LZ4Compressor) Type() format.CompressionType {
	return format.CompressionLZ4
}

// Compress compresses data into a length-prefixed LZ4 block.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	dst := make([]byte, 4+lz4.CompressBlockBound(len(data)))
	binary.BigEndian.PutUint32(dst, uint32(len(data))) //nolint:gosec
	if len(data) == 0 {
		return dst[:4], nil
	}

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[4:])
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 {
		// incompressible input; fall back to a literal-only block
		return appendLiteralBlock(dst[:4], data), nil
	}

	return dst[:4+n], nil
}

// appendLiteralBlock appends data as a single LZ4 sequence with no match.
func appendLiteralBlock(dst, data []byte) []byte {
	n := len(data)
	if n < 15 {
		dst = append(dst, byte(n<<4))
	} else {
		dst = append(dst, 0xF0)
		for n -= 15; n >= 255; n -= 255 {
			dst = append(dst, 0xFF)
		}
		dst = append(dst, byte(n))
	}

	return append(dst, data...)
}

// Decompress expands a block produced by Compress.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("lz4 block header: %w", errs.ErrTruncated)
	}

	size := binary.BigEndian.Uint32(data)
	if size > lz4MaxDecompressed {
		return nil, errs.Malformedf("lz4 uncompressed size %d exceeds limit", size)
	}

	out := make([]byte, size)
	if size == 0 {
		return out, nil
	}

	n, err := lz4.UncompressBlock(data[4:], out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if n != int(size) {
		return nil, errs.Malformedf("lz4 block expanded to %d bytes, header says %d", n, size)
	}

	return out, nil
}
