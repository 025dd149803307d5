package compress

import "github.com/arloliu/anvil/format"

// ZstdCompressor implements Zstandard (region compression type 5, an extension).
//
// The default build uses the pure Go encoder from klauspost/compress. Building
// with cgo and the gozstd tag switches to the libzstd binding.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstandard codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// Type returns format.CompressionZstd.
func (c ZstdCompressor) Type() format.CompressionType {
	return format.CompressionZstd
}
